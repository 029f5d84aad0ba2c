package store

import (
	"context"

	"github.com/craftbay/marketplace-api/internal/config"
)

// Record is a row in a logical table: the store-assigned id plus its fields.
type Record struct {
	ID     string
	Fields map[string]any
}

// Table addresses one logical table within the store.
type Table struct {
	BaseID string
	Name   string
}

// ListOptions bounds a full-table listing.
type ListOptions struct {
	MaxRecords int
	View       string
}

// RecordStore is the gateway to the external tabular store. Every call is a
// remote round trip; the gateway itself never caches. Lookups on missing ids
// return apperr.ErrNotFound; any other failure is an apperr.StoreError.
type RecordStore interface {
	Create(ctx context.Context, table Table, fields map[string]any) (*Record, error)
	GetByID(ctx context.Context, table Table, id string) (*Record, error)
	Update(ctx context.Context, table Table, id string, fields map[string]any) (*Record, error)
	Delete(ctx context.Context, table Table, id string) (*Record, error)
	// FilterByField returns records whose field equals value. Zero matches
	// is an empty slice, never an error.
	FilterByField(ctx context.Context, table Table, field, value string) ([]*Record, error)
	List(ctx context.Context, table Table, opts ListOptions) ([]*Record, error)
}

// Tables holds the four logical tables the marketplace uses.
type Tables struct {
	Users      Table
	Products   Table
	Orders     Table
	MyProducts Table
}

// TablesFromConfig resolves the logical tables from configuration.
func TablesFromConfig(cfg config.StoreConfig) Tables {
	return Tables{
		Users:      Table{BaseID: cfg.Users.BaseID, Name: cfg.Users.Name},
		Products:   Table{BaseID: cfg.Products.BaseID, Name: cfg.Products.Name},
		Orders:     Table{BaseID: cfg.Orders.BaseID, Name: cfg.Orders.Name},
		MyProducts: Table{BaseID: cfg.MyProducts.BaseID, Name: cfg.MyProducts.Name},
	}
}

// Ping verifies connectivity by listing a single record from each table.
// Called once at startup; a failure aborts boot.
func Ping(ctx context.Context, s RecordStore, tables ...Table) error {
	for _, t := range tables {
		if _, err := s.List(ctx, t, ListOptions{MaxRecords: 1}); err != nil {
			return err
		}
	}
	return nil
}
