package service

import (
	"context"
	"log/slog"

	"github.com/craftbay/marketplace-api/internal/apperr"
	"github.com/craftbay/marketplace-api/internal/logging"
	"github.com/craftbay/marketplace-api/internal/models"
	"github.com/craftbay/marketplace-api/internal/store"
)

const defaultCatalogLimit = 100

// ProductCache defines the optional read-through cache for product lookups.
type ProductCache interface {
	Get(ctx context.Context, id string) (*models.Product, error)
	Set(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// CatalogService owns products and enforces seller ownership on mutation.
type CatalogService struct {
	store        store.RecordStore
	products     store.Table
	cache        ProductCache
	cacheEnabled bool
	logger       *slog.Logger
}

// NewCatalogService creates a catalog service over the products table.
// cache may be nil when caching is disabled.
func NewCatalogService(s store.RecordStore, tables store.Tables, cache ProductCache, cacheEnabled bool) *CatalogService {
	return &CatalogService{
		store:        s,
		products:     tables.Products,
		cache:        cache,
		cacheEnabled: cacheEnabled && cache != nil,
		logger:       logging.New("catalog-service"),
	}
}

// List returns up to limit products; limit 0 means the default of 100.
func (s *CatalogService) List(ctx context.Context, limit int) ([]*models.Product, error) {
	if limit <= 0 {
		limit = defaultCatalogLimit
	}

	records, err := s.store.List(ctx, s.products, store.ListOptions{MaxRecords: limit})
	if err != nil {
		return nil, err
	}

	products := make([]*models.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, models.ProductFromFields(rec.ID, rec.Fields))
	}
	return products, nil
}

// GetByID fetches one product.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if s.cacheEnabled {
		if product, err := s.cache.Get(ctx, id); err == nil && product != nil {
			return product, nil
		}
	}

	rec, err := s.store.GetByID(ctx, s.products, id)
	if err != nil {
		return nil, err
	}
	product := models.ProductFromFields(rec.ID, rec.Fields)

	if s.cacheEnabled {
		if err := s.cache.Set(ctx, product); err != nil {
			// Log but don't fail; the store remains authoritative.
			s.logger.Error("failed to cache product", "product_id", id, "error", err.Error())
		}
	}
	return product, nil
}

// Create adds a product owned by sellerID. Name and price are required.
func (s *CatalogService) Create(ctx context.Context, sellerID string, req *models.CreateProductRequest) (*models.Product, error) {
	if req.Name == "" || req.Price == nil {
		return nil, apperr.NewValidationError("product", "name and price are required")
	}
	if *req.Price < 0 {
		return nil, apperr.NewValidationError("price", "price cannot be negative")
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Image:       req.Image,
		SellerID:    sellerID,
	}

	rec, err := s.store.Create(ctx, s.products, models.ProductFields(product))
	if err != nil {
		s.logger.Error("failed to create product", "seller_id", sellerID, "error", err.Error())
		return nil, err
	}

	product.ID = rec.ID
	s.logger.Info("product created", "product_id", product.ID, "seller_id", sellerID)
	return product, nil
}

// Update applies a partial update if callerID owns the product. An ownership
// mismatch reports NotFound rather than Forbidden so callers cannot discover
// other sellers' products.
func (s *CatalogService) Update(ctx context.Context, id, callerID string, req *models.UpdateProductRequest) (*models.Product, error) {
	if _, err := s.getOwned(ctx, id, callerID); err != nil {
		return nil, err
	}

	fields := req.Fields()
	if p, ok := fields[productFieldPriceKey].(float64); ok && p < 0 {
		return nil, apperr.NewValidationError("price", "price cannot be negative")
	}

	rec, err := s.store.Update(ctx, s.products, id, fields)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.logger.Info("product updated", "product_id", id, "seller_id", callerID)
	return models.ProductFromFields(rec.ID, rec.Fields), nil
}

// Delete removes a product if callerID owns it. Orders referencing it keep
// their snapshotted name, seller, and total.
func (s *CatalogService) Delete(ctx context.Context, id, callerID string) (*models.Product, error) {
	if _, err := s.getOwned(ctx, id, callerID); err != nil {
		return nil, err
	}

	rec, err := s.store.Delete(ctx, s.products, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.logger.Info("product deleted", "product_id", id, "seller_id", callerID)
	return models.ProductFromFields(rec.ID, rec.Fields), nil
}

// ListBySeller returns the seller's products; empty slice on zero matches.
func (s *CatalogService) ListBySeller(ctx context.Context, sellerID string) ([]*models.Product, error) {
	records, err := s.store.FilterByField(ctx, s.products, "sellerId", sellerID)
	if err != nil {
		return nil, err
	}

	products := make([]*models.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, models.ProductFromFields(rec.ID, rec.Fields))
	}
	return products, nil
}

// FindByExactName returns products whose name matches exactly,
// case-sensitively. Used only by the legacy product-sync utility.
func (s *CatalogService) FindByExactName(ctx context.Context, name string) ([]*models.Product, error) {
	records, err := s.store.FilterByField(ctx, s.products, "name", name)
	if err != nil {
		return nil, err
	}

	products := make([]*models.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, models.ProductFromFields(rec.ID, rec.Fields))
	}
	return products, nil
}

func (s *CatalogService) getOwned(ctx context.Context, id, callerID string) (*models.Product, error) {
	rec, err := s.store.GetByID(ctx, s.products, id)
	if err != nil {
		return nil, err
	}
	product := models.ProductFromFields(rec.ID, rec.Fields)
	if product.SellerID != callerID {
		return nil, apperr.ErrNotFound
	}
	return product, nil
}

func (s *CatalogService) invalidate(ctx context.Context, id string) {
	if !s.cacheEnabled {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Error("failed to invalidate product cache", "product_id", id, "error", err.Error())
	}
}

// productFieldPriceKey mirrors the store column used by UpdateProductRequest.
const productFieldPriceKey = "price"
