package service

import (
	"context"
	"errors"
	"testing"

	"github.com/craftbay/marketplace-api/internal/apperr"
	"github.com/craftbay/marketplace-api/internal/models"
	"github.com/craftbay/marketplace-api/internal/store"
)

func newTestCatalog() (*CatalogService, *store.MemoryStore) {
	ms := store.NewMemoryStore()
	return NewCatalogService(ms, testTables(), nil, false), ms
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }

func mustCreateProduct(t *testing.T, svc *CatalogService, sellerID, name string, price float64) *models.Product {
	t.Helper()
	product, err := svc.Create(context.Background(), sellerID, &models.CreateProductRequest{
		Name:  name,
		Price: floatPtr(price),
	})
	if err != nil {
		t.Fatalf("Create product failed: %v", err)
	}
	return product
}

func TestCreateProductValidation(t *testing.T) {
	svc, ms := newTestCatalog()
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreateProductRequest
	}{
		{"missing name", models.CreateProductRequest{Price: floatPtr(10)}},
		{"missing price", models.CreateProductRequest{Name: "Vinyl"}},
		{"negative price", models.CreateProductRequest{Name: "Vinyl", Price: floatPtr(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "seller-1", &tt.req)
			var validationErr *apperr.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}

	if got := ms.Count(testTables().Products); got != 0 {
		t.Errorf("Expected no products after rejected creates, got %d", got)
	}
}

func TestCreateProductSetsSeller(t *testing.T) {
	svc, _ := newTestCatalog()

	product := mustCreateProduct(t, svc, "seller-1", "Vinyl", 19.99)

	if product.ID == "" {
		t.Error("Expected store-assigned product id")
	}
	if product.SellerID != "seller-1" {
		t.Errorf("Expected sellerId seller-1, got %s", product.SellerID)
	}
	if product.Price != 19.99 {
		t.Errorf("Expected price 19.99, got %f", product.Price)
	}
}

func TestUpdateProduct_OwnershipHidden(t *testing.T) {
	svc, _ := newTestCatalog()
	ctx := context.Background()

	product := mustCreateProduct(t, svc, "seller-1", "Vinyl", 10)

	// Another seller must see NotFound, never Forbidden.
	_, err := svc.Update(ctx, product.ID, "seller-2", &models.UpdateProductRequest{Price: floatPtr(1)})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for foreign seller, got %v", err)
	}

	got, err := svc.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Price != 10 {
		t.Errorf("Expected price unchanged after rejected update, got %f", got.Price)
	}
}

func TestUpdateProduct_Partial(t *testing.T) {
	svc, _ := newTestCatalog()
	ctx := context.Background()

	product := mustCreateProduct(t, svc, "seller-1", "Vinyl", 10)

	updated, err := svc.Update(ctx, product.ID, "seller-1", &models.UpdateProductRequest{
		Description: strPtr("First pressing"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Description != "First pressing" {
		t.Errorf("Expected description updated, got %q", updated.Description)
	}
	if updated.Name != "Vinyl" || updated.Price != 10 {
		t.Errorf("Expected untouched fields to survive, got %+v", updated)
	}
}

func TestUpdateProduct_RejectsNegativePrice(t *testing.T) {
	svc, _ := newTestCatalog()

	product := mustCreateProduct(t, svc, "seller-1", "Vinyl", 10)

	_, err := svc.Update(context.Background(), product.ID, "seller-1", &models.UpdateProductRequest{
		Price: floatPtr(-5),
	})
	var validationErr *apperr.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError, got %v", err)
	}
}

func TestDeleteProduct_Ownership(t *testing.T) {
	svc, ms := newTestCatalog()
	ctx := context.Background()

	product := mustCreateProduct(t, svc, "seller-1", "Vinyl", 10)

	if _, err := svc.Delete(ctx, product.ID, "seller-2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for foreign seller, got %v", err)
	}
	if got := ms.Count(testTables().Products); got != 1 {
		t.Fatalf("Expected product to survive foreign delete, count %d", got)
	}

	deleted, err := svc.Delete(ctx, product.ID, "seller-1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.Name != "Vinyl" {
		t.Errorf("Expected deleted product returned, got %+v", deleted)
	}

	if _, err := svc.GetByID(ctx, product.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestListBySeller(t *testing.T) {
	svc, _ := newTestCatalog()
	ctx := context.Background()

	mustCreateProduct(t, svc, "seller-1", "Vinyl", 10)
	mustCreateProduct(t, svc, "seller-1", "Turntable", 150)
	mustCreateProduct(t, svc, "seller-2", "Stylus", 25)

	mine, err := svc.ListBySeller(ctx, "seller-1")
	if err != nil {
		t.Fatalf("ListBySeller failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("Expected 2 products for seller-1, got %d", len(mine))
	}

	none, err := svc.ListBySeller(ctx, "seller-3")
	if err != nil {
		t.Fatalf("ListBySeller failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("Expected empty slice for unknown seller, got %v", none)
	}
}

// fakeCache is an in-memory ProductCache for exercising the read-through
// path without Redis.
type fakeCache struct {
	products map[string]*models.Product
}

func newFakeCache() *fakeCache {
	return &fakeCache{products: make(map[string]*models.Product)}
}

func (f *fakeCache) Get(ctx context.Context, id string) (*models.Product, error) {
	return f.products[id], nil
}

func (f *fakeCache) Set(ctx context.Context, product *models.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, id string) error {
	delete(f.products, id)
	return nil
}

func TestGetByID_ReadsThroughCache(t *testing.T) {
	ms := store.NewMemoryStore()
	cache := newFakeCache()
	svc := NewCatalogService(ms, testTables(), cache, true)
	ctx := context.Background()

	product := mustCreateProduct(t, svc, "seller-1", "Vinyl", 10)

	// First read populates the cache.
	if _, err := svc.GetByID(ctx, product.ID); err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if cache.products[product.ID] == nil {
		t.Fatal("Expected cache populated after read")
	}

	// Second read is served from cache even when the store is down.
	ms.FailAll = true
	got, err := svc.GetByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("Expected cache hit, got %v", err)
	}
	if got.Name != "Vinyl" {
		t.Errorf("Expected cached product, got %+v", got)
	}
}

func TestMutationsInvalidateCache(t *testing.T) {
	ms := store.NewMemoryStore()
	cache := newFakeCache()
	svc := NewCatalogService(ms, testTables(), cache, true)
	ctx := context.Background()

	product := mustCreateProduct(t, svc, "seller-1", "Vinyl", 10)
	if _, err := svc.GetByID(ctx, product.ID); err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if _, err := svc.Update(ctx, product.ID, "seller-1", &models.UpdateProductRequest{Price: floatPtr(12)}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if cache.products[product.ID] != nil {
		t.Error("Expected cache entry invalidated after update")
	}
}
