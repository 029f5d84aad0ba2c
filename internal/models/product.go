package models

// Product is a catalog entry owned by the seller who created it. Ownership
// never transfers; only the owning seller may mutate or delete it.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	SellerID    string  `json:"sellerId"`
}

const (
	productFieldName        = "name"
	productFieldDescription = "description"
	productFieldPrice       = "price"
	productFieldImage       = "image"
	productFieldSellerID    = "sellerId"
	productFieldProductID   = "productId"
)

// CreateProductRequest carries the caller-supplied product fields. The
// seller is taken from the authenticated caller, never from the body.
type CreateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Image       string   `json:"image"`
}

// UpdateProductRequest carries a partial update; nil fields are untouched.
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Image       *string  `json:"image"`
}

// Fields maps the partial update to store columns, skipping absent fields.
func (r *UpdateProductRequest) Fields() map[string]any {
	fields := make(map[string]any)
	if r.Name != nil {
		fields[productFieldName] = *r.Name
	}
	if r.Description != nil {
		fields[productFieldDescription] = *r.Description
	}
	if r.Price != nil {
		fields[productFieldPrice] = *r.Price
	}
	if r.Image != nil {
		fields[productFieldImage] = *r.Image
	}
	return fields
}

// ProductFields maps a product to the store's column names.
func ProductFields(p *Product) map[string]any {
	return map[string]any{
		productFieldName:        p.Name,
		productFieldDescription: p.Description,
		productFieldPrice:       p.Price,
		productFieldImage:       p.Image,
		productFieldSellerID:    p.SellerID,
	}
}

// ProductFromFields builds a product from a store record.
func ProductFromFields(recordID string, fields map[string]any) *Product {
	return &Product{
		ID:          recordID,
		Name:        stringField(fields, productFieldName),
		Description: stringField(fields, productFieldDescription),
		Price:       numberField(fields, productFieldPrice),
		Image:       stringField(fields, productFieldImage),
		SellerID:    stringField(fields, productFieldSellerID),
	}
}
