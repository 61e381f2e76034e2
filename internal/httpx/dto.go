package httpx

import (
	"encoding/json"

	"github.com/jcmexdev/shop-api/internal/basket"
	"github.com/jcmexdev/shop-api/internal/catalog"
)

type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Available   bool   `json:"available"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	ShopID      int64  `json:"shop_id,omitempty"`
}

type ShopResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	Owner string `json:"owner"`
}

type BasketResponse struct {
	ID        int64  `json:"id"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// TotalResponse is the discounted-total view: the line items plus the
// computed total. Total is emitted as a raw JSON number with the exact
// 2-fraction-digit decimal rendering.
type TotalResponse struct {
	ProductList []ProductResponse `json:"product_list"`
	TotalCost   TotalCost         `json:"total_cost"`
}

type TotalCost struct {
	Total json.Number `json:"total"`
}

// PaymentRequest carries the simulated payment body {"money": <number>}.
// json.Number keeps the amount out of float64 so it can be parsed into an
// exact decimal.
type PaymentRequest struct {
	Money json.Number `json:"money"`
}

type PaymentResponse struct {
	Message string `json:"message"`
	Total   string `json:"total"`
	Change  string `json:"change,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type CreateProductRequest struct {
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	Available   bool        `json:"available"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	ShopID      int64       `json:"shop_id"`
}

// UpdateProductRequest uses pointers so omitted fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string      `json:"name"`
	Price       *json.Number `json:"price"`
	Available   *bool        `json:"available"`
	Category    *string      `json:"category"`
	Description *string      `json:"description"`
	ShopID      *int64       `json:"shop_id"`
}

type CreateShopRequest struct {
	Name  string `json:"name"`
	City  string `json:"city"`
	Owner string `json:"owner"`
}

type UpdateShopRequest struct {
	Name  *string `json:"name"`
	City  *string `json:"city"`
	Owner *string `json:"owner"`
}

func mapProduct(p catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price.StringFixed(2),
		Available:   p.Available,
		Category:    p.Category,
		Description: p.Description,
		ShopID:      p.ShopID,
	}
}

func mapProducts(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = mapProduct(p)
	}
	return out
}

func mapShop(s catalog.Shop) ShopResponse {
	return ShopResponse{ID: s.ID, Name: s.Name, City: s.City, Owner: s.Owner}
}

func mapBaskets(baskets []basket.Basket) []BasketResponse {
	out := make([]BasketResponse, len(baskets))
	for i, b := range baskets {
		out[i] = BasketResponse{
			ID:        b.ID,
			Active:    b.Active,
			CreatedAt: b.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z"),
		}
	}
	return out
}
