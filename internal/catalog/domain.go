// Package catalog holds the product and shop side of the store: the data
// the basket references but never owns.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a product or shop id does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrUnknownField is returned when an update names a field the entity
	// does not have.
	ErrUnknownField = errors.New("catalog: unknown field")
)

// Product is a catalog entry. Price is an exact decimal with 2 fraction
// digits; it never goes through float64.
type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	Available   bool
	Category    string
	Description string
	ShopID      int64 // 0 when the product is not attached to a shop
}

// Shop is a plain attribute bag; it takes no part in pricing.
type Shop struct {
	ID    int64
	Name  string
	City  string
	Owner string
}

// ProductUpdate carries the mutable product fields for an update. Nil
// pointers mean "leave unchanged".
type ProductUpdate struct {
	Name        *string
	Price       *decimal.Decimal
	Available   *bool
	Category    *string
	Description *string
	ShopID      *int64
}

// ShopUpdate mirrors ProductUpdate for shops.
type ShopUpdate struct {
	Name  *string
	City  *string
	Owner *string
}

// Repository is the storage port for the catalog.
type Repository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	CreateProduct(ctx context.Context, p Product) (int64, error)
	UpdateProduct(ctx context.Context, id int64, upd ProductUpdate) error
	DeleteProduct(ctx context.Context, id int64) error

	ListShops(ctx context.Context) ([]Shop, error)
	GetShop(ctx context.Context, id int64) (Shop, error)
	CreateShop(ctx context.Context, s Shop) (int64, error)
	UpdateShop(ctx context.Context, id int64, upd ShopUpdate) error
}
