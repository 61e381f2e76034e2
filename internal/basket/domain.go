// Package basket implements the basket lifecycle, discounted pricing and
// the simulated payment flow.
//
// Invariants the storage layer must uphold:
//
//  1. At most one basket per user has active = 1 at any time.
//  2. Basket membership is a set: adding the same product twice is a no-op.
//  3. A basket goes inactive exactly once, on successful settlement, and is
//     never reactivated.
package basket

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-api/internal/catalog"
)

var (
	// ErrEmptyBasket covers both "no active basket" and "active basket with
	// zero line items". Handlers map it to 404 "Your basket is empty".
	ErrEmptyBasket = errors.New("basket: empty")

	// ErrProductUnavailable is returned when the product id is unknown or
	// the product is flagged unavailable.
	ErrProductUnavailable = errors.New("basket: product unavailable")

	// ErrAlreadySettled is returned when a settlement races a concurrent one
	// and loses. The caller may retry; the retry then observes ErrEmptyBasket.
	ErrAlreadySettled = errors.New("basket: already settled")
)

// Basket is one shopping basket. Line items live in the store's join table
// and are fetched separately via ListLineItems.
type Basket struct {
	ID        int64
	OwnerID   int64
	Active    bool
	CreatedAt time.Time
}

// State is the result category of a payment attempt. Exactly one of the
// three applies per attempt; only Settled mutates the basket.
type State string

const (
	StateSettled      State = "SETTLED"
	StateInsufficient State = "INSUFFICIENT"
	StateOverpaid     State = "OVERPAID"
)

// Outcome describes a finished payment attempt. Change is only meaningful
// for StateOverpaid and is quantized to 2 fraction digits.
type Outcome struct {
	State   State
	Total   decimal.Decimal
	Change  decimal.Decimal
	Message string
}

// Store is the storage port for baskets, membership and discounts.
type Store interface {
	// GetOrCreateActiveBasket returns the user's active basket, creating an
	// empty one if none exists. Must be atomic under concurrent callers.
	GetOrCreateActiveBasket(ctx context.Context, ownerID int64) (Basket, error)

	// ActiveBasket returns (zero, false, nil) when the user has no active
	// basket, distinguishing absence from a storage failure.
	ActiveBasket(ctx context.Context, ownerID int64) (Basket, bool, error)

	// AddProduct adds the product to the basket's line-item set. Fails with
	// ErrProductUnavailable if the product is missing or unavailable;
	// adding a product already in the basket is a no-op.
	AddProduct(ctx context.Context, basketID, productID int64) error

	// ListLineItems returns current membership ordered by (name, price).
	// An empty basket yields an empty slice, not an error.
	ListLineItems(ctx context.Context, basketID int64) ([]catalog.Product, error)

	// ListBaskets returns all of the user's baskets, settled ones included.
	ListBaskets(ctx context.Context, ownerID int64) ([]Basket, error)

	// Discount returns the user's discount fraction in [0, 1]; 0 when the
	// user has no discount row. Read fresh on every pricing call.
	Discount(ctx context.Context, ownerID int64) (decimal.Decimal, error)

	// Settle flips the basket to inactive. Returns ErrAlreadySettled if the
	// basket is no longer active, so a concurrent double settlement is
	// detected instead of silently applied twice.
	Settle(ctx context.Context, basketID int64) error
}
