package basket

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-api/internal/catalog"
)

// Service owns the basket use cases the HTTP layer exposes. It takes a
// pre-authenticated owner id; permission checks happen at the boundary,
// never here.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// AddProduct puts the product into the user's active basket, creating the
// basket lazily on the first add, and returns the full line-item list.
func (s *Service) AddProduct(ctx context.Context, ownerID, productID int64) ([]catalog.Product, error) {
	b, err := s.store.GetOrCreateActiveBasket(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.store.AddProduct(ctx, b.ID, productID); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "product added to basket",
		"owner_id", ownerID, "basket_id", b.ID, "product_id", productID)

	return s.store.ListLineItems(ctx, b.ID)
}

// ActiveLineItems returns the active basket's membership. Both "no active
// basket" and "active but empty" collapse into ErrEmptyBasket.
func (s *Service) ActiveLineItems(ctx context.Context, ownerID int64) ([]catalog.Product, error) {
	_, items, err := s.activeContents(ctx, ownerID)
	return items, err
}

// Total prices the active basket with the user's current discount. The
// returned total is quantized to 2 fraction digits.
func (s *Service) Total(ctx context.Context, ownerID int64) ([]catalog.Product, decimal.Decimal, error) {
	_, items, err := s.activeContents(ctx, ownerID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	discount, err := s.store.Discount(ctx, ownerID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	return items, Quantize(ComputeTotal(items, discount)), nil
}

// Baskets lists all of the user's baskets, settled ones included.
func (s *Service) Baskets(ctx context.Context, ownerID int64) ([]Basket, error) {
	return s.store.ListBaskets(ctx, ownerID)
}

// activeContents resolves the active basket and its line items, enforcing
// the empty-basket precondition shared by view, total and pay.
func (s *Service) activeContents(ctx context.Context, ownerID int64) (Basket, []catalog.Product, error) {
	b, ok, err := s.store.ActiveBasket(ctx, ownerID)
	if err != nil {
		return Basket{}, nil, err
	}
	if !ok {
		return Basket{}, nil, ErrEmptyBasket
	}

	items, err := s.store.ListLineItems(ctx, b.ID)
	if err != nil {
		return Basket{}, nil, err
	}
	if len(items) == 0 {
		return Basket{}, nil, ErrEmptyBasket
	}

	return b, items, nil
}
