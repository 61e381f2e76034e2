package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-api/internal/pkg/cache"
)

// listTTL bounds how stale a cached product listing may be.
const listTTL = 30 * time.Second

// Service fronts the repository with a Redis read-through cache for the
// product listing, the hottest read path. Mutations invalidate the cache;
// single reads go straight to SQLite.
type Service struct {
	repo  Repository
	cache cache.Cache
}

func NewService(repo Repository, c cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

// cachedProduct is the cache wire format. decimal.Decimal marshals to a
// quoted string, so the exact price survives the Redis round trip.
type cachedProduct struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Available   bool   `json:"available"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ShopID      int64  `json:"shop_id"`
}

func (s *Service) listKey() string {
	return s.cache.GenerateKey("products", "all")
}

// ListProducts returns the catalog in its canonical (name, price) order,
// served from Redis when possible.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	if raw, err := s.cache.Get(ctx, s.listKey()); err == nil && raw != "" {
		products, err := decodeProducts(raw)
		if err == nil {
			return products, nil
		}
		slog.WarnContext(ctx, "dropping malformed catalog cache entry", "error", err)
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := encodeProducts(products); err == nil {
		// Cache population is best effort; a Redis outage must not take
		// down catalog reads.
		if err := s.cache.Set(ctx, s.listKey(), raw, listTTL); err != nil {
			slog.WarnContext(ctx, "failed to cache product listing", "error", err)
		}
	}

	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, p Product) (int64, error) {
	id, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	return id, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, upd ProductUpdate) error {
	if err := s.repo.UpdateProduct(ctx, id, upd); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) ListShops(ctx context.Context) ([]Shop, error) {
	return s.repo.ListShops(ctx)
}

func (s *Service) GetShop(ctx context.Context, id int64) (Shop, error) {
	return s.repo.GetShop(ctx, id)
}

func (s *Service) CreateShop(ctx context.Context, shop Shop) (int64, error) {
	return s.repo.CreateShop(ctx, shop)
}

func (s *Service) UpdateShop(ctx context.Context, id int64, upd ShopUpdate) error {
	return s.repo.UpdateShop(ctx, id, upd)
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, s.listKey()); err != nil {
		slog.WarnContext(ctx, "failed to invalidate product listing cache", "error", err)
	}
}

func encodeProducts(products []Product) (string, error) {
	out := make([]cachedProduct, len(products))
	for i, p := range products {
		out[i] = cachedProduct{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price.StringFixed(2),
			Available:   p.Available,
			Category:    p.Category,
			Description: p.Description,
			ShopID:      p.ShopID,
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeProducts(raw string) ([]Product, error) {
	var in []cachedProduct
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, err
	}

	products := make([]Product, len(in))
	for i, c := range in {
		price, err := decimal.NewFromString(c.Price)
		if err != nil {
			return nil, err
		}
		products[i] = Product{
			ID:          c.ID,
			Name:        c.Name,
			Price:       price,
			Available:   c.Available,
			Category:    c.Category,
			Description: c.Description,
			ShopID:      c.ShopID,
		}
	}
	return products, nil
}
