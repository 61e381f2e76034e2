package catalog_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/shop-api/internal/catalog"
	catalogsqlite "github.com/jcmexdev/shop-api/internal/catalog/sqlite"
	"github.com/jcmexdev/shop-api/internal/pkg/sqlitedb"
)

// fakeCache is an in-memory cache.Cache so the tests need no Redis.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string

	sets, gets, deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	return f.data[key], nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeCache) GenerateKey(operation, key string) string {
	return "test:" + operation + ":" + key
}

func newService(t *testing.T) (*catalog.Service, *fakeCache, *catalogsqlite.Repository) {
	t.Helper()

	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := catalogsqlite.New(db)
	require.NoError(t, err)

	fc := newFakeCache()
	return catalog.NewService(repo, fc), fc, repo
}

func TestListProductsPopulatesCache(t *testing.T) {
	svc, fc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, catalog.Product{
		Name:      "apple",
		Price:     decimal.RequireFromString("12.40"),
		Available: true,
	})
	require.NoError(t, err)

	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 1, fc.sets, "first listing should populate the cache")

	// The second listing is served from the cache and must be identical,
	// price included.
	again, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 1, fc.sets)
	assert.Equal(t, "12.40", again[0].Price.StringFixed(2))
	assert.True(t, again[0].Available)
}

func TestMutationsInvalidateListing(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	id, err := svc.CreateProduct(ctx, catalog.Product{
		Name:  "apple",
		Price: decimal.RequireFromString("12.40"),
	})
	require.NoError(t, err)

	_, err = svc.ListProducts(ctx)
	require.NoError(t, err)

	available := true
	require.NoError(t, svc.UpdateProduct(ctx, id, catalog.ProductUpdate{Available: &available}))

	// The next listing must reflect the update, not the cached copy.
	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].Available)

	require.NoError(t, svc.DeleteProduct(ctx, id))
	products, err = svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc, _, _ := newService(t)
	name := "ghost"
	err := svc.UpdateProduct(context.Background(), 404, catalog.ProductUpdate{Name: &name})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestShopCRUD(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	id, err := svc.CreateShop(ctx, catalog.Shop{Name: "Grocery", City: "Warsaw", Owner: "Alice"})
	require.NoError(t, err)

	shop, err := svc.GetShop(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Grocery", shop.Name)

	city := "Krakow"
	require.NoError(t, svc.UpdateShop(ctx, id, catalog.ShopUpdate{City: &city}))
	shop, err = svc.GetShop(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Krakow", shop.City)
	assert.Equal(t, "Alice", shop.Owner)

	err = svc.UpdateShop(ctx, 9999, catalog.ShopUpdate{City: &city})
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	shops, err := svc.ListShops(ctx)
	require.NoError(t, err)
	assert.Len(t, shops, 1)
}
