package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/shop-api/internal/basket"
	"github.com/jcmexdev/shop-api/internal/catalog"
	catalogsqlite "github.com/jcmexdev/shop-api/internal/catalog/sqlite"
	"github.com/jcmexdev/shop-api/internal/pkg/sqlitedb"
)

func newTestStore(t *testing.T) (*Repository, *catalogsqlite.Repository, *sql.DB) {
	t.Helper()

	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	catalogRepo, err := catalogsqlite.New(db)
	require.NoError(t, err)

	repo, err := New(db)
	require.NoError(t, err)

	return repo, catalogRepo, db
}

func seedProduct(t *testing.T, repo *catalogsqlite.Repository, name, price string, available bool) int64 {
	t.Helper()
	id, err := repo.CreateProduct(context.Background(), catalog.Product{
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Available: available,
		Category:  "test",
	})
	require.NoError(t, err)
	return id
}

func TestGetOrCreateActiveBasket(t *testing.T) {
	repo, _, _ := newTestStore(t)
	ctx := context.Background()

	b1, err := repo.GetOrCreateActiveBasket(ctx, 1)
	require.NoError(t, err)
	assert.True(t, b1.Active)
	assert.EqualValues(t, 1, b1.OwnerID)

	// Second call returns the same basket, not a new one.
	b2, err := repo.GetOrCreateActiveBasket(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, b1.ID, b2.ID)

	// A different owner gets a different basket.
	b3, err := repo.GetOrCreateActiveBasket(ctx, 2)
	require.NoError(t, err)
	assert.NotEqual(t, b1.ID, b3.ID)
}

func TestActiveBasketUniquenessUnderConcurrency(t *testing.T) {
	repo, _, db := newTestStore(t)
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// The partial unique index may reject a racing insert; a retry
			// must then observe the winner's basket.
			if _, err := repo.GetOrCreateActiveBasket(ctx, 7); err != nil {
				_, err = repo.GetOrCreateActiveBasket(ctx, 7)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	var active int
	err := db.QueryRow(`SELECT COUNT(*) FROM baskets WHERE owner_id = 7 AND active = 1`).Scan(&active)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

func TestAddProductIdempotent(t *testing.T) {
	repo, catalogRepo, _ := newTestStore(t)
	ctx := context.Background()

	pid := seedProduct(t, catalogRepo, "Apple", "12.40", true)
	b, err := repo.GetOrCreateActiveBasket(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, repo.AddProduct(ctx, b.ID, pid))
	require.NoError(t, repo.AddProduct(ctx, b.ID, pid))

	items, err := repo.ListLineItems(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Apple", items[0].Name)
	assert.Equal(t, "12.40", items[0].Price.StringFixed(2))
}

func TestAddProductUnavailable(t *testing.T) {
	repo, catalogRepo, _ := newTestStore(t)
	ctx := context.Background()

	hidden := seedProduct(t, catalogRepo, "Hidden", "5.00", false)
	b, err := repo.GetOrCreateActiveBasket(ctx, 1)
	require.NoError(t, err)

	err = repo.AddProduct(ctx, b.ID, hidden)
	assert.ErrorIs(t, err, basket.ErrProductUnavailable)

	// Unknown id is the same condition as unavailable.
	err = repo.AddProduct(ctx, b.ID, 9999)
	assert.ErrorIs(t, err, basket.ErrProductUnavailable)

	items, err := repo.ListLineItems(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListLineItemsOrdering(t *testing.T) {
	repo, catalogRepo, _ := newTestStore(t)
	ctx := context.Background()

	ball := seedProduct(t, catalogRepo, "Ball", "20.34", true)
	appleCheap := seedProduct(t, catalogRepo, "Apple", "12.40", true)
	appleDear := seedProduct(t, catalogRepo, "Apple", "51.00", true)

	b, err := repo.GetOrCreateActiveBasket(ctx, 1)
	require.NoError(t, err)
	for _, pid := range []int64{ball, appleDear, appleCheap} {
		require.NoError(t, repo.AddProduct(ctx, b.ID, pid))
	}

	items, err := repo.ListLineItems(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Canonical catalog ordering: (name, price).
	assert.Equal(t, "Apple", items[0].Name)
	assert.Equal(t, "12.40", items[0].Price.StringFixed(2))
	assert.Equal(t, "Apple", items[1].Name)
	assert.Equal(t, "51.00", items[1].Price.StringFixed(2))
	assert.Equal(t, "Ball", items[2].Name)
}

func TestDiscountDefaultsToZero(t *testing.T) {
	repo, _, _ := newTestStore(t)
	ctx := context.Background()

	d, err := repo.Discount(ctx, 42)
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	require.NoError(t, repo.SetDiscount(ctx, 42, decimal.RequireFromString("0.10")))
	d, err = repo.Discount(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "0.10", d.StringFixed(2))
}

func TestSettleGuard(t *testing.T) {
	repo, _, _ := newTestStore(t)
	ctx := context.Background()

	b, err := repo.GetOrCreateActiveBasket(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, repo.Settle(ctx, b.ID))

	// The second settle must be rejected, not silently applied.
	err = repo.Settle(ctx, b.ID)
	assert.ErrorIs(t, err, basket.ErrAlreadySettled)

	_, found, err := repo.ActiveBasket(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSettledBasketStaysInHistory(t *testing.T) {
	repo, _, _ := newTestStore(t)
	ctx := context.Background()

	b1, err := repo.GetOrCreateActiveBasket(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, repo.Settle(ctx, b1.ID))

	b2, err := repo.GetOrCreateActiveBasket(ctx, 1)
	require.NoError(t, err)
	require.NotEqual(t, b1.ID, b2.ID)

	baskets, err := repo.ListBaskets(ctx, 1)
	require.NoError(t, err)
	require.Len(t, baskets, 2)
	assert.False(t, baskets[0].Active)
	assert.True(t, baskets[1].Active)
}
