// Package sqlite provides the SQLite-backed implementation of basket.Store.
//
// The active-basket invariant is enforced by the database itself: a partial
// unique index allows at most one active row per owner, so two racing
// find-or-create calls cannot both insert.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-api/internal/basket"
	"github.com/jcmexdev/shop-api/internal/catalog"
)

// schema is the DDL executed once on construction. Monetary columns are
// TEXT holding exact decimals; discount_percent is a fraction in [0, 1]
// with 2 fraction digits (wide enough for values like "0.10").
const schema = `
CREATE TABLE IF NOT EXISTS baskets (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id    INTEGER NOT NULL,
    active      INTEGER NOT NULL DEFAULT 1,
    created_at  TEXT    NOT NULL
);

-- The invariant, not a hint: one active basket per owner, enforced under
-- concurrent writers.
CREATE UNIQUE INDEX IF NOT EXISTS idx_baskets_one_active
    ON baskets(owner_id) WHERE active = 1;

CREATE TABLE IF NOT EXISTS basket_products (
    basket_id   INTEGER NOT NULL REFERENCES baskets(id)  ON DELETE CASCADE,
    product_id  INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    PRIMARY KEY (basket_id, product_id)
);

CREATE TABLE IF NOT EXISTS discounts (
    owner_id          INTEGER PRIMARY KEY,
    discount_percent  TEXT NOT NULL DEFAULT '0'
);
`

// Repository is the SQLite implementation of basket.Store.
type Repository struct {
	db *sql.DB
}

var _ basket.Store = (*Repository)(nil)

// New applies the basket schema and returns the repository. It shares the
// *sql.DB (and therefore the products table) with the catalog store.
func New(db *sql.DB) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: apply basket schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) GetOrCreateActiveBasket(ctx context.Context, ownerID int64) (basket.Basket, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return basket.Basket{}, fmt.Errorf("sqlite: begin find-or-create: %w", err)
	}
	defer tx.Rollback()

	b, found, err := activeBasketTx(ctx, tx, ownerID)
	if err != nil {
		return basket.Basket{}, err
	}
	if !found {
		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO baskets (owner_id, active, created_at) VALUES (?, 1, ?)`,
			ownerID, now.Format(time.RFC3339Nano))
		if err != nil {
			// A concurrent creator may have won the unique index race;
			// surfacing the constraint error is fine, the caller retries.
			return basket.Basket{}, fmt.Errorf("sqlite: create basket for owner %d: %w", ownerID, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return basket.Basket{}, err
		}
		b = basket.Basket{ID: id, OwnerID: ownerID, Active: true, CreatedAt: now}
	}

	if err := tx.Commit(); err != nil {
		return basket.Basket{}, fmt.Errorf("sqlite: commit find-or-create: %w", err)
	}
	return b, nil
}

func (r *Repository) ActiveBasket(ctx context.Context, ownerID int64) (basket.Basket, bool, error) {
	return activeBasketTx(ctx, r.db, ownerID)
}

// AddProduct validates availability and inserts the membership row inside
// one transaction, so the product cannot be unpublished between the check
// and the insert. INSERT OR IGNORE keeps membership a set.
func (r *Repository) AddProduct(ctx context.Context, basketID, productID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin add product: %w", err)
	}
	defer tx.Rollback()

	var available bool
	err = tx.QueryRowContext(ctx,
		`SELECT available FROM products WHERE id = ?`, productID).Scan(&available)
	if err == sql.ErrNoRows || (err == nil && !available) {
		return basket.ErrProductUnavailable
	}
	if err != nil {
		return fmt.Errorf("sqlite: check product %d: %w", productID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO basket_products (basket_id, product_id) VALUES (?, ?)`,
		basketID, productID)
	if err != nil {
		return fmt.Errorf("sqlite: add product %d to basket %d: %w", productID, basketID, err)
	}

	return tx.Commit()
}

func (r *Repository) ListLineItems(ctx context.Context, basketID int64) ([]catalog.Product, error) {
	const q = `
		SELECT p.id, p.name, p.price, p.available, p.category, p.description, COALESCE(p.shop_id, 0)
		FROM   basket_products bp
		JOIN   products p ON p.id = bp.product_id
		WHERE  bp.basket_id = ?
		ORDER  BY p.name, p.price`

	rows, err := r.db.QueryContext(ctx, q, basketID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list line items for basket %d: %w", basketID, err)
	}
	defer rows.Close()

	items := []catalog.Product{}
	for rows.Next() {
		var p catalog.Product
		var price string
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.Available, &p.Category, &p.Description, &p.ShopID); err != nil {
			return nil, fmt.Errorf("sqlite: scan line item: %w", err)
		}
		p.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("sqlite: line item %d has malformed price %q: %w", p.ID, price, err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *Repository) ListBaskets(ctx context.Context, ownerID int64) ([]basket.Basket, error) {
	const q = `
		SELECT id, owner_id, active, created_at
		FROM   baskets
		WHERE  owner_id = ?
		ORDER  BY id`

	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list baskets for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	baskets := []basket.Basket{}
	for rows.Next() {
		b, err := scanBasket(rows)
		if err != nil {
			return nil, err
		}
		baskets = append(baskets, b)
	}
	return baskets, rows.Err()
}

func (r *Repository) Discount(ctx context.Context, ownerID int64) (decimal.Decimal, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT discount_percent FROM discounts WHERE owner_id = ?`, ownerID).Scan(&raw)
	if err == sql.ErrNoRows {
		// Absence of a discount row is equivalent to a 0 discount.
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("sqlite: discount for owner %d: %w", ownerID, err)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sqlite: owner %d has malformed discount %q: %w", ownerID, raw, err)
	}
	return d, nil
}

// SetDiscount upserts the user's discount fraction. Used by seeding and
// tests; the HTTP layer has no discount mutation endpoint.
func (r *Repository) SetDiscount(ctx context.Context, ownerID int64, percent decimal.Decimal) error {
	const q = `
		INSERT INTO discounts (owner_id, discount_percent) VALUES (?, ?)
		ON CONFLICT(owner_id) DO UPDATE SET discount_percent = excluded.discount_percent`

	if _, err := r.db.ExecContext(ctx, q, ownerID, percent.String()); err != nil {
		return fmt.Errorf("sqlite: set discount for owner %d: %w", ownerID, err)
	}
	return nil
}

// Settle closes the basket. The WHERE active = 1 guard plus the rows-affected
// check turn a double settlement into ErrAlreadySettled instead of a silent
// second success.
func (r *Repository) Settle(ctx context.Context, basketID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE baskets SET active = 0 WHERE id = ? AND active = 1`, basketID)
	if err != nil {
		return fmt.Errorf("sqlite: settle basket %d: %w", basketID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return basket.ErrAlreadySettled
	}
	return nil
}

// querier covers *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func activeBasketTx(ctx context.Context, q querier, ownerID int64) (basket.Basket, bool, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, owner_id, active, created_at FROM baskets WHERE owner_id = ? AND active = 1`,
		ownerID)

	b, err := scanBasket(row)
	if err == sql.ErrNoRows {
		return basket.Basket{}, false, nil
	}
	if err != nil {
		return basket.Basket{}, false, fmt.Errorf("sqlite: active basket for owner %d: %w", ownerID, err)
	}
	return b, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBasket(row scanner) (basket.Basket, error) {
	var b basket.Basket
	var createdAt string
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Active, &createdAt); err != nil {
		return basket.Basket{}, err
	}

	t, err := parseRFC3339(createdAt)
	if err != nil {
		return basket.Basket{}, err
	}
	b.CreatedAt = t
	return b, nil
}
