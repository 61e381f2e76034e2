// Package sqlite provides the SQLite-backed implementation of
// catalog.Repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-api/internal/catalog"
)

// schema is the DDL executed once on construction.
// Prices are stored as TEXT so the exact decimal representation survives
// the round trip — a REAL column would reintroduce binary floats.
const schema = `
CREATE TABLE IF NOT EXISTS shops (
    id     INTEGER PRIMARY KEY AUTOINCREMENT,
    name   TEXT NOT NULL,
    city   TEXT NOT NULL DEFAULT '',
    owner  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS products (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT    NOT NULL,
    price        TEXT    NOT NULL,
    available    INTEGER NOT NULL DEFAULT 0,
    category     TEXT    NOT NULL DEFAULT '',
    description  TEXT    NOT NULL DEFAULT '',
    shop_id      INTEGER REFERENCES shops(id) ON DELETE CASCADE
);

-- Canonical catalog ordering: every listing reads through this index.
CREATE INDEX IF NOT EXISTS idx_products_name_price ON products(name, price);
`

// Repository is the SQLite implementation of catalog.Repository.
type Repository struct {
	db *sql.DB
}

var _ catalog.Repository = (*Repository)(nil)

// New applies the catalog schema and returns the repository. The *sql.DB is
// shared with the other stores; see sqlitedb.Open.
func New(db *sql.DB) (*Repository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: apply catalog schema: %w", err)
	}
	return &Repository{db: db}, nil
}

const productColumns = `id, name, price, available, category, description, COALESCE(shop_id, 0)`

func (r *Repository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	q := fmt.Sprintf(`SELECT %s FROM products ORDER BY name, price`, productColumns)

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *Repository) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	q := fmt.Sprintf(`SELECT %s FROM products WHERE id = ?`, productColumns)

	p, err := scanProduct(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("sqlite: get product %d: %w", id, err)
	}
	return p, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p catalog.Product) (int64, error) {
	const q = `
		INSERT INTO products (name, price, available, category, description, shop_id)
		VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, q,
		p.Name,
		p.Price.StringFixed(2),
		p.Available,
		p.Category,
		p.Description,
		nullableID(p.ShopID),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: create product %q: %w", p.Name, err)
	}
	return res.LastInsertId()
}

func (r *Repository) UpdateProduct(ctx context.Context, id int64, upd catalog.ProductUpdate) error {
	p, err := r.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Available != nil {
		p.Available = *upd.Available
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.ShopID != nil {
		p.ShopID = *upd.ShopID
	}

	const q = `
		UPDATE products
		SET    name = ?, price = ?, available = ?, category = ?, description = ?, shop_id = ?
		WHERE  id = ?`

	_, err = r.db.ExecContext(ctx, q,
		p.Name,
		p.Price.StringFixed(2),
		p.Available,
		p.Category,
		p.Description,
		nullableID(p.ShopID),
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update product %d: %w", id, err)
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete product %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *Repository) ListShops(ctx context.Context) ([]catalog.Shop, error) {
	const q = `SELECT id, name, city, owner FROM shops ORDER BY name`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list shops: %w", err)
	}
	defer rows.Close()

	shops := []catalog.Shop{}
	for rows.Next() {
		var s catalog.Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.City, &s.Owner); err != nil {
			return nil, fmt.Errorf("sqlite: scan shop: %w", err)
		}
		shops = append(shops, s)
	}
	return shops, rows.Err()
}

func (r *Repository) GetShop(ctx context.Context, id int64) (catalog.Shop, error) {
	const q = `SELECT id, name, city, owner FROM shops WHERE id = ?`

	var s catalog.Shop
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.City, &s.Owner)
	if err == sql.ErrNoRows {
		return catalog.Shop{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Shop{}, fmt.Errorf("sqlite: get shop %d: %w", id, err)
	}
	return s, nil
}

func (r *Repository) CreateShop(ctx context.Context, s catalog.Shop) (int64, error) {
	const q = `INSERT INTO shops (name, city, owner) VALUES (?, ?, ?)`

	res, err := r.db.ExecContext(ctx, q, s.Name, s.City, s.Owner)
	if err != nil {
		return 0, fmt.Errorf("sqlite: create shop %q: %w", s.Name, err)
	}
	return res.LastInsertId()
}

func (r *Repository) UpdateShop(ctx context.Context, id int64, upd catalog.ShopUpdate) error {
	s, err := r.GetShop(ctx, id)
	if err != nil {
		return err
	}

	if upd.Name != nil {
		s.Name = *upd.Name
	}
	if upd.City != nil {
		s.City = *upd.City
	}
	if upd.Owner != nil {
		s.Owner = *upd.Owner
	}

	const q = `UPDATE shops SET name = ?, city = ?, owner = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, s.Name, s.City, s.Owner, id); err != nil {
		return fmt.Errorf("sqlite: update shop %d: %w", id, err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (catalog.Product, error) {
	var p catalog.Product
	var price string
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Available, &p.Category, &p.Description, &p.ShopID); err != nil {
		return catalog.Product{}, err
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("sqlite: product %d has malformed price %q: %w", p.ID, price, err)
	}
	p.Price = d
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]catalog.Product, error) {
	products := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// nullableID maps the zero id to NULL so the foreign key stays honest for
// products without a shop.
func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
