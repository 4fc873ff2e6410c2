package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, COALESCE(barcode, ''), name, COALESCE(category, ''), unit, purchase_cost, sale_price, tracks_stock, stock_qty, min_stock, expires_on, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Barcode, &p.Name, &p.Category, &p.Unit, &p.PurchaseCost, &p.SalePrice,
		&p.TracksStock, &p.StockQty, &p.MinStock, &p.ExpiresOn, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repository) Insert(ctx context.Context, p Product) (Product, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO products (barcode, name, category, unit, purchase_cost, sale_price, tracks_stock, stock_qty, min_stock, expires_on, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,TRUE,NOW(),NOW())
RETURNING `+productColumns,
		nullString(p.Barcode), p.Name, nullString(p.Category), string(p.Unit), p.PurchaseCost, p.SalePrice,
		p.TracksStock, p.StockQty, p.MinStock, p.ExpiresOn)
	saved, err := scanProduct(row)
	if err != nil {
		return Product{}, mapBarcodeConflict(err)
	}
	return saved, nil
}

func (r *Repository) Update(ctx context.Context, p Product) (Product, error) {
	row := r.pool.QueryRow(ctx, `UPDATE products SET barcode=$2, name=$3, category=$4, unit=$5, purchase_cost=$6, sale_price=$7, tracks_stock=$8, stock_qty=$9, min_stock=$10, expires_on=$11, is_active=TRUE, updated_at=NOW()
WHERE id=$1
RETURNING `+productColumns,
		p.ID, nullString(p.Barcode), p.Name, nullString(p.Category), string(p.Unit), p.PurchaseCost, p.SalePrice,
		p.TracksStock, p.StockQty, p.MinStock, p.ExpiresOn)
	saved, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, mapBarcodeConflict(err)
	}
	return saved, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *Repository) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode=$1`, barcode)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *Repository) AddStock(ctx context.Context, id int64, qty float64) (Product, error) {
	row := r.pool.QueryRow(ctx, `UPDATE products
SET stock_qty = ROUND((stock_qty + $2)::numeric, 3), updated_at = NOW()
WHERE id=$1
RETURNING `+productColumns, id, qty)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *Repository) ListActive(ctx context.Context, filter string) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active`
	args := []any{}
	if filter != "" {
		query += ` AND (name ILIKE $1 OR category ILIKE $1 OR barcode ILIKE $1)`
		args = append(args, "%"+filter+"%")
	}
	query += ` ORDER BY name ASC, id ASC`
	return r.queryProducts(ctx, query, args...)
}

func (r *Repository) ListLowStock(ctx context.Context) ([]Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+`
FROM products
WHERE is_active AND tracks_stock AND stock_qty <= min_stock
ORDER BY stock_qty ASC, name ASC`)
}

func (r *Repository) ListExpiring(ctx context.Context) ([]Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+`
FROM products
WHERE is_active AND expires_on IS NOT NULL
ORDER BY expires_on ASC, id ASC`)
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func mapBarcodeConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrBarcodeTaken
	}
	return err
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
