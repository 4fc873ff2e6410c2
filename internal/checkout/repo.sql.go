package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodega-pos/bodega/internal/platform/db"
)

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaleProduct is the slice of a product row checkout needs while holding the
// row lock.
type SaleProduct struct {
	ID           int64
	PurchaseCost float64
	StockQty     float64
	TracksStock  bool
	IsActive     bool
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	ProductForSale(ctx context.Context, id int64) (SaleProduct, error)
	SetStock(ctx context.Context, id int64, qty float64) error
	InsertSale(ctx context.Context, sale Sale) (int64, error)
	InsertSaleLines(ctx context.Context, saleID int64, lines []SaleLine) error
	InsertCustomer(ctx context.Context, name, phone string) (int64, error)
	EnsureCustomer(ctx context.Context, id int64) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("checkout repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (t *txRepository) ProductForSale(ctx context.Context, id int64) (SaleProduct, error) {
	var p SaleProduct
	err := t.tx.QueryRow(ctx, `SELECT id, purchase_cost, stock_qty, tracks_stock, is_active
FROM products WHERE id=$1 FOR UPDATE`, id).
		Scan(&p.ID, &p.PurchaseCost, &p.StockQty, &p.TracksStock, &p.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return SaleProduct{}, fmt.Errorf("%w: product %d", ErrProductUnavailable, id)
	}
	if err != nil {
		return SaleProduct{}, err
	}
	return p, nil
}

func (t *txRepository) SetStock(ctx context.Context, id int64, qty float64) error {
	_, err := t.tx.Exec(ctx, `UPDATE products SET stock_qty=ROUND($2::numeric, 3), updated_at=NOW() WHERE id=$1`, id, qty)
	return err
}

func (t *txRepository) InsertSale(ctx context.Context, sale Sale) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO sales (status, payment_method, total, customer_id, collateral_note, operator_id, created_at)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
RETURNING id`,
		sale.Status, sale.PaymentMethod, sale.Total, sale.CustomerID, sale.CollateralNote, sale.OperatorID, sale.CreatedAt).Scan(&id)
	return id, err
}

func (t *txRepository) InsertSaleLines(ctx context.Context, saleID int64, lines []SaleLine) error {
	for _, l := range lines {
		_, err := t.tx.Exec(ctx, `INSERT INTO sale_lines (sale_id, product_id, name, qty, unit_price, unit_cost, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			saleID, l.ProductID, l.Name, l.Qty, l.UnitPrice, l.UnitCost, l.LineTotal)
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *txRepository) InsertCustomer(ctx context.Context, name, phone string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO customers (name, phone, created_at) VALUES ($1, NULLIF($2, ''), $3) RETURNING id`,
		name, phone, time.Now().UTC()).Scan(&id)
	return id, err
}

func (t *txRepository) EnsureCustomer(ctx context.Context, id int64) error {
	var exists bool
	if err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: customer %d", ErrCustomerRequired, id)
	}
	return nil
}

const saleColumns = `s.id, s.status, s.payment_method, s.total, s.customer_id,
COALESCE(c.name, ''), COALESCE(s.collateral_note, ''), s.operator_id, s.created_at`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.Status, &s.PaymentMethod, &s.Total, &s.CustomerID,
		&s.CustomerName, &s.CollateralNote, &s.OperatorID, &s.CreatedAt)
	return s, err
}

// GetSale loads a sale header with its lines.
func (r *Repository) GetSale(ctx context.Context, id int64) (Sale, error) {
	sale, err := scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+`
FROM sales s LEFT JOIN customers c ON c.id = s.customer_id
WHERE s.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrSaleNotFound
	}
	if err != nil {
		return Sale{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, sale_id, product_id, name, qty, unit_price, unit_cost, line_total
FROM sale_lines WHERE sale_id=$1 ORDER BY id`, id)
	if err != nil {
		return Sale{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Name, &l.Qty, &l.UnitPrice, &l.UnitCost, &l.LineTotal); err != nil {
			return Sale{}, err
		}
		sale.Lines = append(sale.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return Sale{}, err
	}
	return sale, nil
}

// ListRecent returns the latest sales without their lines.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+`
FROM sales s LEFT JOIN customers c ON c.id = s.customer_id
ORDER BY s.created_at DESC, s.id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sales := []Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
