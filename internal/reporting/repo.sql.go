package reporting

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the aggregation reads against PostgreSQL. Every method is a
// single SELECT; sums happen in the database, not in Go.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) InventoryValuation(ctx context.Context) (float64, error) {
	if r == nil {
		return 0, errors.New("reporting repository not initialised")
	}
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(stock_qty * purchase_cost), 0)
FROM products WHERE is_active AND tracks_stock`).Scan(&total)
	return total, err
}

func (r *Repository) LedgerSum(ctx context.Context, direction, category string, from, to *time.Time) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0)
FROM ledger_movements
WHERE direction = $1
  AND ($2 = '' OR category = $2)
  AND occurred_at BETWEEN COALESCE($3, '-infinity') AND COALESCE($4, 'infinity')`,
		direction, category, nullTime(from), nullTime(to)).Scan(&total)
	return total, err
}

func (r *Repository) LedgerOutExcluding(ctx context.Context, excludeCategory string, from, to time.Time) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0)
FROM ledger_movements
WHERE direction = 'out' AND category <> $1 AND occurred_at BETWEEN $2 AND $3`,
		excludeCategory, from, to).Scan(&total)
	return total, err
}

func (r *Repository) CashSalesTotal(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total), 0)
FROM sales WHERE payment_method = 'CASH' AND created_at BETWEEN $1 AND $2`, from, to).Scan(&total)
	return total, err
}

func (r *Repository) MarginTotals(ctx context.Context, from, to time.Time) (MarginTotals, error) {
	var m MarginTotals
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(l.line_total), 0),
COALESCE(SUM(l.qty * l.unit_cost), 0),
COUNT(DISTINCT s.id)
FROM sales s
JOIN sale_lines l ON l.sale_id = s.id
WHERE s.created_at BETWEEN $1 AND $2`, from, to).
		Scan(&m.SalesTotal, &m.CostTotal, &m.SalesCount)
	return m, err
}

func (r *Repository) OutstandingCredit(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total), 0)
FROM sales WHERE status = 'pending' AND payment_method = 'CREDIT'`).Scan(&total)
	return total, err
}

func (r *Repository) RecentSales(ctx context.Context, limit int) ([]SaleDigest, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, total, payment_method, status, created_at
FROM sales ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	digests := []SaleDigest{}
	for rows.Next() {
		var d SaleDigest
		if err := rows.Scan(&d.SaleID, &d.Total, &d.PaymentMethod, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}

func (r *Repository) RecentExpenses(ctx context.Context, limit int) ([]ExpenseDigest, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, category, amount, COALESCE(note, ''), occurred_at
FROM ledger_movements WHERE direction = 'out'
ORDER BY occurred_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	digests := []ExpenseDigest{}
	for rows.Next() {
		var d ExpenseDigest
		if err := rows.Scan(&d.MovementID, &d.Category, &d.Amount, &d.Note, &d.OccurredAt); err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
