package creditbook

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodega-pos/bodega/internal/ledger"
	"github.com/bodega-pos/bodega/internal/platform/db"
)

// Repository persists credit customers and settles debts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// PendingDebt is the locked view of a debt about to be settled.
type PendingDebt struct {
	SaleID       int64
	Total        float64
	CustomerName string
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	DebtForSettle(ctx context.Context, saleID int64) (PendingDebt, error)
	MarkSalePaid(ctx context.Context, saleID int64, at time.Time) error
	InsertSettlementMovement(ctx context.Context, m ledger.Movement) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("creditbook repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// DebtForSettle locks the sale row and verifies it is still pending.
func (t *txRepository) DebtForSettle(ctx context.Context, saleID int64) (PendingDebt, error) {
	var (
		debt   PendingDebt
		status string
	)
	err := t.tx.QueryRow(ctx, `SELECT s.id, s.status, s.total, COALESCE(c.name, '')
FROM sales s LEFT JOIN customers c ON c.id = s.customer_id
WHERE s.id=$1 AND s.payment_method='CREDIT'
FOR UPDATE OF s`, saleID).Scan(&debt.SaleID, &status, &debt.Total, &debt.CustomerName)
	if errors.Is(err, pgx.ErrNoRows) {
		return PendingDebt{}, ErrDebtNotFound
	}
	if err != nil {
		return PendingDebt{}, err
	}
	if status != "pending" {
		return PendingDebt{}, ErrAlreadySettled
	}
	return debt, nil
}

func (t *txRepository) MarkSalePaid(ctx context.Context, saleID int64, at time.Time) error {
	tag, err := t.tx.Exec(ctx, `UPDATE sales SET status='paid', settled_at=$2 WHERE id=$1 AND status='pending'`, saleID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadySettled
	}
	return nil
}

func (t *txRepository) InsertSettlementMovement(ctx context.Context, m ledger.Movement) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO ledger_movements (direction, category, amount, note, operator_id, occurred_at, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)`,
		m.Direction, m.Category, m.Amount, m.Note, m.OperatorID, m.OccurredAt, time.Now().UTC())
	return err
}

// ListDebtors groups pending credit sales per customer, oldest debt first
// inside each group, biggest debtor first across groups.
func (r *Repository) ListDebtors(ctx context.Context) ([]DebtorSummary, error) {
	rows, err := r.pool.Query(ctx, `SELECT c.id, c.name, COALESCE(c.phone, ''), c.created_at,
s.id, s.total, COALESCE(s.collateral_note, ''), s.created_at
FROM sales s
JOIN customers c ON c.id = s.customer_id
WHERE s.status='pending' AND s.payment_method='CREDIT'
ORDER BY c.id, s.created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byCustomer := map[int64]*DebtorSummary{}
	order := []int64{}
	for rows.Next() {
		var (
			c Customer
			d Debt
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt, &d.SaleID, &d.Total, &d.CollateralNote, &d.CreatedAt); err != nil {
			return nil, err
		}
		summary, ok := byCustomer[c.ID]
		if !ok {
			summary = &DebtorSummary{Customer: c}
			byCustomer[c.ID] = summary
			order = append(order, c.ID)
		}
		summary.Debts = append(summary.Debts, d)
		summary.Total += d.Total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	debtors := make([]DebtorSummary, 0, len(order))
	for _, id := range order {
		debtors = append(debtors, *byCustomer[id])
	}
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].Total > debtors[j].Total
	})
	return debtors, nil
}

// GetCustomer loads one customer.
func (r *Repository) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `SELECT id, name, COALESCE(phone, ''), created_at FROM customers WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrCustomerNotFound
	}
	return c, err
}

// InsertCustomer registers a customer.
func (r *Repository) InsertCustomer(ctx context.Context, c Customer) (Customer, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO customers (name, phone, created_at) VALUES ($1, NULLIF($2, ''), $3)
RETURNING id, created_at`, c.Name, c.Phone, time.Now().UTC()).Scan(&c.ID, &c.CreatedAt)
	return c, err
}

// OutstandingTotal sums every pending credit sale.
func (r *Repository) OutstandingTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total), 0) FROM sales WHERE status='pending' AND payment_method='CREDIT'`).Scan(&total)
	return total, err
}
