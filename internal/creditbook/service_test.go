package creditbook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bodega-pos/bodega/internal/ledger"
	"github.com/bodega-pos/bodega/internal/shared"
)

type debtRecord struct {
	total      float64
	customerID int64
	status     string
}

type memoryRepo struct {
	customers map[int64]Customer
	debts     map[int64]*debtRecord
	movements []ledger.Movement
	nextCust  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		customers: make(map[int64]Customer),
		debts:     make(map[int64]*debtRecord),
	}
}

func (r *memoryRepo) addCustomer(name string) int64 {
	r.nextCust++
	r.customers[r.nextCust] = Customer{ID: r.nextCust, Name: name, CreatedAt: time.Now()}
	return r.nextCust
}

func (r *memoryRepo) addDebt(saleID, customerID int64, total float64) {
	r.debts[saleID] = &debtRecord{total: total, customerID: customerID, status: "pending"}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	statuses := map[int64]string{}
	for id, d := range r.debts {
		statuses[id] = d.status
	}
	moves := len(r.movements)
	if err := fn(ctx, r); err != nil {
		for id, st := range statuses {
			r.debts[id].status = st
		}
		r.movements = r.movements[:moves]
		return err
	}
	return nil
}

func (r *memoryRepo) DebtForSettle(ctx context.Context, saleID int64) (PendingDebt, error) {
	d, ok := r.debts[saleID]
	if !ok {
		return PendingDebt{}, ErrDebtNotFound
	}
	if d.status != "pending" {
		return PendingDebt{}, ErrAlreadySettled
	}
	return PendingDebt{SaleID: saleID, Total: d.total, CustomerName: r.customers[d.customerID].Name}, nil
}

func (r *memoryRepo) MarkSalePaid(ctx context.Context, saleID int64, at time.Time) error {
	d, ok := r.debts[saleID]
	if !ok || d.status != "pending" {
		return ErrAlreadySettled
	}
	d.status = "paid"
	return nil
}

func (r *memoryRepo) InsertSettlementMovement(ctx context.Context, m ledger.Movement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *memoryRepo) ListDebtors(ctx context.Context) ([]DebtorSummary, error) {
	byCustomer := map[int64]*DebtorSummary{}
	for saleID, d := range r.debts {
		if d.status != "pending" {
			continue
		}
		s, ok := byCustomer[d.customerID]
		if !ok {
			s = &DebtorSummary{Customer: r.customers[d.customerID]}
			byCustomer[d.customerID] = s
		}
		s.Debts = append(s.Debts, Debt{SaleID: saleID, Total: d.total})
		s.Total += d.total
	}
	result := []DebtorSummary{}
	for _, s := range byCustomer {
		result = append(result, *s)
	}
	return result, nil
}

func (r *memoryRepo) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return Customer{}, ErrCustomerNotFound
	}
	return c, nil
}

func (r *memoryRepo) InsertCustomer(ctx context.Context, c Customer) (Customer, error) {
	r.nextCust++
	c.ID = r.nextCust
	c.CreatedAt = time.Now()
	r.customers[c.ID] = c
	return c, nil
}

func (r *memoryRepo) OutstandingTotal(ctx context.Context) (float64, error) {
	var total float64
	for _, d := range r.debts {
		if d.status == "pending" {
			total += d.total
		}
	}
	return total, nil
}

func cashierCtx() context.Context {
	op := shared.NewOperator(2, "Beto", shared.RoleCashier)
	return shared.ContextWithOperator(context.Background(), op)
}

func TestSettleDebtWritesLedgerEntry(t *testing.T) {
	repo := newMemoryRepo()
	marta := repo.addCustomer("Doña Marta")
	repo.addDebt(7, marta, 20)
	svc := NewService(repo, nil, nil)

	settlement, err := svc.SettleDebt(cashierCtx(), 7)
	require.NoError(t, err)
	require.InDelta(t, 20.0, settlement.Amount, 0.0001)
	require.Equal(t, "Doña Marta", settlement.Customer)

	require.Equal(t, "paid", repo.debts[7].status)
	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	require.Equal(t, ledger.DirectionIn, m.Direction)
	require.Equal(t, ledger.CategoryDebtSettlement, m.Category)
	require.InDelta(t, 20.0, m.Amount, 0.0001)
	require.Contains(t, m.Note, "#7")
}

func TestSettleDebtTwiceConflicts(t *testing.T) {
	repo := newMemoryRepo()
	marta := repo.addCustomer("Doña Marta")
	repo.addDebt(7, marta, 20)
	svc := NewService(repo, nil, nil)

	_, err := svc.SettleDebt(cashierCtx(), 7)
	require.NoError(t, err)

	_, err = svc.SettleDebt(cashierCtx(), 7)
	require.ErrorIs(t, err, ErrAlreadySettled)
	// Only the first settle may touch the ledger.
	require.Len(t, repo.movements, 1)
}

func TestSettleUnknownDebt(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	_, err := svc.SettleDebt(cashierCtx(), 99)
	require.ErrorIs(t, err, ErrDebtNotFound)
}

func TestSettleRollsBackOnLedgerFailure(t *testing.T) {
	repo := newMemoryRepo()
	marta := repo.addCustomer("Doña Marta")
	repo.addDebt(7, marta, 20)
	failing := &failingLedgerRepo{memoryRepo: repo}
	svc := NewService(failing, nil, nil)

	_, err := svc.SettleDebt(cashierCtx(), 7)
	require.Error(t, err)
	require.Equal(t, "pending", repo.debts[7].status)
	require.Empty(t, repo.movements)
}

type failingLedgerRepo struct {
	*memoryRepo
}

func (r *failingLedgerRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return r.memoryRepo.WithTx(ctx, func(ctx context.Context, _ TxRepository) error {
		return fn(ctx, r)
	})
}

func (r *failingLedgerRepo) InsertSettlementMovement(ctx context.Context, m ledger.Movement) error {
	return context.DeadlineExceeded
}

func TestCreateCustomerValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	_, err := svc.CreateCustomer(cashierCtx(), "   ", "")
	require.ErrorIs(t, err, ErrNameRequired)

	c, err := svc.CreateCustomer(cashierCtx(), " Don Pepe ", " 555-1234 ")
	require.NoError(t, err)
	require.Equal(t, "Don Pepe", c.Name)
	require.Equal(t, "555-1234", c.Phone)
}

func TestOutstandingTotal(t *testing.T) {
	repo := newMemoryRepo()
	marta := repo.addCustomer("Doña Marta")
	pepe := repo.addCustomer("Don Pepe")
	repo.addDebt(1, marta, 20)
	repo.addDebt(2, marta, 15)
	repo.addDebt(3, pepe, 8)
	svc := NewService(repo, nil, nil)

	total, err := svc.OutstandingTotal(cashierCtx())
	require.NoError(t, err)
	require.InDelta(t, 43.0, total, 0.0001)

	_, err = svc.SettleDebt(cashierCtx(), 2)
	require.NoError(t, err)

	total, err = svc.OutstandingTotal(cashierCtx())
	require.NoError(t, err)
	require.InDelta(t, 28.0, total, 0.0001)
}
