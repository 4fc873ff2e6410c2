package shared

import (
	"context"
	"fmt"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
)

// Capabilities granted to operators. Mutating services check these directly,
// so an unauthorized write is refused even when the HTTP layer is bypassed.
const (
	CapManageCatalog  = "catalog.manage"
	CapViewFinancials = "financials.view"
	CapRingSales      = "sales.ring"
	CapRecordLedger   = "ledger.record"
	CapSettleCredit   = "credit.settle"
)

// RoleCapabilities maps an operator role to its capability set.
func RoleCapabilities(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{CapManageCatalog, CapViewFinancials, CapRingSales, CapRecordLedger, CapSettleCredit}
	case RoleCashier:
		return []string{CapRingSales, CapRecordLedger, CapSettleCredit}
	default:
		return nil
	}
}

// Operator roles.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// Operator identifies the authenticated cashier or admin on whose behalf a
// write is performed.
type Operator struct {
	ID           int64
	Name         string
	Role         string
	capabilities map[string]struct{}
}

// NewOperator builds an Operator with the capability set for its role.
func NewOperator(id int64, name, role string) Operator {
	caps := make(map[string]struct{})
	for _, c := range RoleCapabilities(role) {
		caps[c] = struct{}{}
	}
	return Operator{ID: id, Name: name, Role: role, capabilities: caps}
}

// Can reports whether the operator holds the capability.
func (o Operator) Can(capability string) bool {
	_, ok := o.capabilities[capability]
	return ok
}

type operatorContextKey struct{}

// ContextWithOperator stores the operator in context.
func ContextWithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// OperatorFromContext extracts the operator from context.
func OperatorFromContext(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(operatorContextKey{}).(Operator)
	return op, ok
}

// RequireCapability returns the context operator when it holds the capability.
func RequireCapability(ctx context.Context, capability string) (Operator, error) {
	op, ok := OperatorFromContext(ctx)
	if !ok {
		return Operator{}, fmt.Errorf("%w: no operator in context", httpx.ErrUnauthorized)
	}
	if !op.Can(capability) {
		return Operator{}, fmt.Errorf("%w: operator %d lacks %s", httpx.ErrForbidden, op.ID, capability)
	}
	return op, nil
}
