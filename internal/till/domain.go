package till

import (
	"fmt"
	"math"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
	"github.com/bodega-pos/bodega/internal/shared"
)

// Status classifies a blind count against the expected drawer amount.
type Status string

const (
	StatusOK    Status = "OK"
	StatusShort Status = "SHORT"
	StatusOver  Status = "OVER"
)

// Tolerance is the absolute difference, in currency units, under which a
// count is still considered clean.
const Tolerance = 0.5

// Reconciliation is the outcome of one blind count. It is a pure computation;
// no ledger entry is written for the count itself. A real shortage is
// corrected afterwards with a manual ledger movement.
type Reconciliation struct {
	Period     shared.Period `json:"period"`
	Expected   float64       `json:"expected"`
	Counted    float64       `json:"counted"`
	Difference float64       `json:"difference"`
	Status     Status        `json:"status"`

	// Display strings formatted for the operator's locale.
	ExpectedDisplay   string `json:"expected_display"`
	CountedDisplay    string `json:"counted_display"`
	DifferenceDisplay string `json:"difference_display"`
}

// Classify applies the tolerance band to a difference. The band is open:
// a difference of exactly the tolerance already counts as a discrepancy.
func Classify(difference float64) Status {
	if math.Abs(difference) < Tolerance {
		return StatusOK
	}
	if difference < 0 {
		return StatusShort
	}
	return StatusOver
}

// ErrNegativeCount rejects a physically impossible count.
var ErrNegativeCount = fmt.Errorf("%w: counted amount cannot be negative", httpx.ErrValidation)
