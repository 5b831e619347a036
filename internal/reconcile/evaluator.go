// Package reconcile computes the match verdict for each commission
// record: the signed difference between the internally computed and the
// externally reported commission, checked against a tolerance.
package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/channelops/commission-review/internal/domain"
)

// Evaluate annotates a single record with its difference, effective
// tolerance and verdict. The batch tolerance is an explicit required
// input; a record-level override wins when present. Tolerance zero means
// exact equality. Pure: the input record is copied, never mutated.
func Evaluate(rec domain.CommissionRecord, batchTolerance decimal.Decimal) domain.CommissionRecord {
	tol := batchTolerance
	if rec.ToleranceOverride != nil {
		tol = *rec.ToleranceOverride
	}

	rec.Difference = rec.Commission.Sub(rec.APICommission)
	rec.Tolerance = tol
	rec.IsMatched = rec.Difference.Abs().LessThanOrEqual(tol)
	return rec
}

// Batch evaluates every record independently; evaluating record N never
// depends on any other record. Returns a new slice in input order.
func Batch(records []domain.CommissionRecord, batchTolerance decimal.Decimal) []domain.CommissionRecord {
	out := make([]domain.CommissionRecord, len(records))
	for i, rec := range records {
		out[i] = Evaluate(rec, batchTolerance)
	}
	return out
}
