package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelops/commission-review/internal/domain"
)

func rec(id int64, commission, api string) domain.CommissionRecord {
	return domain.CommissionRecord{
		ID:            id,
		Commission:    decimal.RequireFromString(commission),
		APICommission: decimal.RequireFromString(api),
	}
}

func TestBatchVerdicts(t *testing.T) {
	records := []domain.CommissionRecord{
		rec(1, "100.00", "100.00"),
		rec(2, "50.00", "50.05"),
		rec(3, "30.00", "40.00"),
	}
	tol := decimal.RequireFromString("0.10")

	out := Batch(records, tol)
	require.Len(t, out, 3)

	assert.True(t, out[0].IsMatched)
	assert.True(t, out[1].IsMatched)
	assert.False(t, out[2].IsMatched)
}

func TestDifferenceIsSigned(t *testing.T) {
	out := Evaluate(rec(1, "50.00", "50.05"), decimal.RequireFromString("0.10"))
	assert.True(t, out.Difference.Equal(decimal.RequireFromString("-0.05")), "got %s", out.Difference)

	out = Evaluate(rec(2, "40.00", "30.00"), decimal.Zero)
	assert.True(t, out.Difference.Equal(decimal.RequireFromString("10.00")))
}

func TestZeroToleranceRequiresExactEquality(t *testing.T) {
	assert.True(t, Evaluate(rec(1, "12.34", "12.34"), decimal.Zero).IsMatched)
	assert.False(t, Evaluate(rec(2, "12.34", "12.35"), decimal.Zero).IsMatched)
	assert.False(t, Evaluate(rec(3, "12.35", "12.34"), decimal.Zero).IsMatched)
}

func TestBoundaryDifferenceMatches(t *testing.T) {
	// |difference| == tolerance is a match, not a mismatch.
	out := Evaluate(rec(1, "50.00", "50.10"), decimal.RequireFromString("0.10"))
	assert.True(t, out.IsMatched)
}

func TestRecordToleranceOverrideWins(t *testing.T) {
	wide := decimal.RequireFromString("5.00")
	r := rec(1, "30.00", "33.00")
	r.ToleranceOverride = &wide

	out := Evaluate(r, decimal.Zero)
	assert.True(t, out.IsMatched)
	assert.True(t, out.Tolerance.Equal(wide))
}

func TestSuppliedVerdictIsRecomputed(t *testing.T) {
	r := rec(1, "30.00", "40.00")
	r.IsMatched = true // pre-supplied truth must not survive

	out := Evaluate(r, decimal.RequireFromString("0.10"))
	assert.False(t, out.IsMatched)
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	r := rec(1, "30.00", "40.00")
	_ = Evaluate(r, decimal.Zero)
	assert.True(t, r.Difference.IsZero())
	assert.False(t, r.IsMatched)
}
