package view

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/channelops/commission-review/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mkRecord(id int64, ent, batchNo string, pay string, matched bool) domain.CommissionRecord {
	return domain.CommissionRecord{
		ID:             id,
		TaxName:        "Hainan FTZ",
		EnterpriseName: ent,
		BatchNo:        batchNo,
		BalanceNo:      fmt.Sprintf("S-%04d", id),
		Month:          "2025-07",
		PayAmount:      dec(pay),
		IsMatched:      matched,
		PaymentTime:    time.Date(2025, 7, int(id%28)+1, 9, 0, 0, 0, time.UTC),
	}
}

func batchOf(n int) []domain.CommissionRecord {
	out := make([]domain.CommissionRecord, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, mkRecord(int64(i), fmt.Sprintf("Ent%02d", i%4), fmt.Sprintf("B-%03d", i), "100.00", i%3 != 0))
	}
	return out
}

func TestFilterSearchIsCaseInsensitiveSubstring(t *testing.T) {
	records := []domain.CommissionRecord{
		mkRecord(1, "Acme Labour", "B-001", "10.00", true),
		mkRecord(2, "Zenith Works", "B-002", "20.00", true),
	}

	res := Apply(records, Params{Search: "aCmE", PageSize: 10, Page: 1})
	require.Len(t, res.Items, 1)
	assert.Equal(t, int64(1), res.Items[0].ID)

	// Balance number and month key are searchable too.
	res = Apply(records, Params{Search: "s-0002", PageSize: 10, Page: 1})
	require.Len(t, res.Items, 1)
	assert.Equal(t, int64(2), res.Items[0].ID)

	res = Apply(records, Params{Search: "2025-07", PageSize: 10, Page: 1})
	assert.Len(t, res.Items, 2)
}

func TestFilterOnlyMismatched(t *testing.T) {
	records := []domain.CommissionRecord{
		mkRecord(1, "A", "B-001", "10.00", true),
		mkRecord(2, "B", "B-002", "10.00", false),
		mkRecord(3, "C", "B-003", "10.00", false),
	}

	res := Apply(records, Params{OnlyMismatched: true, PageSize: 10, Page: 1})
	require.Len(t, res.Items, 2)
	assert.Equal(t, int64(2), res.Items[0].ID)
	assert.Equal(t, int64(3), res.Items[1].ID)
}

func TestSortStabilityAcrossDirectionToggle(t *testing.T) {
	// Equal pay amounts: relative order must match post-filter order and
	// survive toggling the direction back and forth.
	records := []domain.CommissionRecord{
		mkRecord(5, "A", "B-005", "100.00", true),
		mkRecord(2, "B", "B-002", "100.00", true),
		mkRecord(9, "C", "B-009", "100.00", true),
	}

	p := Params{SortField: SortByPayAmount, SortDir: Ascending, PageSize: 10, Page: 1}
	res := Apply(records, p)
	assert.Equal(t, []int64{5, 2, 9}, ids(res.Items))

	p.SortDir = Descending
	res = Apply(records, p)
	assert.Equal(t, []int64{5, 2, 9}, ids(res.Items))

	p.SortDir = Ascending
	res = Apply(records, p)
	assert.Equal(t, []int64{5, 2, 9}, ids(res.Items))
}

func TestSortMissingValuesAtSmallEnd(t *testing.T) {
	noTime := mkRecord(1, "A", "B-001", "10.00", true)
	noTime.PaymentTime = time.Time{}
	withTime := mkRecord(2, "B", "B-002", "10.00", true)

	p := Params{SortField: SortByPaymentTime, SortDir: Ascending, PageSize: 10, Page: 1}
	res := Apply([]domain.CommissionRecord{withTime, noTime}, p)
	assert.Equal(t, []int64{1, 2}, ids(res.Items))

	p.SortDir = Descending
	res = Apply([]domain.CommissionRecord{withTime, noTime}, p)
	assert.Equal(t, []int64{2, 1}, ids(res.Items))

	// Same rule for empty strings.
	blank := mkRecord(3, "", "B-003", "10.00", true)
	p = Params{SortField: SortByEnterpriseName, SortDir: Ascending, PageSize: 10, Page: 1}
	res = Apply([]domain.CommissionRecord{withTime, blank}, p)
	assert.Equal(t, []int64{3, 2}, ids(res.Items))
}

func TestPaginationCountsAndClamping(t *testing.T) {
	records := batchOf(25)

	p := Params{PageSize: 10, Page: 1}
	res := Apply(records, p)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 25, res.TotalFiltered)
	assert.Len(t, res.Items, 10)

	// Out-of-range page clamps, never errors.
	p.Page = 5
	res = Apply(records, p)
	assert.Equal(t, 3, res.Page)
	assert.Len(t, res.Items, 5)

	p.Page = -2
	res = Apply(records, p)
	assert.Equal(t, 1, res.Page)
}

func TestPagesConcatenateToFullList(t *testing.T) {
	records := batchOf(23)
	p := Params{SortField: SortByID, SortDir: Descending, PageSize: 7, Page: 1}

	var got []int64
	first := Apply(records, p)
	for page := 1; page <= first.TotalPages; page++ {
		p.Page = page
		got = append(got, ids(Apply(records, p).Items)...)
	}

	require.Len(t, got, 23)
	for i := 0; i < 23; i++ {
		assert.Equal(t, int64(23-i), got[i])
	}
}

func TestEmptyFilteredSetHasOnePage(t *testing.T) {
	res := Apply(nil, Params{PageSize: 10, Page: 1})
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, 0, res.TotalFiltered)
	assert.Empty(t, res.Items)

	res = Apply(batchOf(5), Params{Search: "no-such-thing", PageSize: 10, Page: 1})
	assert.Equal(t, 1, res.TotalPages)
	assert.Empty(t, res.Items)
}

func ids(records []domain.CommissionRecord) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
