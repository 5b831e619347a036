// Package view applies the filter -> sort -> paginate pipeline to an
// evaluated batch. Apply is a pure function of (records, params);
// Session layers the page-reset discipline on top so view state can
// never drift out of sync with the batch or the active filter.
package view

import (
	"sort"
	"strings"

	"github.com/channelops/commission-review/internal/domain"
)

// SortField names a sortable column of the record table.
type SortField string

const (
	SortByID             SortField = "id"
	SortByTaxName        SortField = "tax_name"
	SortByEnterpriseName SortField = "enterprise_name"
	SortByActualAmount   SortField = "actual_amount"
	SortByPayAmount      SortField = "pay_amount"
	SortByCommission     SortField = "commission"
	SortByAPICommission  SortField = "api_commission"
	SortByDifference     SortField = "difference"
	SortByProfit         SortField = "profit"
	SortByPaymentTime    SortField = "payment_time"
	SortByBatchNo        SortField = "batch_no"
	SortByMonth          SortField = "month"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

const DefaultPageSize = 10

// Params is the full tuple of view state. One immutable value, never a
// set of independently mutated flags.
type Params struct {
	Search         string    `json:"search"`
	OnlyMismatched bool      `json:"only_mismatched"`
	SortField      SortField `json:"sort_field"`
	SortDir        Direction `json:"sort_dir"`
	Page           int       `json:"page"`
	PageSize       int       `json:"page_size"`
}

// DefaultParams returns the initial view state: unfiltered, batch order,
// first page.
func DefaultParams() Params {
	return Params{
		SortField: SortByID,
		SortDir:   Ascending,
		Page:      1,
		PageSize:  DefaultPageSize,
	}
}

// Result is one computed page plus the counts pagination needs.
type Result struct {
	Items         []domain.CommissionRecord `json:"items"`
	TotalFiltered int                       `json:"total_filtered"`
	TotalPages    int                       `json:"total_pages"`
	Page          int                       `json:"page"` // after clamping
}

// Apply runs the full pipeline: filter, stable sort, clamp-paginate.
func Apply(records []domain.CommissionRecord, p Params) Result {
	filtered := filterRecords(records, p)
	sortRecords(filtered, p)
	return paginate(filtered, p)
}

func filterRecords(records []domain.CommissionRecord, p Params) []domain.CommissionRecord {
	needle := strings.ToLower(strings.TrimSpace(p.Search))
	out := make([]domain.CommissionRecord, 0, len(records))
	for _, rec := range records {
		if p.OnlyMismatched && rec.IsMatched {
			continue
		}
		if needle != "" && !matchesSearch(rec, needle) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// matchesSearch checks a case-insensitive substring against the
// searchable text fields of a record.
func matchesSearch(rec domain.CommissionRecord, needle string) bool {
	for _, field := range []string{
		rec.TaxName,
		rec.EnterpriseName,
		rec.BatchNo,
		rec.BalanceNo,
		rec.Month,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func sortRecords(records []domain.CommissionRecord, p Params) {
	field := p.SortField
	if field == "" {
		field = SortByID
	}
	desc := p.SortDir == Descending

	sort.SliceStable(records, func(i, j int) bool {
		c := compareField(records[i], records[j], field)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compareField orders a before b when negative. Numeric fields compare
// numerically; textual fields compare by code point. A missing value
// (empty string, zero time) sorts before any present value.
func compareField(a, b domain.CommissionRecord, field SortField) int {
	switch field {
	case SortByID:
		return compareInt64(a.ID, b.ID)
	case SortByTaxName:
		return compareString(a.TaxName, b.TaxName)
	case SortByEnterpriseName:
		return compareString(a.EnterpriseName, b.EnterpriseName)
	case SortByActualAmount:
		return a.ActualAmount.Cmp(b.ActualAmount)
	case SortByPayAmount:
		return a.PayAmount.Cmp(b.PayAmount)
	case SortByCommission:
		return a.Commission.Cmp(b.Commission)
	case SortByAPICommission:
		return a.APICommission.Cmp(b.APICommission)
	case SortByDifference:
		return a.Difference.Cmp(b.Difference)
	case SortByProfit:
		return a.ChannelProfit.Cmp(b.ChannelProfit)
	case SortByPaymentTime:
		return compareTime(a, b)
	case SortByBatchNo:
		return compareString(a.BatchNo, b.BatchNo)
	case SortByMonth:
		return compareString(a.Month, b.Month)
	default:
		return compareInt64(a.ID, b.ID)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	// Empty means missing and sorts at the small end.
	if a == "" || b == "" {
		return boolCompare(a != "", b != "")
	}
	return strings.Compare(a, b)
}

func compareTime(a, b domain.CommissionRecord) int {
	az, bz := a.PaymentTime.IsZero(), b.PaymentTime.IsZero()
	if az || bz {
		return boolCompare(!az, !bz)
	}
	switch {
	case a.PaymentTime.Before(b.PaymentTime):
		return -1
	case a.PaymentTime.After(b.PaymentTime):
		return 1
	default:
		return 0
	}
}

func boolCompare(a, b bool) int {
	switch {
	case !a && b:
		return -1
	case a && !b:
		return 1
	default:
		return 0
	}
}

func paginate(filtered []domain.CommissionRecord, p Params) Result {
	size := p.PageSize
	if size < 1 {
		size = DefaultPageSize
	}

	total := len(filtered)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Result{
		Items:         filtered[start:end],
		TotalFiltered: total,
		TotalPages:    pages,
		Page:          page,
	}
}
