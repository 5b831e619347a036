// Package aggregate rolls an evaluated batch up along its three
// dimensions (tax jurisdiction, enterprise, calendar month) and derives
// the batch-level summary. All sums are exact decimal additions.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/channelops/commission-review/internal/domain"
	"github.com/channelops/commission-review/internal/ordmap"
)

// Result bundles everything derived from one batch. The three parts are
// always computed together from the same records so they can be swapped
// in as one unit.
type Result struct {
	Jurisdictions []domain.JurisdictionRollup `json:"jurisdictions"`
	Enterprises   []domain.EnterpriseRollup   `json:"enterprises"`
	Summary       domain.BatchSummary         `json:"summary"`
}

// RunningTotals annotates each record with the cumulative actual amount
// of all records before it (first record 0). Returns a new slice.
func RunningTotals(records []domain.CommissionRecord) []domain.CommissionRecord {
	out := make([]domain.CommissionRecord, len(records))
	running := decimal.Zero
	for i, rec := range records {
		rec.RunningTotal = running
		out[i] = rec
		running = running.Add(rec.ActualAmount)
	}
	return out
}

// Compute derives all rollups and the summary in a single pass over the
// batch. Grouping order is first-seen record order and is stable across
// repeated computations on the same batch. now anchors the summary's
// current-month and current-day figures.
func Compute(records []domain.CommissionRecord, now time.Time) Result {
	juris := ordmap.New[int64, domain.JurisdictionRollup]()
	ents := ordmap.New[int64, *enterpriseAcc]()

	summary := domain.BatchSummary{
		TotalProfit:     decimal.Zero,
		MonthProfit:     decimal.Zero,
		DayProfit:       decimal.Zero,
		TotalPayAmount:  decimal.Zero,
		DayPayAmount:    decimal.Zero,
		TotalCommission: decimal.Zero,
	}

	nowMonth := now.Format("2006-01")
	nowDay := now.Format("2006-01-02")

	for _, rec := range records {
		rec := rec

		juris.Upsert(rec.TaxID,
			func() domain.JurisdictionRollup {
				return domain.JurisdictionRollup{
					TaxID:         rec.TaxID,
					TaxName:       rec.TaxName,
					ActualAmount:  decimal.Zero,
					PayAmount:     decimal.Zero,
					ServerAmount:  decimal.Zero,
					Commission:    decimal.Zero,
					APICommission: decimal.Zero,
					Profit:        decimal.Zero,
				}
			},
			func(r domain.JurisdictionRollup) domain.JurisdictionRollup {
				r.ActualAmount = r.ActualAmount.Add(rec.ActualAmount)
				r.PayAmount = r.PayAmount.Add(rec.PayAmount)
				r.ServerAmount = r.ServerAmount.Add(rec.ServerAmount)
				r.Commission = r.Commission.Add(rec.Commission)
				r.APICommission = r.APICommission.Add(rec.APICommission)
				r.Profit = r.Profit.Add(rec.ChannelProfit)
				r.Count++
				return r
			})

		ents.Upsert(rec.EnterpriseID,
			func() *enterpriseAcc { return newEnterpriseAcc(rec.EnterpriseID, rec.EnterpriseName) },
			func(a *enterpriseAcc) *enterpriseAcc {
				a.add(rec)
				return a
			})

		summary.TotalProfit = summary.TotalProfit.Add(rec.ChannelProfit)
		summary.TotalPayAmount = summary.TotalPayAmount.Add(rec.PayAmount)
		summary.TotalCommission = summary.TotalCommission.Add(rec.Commission)
		summary.TotalCount++
		if !rec.IsMatched {
			summary.MismatchCount++
		}

		if !rec.PaymentTime.IsZero() {
			if rec.PaymentTime.Format("2006-01") == nowMonth {
				summary.MonthProfit = summary.MonthProfit.Add(rec.ChannelProfit)
			}
			if rec.PaymentTime.Format("2006-01-02") == nowDay {
				summary.DayProfit = summary.DayProfit.Add(rec.ChannelProfit)
				summary.DayPayAmount = summary.DayPayAmount.Add(rec.PayAmount)
			}
		}
	}

	if summary.TotalCount > 0 {
		matched := summary.TotalCount - summary.MismatchCount
		summary.MatchRate = float64(matched) / float64(summary.TotalCount)
	}
	summary.IsProfitable = summary.TotalProfit.GreaterThan(decimal.Zero)

	enterprises := make([]domain.EnterpriseRollup, 0, ents.Len())
	for _, acc := range ents.Values() {
		enterprises = append(enterprises, acc.rollup())
	}

	return Result{
		Jurisdictions: juris.Values(),
		Enterprises:   enterprises,
		Summary:       summary,
	}
}

// enterpriseAcc accumulates one enterprise's totals and its per-month
// buckets during the pass.
type enterpriseAcc struct {
	id     int64
	name   string
	pay    decimal.Decimal
	profit decimal.Decimal
	count  int
	months *ordmap.Map[string, domain.MonthlyBucket]
}

func newEnterpriseAcc(id int64, name string) *enterpriseAcc {
	return &enterpriseAcc{
		id:     id,
		name:   name,
		pay:    decimal.Zero,
		profit: decimal.Zero,
		months: ordmap.New[string, domain.MonthlyBucket](),
	}
}

func (a *enterpriseAcc) add(rec domain.CommissionRecord) {
	a.pay = a.pay.Add(rec.PayAmount)
	a.profit = a.profit.Add(rec.ChannelProfit)
	a.count++

	a.months.Upsert(rec.Month,
		func() domain.MonthlyBucket {
			return domain.MonthlyBucket{
				Month:     rec.Month,
				PayAmount: decimal.Zero,
				Profit:    decimal.Zero,
			}
		},
		func(b domain.MonthlyBucket) domain.MonthlyBucket {
			b.PayAmount = b.PayAmount.Add(rec.PayAmount)
			b.Profit = b.Profit.Add(rec.ChannelProfit)
			b.Count++
			return b
		})
}

func (a *enterpriseAcc) rollup() domain.EnterpriseRollup {
	return domain.EnterpriseRollup{
		EnterpriseID:   a.id,
		EnterpriseName: a.name,
		TotalPayAmount: a.pay,
		TotalProfit:    a.profit,
		TotalCount:     a.count,
		Months:         a.months.Values(),
	}
}
