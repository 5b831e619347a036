// Package normalize converts raw upstream commission rows into canonical
// CommissionRecords. It is the only place loosely-typed data is handled;
// everything downstream works on the validated form.
package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/channelops/commission-review/internal/domain"
)

// ErrMissingIdentity is returned when a raw record carries no usable id.
// One unidentifiable record fails the whole batch; partial acceptance
// would leave the review screen silently incomplete.
var ErrMissingIdentity = errors.New("record missing identity")

// Stats reports what normalization had to paper over. Coerced counts the
// numeric fields that were missing or unparseable and became zero; the
// caller decides whether that is worth logging.
type Stats struct {
	Records int
	Coerced int
}

// Time layouts accepted for payment_over_time, most specific first.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Batch validates and coerces a raw batch. Order is preserved. A record
// with no identity aborts the whole batch with ErrMissingIdentity;
// missing or malformed numeric fields coerce to zero and are counted in
// Stats instead of failing, since upstream data is not fully trusted.
func Batch(raw []domain.RawRecord) ([]domain.CommissionRecord, Stats, error) {
	var stats Stats
	records := make([]domain.CommissionRecord, 0, len(raw))

	for i, r := range raw {
		id, err := parseID(r.ID)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("record %d: %w", i, ErrMissingIdentity)
		}

		rec := domain.CommissionRecord{
			ID:               id,
			TaxName:          r.TaxName,
			EnterpriseName:   r.EnterpriseName,
			RawCommission:    r.RawCommission,
			RawChannelProfit: r.RawChannelProfit,
			BatchNo:          r.BatchNo,
			BalanceNo:        r.BalanceNo,
			RateConfig:       r.RateConfig,
			RateDetail:       r.RateDetail,
		}

		rec.TaxID = int64Field(r.TaxID, &stats)
		rec.EnterpriseID = int64Field(r.EnterpriseID, &stats)

		rec.ActualAmount = amountField(r.ActualAmount, &stats)
		rec.PayAmount = amountField(r.PayAmount, &stats)
		rec.ServerAmount = amountField(r.ServerAmount, &stats)
		rec.Commission = amountField(r.Commission, &stats)
		rec.APICommission = amountField(r.APICommission, &stats)
		rec.ChannelProfit = amountField(r.ChannelProfit, &stats)
		rec.HistoryAmount = amountField(r.HistoryAmount, &stats)

		if r.Tolerance != "" {
			if tol, err := decimal.NewFromString(r.Tolerance.String()); err == nil {
				rec.ToleranceOverride = &tol
			} else {
				stats.Coerced++
			}
		}

		if t, ok := parseTime(r.PaymentOverTime); ok {
			rec.PaymentTime = t
			rec.Month = t.Format("2006-01")
		}

		// r.IsMatched is intentionally dropped here; the evaluator owns
		// the verdict.

		records = append(records, rec)
		stats.Records++
	}

	return records, stats, nil
}

func parseID(n domain.RawNumber) (int64, error) {
	if n == "" {
		return 0, errors.New("empty")
	}
	id, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", n.String())
	}
	return id, nil
}

func int64Field(n domain.RawNumber, stats *Stats) int64 {
	if n == "" {
		stats.Coerced++
		return 0
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		stats.Coerced++
		return 0
	}
	return v
}

func amountField(n domain.RawNumber, stats *Stats) decimal.Decimal {
	if n == "" {
		stats.Coerced++
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		stats.Coerced++
		return decimal.Zero
	}
	return d
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	// Some upstream rows carry a unix timestamp instead of a string date.
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0).UTC(), true
	}
	return time.Time{}, false
}
