// Package export renders an evaluated batch as CSV for download by
// downstream finance tooling. Column order is caller-chosen and a
// synthetic totals row closes the file.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/channelops/commission-review/internal/domain"
)

// Column identifies one exportable field.
type Column string

const (
	ColID             Column = "id"
	ColTaxName        Column = "tax_name"
	ColEnterprise     Column = "enterprise_name"
	ColBatchNo        Column = "batch_no"
	ColBalanceNo      Column = "balance_no"
	ColMonth          Column = "month"
	ColPaymentTime    Column = "payment_time"
	ColActualAmount   Column = "actual_amount"
	ColPayAmount      Column = "pay_amount"
	ColServerAmount   Column = "server_amount"
	ColCommission     Column = "commission"
	ColAPICommission  Column = "api_commission"
	ColDifference     Column = "difference"
	ColChannelProfit  Column = "channel_profit"
	ColRunningTotal   Column = "running_total"
	ColIsMatched      Column = "is_matched"
	ColRateConfig     Column = "rate_config"
	ColRateDetail     Column = "rate_detail"
	ColRawCommission  Column = "raw_commission"
)

// DefaultColumns is the review screen's export order.
var DefaultColumns = []Column{
	ColID, ColTaxName, ColEnterprise, ColBatchNo, ColBalanceNo, ColMonth,
	ColActualAmount, ColPayAmount, ColServerAmount, ColCommission,
	ColAPICommission, ColDifference, ColChannelProfit, ColIsMatched,
}

// Options controls number rendering. Thousands separators break naive
// downstream parsers, so they are off unless explicitly requested.
type Options struct {
	ThousandsSeparators bool
}

type colSpec struct {
	header  string
	value   func(domain.CommissionRecord) string
	numeric func(domain.CommissionRecord) decimal.Decimal // nil for text columns
}

// ParseColumn maps a column key to its Column, reporting unknown keys.
func ParseColumn(key string) (Column, bool) {
	_, ok := specs[Column(key)]
	return Column(key), ok
}

var specs = map[Column]colSpec{
	ColID: {header: "ID", value: func(r domain.CommissionRecord) string {
		return fmt.Sprintf("%d", r.ID)
	}},
	ColTaxName:    {header: "Tax Jurisdiction", value: func(r domain.CommissionRecord) string { return r.TaxName }},
	ColEnterprise: {header: "Enterprise", value: func(r domain.CommissionRecord) string { return r.EnterpriseName }},
	ColBatchNo:    {header: "Batch No", value: func(r domain.CommissionRecord) string { return r.BatchNo }},
	ColBalanceNo:  {header: "Settlement No", value: func(r domain.CommissionRecord) string { return r.BalanceNo }},
	ColMonth:      {header: "Month", value: func(r domain.CommissionRecord) string { return r.Month }},
	ColPaymentTime: {header: "Payment Time", value: func(r domain.CommissionRecord) string {
		if r.PaymentTime.IsZero() {
			return ""
		}
		return r.PaymentTime.Format("2006-01-02 15:04:05")
	}},
	ColActualAmount:  amountCol("Actual Amount", func(r domain.CommissionRecord) decimal.Decimal { return r.ActualAmount }),
	ColPayAmount:     amountCol("Pay Amount", func(r domain.CommissionRecord) decimal.Decimal { return r.PayAmount }),
	ColServerAmount:  amountCol("Service Fee", func(r domain.CommissionRecord) decimal.Decimal { return r.ServerAmount }),
	ColCommission:    amountCol("Commission", func(r domain.CommissionRecord) decimal.Decimal { return r.Commission }),
	ColAPICommission: amountCol("API Commission", func(r domain.CommissionRecord) decimal.Decimal { return r.APICommission }),
	ColDifference:    amountCol("Difference", func(r domain.CommissionRecord) decimal.Decimal { return r.Difference }),
	ColChannelProfit: amountCol("Channel Profit", func(r domain.CommissionRecord) decimal.Decimal { return r.ChannelProfit }),
	ColRunningTotal:  amountCol("Running Total", func(r domain.CommissionRecord) decimal.Decimal { return r.RunningTotal }),
	ColIsMatched: {header: "Matched", value: func(r domain.CommissionRecord) string {
		if r.IsMatched {
			return "yes"
		}
		return "no"
	}},
	ColRateConfig:    {header: "Rate Config", value: func(r domain.CommissionRecord) string { return r.RateConfig }},
	ColRateDetail:    {header: "Rate Detail", value: func(r domain.CommissionRecord) string { return r.RateDetail }},
	ColRawCommission: {header: "Raw Commission", value: func(r domain.CommissionRecord) string { return r.RawCommission }},
}

func amountCol(header string, get func(domain.CommissionRecord) decimal.Decimal) colSpec {
	return colSpec{header: header, numeric: get}
}

// Write renders records in the given column order followed by one totals
// row. Numeric cells carry exactly two decimal places. Unknown columns
// are an error; exporting a wrong report silently is worse than failing.
func Write(w io.Writer, records []domain.CommissionRecord, columns []Column, opts Options) error {
	if len(columns) == 0 {
		columns = DefaultColumns
	}

	cols := make([]colSpec, 0, len(columns))
	for _, c := range columns {
		spec, ok := specs[c]
		if !ok {
			return fmt.Errorf("unknown export column %q", c)
		}
		cols = append(cols, spec)
	}

	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	totals := make([]decimal.Decimal, len(cols))
	for i := range totals {
		totals[i] = decimal.Zero
	}

	row := make([]string, len(cols))
	for _, rec := range records {
		for i, c := range cols {
			if c.numeric != nil {
				v := c.numeric(rec)
				totals[i] = totals[i].Add(v)
				row[i] = renderAmount(v, opts)
			} else {
				row[i] = c.value(rec)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	totalRow := make([]string, len(cols))
	for i, c := range cols {
		if c.numeric != nil {
			totalRow[i] = renderAmount(totals[i], opts)
		} else if i == 0 {
			totalRow[i] = "TOTAL"
		}
	}
	if err := cw.Write(totalRow); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// renderAmount always carries exactly two decimal places; grouping only
// inserts separators into the integer digits of that fixed rendering.
func renderAmount(d decimal.Decimal, opts Options) string {
	fixed := d.StringFixed(2)
	if !opts.ThousandsSeparators {
		return fixed
	}
	dot := strings.IndexByte(fixed, '.')
	intPart := strings.TrimPrefix(fixed[:dot], "-")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return fixed
	}
	grouped := humanize.Comma(n)
	if fixed[0] == '-' {
		grouped = "-" + grouped
	}
	return grouped + fixed[dot:]
}
