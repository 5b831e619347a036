package domain

import "github.com/shopspring/decimal"

// JurisdictionRollup aggregates every record sharing one tax
// jurisdiction.
type JurisdictionRollup struct {
	TaxID   int64  `json:"tax_id"`
	TaxName string `json:"tax_name"`

	ActualAmount  decimal.Decimal `json:"actual_amount"`
	PayAmount     decimal.Decimal `json:"pay_amount"`
	ServerAmount  decimal.Decimal `json:"server_amount"`
	Commission    decimal.Decimal `json:"commission"`
	APICommission decimal.Decimal `json:"api_commission"`
	Profit        decimal.Decimal `json:"profit"`

	Count int `json:"count"`
}

// MonthlyBucket holds one enterprise's sums for a single calendar month.
type MonthlyBucket struct {
	Month     string          `json:"month"`
	PayAmount decimal.Decimal `json:"pay_amount"`
	Profit    decimal.Decimal `json:"profit"`
	Count     int             `json:"count"`
}

// EnterpriseRollup aggregates every record sharing one enterprise, with
// a bucket per distinct month. Months are in first-seen batch order; the
// navigator re-sorts them for display.
type EnterpriseRollup struct {
	EnterpriseID   int64  `json:"enterprise_id"`
	EnterpriseName string `json:"enterprise_name"`

	TotalPayAmount decimal.Decimal `json:"total_pay_amount"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	TotalCount     int             `json:"total_count"`

	Months []MonthlyBucket `json:"months"`
}

// BatchSummary holds the batch-level KPIs. These are computed once from
// the full batch and are invariant under any view filtering.
type BatchSummary struct {
	TotalProfit     decimal.Decimal `json:"total_profit"`
	MonthProfit     decimal.Decimal `json:"month_profit"`
	DayProfit       decimal.Decimal `json:"day_profit"`
	TotalPayAmount  decimal.Decimal `json:"total_pay_amount"`
	DayPayAmount    decimal.Decimal `json:"day_pay_amount"`
	TotalCommission decimal.Decimal `json:"total_commission"`

	TotalCount    int     `json:"total_count"`
	MismatchCount int     `json:"mismatch_count"`
	MatchRate     float64 `json:"match_rate"` // matched/total, 0 for an empty batch
	IsProfitable  bool    `json:"is_profitable"`
}
