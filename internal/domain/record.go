package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// RawNumber carries a numeric field exactly as it arrived: a JSON
// number, a quoted string, or null. Upstream rows mix all three, so
// decoding must not reject a row over one junk cell; the normalizer
// decides what a non-numeric value becomes.
type RawNumber string

func (n *RawNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = RawNumber(s)
		return nil
	}
	*n = RawNumber(data)
	return nil
}

func (n RawNumber) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(n))
}

func (n RawNumber) String() string { return string(n) }

// RawRecord is one row of a commission batch as the upstream computation
// API returns it: loosely typed, field presence not guaranteed. It is
// never used past normalization.
type RawRecord struct {
	ID               RawNumber `json:"id"`
	TaxID            RawNumber `json:"tax_id"`
	TaxName          string    `json:"tax_name"`
	EnterpriseID     RawNumber `json:"enterprise_id"`
	EnterpriseName   string    `json:"enterprise_name"`
	ActualAmount     RawNumber `json:"actual_amount"`
	PayAmount        RawNumber `json:"pay_amount"`
	ServerAmount     RawNumber `json:"server_amount"`
	Commission       RawNumber `json:"commission"`
	APICommission    RawNumber `json:"api_commission"`
	ChannelProfit    RawNumber `json:"channel_profit"`
	HistoryAmount    RawNumber `json:"history_amount"`
	RawCommission    string    `json:"raw_commission"`
	RawChannelProfit string    `json:"raw_channel_profit"`
	BatchNo          string    `json:"batch_no"`
	BalanceNo        string    `json:"balance_no"`
	RateConfig       string    `json:"rate_config"`
	RateDetail       string    `json:"rate_detail"`
	PaymentOverTime  string    `json:"payment_over_time"`
	Tolerance        RawNumber `json:"tolerance,omitempty"`

	// IsMatched may arrive pre-computed from upstream. It is deliberately
	// ignored: the verdict is always re-derived from the two commission
	// figures so the two can never drift apart.
	IsMatched *bool `json:"is_matched,omitempty"`
}

// CommissionRecord is the canonical, immutable form of one commission
// row after normalization. Difference, Tolerance, IsMatched and
// RunningTotal are filled in by the evaluator and aggregator; they are
// zero-valued straight out of the normalizer.
type CommissionRecord struct {
	ID             int64  `json:"id"`
	TaxID          int64  `json:"tax_id"`
	TaxName        string `json:"tax_name"`
	EnterpriseID   int64  `json:"enterprise_id"`
	EnterpriseName string `json:"enterprise_name"`

	ActualAmount  decimal.Decimal `json:"actual_amount"`
	PayAmount     decimal.Decimal `json:"pay_amount"`
	ServerAmount  decimal.Decimal `json:"server_amount"`
	Commission    decimal.Decimal `json:"commission"`
	APICommission decimal.Decimal `json:"api_commission"`
	ChannelProfit decimal.Decimal `json:"channel_profit"`
	HistoryAmount decimal.Decimal `json:"history_amount"`

	// Original textual representations, kept verbatim for audit display.
	RawCommission    string `json:"raw_commission"`
	RawChannelProfit string `json:"raw_channel_profit"`

	BatchNo    string `json:"batch_no"`
	BalanceNo  string `json:"balance_no"`
	RateConfig string `json:"rate_config"`
	RateDetail string `json:"rate_detail"`

	PaymentTime time.Time `json:"payment_time"`
	Month       string    `json:"month"` // canonical YYYY-MM bucket key

	// ToleranceOverride is the record-supplied allowed deviation, when
	// the upstream row carried one. Nil means "use the batch tolerance".
	ToleranceOverride *decimal.Decimal `json:"tolerance_override,omitempty"`

	// Derived by the evaluator.
	Difference decimal.Decimal `json:"difference"`
	Tolerance  decimal.Decimal `json:"tolerance"`
	IsMatched  bool            `json:"is_matched"`

	// RunningTotal is the cumulative actual amount of all records before
	// this one in batch order (0 for the first record).
	RunningTotal decimal.Decimal `json:"running_total"`
}

// Enterprise is one entry of the enterprise directory.
type Enterprise struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
