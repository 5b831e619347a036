// Command generate writes a sample raw commission batch to
// testdata/batch.json, shaped like the upstream computation response.
// The data is deterministic so fixtures stay diffable.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"
)

type rawRecord struct {
	ID               int64   `json:"id"`
	TaxID            int64   `json:"tax_id"`
	TaxName          string  `json:"tax_name"`
	EnterpriseID     int64   `json:"enterprise_id"`
	EnterpriseName   string  `json:"enterprise_name"`
	ActualAmount     float64 `json:"actual_amount"`
	PayAmount        float64 `json:"pay_amount"`
	ServerAmount     float64 `json:"server_amount"`
	Commission       float64 `json:"commission"`
	APICommission    float64 `json:"api_commission"`
	ChannelProfit    float64 `json:"channel_profit"`
	HistoryAmount    float64 `json:"history_amount"`
	RawCommission    string  `json:"raw_commission"`
	RawChannelProfit string  `json:"raw_channel_profit"`
	BatchNo          string  `json:"batch_no"`
	BalanceNo        string  `json:"balance_no"`
	RateConfig       string  `json:"rate_config"`
	RateDetail       string  `json:"rate_detail"`
	PaymentOverTime  string  `json:"payment_over_time"`
}

type batchFile struct {
	CommissionDetails []rawRecord `json:"commission_details"`
	APIVerification   bool        `json:"api_verification"`
	TotalItems        int         `json:"total_items"`
}

var jurisdictions = []struct {
	id   int64
	name string
}{
	{3, "Hainan FTZ"},
	{5, "Hengqin Zone"},
	{9, "Chongqing Hub"},
}

var enterprises = []struct {
	id   int64
	name string
}{
	{12, "Acme Labour Co"},
	{14, "Zenith Works"},
	{20, "Northgate Services"},
	{27, "Bluefield Staffing"},
}

func main() {
	const records = 200

	rng := rand.New(rand.NewSource(42))
	start := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	out := batchFile{APIVerification: true}

	for i := 1; i <= records; i++ {
		j := jurisdictions[rng.Intn(len(jurisdictions))]
		e := enterprises[rng.Intn(len(enterprises))]

		pay := round2(500 + rng.Float64()*9500)
		server := round2(pay * 0.06)
		actual := round2(pay + server)
		commission := round2(pay * (0.005 + rng.Float64()*0.015))

		// Roughly one record in eight disagrees with the API figure.
		apiCommission := commission
		if rng.Intn(8) == 0 {
			apiCommission = round2(commission + (rng.Float64()-0.5)*2)
		}

		profit := round2(server - commission)
		paidAt := start.Add(time.Duration(rng.Intn(90*24)) * time.Hour)

		out.CommissionDetails = append(out.CommissionDetails, rawRecord{
			ID:               int64(i),
			TaxID:            j.id,
			TaxName:          fmt.Sprintf("%s(%d)", j.name, j.id),
			EnterpriseID:     e.id,
			EnterpriseName:   e.name,
			ActualAmount:     actual,
			PayAmount:        pay,
			ServerAmount:     server,
			Commission:       commission,
			APICommission:    apiCommission,
			ChannelProfit:    profit,
			RawCommission:    fmt.Sprintf("%.6f", commission),
			RawChannelProfit: fmt.Sprintf("%.6f", profit),
			BatchNo:          fmt.Sprintf("B-%s-%03d", paidAt.Format("20060102"), i),
			BalanceNo:        fmt.Sprintf("S-%06d", 880000+i),
			RateConfig:       "ladder 0-50000:1.2%, 50000-:0.8%",
			RateDetail:       fmt.Sprintf("%.2f 1.2%%", pay),
			PaymentOverTime:  paidAt.Format("2006-01-02 15:04:05"),
		})
	}

	out.TotalItems = len(out.CommissionDetails)

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile("testdata/batch.json", data, 0o644); err != nil {
		log.Fatalf("write: %v", err)
	}

	log.Printf("Wrote testdata/batch.json: %d records", out.TotalItems)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
