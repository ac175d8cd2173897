package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tax report kinds stored on tax movements.
const (
	TaxKindIVA         = "IVA"
	TaxKindWithholding = "WITHHOLDING"
)

// TaxBucket summarizes taxed activity at one rate. ExpectedTax is the base
// multiplied by the rate at exact decimal precision; Difference is the
// rounding drift between expected and recorded tax.
type TaxBucket struct {
	Rate        float64 `json:"rate"`
	TaxableBase float64 `json:"taxableBase"`
	TaxAmount   float64 `json:"taxAmount"`
	ExpectedTax float64 `json:"expectedTax"`
	Difference  float64 `json:"difference"`
}

// TaxReport groups taxed transactions by rate over a range.
type TaxReport struct {
	Kind             string      `json:"kind"`
	From             time.Time   `json:"from"`
	To               time.Time   `json:"to"`
	Buckets          []TaxBucket `json:"buckets"`
	TotalTaxableBase float64     `json:"totalTaxableBase"`
	TotalTaxAmount   float64     `json:"totalTaxAmount"`
}

// BuildTaxReport converts raw per-rate rows into the report payload. Rate
// arithmetic runs on decimals so a 19% rate over a large base does not pick
// up binary float error before the cent rounding.
func BuildTaxReport(kind string, from, to time.Time, rows []TaxRow) TaxReport {
	report := TaxReport{Kind: kind, From: from, To: to, Buckets: make([]TaxBucket, 0, len(rows))}
	for _, row := range rows {
		base := decimal.NewFromFloat(row.TaxableBase)
		rate := decimal.NewFromFloat(row.Rate)
		expected := base.Mul(rate).Round(2)
		recorded := decimal.NewFromFloat(row.TaxAmount).Round(2)

		bucket := TaxBucket{
			Rate:        row.Rate,
			TaxableBase: row.TaxableBase,
			TaxAmount:   row.TaxAmount,
			ExpectedTax: expected.InexactFloat64(),
			Difference:  recorded.Sub(expected).InexactFloat64(),
		}
		report.Buckets = append(report.Buckets, bucket)
		report.TotalTaxableBase += row.TaxableBase
		report.TotalTaxAmount += row.TaxAmount
	}
	return report
}
