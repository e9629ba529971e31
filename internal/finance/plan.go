// Package finance holds the pure financing logic: installment plan
// derivation, schedule generation, the invoice hash chain, and the per-invoice
// ledger state transitions. Nothing in this package touches storage.
package finance

import (
	"fmt"
	"math"

	"dealership_app_echo/internal/apperrors"
)

// TaxRate is the flat sales tax applied on top of the base price.
const TaxRate = 0.15

// Flat interest per tenor. Months not listed here are rejected outright
// rather than guessed at.
var interestRates = map[int]float64{
	1:  0,
	3:  0.05,
	12: 0.12,
	24: 0.20,
}

// Plan is the derived financing terms for a fixed number of months.
// All monetary fields are rounded to 2 decimals.
type Plan struct {
	BasePrice          float64 `json:"base_price"`
	TaxAmount          float64 `json:"tax_amount"`
	TotalWithTax       float64 `json:"total_with_tax"`
	DownPayment        float64 `json:"down_payment"`
	RemainingAfterDown float64 `json:"remaining_after_down"`
	Months             int     `json:"months"`
	InterestRate       float64 `json:"interest_rate"`
	TotalInterest      float64 `json:"total_interest"`
	TotalPayable       float64 `json:"total_payable"`
	MonthlyInstallment float64 `json:"monthly_installment"`
	GrandTotal         float64 `json:"grand_total"`
}

// SupportedMonths lists the tenor choices a plan may use, ascending.
func SupportedMonths() []int {
	return []int{1, 3, 12, 24}
}

// CalculatePlan derives the financing plan for a sale. A months value of 1 is
// a cash sale: one installment at 0% interest. Invalid inputs return an
// *apperrors.InvalidPlanError.
func CalculatePlan(basePrice float64, months int, downPayment float64) (*Plan, error) {
	if basePrice <= 0 {
		return nil, &apperrors.InvalidPlanError{Reason: "principal must be positive"}
	}

	rate, ok := interestRates[months]
	if !ok {
		return nil, &apperrors.InvalidPlanError{
			Reason: fmt.Sprintf("unsupported tenor: %d months", months),
		}
	}

	taxAmount := round2(basePrice * TaxRate)
	totalWithTax := round2(basePrice + taxAmount)

	if downPayment < 0 {
		return nil, &apperrors.InvalidPlanError{Reason: "down payment must not be negative"}
	}
	if downPayment >= totalWithTax {
		return nil, &apperrors.InvalidPlanError{
			Reason: "down payment must be less than the total price with tax",
		}
	}

	remaining := round2(totalWithTax - downPayment)
	totalInterest := round2(remaining * rate)
	totalPayable := round2(remaining + totalInterest)
	monthly := round2(totalPayable / float64(months))
	grandTotal := round2(downPayment + totalPayable)

	return &Plan{
		BasePrice:          round2(basePrice),
		TaxAmount:          taxAmount,
		TotalWithTax:       totalWithTax,
		DownPayment:        round2(downPayment),
		RemainingAfterDown: remaining,
		Months:             months,
		InterestRate:       rate,
		TotalInterest:      totalInterest,
		TotalPayable:       totalPayable,
		MonthlyInstallment: monthly,
		GrandTotal:         grandTotal,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
