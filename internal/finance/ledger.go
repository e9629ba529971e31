package finance

import (
	"time"

	"dealership_app_echo/internal/models"
)

// paidEpsilon absorbs 2-decimal rounding when deciding whether an invoice is
// fully covered.
const paidEpsilon = 0.005

// IsPastGrace reports whether an invoice's grace window has elapsed: strictly
// after due date plus the grace period, compared on calendar days.
func IsPastGrace(inv models.Invoice, gracePeriodDays int, today time.Time) bool {
	deadline := inv.DueDate.AddDate(0, 0, gracePeriodDays)
	return calendarDay(today).After(calendarDay(deadline))
}

// LateFeeFor computes the fee an overdue invoice incurs under a contract's
// late fee policy.
func LateFeeFor(feeType models.LateFeeType, feeAmount, amountDue float64) float64 {
	if feeType == models.LateFeePercentage {
		return round2(amountDue * feeAmount)
	}
	return round2(feeAmount)
}

// ApplyLateFee transitions a pending invoice to overdue and stores its late
// fee once the grace period has elapsed. It is idempotent: an invoice that
// already carries a fee, is already paid, or is still within grace is left
// untouched. Returns the fee now stored on the invoice (0 if none).
func ApplyLateFee(inv *models.Invoice, contract models.Contract, today time.Time) float64 {
	if inv.Status == models.InvoiceStatusPaid {
		return 0
	}
	if inv.Status == models.InvoiceStatusOverdue {
		// Fee was assessed on a previous sweep; never double-charge.
		return inv.LateFee
	}
	if !IsPastGrace(*inv, contract.GracePeriodDays, today) {
		return 0
	}

	inv.LateFee = LateFeeFor(contract.LateFeeType, contract.LateFeeAmount, inv.AmountDue)
	inv.Status = models.InvoiceStatusOverdue
	return inv.LateFee
}

// ApplyPayment consumes up to amount against one invoice, accumulating
// AmountPaid capped at AmountDue + LateFee, and flips the invoice to paid
// once fully covered. Partial payments leave the status where it is. Returns
// how much of amount was consumed.
func ApplyPayment(inv *models.Invoice, amount float64, paidAt time.Time) float64 {
	if inv.Status == models.InvoiceStatusPaid || amount <= 0 {
		return 0
	}

	outstanding := inv.Outstanding()
	consumed := amount
	if consumed > outstanding {
		consumed = outstanding
	}
	inv.AmountPaid = round2(inv.AmountPaid + consumed)

	if inv.AmountPaid >= inv.AmountDue+inv.LateFee-paidEpsilon {
		inv.Status = models.InvoiceStatusPaid
		at := paidAt
		inv.PaymentDate = &at
	}
	return consumed
}

// AllInvoicesPaid reports whether every invoice of a schedule is settled.
func AllInvoicesPaid(invoices []models.Invoice) bool {
	if len(invoices) == 0 {
		return false
	}
	for _, inv := range invoices {
		if inv.Status != models.InvoiceStatusPaid {
			return false
		}
	}
	return true
}

func calendarDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
