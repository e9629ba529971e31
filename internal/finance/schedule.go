package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"dealership_app_echo/internal/models"
)

// MaxDueDay is the largest allowed payment day-of-month. Due days above it
// are clamped so every month of the schedule has a valid date.
const MaxDueDay = 28

// InvoiceNumber builds the human-readable invoice number for one installment:
// generation year-month, contract id, zero-padded installment index. The
// triple is unique within a contract by construction.
func InvoiceNumber(contractID uint, index int, generatedAt time.Time) string {
	return fmt.Sprintf("INV-%s-%04d-%03d", generatedAt.UTC().Format("200601"), contractID, index)
}

// ClampDueDay normalizes a requested payment day-of-month into [1, MaxDueDay].
func ClampDueDay(day int) int {
	if day < 1 {
		return 1
	}
	if day > MaxDueDay {
		return MaxDueDay
	}
	return day
}

// DueDateFor returns the due date of installment i: creation date plus i
// months, on the clamped due day. Months are advanced from the first of the
// month so a late-month creation date cannot roll the schedule forward.
func DueDateFor(createdAt time.Time, index, dueDay int) time.Time {
	day := ClampDueDay(dueDay)
	first := time.Date(createdAt.Year(), createdAt.Month(), 1, 0, 0, 0, 0, time.UTC)
	target := first.AddDate(0, index, 0)
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, time.UTC)
}

// GenerateSchedule produces the full ordered invoice sequence for a contract,
// one invoice per installment, hash-chained in order. The result is not yet
// persisted; the repository must insert it atomically.
func GenerateSchedule(contractID uint, plan *Plan, dueDay int, createdAt time.Time) []models.Invoice {
	invoices := make([]models.Invoice, 0, plan.Months)
	prevHash := ""
	for i := 1; i <= plan.Months; i++ {
		number := InvoiceNumber(contractID, i, createdAt)
		dueDate := DueDateFor(createdAt, i, dueDay)
		hash := InvoiceDigest(number, contractID, i, plan.MonthlyInstallment, dueDate, prevHash)

		invoices = append(invoices, models.Invoice{
			UUID:             uuid.New().String(),
			InvoiceNumber:    number,
			ContractID:       contractID,
			InstallmentIndex: i,
			AmountDue:        plan.MonthlyInstallment,
			DueDate:          dueDate,
			Status:           models.InvoiceStatusPending,
			QRHash:           hash,
			PrevQRHash:       prevHash,
		})
		prevHash = hash
	}
	return invoices
}
