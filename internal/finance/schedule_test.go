package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchedule_DueDayClampedToTwentyEighth(t *testing.T) {
	plan, err := CalculatePlan(30000, 24, 0)
	require.NoError(t, err)

	created := time.Date(2026, 1, 31, 15, 4, 5, 0, time.UTC)
	invoices := GenerateSchedule(3, plan, 31, created)
	require.Len(t, invoices, 24)

	for i, inv := range invoices {
		assert.Equal(t, 28, inv.DueDate.Day(), "installment %d", i+1)
	}

	// months advance one at a time without skipping short months
	assert.Equal(t, time.February, invoices[0].DueDate.Month())
	assert.Equal(t, time.March, invoices[1].DueDate.Month())
	assert.Equal(t, 2028, invoices[23].DueDate.Year())
	assert.Equal(t, time.January, invoices[23].DueDate.Month())
}

func TestGenerateSchedule_InvoiceNumbersAndOrder(t *testing.T) {
	plan, err := CalculatePlan(30000, 12, 5000)
	require.NoError(t, err)

	created := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	invoices := GenerateSchedule(12, plan, 10, created)
	require.Len(t, invoices, 12)

	seen := make(map[string]bool)
	for i, inv := range invoices {
		assert.Equal(t, i+1, inv.InstallmentIndex)
		assert.Equal(t, uint(12), inv.ContractID)
		assert.Equal(t, plan.MonthlyInstallment, inv.AmountDue)
		assert.Equal(t, "pending", string(inv.Status))
		assert.Zero(t, inv.AmountPaid)
		assert.Zero(t, inv.LateFee)
		assert.NotEmpty(t, inv.UUID)

		assert.False(t, seen[inv.InvoiceNumber], "duplicate invoice number %s", inv.InvoiceNumber)
		seen[inv.InvoiceNumber] = true
	}

	assert.Equal(t, "INV-202608-0012-001", invoices[0].InvoiceNumber)
	assert.Equal(t, "INV-202608-0012-012", invoices[11].InvoiceNumber)
}

func TestDueDateFor(t *testing.T) {
	created := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		index  int
		dueDay int
		want   time.Time
	}{
		{"first installment", 1, 10, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)},
		{"due day above clamp", 1, 31, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"due day below range", 2, 0, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"year rollover", 12, 5, time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DueDateFor(created, tt.index, tt.dueDay))
		})
	}
}
