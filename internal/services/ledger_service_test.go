package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealership_app_echo/internal/models"
	"dealership_app_echo/internal/repository"
)

// openLedgerContract creates a 12-installment contract whose first invoice is
// due 2026-02-10 and returns a ledger fixed at the given clock.
func openLedgerContract(t *testing.T, repo repository.ContractRepository, ledgerAt time.Time) (*models.Contract, *LedgerService) {
	t.Helper()
	contractSvc := testContractService(repo, contractCreatedAt)
	contract := createTestContract(t, contractSvc, 12)
	return contract, testLedgerService(repo, ledgerAt)
}

func TestApplyLateFeeIfDue(t *testing.T) {
	repo := setupTestRepo(t)
	// first invoice due 2026-02-10, grace 3 days
	contract, ledger := openLedgerContract(t, repo, time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC))

	invoices, err := repo.InvoicesByContract(context.Background(), contract.ID)
	require.NoError(t, err)
	first := invoices[0]

	// within grace: nothing happens
	fee, err := ledger.ApplyLateFeeIfDue(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Zero(t, fee)

	// past grace: fee applied and invoice flipped to overdue
	ledger.now = fixedClock(time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC))
	fee, err = ledger.ApplyLateFeeIfDue(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultLateFeeAmount), fee)

	stored, err := repo.InvoiceByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusOverdue, stored.Status)
	assert.Equal(t, float64(DefaultLateFeeAmount), stored.LateFee)

	// second assessment reports the same fee without charging again
	fee, err = ledger.ApplyLateFeeIfDue(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultLateFeeAmount), fee)
	stored, err = repo.InvoiceByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultLateFeeAmount), stored.LateFee)
}

func TestRecordPayment_AllocatesOldestFirst(t *testing.T) {
	repo := setupTestRepo(t)
	paidAt := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	contract, ledger := openLedgerContract(t, repo, paidAt)

	// two full installments plus a bit of the third
	payment, err := ledger.RecordPayment(context.Background(), contract.ID, 6000, models.PaymentMethodCash, "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusVerified, payment.Status)
	require.NotNil(t, payment.VerifiedAt)

	invoices, err := repo.InvoicesByContract(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, invoices[0].Status)
	assert.Equal(t, models.InvoiceStatusPaid, invoices[1].Status)
	assert.Equal(t, models.InvoiceStatusPending, invoices[2].Status)
	assert.InDelta(t, 6000-2*2753.33, invoices[2].AmountPaid, 0.01)
	assert.Equal(t, models.InvoiceStatusPending, invoices[3].Status)
	assert.Zero(t, invoices[3].AmountPaid)
}

func TestRecordPayment_TransferStartsPending(t *testing.T) {
	repo := setupTestRepo(t)
	contract, ledger := openLedgerContract(t, repo, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC))

	payment, err := ledger.RecordPayment(context.Background(), contract.ID, 2753.33, models.PaymentMethodTransfer, "TRX-20260209-001")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Nil(t, payment.VerifiedAt)

	verified, err := ledger.VerifyPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusVerified, verified.Status)
	require.NotNil(t, verified.VerifiedAt)

	// verifying again is a no-op
	again, err := ledger.VerifyPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, *verified.VerifiedAt, *again.VerifiedAt)
}

func TestRecordPayment_RejectsBadInput(t *testing.T) {
	repo := setupTestRepo(t)
	contract, ledger := openLedgerContract(t, repo, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC))

	_, err := ledger.RecordPayment(context.Background(), contract.ID, 0, models.PaymentMethodCash, "")
	assert.Error(t, err)
	_, err = ledger.RecordPayment(context.Background(), contract.ID, -100, models.PaymentMethodCash, "")
	assert.Error(t, err)

	contractSvc := testContractService(repo, contractCreatedAt)
	_, err = contractSvc.Cancel(context.Background(), contract.ID)
	require.NoError(t, err)

	_, err = ledger.RecordPayment(context.Background(), contract.ID, 1000, models.PaymentMethodCash, "")
	assert.Error(t, err)
}

func TestRecordPayment_SettlesContract(t *testing.T) {
	repo := setupTestRepo(t)
	paidAt := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	contract, ledger := openLedgerContract(t, repo, paidAt)

	// full payoff: 12 x 2753.33
	_, err := ledger.RecordPayment(context.Background(), contract.ID, 33_039.96, models.PaymentMethodTransfer, "TRX-PAYOFF")
	require.NoError(t, err)

	stored, err := repo.ContractByID(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusPaid, stored.Status)

	invoices, err := repo.InvoicesByContract(context.Background(), contract.ID)
	require.NoError(t, err)
	for _, inv := range invoices {
		assert.Equal(t, models.InvoiceStatusPaid, inv.Status)
		require.NotNil(t, inv.PaymentDate)
	}
}

// pausingRepo stretches the window between reading a contract's invoices and
// settling against them. An unserialized second writer would allocate from the
// same snapshot and clobber the first writer's settlement.
type pausingRepo struct {
	repository.ContractRepository
	pause time.Duration
}

func (r *pausingRepo) InvoicesByContract(ctx context.Context, contractID uint) ([]models.Invoice, error) {
	invoices, err := r.ContractRepository.InvoicesByContract(ctx, contractID)
	time.Sleep(r.pause)
	return invoices, err
}

func TestRecordPayment_ConcurrentPaymentsAllCredited(t *testing.T) {
	repo := setupTestRepo(t)
	contractSvc := testContractService(repo, contractCreatedAt)
	contract := createTestContract(t, contractSvc, 12)

	slow := &pausingRepo{ContractRepository: repo, pause: 50 * time.Millisecond}
	ledger := testLedgerService(slow, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.RecordPayment(context.Background(), contract.ID, 2753.33, models.PaymentMethodCash, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	invoices, err := repo.InvoicesByContract(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, invoices[0].Status)
	assert.Equal(t, models.InvoiceStatusPaid, invoices[1].Status)

	var credited float64
	for _, inv := range invoices {
		credited += inv.AmountPaid
	}
	assert.InDelta(t, 2*2753.33, credited, 0.01, "every payment received must be credited")
}

func TestGetFinancialSummary(t *testing.T) {
	repo := setupTestRepo(t)
	contract, ledger := openLedgerContract(t, repo, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC))

	invoices, err := repo.InvoicesByContract(context.Background(), contract.ID)
	require.NoError(t, err)

	// first invoice goes overdue with its fee, then absorbs a partial payment
	_, err = ledger.ApplyLateFeeIfDue(context.Background(), invoices[0].ID)
	require.NoError(t, err)
	_, err = ledger.RecordPayment(context.Background(), contract.ID, 3000, models.PaymentMethodCash, "")
	require.NoError(t, err)

	summary, err := ledger.GetFinancialSummary(context.Background(), contract.UserID)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ActiveContracts)
	assert.Equal(t, 1, summary.OverdueInvoices)
	assert.InDelta(t, 3000.0, summary.TotalPaid, 0.01)

	// 12 installments + 50k fee, minus the 3000 paid
	assert.InDelta(t, 12*2753.33+50_000-3000, summary.TotalOutstanding, 0.01)

	require.NotNil(t, summary.NextInvoice)
	assert.Equal(t, invoices[1].ID, summary.NextInvoice.InvoiceID)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), summary.NextInvoice.DueDate.UTC())
}

func TestGetFinancialSummary_SkipsCancelledContracts(t *testing.T) {
	repo := setupTestRepo(t)
	contract, ledger := openLedgerContract(t, repo, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC))

	contractSvc := testContractService(repo, contractCreatedAt)
	_, err := contractSvc.Cancel(context.Background(), contract.ID)
	require.NoError(t, err)

	summary, err := ledger.GetFinancialSummary(context.Background(), contract.UserID)
	require.NoError(t, err)
	assert.Zero(t, summary.ActiveContracts)
	assert.Zero(t, summary.TotalOutstanding)
	assert.Nil(t, summary.NextInvoice)
}

func TestSweepOverdueInvoices(t *testing.T) {
	repo := setupTestRepo(t)
	// Aug 28: installments Feb-Aug are due, all past their 3 day grace
	contract, ledger := openLedgerContract(t, repo, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))

	applied, err := ledger.SweepOverdueInvoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, applied)

	invoices, err := repo.InvoicesByContract(context.Background(), contract.ID)
	require.NoError(t, err)
	for i, inv := range invoices {
		if i < 7 {
			assert.Equal(t, models.InvoiceStatusOverdue, inv.Status)
			assert.Equal(t, float64(DefaultLateFeeAmount), inv.LateFee)
		} else {
			assert.Equal(t, models.InvoiceStatusPending, inv.Status)
			assert.Zero(t, inv.LateFee)
		}
	}

	// a second sweep finds nothing new to mark
	applied, err = ledger.SweepOverdueInvoices(context.Background())
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestCloseSettledContracts(t *testing.T) {
	repo := setupTestRepo(t)
	paidAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	contract, ledger := openLedgerContract(t, repo, paidAt)

	// settle every invoice directly, leaving the contract flag stale
	invoices, err := repo.InvoicesByContract(context.Background(), contract.ID)
	require.NoError(t, err)
	for i := range invoices {
		invoices[i].AmountPaid = invoices[i].AmountDue
		invoices[i].Status = models.InvoiceStatusPaid
		invoices[i].PaymentDate = &paidAt
		require.NoError(t, repo.SaveInvoice(context.Background(), &invoices[i]))
	}

	closed, err := ledger.CloseSettledContracts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	stored, err := repo.ContractByID(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContractStatusPaid, stored.Status)

	// nothing left to close
	closed, err = ledger.CloseSettledContracts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, closed)
}
