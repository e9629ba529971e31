package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dealership_app_echo/internal/finance"
	"dealership_app_echo/internal/models"
	"dealership_app_echo/internal/repository"
)

const summaryCacheTTL = 30 * time.Second

func summaryCacheKey(userID uint) string {
	return fmt.Sprintf("summary:user:%d", userID)
}

// UpcomingInvoice is the nearest unpaid installment in a financial summary.
type UpcomingInvoice struct {
	InvoiceID     uint      `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	ContractID    uint      `json:"contract_id"`
	AmountDue     float64   `json:"amount_due"`
	Outstanding   float64   `json:"outstanding"`
	DueDate       time.Time `json:"due_date"`
}

// FinancialSummary aggregates a user's debt position across all contracts.
type FinancialSummary struct {
	TotalOutstanding float64          `json:"total_outstanding"`
	TotalPaid        float64          `json:"total_paid"`
	ActiveContracts  int              `json:"active_contracts"`
	OverdueInvoices  int              `json:"overdue_invoices"`
	NextInvoice      *UpcomingInvoice `json:"next_invoice,omitempty"`
}

// LedgerService drives per-invoice status transitions: late fees, payment
// settlement and the aggregate financial summary.
type LedgerService struct {
	repo  repository.ContractRepository
	cache *RedisCache
	log   zerolog.Logger
	now   func() time.Time
}

func NewLedgerService(repo repository.ContractRepository, cache *RedisCache, log zerolog.Logger) *LedgerService {
	return &LedgerService{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// ApplyLateFeeIfDue assesses the late fee on one invoice if its grace period
// has elapsed. Idempotent: an invoice already carrying its fee reports the
// same amount and is not charged again. Returns 0 when the invoice is not yet
// past grace or already settled.
func (s *LedgerService) ApplyLateFeeIfDue(ctx context.Context, invoiceID uint) (float64, error) {
	// Resolve the contract id outside the lock; the invoice is re-read under it.
	probe, err := s.repo.InvoiceByID(ctx, invoiceID)
	if err != nil {
		return 0, err
	}

	var fee float64
	err = withContractLock(ctx, s.cache, probe.ContractID, func() error {
		invoice, err := s.repo.InvoiceByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		contract, err := s.repo.ContractByID(ctx, invoice.ContractID)
		if err != nil {
			return err
		}

		prevStatus := invoice.Status
		fee = finance.ApplyLateFee(invoice, *contract, s.now())
		if invoice.Status == prevStatus {
			return nil
		}

		if err := s.repo.SaveInvoice(ctx, invoice); err != nil {
			return err
		}
		s.invalidateSummary(ctx, contract.UserID)
		s.log.Info().
			Uint("invoice_id", invoice.ID).
			Uint("contract_id", contract.ID).
			Float64("late_fee", fee).
			Msg("invoice marked overdue, late fee applied")
		return nil
	})
	if err != nil {
		return 0, err
	}
	return fee, nil
}

// RecordPayment stores a payment and allocates it across the contract's
// unpaid invoices, oldest installment first, in one transaction. Payments
// with a proof reference start pending until verified; cash is verified on
// the spot. Amounts beyond the total outstanding are left unallocated.
func (s *LedgerService) RecordPayment(ctx context.Context, contractID uint, amount float64, method models.PaymentMethod, proofRef string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}

	var payment *models.Payment
	err := withContractLock(ctx, s.cache, contractID, func() error {
		contract, err := s.repo.ContractByID(ctx, contractID)
		if err != nil {
			return err
		}
		if contract.Status == models.ContractStatusCancelled {
			return fmt.Errorf("contract %d is cancelled and no longer accepts payments", contractID)
		}

		invoices, err := s.repo.InvoicesByContract(ctx, contractID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		payment = &models.Payment{
			ContractID: contractID,
			UserID:     contract.UserID,
			Amount:     amount,
			Method:     method,
			ProofRef:   proofRef,
			Status:     models.PaymentStatusPending,
		}
		if proofRef == "" {
			payment.Status = models.PaymentStatusVerified
			payment.VerifiedAt = &now
		}

		remaining := amount
		var touched []*models.Invoice
		for i := range invoices {
			if remaining <= 0 {
				break
			}
			consumed := finance.ApplyPayment(&invoices[i], remaining, now)
			if consumed > 0 {
				remaining -= consumed
				touched = append(touched, &invoices[i])
			}
		}
		if remaining > 0.01 {
			s.log.Warn().
				Uint("contract_id", contractID).
				Float64("unallocated", remaining).
				Msg("payment exceeds outstanding balance, excess not allocated")
		}

		var contractUpdate *models.Contract
		if contract.Status == models.ContractStatusActive && finance.AllInvoicesPaid(invoices) {
			contract.Status = models.ContractStatusPaid
			contractUpdate = contract
		}

		if err := s.repo.SettlePayment(ctx, payment, touched, contractUpdate); err != nil {
			return err
		}
		s.invalidateSummary(ctx, contract.UserID)
		s.log.Info().
			Uint("contract_id", contractID).
			Uint("payment_id", payment.ID).
			Float64("amount", amount).
			Int("invoices_touched", len(touched)).
			Msg("payment recorded and allocated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// VerifyPayment stamps a pending payment as verified. Verifying an already
// verified payment is a no-op.
func (s *LedgerService) VerifyPayment(ctx context.Context, paymentID uint) (*models.Payment, error) {
	payment, err := s.repo.PaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusVerified {
		return payment, nil
	}

	now := s.now().UTC()
	payment.Status = models.PaymentStatusVerified
	payment.VerifiedAt = &now
	if err := s.repo.SavePayment(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// GetFinancialSummary aggregates the canonical debt position for one user:
// outstanding is amount_due - amount_paid + late_fee summed over unpaid
// invoices, regardless of which code path asks.
func (s *LedgerService) GetFinancialSummary(ctx context.Context, userID uint) (*FinancialSummary, error) {
	if s.cache == nil {
		return s.computeSummary(ctx, userID)
	}
	return GetOrSet(s.cache, ctx, summaryCacheKey(userID), summaryCacheTTL, func() (*FinancialSummary, error) {
		return s.computeSummary(ctx, userID)
	})
}

func (s *LedgerService) computeSummary(ctx context.Context, userID uint) (*FinancialSummary, error) {
	contracts, err := s.repo.ContractsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &FinancialSummary{}
	for _, contract := range contracts {
		if contract.Status == models.ContractStatusActive {
			summary.ActiveContracts++
		}
		if contract.Status == models.ContractStatusCancelled {
			continue
		}
		for _, inv := range contract.Invoices {
			summary.TotalPaid += inv.AmountPaid

			switch inv.Status {
			case models.InvoiceStatusPaid:
				continue
			case models.InvoiceStatusOverdue:
				summary.OverdueInvoices++
			case models.InvoiceStatusPending:
				if summary.NextInvoice == nil || inv.DueDate.Before(summary.NextInvoice.DueDate) {
					summary.NextInvoice = &UpcomingInvoice{
						InvoiceID:     inv.ID,
						InvoiceNumber: inv.InvoiceNumber,
						ContractID:    inv.ContractID,
						AmountDue:     inv.AmountDue,
						Outstanding:   inv.Outstanding(),
						DueDate:       inv.DueDate,
					}
				}
			}
			summary.TotalOutstanding += inv.Outstanding()
		}
	}
	return summary, nil
}

// SweepOverdueInvoices applies late fees to every unpaid invoice past its
// grace period, serialized per contract. Returns how many invoices were
// newly marked overdue.
func (s *LedgerService) SweepOverdueInvoices(ctx context.Context) (int, error) {
	invoices, err := s.repo.DueUnpaidInvoices(ctx, s.now())
	if err != nil {
		return 0, err
	}

	byContract := make(map[uint][]models.Invoice)
	for _, inv := range invoices {
		byContract[inv.ContractID] = append(byContract[inv.ContractID], inv)
	}

	applied := 0
	for contractID, group := range byContract {
		contract := group[0].Contract
		err := withContractLock(ctx, s.cache, contractID, func() error {
			for i := range group {
				inv := group[i]
				prevStatus := inv.Status
				finance.ApplyLateFee(&inv, contract, s.now())
				if inv.Status == prevStatus {
					continue
				}
				inv.Contract = models.Contract{} // avoid re-saving the association
				if err := s.repo.SaveInvoice(ctx, &inv); err != nil {
					return err
				}
				applied++
			}
			return nil
		})
		if err != nil {
			// Keep sweeping the other contracts; this one retries next run.
			s.log.Error().Err(err).Uint("contract_id", contractID).Msg("overdue sweep failed for contract")
			continue
		}
		s.invalidateSummary(ctx, contract.UserID)
	}
	return applied, nil
}

// CloseSettledContracts flips active contracts whose schedules are fully paid
// to paid status. Returns how many contracts were closed.
func (s *LedgerService) CloseSettledContracts(ctx context.Context) (int, error) {
	contracts, err := s.repo.ActiveContracts(ctx)
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range contracts {
		contract := contracts[i]
		if !finance.AllInvoicesPaid(contract.Invoices) {
			continue
		}
		err := withContractLock(ctx, s.cache, contract.ID, func() error {
			contract.Status = models.ContractStatusPaid
			contract.Invoices = nil
			return s.repo.SaveContract(ctx, &contract)
		})
		if err != nil {
			s.log.Error().Err(err).Uint("contract_id", contract.ID).Msg("failed to close settled contract")
			continue
		}
		closed++
		s.invalidateSummary(ctx, contract.UserID)
	}
	return closed, nil
}

func (s *LedgerService) invalidateSummary(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, summaryCacheKey(userID)); err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate summary cache")
	}
}
