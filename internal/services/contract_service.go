package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dealership_app_echo/internal/apperrors"
	"dealership_app_echo/internal/finance"
	"dealership_app_echo/internal/models"
	"dealership_app_echo/internal/repository"
)

// Default late fee policy applied when contract creation does not specify one.
const (
	DefaultGracePeriodDays = 3
	DefaultLateFeeAmount   = 50_000
)

// VehicleInfo carries the vehicle identifiers denormalized onto a contract.
type VehicleInfo struct {
	VIN         string
	PlateNumber string
	Model       string
}

// CreateContractInput bundles everything needed to open a financing contract.
type CreateContractInput struct {
	UserID  uint
	SaleID  uint
	Plan    *finance.Plan
	Vehicle VehicleInfo
	DueDay  int

	// Optional late fee policy; zero values take the defaults above.
	LateFeeType     models.LateFeeType
	LateFeeAmount   float64
	GracePeriodDays int
}

// ContractService creates contracts with their invoice schedules and serves
// contract-level queries.
type ContractService struct {
	repo  repository.ContractRepository
	cache *RedisCache
	log   zerolog.Logger
	now   func() time.Time
}

func NewContractService(repo repository.ContractRepository, cache *RedisCache, log zerolog.Logger) *ContractService {
	return &ContractService{
		repo:  repo,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

// CreateContract opens a financing contract and persists its full invoice
// schedule atomically. Either the contract and every invoice commit, or
// nothing does.
func (s *ContractService) CreateContract(ctx context.Context, in CreateContractInput) (*models.Contract, error) {
	if in.Plan == nil {
		return nil, &apperrors.InvalidPlanError{Reason: "missing financing plan"}
	}

	now := s.now().UTC()
	dueDay := finance.ClampDueDay(in.DueDay)
	nextPayment := finance.DueDateFor(now, 1, dueDay)

	feeType := in.LateFeeType
	if feeType == "" {
		feeType = models.LateFeeFixed
	}
	feeAmount := in.LateFeeAmount
	if feeAmount == 0 && feeType == models.LateFeeFixed {
		feeAmount = DefaultLateFeeAmount
	}
	grace := in.GracePeriodDays
	if grace == 0 {
		grace = DefaultGracePeriodDays
	}

	contract := &models.Contract{
		UserID:             in.UserID,
		SaleID:             in.SaleID,
		TotalPrice:         in.Plan.TotalWithTax,
		DownPayment:        in.Plan.DownPayment,
		RemainingPrincipal: in.Plan.RemainingAfterDown,
		InstallmentCount:   in.Plan.Months,
		MonthlyInstallment: in.Plan.MonthlyInstallment,
		InterestRate:       in.Plan.InterestRate,
		LateFeeType:        feeType,
		LateFeeAmount:      feeAmount,
		GracePeriodDays:    grace,
		PaymentDueDay:      dueDay,
		NextPaymentDate:    &nextPayment,
		Status:             models.ContractStatusActive,
		VIN:                in.Vehicle.VIN,
		PlateNumber:        in.Vehicle.PlateNumber,
		VehicleModel:       in.Vehicle.Model,
	}

	plan := in.Plan
	err := s.repo.CreateContractWithSchedule(ctx, contract, func(contractID uint) []models.Invoice {
		return finance.GenerateSchedule(contractID, plan, dueDay, now)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, in.UserID)
	s.log.Info().
		Uint("contract_id", contract.ID).
		Uint("user_id", in.UserID).
		Int("installments", plan.Months).
		Msg("contract created with invoice schedule")
	return contract, nil
}

// ContractByID returns one contract.
func (s *ContractService) ContractByID(ctx context.Context, contractID uint) (*models.Contract, error) {
	return s.repo.ContractByID(ctx, contractID)
}

// ContractsByUser lists a user's contracts, invoices preloaded in order.
func (s *ContractService) ContractsByUser(ctx context.Context, userID uint) ([]models.Contract, error) {
	return s.repo.ContractsByUser(ctx, userID)
}

// ListInvoices returns a contract's invoices ordered by installment index.
// A missing contract is an error, never an empty list.
func (s *ContractService) ListInvoices(ctx context.Context, contractID uint) ([]models.Invoice, error) {
	if _, err := s.repo.ContractByID(ctx, contractID); err != nil {
		return nil, err
	}
	return s.repo.InvoicesByContract(ctx, contractID)
}

// VerifyInvoiceChain recomputes the digest chain of a contract's schedule.
// Returns false with the ChainIntegrityError describing the first break.
func (s *ContractService) VerifyInvoiceChain(ctx context.Context, contractID uint) (bool, error) {
	invoices, err := s.ListInvoices(ctx, contractID)
	if err != nil {
		return false, err
	}
	if err := finance.VerifyChain(invoices); err != nil {
		var chainErr *apperrors.ChainIntegrityError
		if errors.As(err, &chainErr) {
			s.log.Warn().
				Uint("contract_id", contractID).
				Int("installment", chainErr.InstallmentIndex).
				Msg("invoice chain verification failed")
		}
		return false, err
	}
	return true, nil
}

// RescheduleInput is the single mutable terms override a contract allows.
// Past invoices are never regenerated.
type RescheduleInput struct {
	DueDay          *int
	GracePeriodDays *int
	NextPaymentDate *time.Time
}

// Reschedule overrides due-day, grace period and/or next payment date on an
// active contract. Nil fields keep their current values.
func (s *ContractService) Reschedule(ctx context.Context, contractID uint, in RescheduleInput) (*models.Contract, error) {
	var contract *models.Contract
	err := withContractLock(ctx, s.cache, contractID, func() error {
		var err error
		contract, err = s.repo.ContractByID(ctx, contractID)
		if err != nil {
			return err
		}
		if contract.Status != models.ContractStatusActive {
			return fmt.Errorf("contract %d is %s and cannot be rescheduled", contractID, contract.Status)
		}

		if in.DueDay != nil {
			contract.PaymentDueDay = finance.ClampDueDay(*in.DueDay)
		}
		if in.GracePeriodDays != nil && *in.GracePeriodDays >= 0 {
			contract.GracePeriodDays = *in.GracePeriodDays
		}
		if in.NextPaymentDate != nil {
			next := in.NextPaymentDate.UTC()
			contract.NextPaymentDate = &next
		}
		return s.repo.SaveContract(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, contract.UserID)
	return contract, nil
}

// Cancel flips an active contract to cancelled. Settled contracts stay paid.
func (s *ContractService) Cancel(ctx context.Context, contractID uint) (*models.Contract, error) {
	var contract *models.Contract
	err := withContractLock(ctx, s.cache, contractID, func() error {
		var err error
		contract, err = s.repo.ContractByID(ctx, contractID)
		if err != nil {
			return err
		}
		switch contract.Status {
		case models.ContractStatusCancelled:
			return nil // already cancelled
		case models.ContractStatusPaid:
			return fmt.Errorf("contract %d is fully paid and cannot be cancelled", contractID)
		}
		contract.Status = models.ContractStatusCancelled
		return s.repo.SaveContract(ctx, contract)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, contract.UserID)
	return contract, nil
}

func (s *ContractService) invalidateSummary(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, summaryCacheKey(userID)); err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate summary cache")
	}
}
