// Package repository owns all storage access for contracts, invoices and
// payments. Services receive the ContractRepository interface, never a raw
// database handle, so the ledger logic stays testable against any backend.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dealership_app_echo/internal/apperrors"
	"dealership_app_echo/internal/models"
)

// ContractRepository is the persistence boundary of the financing core.
type ContractRepository interface {
	// CreateContractWithSchedule inserts the contract and its full invoice
	// schedule in one transaction. buildSchedule receives the assigned
	// contract id and returns the invoices to insert; if any insert fails the
	// whole contract rolls back.
	CreateContractWithSchedule(ctx context.Context, contract *models.Contract, buildSchedule func(contractID uint) []models.Invoice) error

	ContractByID(ctx context.Context, id uint) (*models.Contract, error)
	ContractsByUser(ctx context.Context, userID uint) ([]models.Contract, error)
	// ActiveContracts lists active contracts with their invoices preloaded.
	ActiveContracts(ctx context.Context) ([]models.Contract, error)
	SaveContract(ctx context.Context, contract *models.Contract) error

	InvoiceByID(ctx context.Context, id uint) (*models.Invoice, error)
	InvoicesByContract(ctx context.Context, contractID uint) ([]models.Invoice, error)
	SaveInvoice(ctx context.Context, invoice *models.Invoice) error

	// DueUnpaidInvoices lists unpaid invoices whose due date is on or before
	// the cutoff, contract preloaded, for the overdue sweep.
	DueUnpaidInvoices(ctx context.Context, cutoff time.Time) ([]models.Invoice, error)

	PaymentByID(ctx context.Context, id uint) (*models.Payment, error)
	SavePayment(ctx context.Context, payment *models.Payment) error

	// SettlePayment persists a payment together with the invoice and contract
	// mutations its allocation produced, atomically.
	SettlePayment(ctx context.Context, payment *models.Payment, invoices []*models.Invoice, contract *models.Contract) error
}

// GormContractRepository implements ContractRepository on gorm.
type GormContractRepository struct {
	db *gorm.DB
}

func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

func (r *GormContractRepository) CreateContractWithSchedule(ctx context.Context, contract *models.Contract, buildSchedule func(contractID uint) []models.Invoice) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(contract).Error; err != nil {
			return err
		}
		invoices := buildSchedule(contract.ID)
		for i := range invoices {
			if err := tx.Create(&invoices[i]).Error; err != nil {
				return err
			}
		}
		contract.Invoices = invoices
		return nil
	})
	if err != nil {
		return &apperrors.PersistenceError{Op: "create contract schedule", Err: err}
	}
	return nil
}

func (r *GormContractRepository) ContractByID(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).First(&contract, id).Error; err != nil {
		return nil, translate("contract", id, "load contract", err)
	}
	return &contract, nil
}

func (r *GormContractRepository) ContractsByUser(ctx context.Context, userID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Preload("Invoices", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_index asc")
		}).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&contracts).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list contracts", Err: err}
	}
	return contracts, nil
}

func (r *GormContractRepository) ActiveContracts(ctx context.Context) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Preload("Invoices", func(db *gorm.DB) *gorm.DB {
			return db.Order("installment_index asc")
		}).
		Where("status = ?", models.ContractStatusActive).
		Find(&contracts).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list active contracts", Err: err}
	}
	return contracts, nil
}

func (r *GormContractRepository) SaveContract(ctx context.Context, contract *models.Contract) error {
	if err := r.db.WithContext(ctx).Save(contract).Error; err != nil {
		return &apperrors.PersistenceError{Op: "save contract", Err: err}
	}
	return nil
}

func (r *GormContractRepository) InvoiceByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, id).Error; err != nil {
		return nil, translate("invoice", id, "load invoice", err)
	}
	return &invoice, nil
}

func (r *GormContractRepository) InvoicesByContract(ctx context.Context, contractID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("installment_index asc").
		Find(&invoices).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list invoices", Err: err}
	}
	return invoices, nil
}

func (r *GormContractRepository) SaveInvoice(ctx context.Context, invoice *models.Invoice) error {
	if err := r.db.WithContext(ctx).Save(invoice).Error; err != nil {
		return &apperrors.PersistenceError{Op: "save invoice", Err: err}
	}
	return nil
}

func (r *GormContractRepository) DueUnpaidInvoices(ctx context.Context, cutoff time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Where("status <> ? AND due_date <= ?", models.InvoiceStatusPaid, cutoff).
		Order("contract_id asc, installment_index asc").
		Find(&invoices).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list due invoices", Err: err}
	}
	return invoices, nil
}

func (r *GormContractRepository) PaymentByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, translate("payment", id, "load payment", err)
	}
	return &payment, nil
}

func (r *GormContractRepository) SavePayment(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Save(payment).Error; err != nil {
		return &apperrors.PersistenceError{Op: "save payment", Err: err}
	}
	return nil
}

func (r *GormContractRepository) SettlePayment(ctx context.Context, payment *models.Payment, invoices []*models.Invoice, contract *models.Contract) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(payment).Error; err != nil {
			return err
		}
		for _, inv := range invoices {
			if err := tx.Save(inv).Error; err != nil {
				return err
			}
		}
		if contract != nil {
			if err := tx.Save(contract).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &apperrors.PersistenceError{Op: "settle payment", Err: err}
	}
	return nil
}

func translate(entity string, id uint, op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &apperrors.NotFoundError{Entity: entity, ID: id}
	}
	return &apperrors.PersistenceError{Op: op, Err: err}
}
