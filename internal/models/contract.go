package models

import (
	"time"

	"gorm.io/gorm"
)

// ContractStatus represents the lifecycle state of a financing contract
type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusPaid      ContractStatus = "paid"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// LateFeeType selects how a late fee is computed for an overdue invoice
type LateFeeType string

const (
	LateFeeFixed      LateFeeType = "fixed"
	LateFeePercentage LateFeeType = "percentage"
)

// Contract represents a financed vehicle purchase. It owns the installment
// invoice schedule; invoices never outlive their contract.
type Contract struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint `gorm:"index" json:"user_id"`
	SaleID uint `gorm:"index" json:"sale_id"`

	// Financing terms, fixed at creation time
	TotalPrice         float64 `gorm:"type:decimal(15,2)" json:"total_price"` // sale price + tax
	DownPayment        float64 `gorm:"type:decimal(15,2)" json:"down_payment"`
	RemainingPrincipal float64 `gorm:"type:decimal(15,2)" json:"remaining_principal"`
	InstallmentCount   int     `json:"installment_count"`
	MonthlyInstallment float64 `gorm:"type:decimal(15,2)" json:"monthly_installment"`
	InterestRate       float64 `gorm:"type:decimal(5,4)" json:"interest_rate"`

	// Late fee policy and payment cadence. These three fields plus
	// NextPaymentDate are the only terms a reschedule may override.
	LateFeeType     LateFeeType `gorm:"type:varchar(20);default:'fixed'" json:"late_fee_type"`
	LateFeeAmount   float64     `gorm:"type:decimal(15,2)" json:"late_fee_amount"`
	GracePeriodDays int         `json:"grace_period_days"`
	PaymentDueDay   int         `json:"payment_due_day"` // day of month, 1-28
	NextPaymentDate *time.Time  `json:"next_payment_date"`

	Status ContractStatus `gorm:"type:varchar(20);index;default:'active'" json:"status"`

	// Vehicle identifiers, denormalized onto the contract at sale time
	VIN          string `gorm:"type:varchar(50)" json:"vin"`
	PlateNumber  string `gorm:"type:varchar(20)" json:"plate_number"`
	VehicleModel string `gorm:"type:varchar(100)" json:"vehicle_model"`

	// Relationships
	User     User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Invoices []Invoice `gorm:"foreignKey:ContractID" json:"invoices,omitempty"`
	Payments []Payment `gorm:"foreignKey:ContractID" json:"payments,omitempty"`
}
