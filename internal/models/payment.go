package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentStatus represents the verification state of a payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusVerified PaymentStatus = "verified"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodGiro     PaymentMethod = "giro"
)

// Payment records money received against a contract. Payments are stored
// independently of invoices; the ledger allocates them across the schedule,
// so a payment may arrive before full reconciliation.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ContractID uint `gorm:"index" json:"contract_id"`
	UserID     uint `gorm:"index" json:"user_id"`

	Amount   float64       `gorm:"type:decimal(15,2)" json:"amount"`
	Method   PaymentMethod `gorm:"type:varchar(20)" json:"method"`
	ProofRef string        `gorm:"type:varchar(100)" json:"proof_ref"` // transfer slip reference, empty for cash

	Status     PaymentStatus `gorm:"type:varchar(20);index;default:'pending'" json:"status"`
	VerifiedAt *time.Time    `json:"verified_at"`

	// Relationships
	Contract Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
