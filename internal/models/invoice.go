package models

import (
	"time"

	"gorm.io/gorm"
)

// InvoiceStatus represents the state of a single installment invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice represents one installment of a contract schedule. Each invoice
// carries a digest of its own canonical fields chained to the previous
// invoice's digest, so retroactive edits are detectable.
type Invoice struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UUID          string `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	InvoiceNumber string `gorm:"type:varchar(50);uniqueIndex" json:"invoice_number"`

	ContractID       uint `gorm:"index" json:"contract_id"`
	InstallmentIndex int  `json:"installment_index"` // 1-based, <= contract InstallmentCount

	AmountDue  float64 `gorm:"type:decimal(15,2)" json:"amount_due"`
	AmountPaid float64 `gorm:"type:decimal(15,2)" json:"amount_paid"`
	LateFee    float64 `gorm:"type:decimal(15,2)" json:"late_fee"` // 0 until overdue

	DueDate     time.Time  `gorm:"index" json:"due_date"`
	PaymentDate *time.Time `json:"payment_date"`

	Status InvoiceStatus `gorm:"type:varchar(20);index;default:'pending'" json:"status"`

	// QRHash is the chain digest of this invoice's canonical fields.
	// PrevQRHash equals the previous installment's QRHash; empty for index 1.
	QRHash     string `gorm:"type:varchar(64)" json:"qr_hash"`
	PrevQRHash string `gorm:"type:varchar(64)" json:"prev_qr_hash"`

	// Relationships
	Contract Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

// Outstanding returns what is still owed on the invoice, late fee included.
func (i Invoice) Outstanding() float64 {
	out := i.AmountDue + i.LateFee - i.AmountPaid
	if out < 0 {
		return 0
	}
	return out
}
