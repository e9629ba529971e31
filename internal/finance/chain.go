package finance

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"dealership_app_echo/internal/apperrors"
	"dealership_app_echo/internal/models"
)

// HashLength is the number of hex characters kept from the sha256 digest.
// 32 hex chars (16 bytes) keeps the QR payload short while staying
// collision-resistant for per-contract chains.
const HashLength = 32

// InvoiceDigest computes the chain digest for one invoice over the canonical
// serialization of its identity fields plus the previous invoice's digest.
// prevHash is empty for the first installment. The due date participates as a
// UTC calendar date so the digest does not depend on server timezone.
func InvoiceDigest(invoiceNumber string, contractID uint, index int, amountDue float64, dueDate time.Time, prevHash string) string {
	canonical := fmt.Sprintf("%s|%d|%d|%.2f|%s|%s",
		invoiceNumber, contractID, index, amountDue,
		dueDate.UTC().Format("2006-01-02"), prevHash)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:HashLength]
}

// VerifyChain recomputes every digest of a contract's invoice sequence and
// compares against the stored hashes. Invoices must be ordered by installment
// index. A mismatch is reported as *apperrors.ChainIntegrityError; stored
// hashes are never rewritten.
func VerifyChain(invoices []models.Invoice) error {
	prev := ""
	for i, inv := range invoices {
		if inv.InstallmentIndex != i+1 {
			return &apperrors.ChainIntegrityError{
				ContractID:       inv.ContractID,
				InstallmentIndex: inv.InstallmentIndex,
				Detail:           fmt.Sprintf("expected installment %d at position %d", i+1, inv.InstallmentIndex),
			}
		}
		if inv.PrevQRHash != prev {
			return &apperrors.ChainIntegrityError{
				ContractID:       inv.ContractID,
				InstallmentIndex: inv.InstallmentIndex,
				Detail:           "previous-hash link does not match prior invoice",
			}
		}
		digest := InvoiceDigest(inv.InvoiceNumber, inv.ContractID, inv.InstallmentIndex, inv.AmountDue, inv.DueDate, inv.PrevQRHash)
		if digest != inv.QRHash {
			return &apperrors.ChainIntegrityError{
				ContractID:       inv.ContractID,
				InstallmentIndex: inv.InstallmentIndex,
				Detail:           "stored hash does not match recomputed digest",
			}
		}
		prev = inv.QRHash
	}
	return nil
}
