package apperrors

import "fmt"

// InvalidPlanError indicates rejected financing inputs (non-positive principal,
// down payment covering the whole price, or an unsupported tenor).
type InvalidPlanError struct {
	Reason string
}

func (e *InvalidPlanError) Error() string {
	return "invalid plan: " + e.Reason
}

// NotFoundError indicates a referenced entity is absent from storage.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ChainIntegrityError indicates the recomputed invoice hash chain does not match
// what is stored. It is reported, never repaired: stored hashes must not be
// overwritten once written.
type ChainIntegrityError struct {
	ContractID       uint
	InstallmentIndex int
	Detail           string
}

func (e *ChainIntegrityError) Error() string {
	return fmt.Sprintf("invoice chain broken for contract %d at installment %d: %s",
		e.ContractID, e.InstallmentIndex, e.Detail)
}

// PersistenceError wraps a storage layer failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
