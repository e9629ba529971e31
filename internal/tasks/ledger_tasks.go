package tasks

import (
	"context"

	"dealership_app_echo/internal/models"
	"dealership_app_echo/internal/services"
)

// SweepOverdueTaskDef runs the overdue-invoice sweep: every unpaid invoice
// past its grace period gets its late fee assessed and flips to overdue.
// Scheduled as a recurring daily task.
type SweepOverdueTaskDef struct {
	Ledger *services.LedgerService
}

// TaskID returns the unique identifier for this task
func (t *SweepOverdueTaskDef) TaskID() string {
	return "sweep_overdue_invoices"
}

// HandleExecution applies late fees across all contracts
func (t *SweepOverdueTaskDef) HandleExecution(ctx context.Context, _ models.ScheduledTask) (map[string]interface{}, error) {
	applied, err := t.Ledger.SweepOverdueInvoices(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status":       "success",
		"fees_applied": applied,
	}, nil
}

// CloseSettledTaskDef flips fully paid contracts to paid status. Settlement
// normally does this inline; the task catches contracts settled out-of-band.
type CloseSettledTaskDef struct {
	Ledger *services.LedgerService
}

// TaskID returns the unique identifier for this task
func (t *CloseSettledTaskDef) TaskID() string {
	return "close_settled_contracts"
}

// HandleExecution closes contracts whose schedules are fully paid
func (t *CloseSettledTaskDef) HandleExecution(ctx context.Context, _ models.ScheduledTask) (map[string]interface{}, error) {
	closed, err := t.Ledger.CloseSettledContracts(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status": "success",
		"closed": closed,
	}, nil
}
