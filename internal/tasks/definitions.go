package tasks

import "dealership_app_echo/internal/services"

// DefineTasks registers all available tasks
func DefineTasks(ledger *services.LedgerService) {
	// Register general tasks
	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	// Register ledger tasks
	sweep := &SweepOverdueTaskDef{Ledger: ledger}
	RegisterHandler(sweep.TaskID(), sweep.HandleExecution)

	closeSettled := &CloseSettledTaskDef{Ledger: ledger}
	RegisterHandler(closeSettled.TaskID(), closeSettled.HandleExecution)
}
