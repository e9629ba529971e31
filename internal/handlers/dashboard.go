package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dealership_app_echo/internal/services"
)

// DashboardHandler serves the aggregate financial view
type DashboardHandler struct {
	ledger *services.LedgerService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(ledger *services.LedgerService) *DashboardHandler {
	return &DashboardHandler{ledger: ledger}
}

// FinancialSummary returns the caller's debt position: outstanding total,
// amount paid so far, active contracts, overdue invoices and the nearest
// unpaid installment.
func (h *DashboardHandler) FinancialSummary(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	summary, err := h.ledger.GetFinancialSummary(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
