package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dealership_app_echo/internal/finance"
)

// PlanHandler previews financing plans without persisting anything.
type PlanHandler struct{}

func NewPlanHandler() *PlanHandler {
	return &PlanHandler{}
}

type previewPlanRequest struct {
	BasePrice   float64 `json:"base_price"`
	Months      int     `json:"months"`
	DownPayment float64 `json:"down_payment"`
}

// PreviewPlan derives the financing terms for a given price, tenor and down
// payment so the sales flow can show them before a contract exists.
func (h *PlanHandler) PreviewPlan(c echo.Context) error {
	var req previewPlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	plan, err := finance.CalculatePlan(req.BasePrice, req.Months, req.DownPayment)
	if err != nil {
		return err // InvalidPlanError maps to 400 in the error handler
	}
	return c.JSON(http.StatusOK, plan)
}

// SupportedTenors lists the month counts a plan may use.
func (h *PlanHandler) SupportedTenors(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"months":   finance.SupportedMonths(),
		"tax_rate": finance.TaxRate,
	})
}
