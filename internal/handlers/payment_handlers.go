package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"dealership_app_echo/internal/models"
	"dealership_app_echo/internal/services"
)

// PaymentHandler serves payment recording, verification and late fees.
type PaymentHandler struct {
	ledger    *services.LedgerService
	contracts *services.ContractService
}

func NewPaymentHandler(ledger *services.LedgerService, contracts *services.ContractService) *PaymentHandler {
	return &PaymentHandler{ledger: ledger, contracts: contracts}
}

type recordPaymentRequest struct {
	Amount   float64              `json:"amount"`
	Method   models.PaymentMethod `json:"method"`
	ProofRef string               `json:"proof_ref"`
}

// RecordPayment records money received against a contract and allocates it
// across the unpaid schedule.
func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	contractID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if _, err := ownedContract(c, h.contracts, contractID); err != nil {
		return err
	}

	var req recordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Amount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "amount must be positive")
	}
	switch req.Method {
	case models.PaymentMethodCash, models.PaymentMethodTransfer, models.PaymentMethodGiro:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown payment method")
	}

	payment, err := h.ledger.RecordPayment(c.Request().Context(), contractID, req.Amount, req.Method, req.ProofRef)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, payment)
}

// VerifyPayment marks a pending payment as verified.
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	paymentID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	payment, err := h.ledger.VerifyPayment(c.Request().Context(), paymentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payment)
}

// ApplyLateFee assesses the late fee on one invoice if its grace period has
// elapsed. Safe to call repeatedly; the fee is charged at most once.
func (h *PaymentHandler) ApplyLateFee(c echo.Context) error {
	invoiceID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	fee, err := h.ledger.ApplyLateFeeIfDue(c.Request().Context(), invoiceID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]float64{"late_fee": fee})
}
