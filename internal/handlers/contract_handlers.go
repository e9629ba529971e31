package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"dealership_app_echo/internal/apperrors"
	"dealership_app_echo/internal/finance"
	"dealership_app_echo/internal/models"
	"dealership_app_echo/internal/services"
)

// ContractHandler serves contract creation and contract-level queries.
type ContractHandler struct {
	contracts *services.ContractService
}

func NewContractHandler(contracts *services.ContractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

type createContractRequest struct {
	UserID      uint    `json:"user_id"` // customer; defaults to the caller
	SaleID      uint    `json:"sale_id"`
	BasePrice   float64 `json:"base_price"`
	Months      int     `json:"months"`
	DownPayment float64 `json:"down_payment"`
	DueDay      int     `json:"due_day"`

	VIN          string `json:"vin"`
	PlateNumber  string `json:"plate_number"`
	VehicleModel string `json:"vehicle_model"`

	LateFeeType     models.LateFeeType `json:"late_fee_type"`
	LateFeeAmount   float64            `json:"late_fee_amount"`
	GracePeriodDays int                `json:"grace_period_days"`
}

// CreateContract derives the financing plan and opens the contract with its
// full invoice schedule.
func (h *ContractHandler) CreateContract(c echo.Context) error {
	callerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req createContractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	plan, err := finance.CalculatePlan(req.BasePrice, req.Months, req.DownPayment)
	if err != nil {
		return err
	}

	userID := req.UserID
	if userID == 0 {
		userID = callerID
	}

	contract, err := h.contracts.CreateContract(c.Request().Context(), services.CreateContractInput{
		UserID: userID,
		SaleID: req.SaleID,
		Plan:   plan,
		Vehicle: services.VehicleInfo{
			VIN:         req.VIN,
			PlateNumber: req.PlateNumber,
			Model:       req.VehicleModel,
		},
		DueDay:          req.DueDay,
		LateFeeType:     req.LateFeeType,
		LateFeeAmount:   req.LateFeeAmount,
		GracePeriodDays: req.GracePeriodDays,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, contract)
}

// ListContracts returns the caller's contracts with their schedules.
func (h *ContractHandler) ListContracts(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	contracts, err := h.contracts.ContractsByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contracts)
}

// GetContract returns one of the caller's contracts.
func (h *ContractHandler) GetContract(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	contract, err := ownedContract(c, h.contracts, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contract)
}

// ListContractInvoices returns the invoice schedule ordered by installment.
func (h *ContractHandler) ListContractInvoices(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if _, err := ownedContract(c, h.contracts, id); err != nil {
		return err
	}
	invoices, err := h.contracts.ListInvoices(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoices)
}

// VerifyContractChain recomputes the invoice hash chain and reports whether
// it is intact. A broken chain is reported in the body, not repaired.
func (h *ContractHandler) VerifyContractChain(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if _, err := ownedContract(c, h.contracts, id); err != nil {
		return err
	}

	valid, err := h.contracts.VerifyInvoiceChain(c.Request().Context(), id)
	if err != nil {
		var chainErr *apperrors.ChainIntegrityError
		if errors.As(err, &chainErr) {
			return c.JSON(http.StatusOK, map[string]interface{}{
				"valid":       false,
				"installment": chainErr.InstallmentIndex,
				"detail":      chainErr.Detail,
			})
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"valid": valid})
}

type rescheduleRequest struct {
	DueDay          *int       `json:"due_day"`
	GracePeriodDays *int       `json:"grace_period_days"`
	NextPaymentDate *time.Time `json:"next_payment_date"`
}

// RescheduleContract applies the single mutable terms override. Past
// invoices are untouched.
func (h *ContractHandler) RescheduleContract(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if _, err := ownedContract(c, h.contracts, id); err != nil {
		return err
	}

	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.DueDay == nil && req.GracePeriodDays == nil && req.NextPaymentDate == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to reschedule")
	}

	contract, err := h.contracts.Reschedule(c.Request().Context(), id, services.RescheduleInput{
		DueDay:          req.DueDay,
		GracePeriodDays: req.GracePeriodDays,
		NextPaymentDate: req.NextPaymentDate,
	})
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, contract)
}

// CancelContract cancels an active contract.
func (h *ContractHandler) CancelContract(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if _, err := ownedContract(c, h.contracts, id); err != nil {
		return err
	}
	contract, err := h.contracts.Cancel(c.Request().Context(), id)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, contract)
}

// mapDomainError turns plain state-transition errors into 400s while letting
// taxonomy errors reach the central handler untouched.
func mapDomainError(err error) error {
	var (
		notFound    *apperrors.NotFoundError
		persistence *apperrors.PersistenceError
	)
	if errors.As(err, &notFound) || errors.As(err, &persistence) {
		return err
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
