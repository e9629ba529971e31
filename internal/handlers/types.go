package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"dealership_app_echo/internal/middleware"
	"dealership_app_echo/internal/models"
	"dealership_app_echo/internal/services"
)

// currentUserID pulls the authenticated user id set by the auth middleware.
func currentUserID(c echo.Context) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return id, nil
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}

// ownedContract loads a contract and rejects callers who do not own it.
// Foreign contracts are reported as missing so ids cannot be probed.
func ownedContract(c echo.Context, contracts *services.ContractService, contractID uint) (*models.Contract, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}
	contract, err := contracts.ContractByID(c.Request().Context(), contractID)
	if err != nil {
		return nil, err
	}
	if contract.UserID != userID {
		return nil, echo.NewHTTPError(http.StatusNotFound, "contract not found")
	}
	return contract, nil
}
