package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"dealership_app_echo/internal/models"
	"dealership_app_echo/internal/pricing"
)

// VehicleHandler serves the dealership inventory and price estimation.
type VehicleHandler struct {
	db *gorm.DB
}

func NewVehicleHandler(db *gorm.DB) *VehicleHandler {
	return &VehicleHandler{db: db}
}

type createVehicleRequest struct {
	VIN         string              `json:"vin"`
	PlateNumber string              `json:"plate_number"`
	Brand       string              `json:"brand"`
	Model       string              `json:"model"`
	Category    string              `json:"category"`
	Year        int                 `json:"year"`
	Analysis    *models.CarAnalysis `json:"analysis"`
}

// CreateVehicle registers a vehicle, optionally with its appraisal analysis.
// When an analysis is present the estimated price is computed and stored with it.
func (h *VehicleHandler) CreateVehicle(c echo.Context) error {
	var req createVehicleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.VIN == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "vin is required")
	}

	vehicle := models.Vehicle{
		VIN:         req.VIN,
		PlateNumber: req.PlateNumber,
		Brand:       req.Brand,
		Model:       req.Model,
		Category:    req.Category,
		Year:        req.Year,
		Analysis:    req.Analysis,
	}

	if vehicle.Analysis != nil {
		now := time.Now().UTC()
		price := pricing.Estimate(pricing.FromAnalysis(vehicle, *vehicle.Analysis), now)
		vehicle.Analysis.EstimatedPrice = &price
		vehicle.Analysis.AnalyzedAt = &now
	}

	if err := h.db.Create(&vehicle).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create vehicle")
	}
	return c.JSON(http.StatusCreated, vehicle)
}

// ListVehicles returns the inventory, newest first.
func (h *VehicleHandler) ListVehicles(c echo.Context) error {
	var vehicles []models.Vehicle
	if err := h.db.Order("created_at desc").Find(&vehicles).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch vehicles")
	}
	return c.JSON(http.StatusOK, vehicles)
}

type estimateRequest struct {
	Category             string  `json:"category"`
	Brand                string  `json:"brand"`
	Year                 int     `json:"year"`
	ConditionScore       float64 `json:"condition_score"`
	Mileage              float64 `json:"mileage"`
	OwnerCount           int     `json:"owner_count"`
	ServicedRegularly    bool    `json:"serviced_regularly"`
	InspectionMonthsLeft int     `json:"inspection_months_left"`
}

// EstimatePrice estimates a sale price from posted car attributes.
func (h *VehicleHandler) EstimatePrice(c echo.Context) error {
	var req estimateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	price := pricing.Estimate(pricing.CarAttributes{
		Category:             req.Category,
		Brand:                req.Brand,
		Year:                 req.Year,
		ConditionScore:       req.ConditionScore,
		Mileage:              req.Mileage,
		OwnerCount:           req.OwnerCount,
		ServicedRegularly:    req.ServicedRegularly,
		InspectionMonthsLeft: req.InspectionMonthsLeft,
	}, time.Now().UTC())

	return c.JSON(http.StatusOK, map[string]float64{"estimated_price": price})
}
