package models

import (
	"time"

	"gorm.io/gorm"
)

// CarAnalysis holds the appraisal attributes of a vehicle. It is stored as a
// JSON column but decoded into this typed value object at the repository
// boundary; optional attributes are explicit pointers, never probed maps.
type CarAnalysis struct {
	ConditionScore       float64    `json:"condition_score"` // 0.0 - 1.0
	Mileage              float64    `json:"mileage"`         // kilometers
	OwnerCount           int        `json:"owner_count"`
	ServicedRegularly    bool       `json:"serviced_regularly"`
	InspectionMonthsLeft int        `json:"inspection_months_left"`
	EstimatedPrice       *float64   `json:"estimated_price,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
	AnalyzedAt           *time.Time `json:"analyzed_at,omitempty"`
}

// Vehicle represents a car in the dealership inventory
type Vehicle struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	VIN         string `gorm:"type:varchar(50);uniqueIndex" json:"vin"`
	PlateNumber string `gorm:"type:varchar(20)" json:"plate_number"`
	Brand       string `gorm:"type:varchar(100)" json:"brand"`
	Model       string `gorm:"type:varchar(100)" json:"model"`
	Category    string `gorm:"type:varchar(50)" json:"category"` // sedan, suv, mpv, ...
	Year        int    `json:"year"`

	Analysis *CarAnalysis `gorm:"serializer:json" json:"analysis,omitempty"`
}
