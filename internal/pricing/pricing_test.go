package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dealership_app_echo/internal/models"
)

var estimateNow = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func TestEstimate_BestCaseVehicle(t *testing.T) {
	attrs := CarAttributes{
		Category:             "suv",
		Brand:                "toyota",
		Year:                 2026,
		ConditionScore:       1.0,
		Mileage:              0,
		OwnerCount:           1,
		ServicedRegularly:    true,
		InspectionMonthsLeft: 18,
	}

	// 250M base * 1.0 weighted * 1.10 brand * 1.05 service * 1.02 inspection
	assert.Equal(t, 294_525_000.0, Estimate(attrs, estimateNow))
}

func TestEstimate_UnknownCategoryAndBrandFallBack(t *testing.T) {
	known := CarAttributes{Category: "sedan", Brand: "other", Year: 2020, ConditionScore: 0.8, Mileage: 60_000, OwnerCount: 1}
	unknown := known
	unknown.Category = "spaceship"
	unknown.Brand = "acme"

	assert.Equal(t, Estimate(known, estimateNow), Estimate(unknown, estimateNow))
}

func TestEstimate_NormalizesInput(t *testing.T) {
	lower := CarAttributes{Category: "sedan", Brand: "toyota", Year: 2022, ConditionScore: 0.9, Mileage: 30_000, OwnerCount: 1}
	messy := lower
	messy.Category = "  Sedan "
	messy.Brand = "TOYOTA"

	assert.Equal(t, Estimate(lower, estimateNow), Estimate(messy, estimateNow))
}

func TestEstimate_MileageAndAgeFloors(t *testing.T) {
	attrs := CarAttributes{
		Category:       "hatchback",
		Brand:          "suzuki",
		Year:           1990, // far past the 15 year depreciation window
		ConditionScore: 0.5,
		Mileage:        900_000, // far past the 250k km window
		OwnerCount:     1,
	}

	// both factors bottom out at 0.1, never negative
	got := Estimate(attrs, estimateNow)
	want := 160_000_000 * (0.60*0.5 + 0.25*0.1 + 0.15*0.1) * 0.98
	assert.InDelta(t, want, got, 0.01)
	assert.Greater(t, got, 0.0)
}

func TestEstimate_OwnerPenalty(t *testing.T) {
	attrs := CarAttributes{Category: "mpv", Brand: "honda", Year: 2021, ConditionScore: 0.85, Mileage: 40_000}

	attrs.OwnerCount = 1
	single := Estimate(attrs, estimateNow)
	attrs.OwnerCount = 3
	third := Estimate(attrs, estimateNow)
	attrs.OwnerCount = 40
	many := Estimate(attrs, estimateNow)

	assert.Greater(t, single, third)
	// penalty is floored at 0.7
	assert.InDelta(t, single*0.7, many, 0.01)
}

func TestEstimate_InspectionFactor(t *testing.T) {
	attrs := CarAttributes{Category: "sedan", Brand: "mazda", Year: 2023, ConditionScore: 0.9, Mileage: 20_000, OwnerCount: 1}

	attrs.InspectionMonthsLeft = 6
	neutral := Estimate(attrs, estimateNow)
	attrs.InspectionMonthsLeft = 24
	long := Estimate(attrs, estimateNow)
	attrs.InspectionMonthsLeft = 1
	expiring := Estimate(attrs, estimateNow)

	assert.Greater(t, long, neutral)
	assert.Less(t, expiring, neutral)
}

func TestEstimate_ConditionClampedAndMonotonic(t *testing.T) {
	attrs := CarAttributes{Category: "sedan", Brand: "toyota", Year: 2022, Mileage: 30_000, OwnerCount: 1}

	attrs.ConditionScore = 0.4
	low := Estimate(attrs, estimateNow)
	attrs.ConditionScore = 0.9
	high := Estimate(attrs, estimateNow)
	attrs.ConditionScore = 7.0 // clamped to 1.0
	clamped := Estimate(attrs, estimateNow)
	attrs.ConditionScore = 1.0
	full := Estimate(attrs, estimateNow)

	assert.Greater(t, high, low)
	assert.Equal(t, full, clamped)
}

func TestFromAnalysis(t *testing.T) {
	v := models.Vehicle{Category: "suv", Brand: "toyota", Year: 2022}
	a := models.CarAnalysis{
		ConditionScore:       0.85,
		Mileage:              45_000,
		OwnerCount:           2,
		ServicedRegularly:    true,
		InspectionMonthsLeft: 10,
	}

	attrs := FromAnalysis(v, a)
	assert.Equal(t, "suv", attrs.Category)
	assert.Equal(t, "toyota", attrs.Brand)
	assert.Equal(t, 2022, attrs.Year)
	assert.Equal(t, 0.85, attrs.ConditionScore)
	assert.Equal(t, 45_000.0, attrs.Mileage)
	assert.Equal(t, 2, attrs.OwnerCount)
	assert.True(t, attrs.ServicedRegularly)
	assert.Equal(t, 10, attrs.InspectionMonthsLeft)
}
