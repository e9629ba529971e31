package pricing

import (
	"math"
	"strings"
	"time"

	"dealership_app_echo/internal/models"
)

// Base prices per vehicle category. Unknown categories fall back to sedan.
var basePrices = map[string]float64{
	"sedan":     180_000_000,
	"suv":       250_000_000,
	"mpv":       210_000_000,
	"hatchback": 160_000_000,
	"pickup":    190_000_000,
	"van":       200_000_000,
	"coupe":     320_000_000,
}

// Brand market factors. Unknown brands fall back to "other".
var brandFactors = map[string]float64{
	"toyota":     1.10,
	"honda":      1.08,
	"daihatsu":   1.00,
	"suzuki":     0.98,
	"mitsubishi": 1.02,
	"nissan":     0.97,
	"mazda":      1.05,
	"hyundai":    1.00,
	"kia":        0.98,
	"bmw":        1.25,
	"mercedes":   1.30,
	"other":      1.00,
}

const (
	defaultCategory = "sedan"
	defaultBrand    = "other"

	conditionWeight = 0.60
	mileageWeight   = 0.25
	ageWeight       = 0.15
)

// CarAttributes is the input to a price estimate. Category and Brand are
// free-form strings normalized against the lookup tables.
type CarAttributes struct {
	Category             string
	Brand                string
	Year                 int
	ConditionScore       float64 // 0.0 - 1.0
	Mileage              float64 // kilometers
	OwnerCount           int
	ServicedRegularly    bool
	InspectionMonthsLeft int
}

// FromAnalysis builds estimate input from a stored vehicle and its analysis.
func FromAnalysis(v models.Vehicle, a models.CarAnalysis) CarAttributes {
	return CarAttributes{
		Category:             v.Category,
		Brand:                v.Brand,
		Year:                 v.Year,
		ConditionScore:       a.ConditionScore,
		Mileage:              a.Mileage,
		OwnerCount:           a.OwnerCount,
		ServicedRegularly:    a.ServicedRegularly,
		InspectionMonthsLeft: a.InspectionMonthsLeft,
	}
}

// Estimate returns the estimated sale price for a car. It never fails: unknown
// categories and brands use defaults, and the result is clamped to >= 0 and
// rounded to 2 decimals.
func Estimate(attrs CarAttributes, now time.Time) float64 {
	base := basePrices[normalize(attrs.Category)]
	if base == 0 {
		base = basePrices[defaultCategory]
	}

	brand := brandFactors[normalize(attrs.Brand)]
	if brand == 0 {
		brand = brandFactors[defaultBrand]
	}

	condition := clamp(attrs.ConditionScore, 0, 1)

	mileageFactor := math.Max(0.1, 1-attrs.Mileage/250_000)

	ageYears := float64(now.Year() - attrs.Year)
	if ageYears < 0 {
		ageYears = 0
	}
	ageFactor := math.Max(0.1, 1-ageYears/15)

	weighted := conditionWeight*condition + mileageWeight*mileageFactor + ageWeight*ageFactor

	extraOwners := attrs.OwnerCount - 1
	if extraOwners < 0 {
		extraOwners = 0
	}
	ownerPenalty := math.Max(0.7, 1-0.02*float64(extraOwners))

	maintenanceBonus := 1.0
	if attrs.ServicedRegularly {
		maintenanceBonus = 1.05
	}

	inspectionFactor := 1.0
	switch {
	case attrs.InspectionMonthsLeft > 12:
		inspectionFactor = 1.02
	case attrs.InspectionMonthsLeft < 3:
		inspectionFactor = 0.97
	}

	price := base * weighted * brand * ownerPenalty * maintenanceBonus * inspectionFactor
	if price < 0 {
		price = 0
	}
	return math.Round(price*100) / 100
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
