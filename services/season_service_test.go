// services/season_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"festes-portal/models"
)

func pricedSeason() models.Season {
	return models.Season{
		SeasonYear:                2025,
		NumberOfFractions:         3,
		PriceFirstFraction:        30,
		PriceSecondFraction:       30,
		PriceThirdFraction:        20,
		TotalPrice:                80,
		JuniorPriceFirstFraction:  15,
		JuniorPriceSecondFraction: 15,
		JuniorPriceThirdFraction:  10,
		JuniorTotalPrice:          40,
	}
}

// Test: junior ages get the junior tier, everyone else the standard one
func TestPricesForAge(t *testing.T) {
	season := pricedSeason()

	junior := PricesForAge(season, 15)
	assert.Equal(t, 15.0, junior.First)
	assert.Equal(t, 15.0, junior.Second)
	assert.Equal(t, 10.0, junior.Third)
	assert.Equal(t, 40.0, junior.Total)

	standard := PricesForAge(season, 30)
	assert.Equal(t, 30.0, standard.First)
	assert.Equal(t, 80.0, standard.Total)
}

// Test: the tier boundaries match the junior age range
func TestPricesForAge_Boundaries(t *testing.T) {
	season := pricedSeason()

	assert.Equal(t, 80.0, PricesForAge(season, 13).Total)
	assert.Equal(t, 40.0, PricesForAge(season, 14).Total)
	assert.Equal(t, 40.0, PricesForAge(season, 16).Total)
	assert.Equal(t, 80.0, PricesForAge(season, 17).Total)
}

// Test: partners without a birth date (age -1) pay the standard price
func TestPricesForAge_UnknownAge(t *testing.T) {
	assert.Equal(t, 80.0, PricesForAge(pricedSeason(), -1).Total)
}
