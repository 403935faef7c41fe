// services/payment_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festes-portal/models"
)

func seasonRoster() []models.Season {
	return []models.Season{
		{ID: "s2025", SeasonYear: 2025, Active: true},
		{ID: "s2024", SeasonYear: 2024},
		{ID: "s2023", SeasonYear: 2023},
		{ID: "s2026", SeasonYear: 2026},
	}
}

// Test: seasons split into active / historical / future buckets
func TestClassifySeasons(t *testing.T) {
	now := time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC)

	buckets := ClassifySeasons(seasonRoster(), now)

	require.NotNil(t, buckets.Active)
	assert.Equal(t, 2025, buckets.Active.SeasonYear)
	require.Len(t, buckets.Historical, 2)
	assert.ElementsMatch(t, []int{2024, 2023},
		[]int{buckets.Historical[0].SeasonYear, buckets.Historical[1].SeasonYear})
	require.Len(t, buckets.Future, 1)
	assert.Equal(t, 2026, buckets.Future[0].SeasonYear)
}

// Test: with two seasons flagged active, the first one wins
func TestClassifySeasons_DuplicateActive(t *testing.T) {
	seasons := []models.Season{
		{ID: "s2025", SeasonYear: 2025, Active: true},
		{ID: "s2024", SeasonYear: 2024, Active: true},
	}

	buckets := ClassifySeasons(seasons, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	require.NotNil(t, buckets.Active)
	assert.Equal(t, 2025, buckets.Active.SeasonYear)
	assert.Empty(t, buckets.Historical)
}

// Test: no active season leaves the active bucket nil
func TestClassifySeasons_NoActive(t *testing.T) {
	seasons := []models.Season{{SeasonYear: 2024}, {SeasonYear: 2023}}

	buckets := ClassifySeasons(seasons, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.Nil(t, buckets.Active)
	assert.Len(t, buckets.Historical, 2)
}

// Test: a payment is current iff its year matches the active season
func TestClassifyPayments(t *testing.T) {
	now := time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC)
	buckets := ClassifySeasons(seasonRoster(), now)

	payments := []models.Payment{
		{ID: "p2023", SeasonYear: 2023},
		{ID: "p2025", SeasonYear: 2025},
		{ID: "p2024", SeasonYear: 2024},
	}

	result := ClassifyPayments(buckets, payments)

	require.NotNil(t, result.Current)
	assert.Equal(t, "p2025", result.Current.ID)
	require.Len(t, result.Historical, 2)
	assert.Equal(t, 2024, result.Historical[0].SeasonYear, "historical must be sorted newest first")
	assert.Equal(t, 2023, result.Historical[1].SeasonYear)
}

// Test: payments without a season year, or whose year matches no
// season, are dropped
func TestClassifyPayments_DropsUnmatched(t *testing.T) {
	buckets := ClassifySeasons(seasonRoster(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	payments := []models.Payment{
		{ID: "missing-year"},
		{ID: "unknown-season", SeasonYear: 2010},
	}

	result := ClassifyPayments(buckets, payments)

	assert.Nil(t, result.Current)
	assert.Empty(t, result.Historical)
}

// Test: a partner with no payments gets nil current and an empty slice,
// never a nil slice
func TestClassifyPayments_NoPayments(t *testing.T) {
	buckets := ClassifySeasons(seasonRoster(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	result := ClassifyPayments(buckets, nil)

	assert.Nil(t, result.Current)
	assert.NotNil(t, result.Historical)
	assert.Empty(t, result.Historical)
}

// Test: duplicate payments for the active season keep only the first
func TestClassifyPayments_DuplicateCurrent(t *testing.T) {
	buckets := ClassifySeasons(seasonRoster(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	payments := []models.Payment{
		{ID: "first", SeasonYear: 2025},
		{ID: "second", SeasonYear: 2025},
	}

	result := ClassifyPayments(buckets, payments)

	require.NotNil(t, result.Current)
	assert.Equal(t, "first", result.Current.ID)
	assert.Empty(t, result.Historical)
}

// Test: date fields accept strings, time values and nulls
func TestNormalizePaymentDates(t *testing.T) {
	paid := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	input := PaymentInput{
		SeasonYear:        2025,
		FirstPaymentDate:  "2025-03-15",
		SecondPaymentDate: paid,
		ThirdPaymentDate:  nil,
	}

	first, second, third := NormalizePaymentDates(input)

	require.NotNil(t, first)
	assert.Equal(t, paid, *first)
	require.NotNil(t, second)
	assert.Equal(t, paid, *second)
	assert.Nil(t, third)
}
