// Package models defines data structures used across the application.
// File: models/season.go
package models

import "time"

// ----------------------- season model -----------------------

// Season is a yearly fee configuration. At most one season should be
// active at a time; the active flag is only ever written by
// SeasonService.ActivateSeason.
type Season struct {
	ID                        string    `firestore:"-" json:"id"`
	SeasonYear                int       `firestore:"seasonYear" json:"seasonYear"`
	Active                    bool      `firestore:"active" json:"active"`
	NumberOfFractions         int       `firestore:"numberOfFractions" json:"numberOfFractions"`
	PriceFirstFraction        float64   `firestore:"priceFirstFraction" json:"priceFirstFraction"`
	PriceSecondFraction       float64   `firestore:"priceSecondFraction" json:"priceSecondFraction"`
	PriceThirdFraction        float64   `firestore:"priceThirdFraction" json:"priceThirdFraction"`
	TotalPrice                float64   `firestore:"totalPrice" json:"totalPrice"`
	JuniorPriceFirstFraction  float64   `firestore:"juniorPriceFirstFraction" json:"juniorPriceFirstFraction"`
	JuniorPriceSecondFraction float64   `firestore:"juniorPriceSecondFraction" json:"juniorPriceSecondFraction"`
	JuniorPriceThirdFraction  float64   `firestore:"juniorPriceThirdFraction" json:"juniorPriceThirdFraction"`
	JuniorTotalPrice          float64   `firestore:"juniorTotalPrice" json:"juniorTotalPrice"`
	CreatedAt                 time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	LastUpdate                time.Time `firestore:"lastUpdateDate,serverTimestamp" json:"lastUpdateDate"`
}

// SeasonBuckets is the partition produced by ClassifySeasons.
type SeasonBuckets struct {
	Active     *Season
	Historical []Season
	Future     []Season
}

// FanOutReport summarises a season-activation payment fan-out.
type FanOutReport struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
