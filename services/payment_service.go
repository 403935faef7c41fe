// Package services: services/payment_service.go
// Seasonal payment bookkeeping: classifying a partner's payment
// documents against the season roster and creating/updating the
// per-season payment records.
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"festes-portal/database"
	"festes-portal/logger"
	"festes-portal/models"
)

// ----------------------- pure classification -----------------------

// ClassifySeasons partitions the season roster at the given reference
// time. The active bucket holds the first season encountered with
// active=true (the single-active invariant is enforced at write time by
// SeasonService, not here). Inactive seasons split into historical
// (year <= current year) and future.
func ClassifySeasons(seasons []models.Season, now time.Time) models.SeasonBuckets {
	var buckets models.SeasonBuckets
	currentYear := now.Year()

	for i := range seasons {
		season := seasons[i]
		if season.Active {
			if buckets.Active == nil {
				buckets.Active = &season
			} else {
				logger.Warn.Printf("[ClassifySeasons] More than one active season; keeping %d, ignoring %d",
					buckets.Active.SeasonYear, season.SeasonYear)
			}
			continue
		}
		if season.SeasonYear <= currentYear {
			buckets.Historical = append(buckets.Historical, season)
		} else {
			buckets.Future = append(buckets.Future, season)
		}
	}
	return buckets
}

// ClassifyPayments buckets a partner's payments against classified
// seasons. A payment is current iff its year equals the active season's
// year; historical iff its year matches a historical season. Payments
// matching neither bucket are dropped. Historical payments come back
// sorted descending by season year.
func ClassifyPayments(buckets models.SeasonBuckets, payments []models.Payment) models.PartnerPayments {
	result := models.PartnerPayments{Historical: []models.Payment{}}

	historicalYears := make(map[int]bool, len(buckets.Historical))
	for _, season := range buckets.Historical {
		historicalYears[season.SeasonYear] = true
	}

	for i := range payments {
		payment := payments[i]
		if payment.SeasonYear == 0 {
			continue
		}
		if buckets.Active != nil && payment.SeasonYear == buckets.Active.SeasonYear {
			if result.Current == nil {
				result.Current = &payment
			}
			continue
		}
		if historicalYears[payment.SeasonYear] {
			result.Historical = append(result.Historical, payment)
		}
	}

	sort.SliceStable(result.Historical, func(i, j int) bool {
		return result.Historical[i].SeasonYear > result.Historical[j].SeasonYear
	})
	return result
}

// ----------------------- input shapes -----------------------

// PaymentInput carries a new payment document. Date fields accept a
// string, a time.Time or null, matching what the web forms send.
type PaymentInput struct {
	SeasonYear         int         `json:"seasonYear"`
	FirstPaymentDone   bool        `json:"firstPaymentDone"`
	FirstPaymentDate   interface{} `json:"firstPaymentDate"`
	FirstPaymentPrice  float64     `json:"firstPaymentPrice"`
	SecondPaymentDone  bool        `json:"secondPaymentDone"`
	SecondPaymentDate  interface{} `json:"secondPaymentDate"`
	SecondPaymentPrice float64     `json:"secondPaymentPrice"`
	ThirdPaymentDone   bool        `json:"thirdPaymentDone"`
	ThirdPaymentDate   interface{} `json:"thirdPaymentDate"`
	ThirdPaymentPrice  float64     `json:"thirdPaymentPrice"`
}

// UpdatePaymentInput is a partial payment update; nil fields are left
// untouched. Dates are normalized the same way as on create.
type UpdatePaymentInput struct {
	FirstPaymentDone   *bool       `json:"firstPaymentDone"`
	FirstPaymentDate   interface{} `json:"firstPaymentDate"`
	FirstPaymentPrice  *float64    `json:"firstPaymentPrice"`
	SecondPaymentDone  *bool       `json:"secondPaymentDone"`
	SecondPaymentDate  interface{} `json:"secondPaymentDate"`
	SecondPaymentPrice *float64    `json:"secondPaymentPrice"`
	ThirdPaymentDone   *bool       `json:"thirdPaymentDone"`
	ThirdPaymentDate   interface{} `json:"thirdPaymentDate"`
	ThirdPaymentPrice  *float64    `json:"thirdPaymentPrice"`
}

// NormalizePaymentDates coerces the three date fields of a payment
// input into concrete *time.Time values (nil for empty or invalid).
func NormalizePaymentDates(input PaymentInput) (first, second, third *time.Time) {
	return NormalizeDate(input.FirstPaymentDate),
		NormalizeDate(input.SecondPaymentDate),
		NormalizeDate(input.ThirdPaymentDate)
}

// ----------------------- service -----------------------

// PaymentService reads and writes partners/{id}/payments documents.
type PaymentService struct {
	client *firestore.Client
	retry  RetryConfig
}

// NewPaymentService creates a PaymentService with the default read
// retry budget.
func NewPaymentService(client *firestore.Client) *PaymentService {
	return &PaymentService{client: client, retry: DefaultRetryConfig()}
}

func (s *PaymentService) paymentsRef(partnerID string) *firestore.CollectionRef {
	return s.client.Collection(database.PartnersCollection).Doc(partnerID).Collection(database.PaymentsCollection)
}

// fetchSeasons reads the full season roster, retrying transient failures.
func (s *PaymentService) fetchSeasons(ctx context.Context) ([]models.Season, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.Season, error) {
		var seasons []models.Season
		iter := s.client.Collection(database.SeasonsCollection).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var season models.Season
			if err := doc.DataTo(&season); err != nil {
				return nil, err
			}
			season.ID = doc.Ref.ID
			seasons = append(seasons, season)
		}
		return seasons, nil
	})
}

// fetchPayments reads every payment document under a partner, retrying
// transient failures.
func (s *PaymentService) fetchPayments(ctx context.Context, partnerID string) ([]models.Payment, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.Payment, error) {
		var payments []models.Payment
		iter := s.paymentsRef(partnerID).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var payment models.Payment
			if err := doc.DataTo(&payment); err != nil {
				return nil, err
			}
			payment.ID = doc.Ref.ID
			payments = append(payments, payment)
		}
		return payments, nil
	})
}

// GetPartnerPaymentsByStatus returns the partner's current-season
// payment plus the historical ones, per the classification rules above.
// A partner with no payments, or a roster with no active season, yields
// {Current: nil, Historical: []}.
func (s *PaymentService) GetPartnerPaymentsByStatus(ctx context.Context, partnerID string) (models.PartnerPayments, error) {
	seasons, err := s.fetchSeasons(ctx)
	if err != nil {
		return models.PartnerPayments{}, fmt.Errorf("fetching seasons: %w", err)
	}
	payments, err := s.fetchPayments(ctx, partnerID)
	if err != nil {
		return models.PartnerPayments{}, fmt.Errorf("fetching payments for partner %s: %w", partnerID, err)
	}
	return ClassifyPayments(ClassifySeasons(seasons, time.Now()), payments), nil
}

// GetPartnerPaymentForSeason finds the partner's payment for a given
// season year. With fallbackToAll set, a missing match degrades to the
// most recently created payment (legacy documents without seasonYear
// tagging); this is best effort, not a correctness guarantee.
func (s *PaymentService) GetPartnerPaymentForSeason(ctx context.Context, partnerID string, seasonYear int, fallbackToAll bool) (*models.Payment, error) {
	payments, err := s.fetchPayments(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		if payments[i].SeasonYear == seasonYear {
			return &payments[i], nil
		}
	}
	if !fallbackToAll || len(payments) == 0 {
		return nil, nil
	}

	// Most recently created first; documents without createdAt sort last.
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	logger.Warn.Printf("[GetPartnerPaymentForSeason] No payment for partner %s season %d; falling back to latest (%s)",
		partnerID, seasonYear, payments[0].ID)
	return &payments[0], nil
}

// CreatePaymentForPartner writes a new payment document for the given
// season unless one already exists; the result tags which case
// happened so callers need not treat duplicates as errors.
func (s *PaymentService) CreatePaymentForPartner(ctx context.Context, partnerID string, input PaymentInput, userID string) (models.PaymentResult, error) {
	existing, err := s.GetPartnerPaymentForSeason(ctx, partnerID, input.SeasonYear, false)
	if err != nil {
		return models.PaymentResult{}, err
	}
	if existing != nil {
		logger.Info.Printf("[CreatePaymentForPartner] Partner %s already has a payment for season %d", partnerID, input.SeasonYear)
		return models.PaymentResult{Created: false, Existing: true, Payment: existing}, nil
	}

	first, second, third := NormalizePaymentDates(input)
	payment := models.Payment{
		SeasonYear:         input.SeasonYear,
		FirstPaymentDone:   input.FirstPaymentDone,
		FirstPaymentDate:   first,
		FirstPaymentPrice:  input.FirstPaymentPrice,
		SecondPaymentDone:  input.SecondPaymentDone,
		SecondPaymentDate:  second,
		SecondPaymentPrice: input.SecondPaymentPrice,
		ThirdPaymentDone:   input.ThirdPaymentDone,
		ThirdPaymentDate:   third,
		ThirdPaymentPrice:  input.ThirdPaymentPrice,
		UserID:             userID,
	}

	ref := s.paymentsRef(partnerID).NewDoc()
	if _, err := ref.Create(ctx, payment); err != nil {
		return models.PaymentResult{}, fmt.Errorf("creating payment for partner %s: %w", partnerID, err)
	}
	payment.ID = ref.ID
	logger.Info.Printf("[CreatePaymentForPartner] Created payment %s for partner %s season %d", ref.ID, partnerID, input.SeasonYear)
	return models.PaymentResult{Created: true, Existing: false, Payment: &payment}, nil
}

// UpdatePartnerPayment applies a partial update to one payment
// document, restamping lastUpdateDate and userId. Unset fields are
// left as they were (merge, not replace).
func (s *PaymentService) UpdatePartnerPayment(ctx context.Context, partnerID, paymentID string, input UpdatePaymentInput, userID string) error {
	updates := []firestore.Update{
		{Path: "lastUpdateDate", Value: firestore.ServerTimestamp},
		{Path: "userId", Value: userID},
	}

	if input.FirstPaymentDone != nil {
		updates = append(updates, firestore.Update{Path: "firstPaymentDone", Value: *input.FirstPaymentDone})
	}
	if input.FirstPaymentDate != nil {
		updates = append(updates, firestore.Update{Path: "firstPaymentDate", Value: NormalizeDate(input.FirstPaymentDate)})
	}
	if input.FirstPaymentPrice != nil {
		updates = append(updates, firestore.Update{Path: "firstPaymentPrice", Value: *input.FirstPaymentPrice})
	}
	if input.SecondPaymentDone != nil {
		updates = append(updates, firestore.Update{Path: "secondPaymentDone", Value: *input.SecondPaymentDone})
	}
	if input.SecondPaymentDate != nil {
		updates = append(updates, firestore.Update{Path: "secondPaymentDate", Value: NormalizeDate(input.SecondPaymentDate)})
	}
	if input.SecondPaymentPrice != nil {
		updates = append(updates, firestore.Update{Path: "secondPaymentPrice", Value: *input.SecondPaymentPrice})
	}
	if input.ThirdPaymentDone != nil {
		updates = append(updates, firestore.Update{Path: "thirdPaymentDone", Value: *input.ThirdPaymentDone})
	}
	if input.ThirdPaymentDate != nil {
		updates = append(updates, firestore.Update{Path: "thirdPaymentDate", Value: NormalizeDate(input.ThirdPaymentDate)})
	}
	if input.ThirdPaymentPrice != nil {
		updates = append(updates, firestore.Update{Path: "thirdPaymentPrice", Value: *input.ThirdPaymentPrice})
	}

	ref := s.paymentsRef(partnerID).Doc(paymentID)
	if _, err := ref.Update(ctx, updates); err != nil {
		return fmt.Errorf("updating payment %s for partner %s: %w", paymentID, partnerID, err)
	}
	logger.Info.Printf("[UpdatePartnerPayment] Updated payment %s for partner %s", paymentID, partnerID)
	return nil
}
