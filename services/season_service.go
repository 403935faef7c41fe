// Package services: services/season_service.go
// Season lifecycle. ActivateSeason is the only writer of the active
// flag, and the season-activation payment fan-out lives here.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"

	"festes-portal/database"
	"festes-portal/logger"
	"festes-portal/models"
)

// fanOutConcurrency bounds the number of partners whose payments are
// created in parallel during season activation.
const fanOutConcurrency = 4

// SeasonService reads and writes the seasons collection and drives the
// activation fan-out into each approved partner's payments.
type SeasonService struct {
	client   *firestore.Client
	payments *PaymentService
	retry    RetryConfig
}

// NewSeasonService wires the season service to the payment service it
// fans out through.
func NewSeasonService(client *firestore.Client, payments *PaymentService) *SeasonService {
	return &SeasonService{client: client, payments: payments, retry: DefaultRetryConfig()}
}

// ----------------------- pricing -----------------------

// FractionPrices is the per-tier price set applied to a new payment.
type FractionPrices struct {
	First  float64
	Second float64
	Third  float64
	Total  float64
}

// PricesForAge selects the season's price tier for a partner of the
// given age: junior for 14-16 inclusive, standard otherwise.
func PricesForAge(season models.Season, age int) FractionPrices {
	if IsJuniorAge(age) {
		return FractionPrices{
			First:  season.JuniorPriceFirstFraction,
			Second: season.JuniorPriceSecondFraction,
			Third:  season.JuniorPriceThirdFraction,
			Total:  season.JuniorTotalPrice,
		}
	}
	return FractionPrices{
		First:  season.PriceFirstFraction,
		Second: season.PriceSecondFraction,
		Third:  season.PriceThirdFraction,
		Total:  season.TotalPrice,
	}
}

// ----------------------- reads -----------------------

// ListSeasons returns the full season roster, newest year first.
func (s *SeasonService) ListSeasons(ctx context.Context) ([]models.Season, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.Season, error) {
		var seasons []models.Season
		iter := s.client.Collection(database.SeasonsCollection).
			OrderBy("seasonYear", firestore.Desc).Documents(ctx)
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

// GetActiveSeason returns the active season, or nil when none is active.
func (s *SeasonService) GetActiveSeason(ctx context.Context) (*models.Season, error) {
	seasons, err := s.ListSeasons(ctx)
	if err != nil {
		return nil, err
	}
	buckets := ClassifySeasons(seasons, time.Now())
	return buckets.Active, nil
}

// ----------------------- writes -----------------------

// CreateSeason writes a new season document. When active is requested
// the flag is not written here: the season is stored inactive and then
// activated through ActivateSeason so the single-active invariant has
// exactly one enforcement point. Returns the season plus the fan-out
// report (zero-valued when the season was created inactive).
func (s *SeasonService) CreateSeason(ctx context.Context, season models.Season, activate bool, userID string) (*models.Season, models.FanOutReport, error) {
	season.Active = false
	ref := s.client.Collection(database.SeasonsCollection).NewDoc()
	if _, err := ref.Create(ctx, season); err != nil {
		return nil, models.FanOutReport{}, fmt.Errorf("creating season %d: %w", season.SeasonYear, err)
	}
	season.ID = ref.ID
	logger.Info.Printf("[CreateSeason] Created season %d (%s)", season.SeasonYear, ref.ID)

	if !activate {
		return &season, models.FanOutReport{}, nil
	}

	report, err := s.ActivateSeason(ctx, ref.ID, userID)
	if err != nil {
		return &season, report, err
	}
	season.Active = true
	return &season, report, nil
}

// ActivateSeason flips the active flag to the given season and clears
// it from any previously active one, in a single transaction, then fans
// a payment document out to every approved partner. The fan-out itself
// is not transactional; per-partner failures are isolated and counted.
func (s *SeasonService) ActivateSeason(ctx context.Context, seasonID, userID string) (models.FanOutReport, error) {
	seasonRef := s.client.Collection(database.SeasonsCollection).Doc(seasonID)

	var activated models.Season
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(seasonRef)
		if err != nil {
			return err
		}
		if err := doc.DataTo(&activated); err != nil {
			return err
		}
		activated.ID = doc.Ref.ID

		// All reads must happen before the first write.
		activeQuery := s.client.Collection(database.SeasonsCollection).Where("active", "==", true)
		activeDocs, err := tx.Documents(activeQuery).GetAll()
		if err != nil {
			return err
		}

		for _, active := range activeDocs {
			if active.Ref.ID == seasonID {
				continue
			}
			logger.Info.Printf("[ActivateSeason] Deactivating season %s", active.Ref.ID)
			if err := tx.Update(active.Ref, []firestore.Update{
				{Path: "active", Value: false},
				{Path: "lastUpdateDate", Value: firestore.ServerTimestamp},
			}); err != nil {
				return err
			}
		}

		return tx.Update(seasonRef, []firestore.Update{
			{Path: "active", Value: true},
			{Path: "lastUpdateDate", Value: firestore.ServerTimestamp},
		})
	})
	if err != nil {
		return models.FanOutReport{}, fmt.Errorf("activating season %s: %w", seasonID, err)
	}
	activated.Active = true
	logger.Info.Printf("[ActivateSeason] Season %d (%s) is now active", activated.SeasonYear, seasonID)

	return s.fanOutPayments(ctx, activated, userID)
}

// fanOutPayments creates the season's payment document for every
// approved partner, priced by the partner's age tier. Partners that
// already hold a payment for the season count as skipped; individual
// failures are logged and counted, never abort the rest.
func (s *SeasonService) fanOutPayments(ctx context.Context, season models.Season, userID string) (models.FanOutReport, error) {
	partners, err := s.fetchApprovedPartners(ctx)
	if err != nil {
		return models.FanOutReport{}, fmt.Errorf("listing approved partners: %w", err)
	}

	var mu sync.Mutex
	var report models.FanOutReport
	now := time.Now()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fanOutConcurrency)

	for i := range partners {
		partner := partners[i]
		group.Go(func() error {
			input := buildSeasonPaymentInput(season, partner, now)
			result, err := s.payments.CreatePaymentForPartner(groupCtx, partner.ID, input, userID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
				logger.Error.Printf("[fanOutPayments] Payment for partner %s failed: %v", partner.ID, err)
			case result.Existing:
				report.Skipped++
			default:
				report.Created++
			}
			// Errors are recorded, not returned: one partner must not
			// cancel the remaining fan-out.
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return report, err
	}
	logger.Info.Printf("[fanOutPayments] Season %d fan-out done: created=%d skipped=%d failed=%d",
		season.SeasonYear, report.Created, report.Skipped, report.Failed)
	return report, nil
}

// buildSeasonPaymentInput assembles the fan-out payment for one
// partner. Partners without a birth date get the standard tier.
func buildSeasonPaymentInput(season models.Season, partner models.Partner, now time.Time) PaymentInput {
	age := -1
	if partner.BirthDate != nil {
		age = AgeAt(*partner.BirthDate, now)
	}
	prices := PricesForAge(season, age)
	return PaymentInput{
		SeasonYear:         season.SeasonYear,
		FirstPaymentPrice:  prices.First,
		SecondPaymentPrice: prices.Second,
		ThirdPaymentPrice:  prices.Third,
	}
}

func (s *SeasonService) fetchApprovedPartners(ctx context.Context) ([]models.Partner, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.Partner, error) {
		var partners []models.Partner
		iter := s.client.Collection(database.PartnersCollection).
			Where("status", "==", models.PartnerStatusApproved).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var partner models.Partner
			if err := doc.DataTo(&partner); err != nil {
				return nil, err
			}
			partner.ID = doc.Ref.ID
			partners = append(partners, partner)
		}
		return partners, nil
	})
}

// UpdateSeason applies a partial update to a season's pricing fields.
// The active flag is deliberately not updatable here.
func (s *SeasonService) UpdateSeason(ctx context.Context, seasonID string, updates []firestore.Update) error {
	for _, u := range updates {
		if u.Path == "active" {
			return fmt.Errorf("the active flag can only be changed through ActivateSeason")
		}
	}
	updates = append(updates, firestore.Update{Path: "lastUpdateDate", Value: firestore.ServerTimestamp})
	ref := s.client.Collection(database.SeasonsCollection).Doc(seasonID)
	if _, err := ref.Update(ctx, updates); err != nil {
		return fmt.Errorf("updating season %s: %w", seasonID, err)
	}
	return nil
}
