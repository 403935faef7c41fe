// Package services: services/crew_service.go
// Crew CRUD plus the registration backfill: a crew created active
// receives mirrors of the current season's games, so late-registered
// crews do not drift from the roster.
package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"festes-portal/database"
	"festes-portal/logger"
	"festes-portal/models"
)

// CrewService reads and writes the crews collection and its games
// mirror subcollections.
type CrewService struct {
	client *firestore.Client
	games  *GameService
	retry  RetryConfig
}

// NewCrewService wires the crew service to the game service whose
// documents it mirrors.
func NewCrewService(client *firestore.Client, games *GameService) *CrewService {
	return &CrewService{client: client, games: games, retry: DefaultRetryConfig()}
}

// ListCrews returns every crew document.
func (s *CrewService) ListCrews(ctx context.Context) ([]models.Crew, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.Crew, error) {
		var crews []models.Crew
		iter := s.client.Collection(database.CrewsCollection).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var crew models.Crew
			if err := doc.DataTo(&crew); err != nil {
				return nil, err
			}
			crew.ID = doc.Ref.ID
			crews = append(crews, crew)
		}
		return crews, nil
	})
}

// GetCrew fetches one crew by ID; nil when it does not exist.
func (s *CrewService) GetCrew(ctx context.Context, crewID string) (*models.Crew, error) {
	doc, err := s.client.Collection(database.CrewsCollection).Doc(crewID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var crew models.Crew
	if err := doc.DataTo(&crew); err != nil {
		return nil, err
	}
	crew.ID = doc.Ref.ID
	return &crew, nil
}

// CreateCrew writes a new crew. An active crew is immediately
// backfilled with mirrors of its season's games.
func (s *CrewService) CreateCrew(ctx context.Context, crew models.Crew) (*models.Crew, error) {
	ref := s.client.Collection(database.CrewsCollection).NewDoc()
	if _, err := ref.Create(ctx, crew); err != nil {
		return nil, fmt.Errorf("creating crew %q: %w", crew.Title, err)
	}
	crew.ID = ref.ID
	logger.Info.Printf("[CreateCrew] Created crew %q (%s)", crew.Title, ref.ID)

	if crew.Status == models.GameStatusActive {
		if err := s.BackfillGames(ctx, crew.ID, crew.Season); err != nil {
			return &crew, fmt.Errorf("backfilling games for crew %s: %w", ref.ID, err)
		}
	}
	return &crew, nil
}

// BackfillGames seeds the crew's games subcollection with a mirror of
// every game in the given season. Mirrors that already exist keep
// their participation fields: only canonical game fields are merged in.
func (s *CrewService) BackfillGames(ctx context.Context, crewID, season string) error {
	games, err := s.games.ListGames(ctx)
	if err != nil {
		return err
	}

	var seeded int
	batch := s.client.Batch()
	batched := 0
	for _, game := range games {
		if season != "" && game.Season != season {
			continue
		}
		ref := s.client.Collection(database.CrewsCollection).Doc(crewID).
			Collection(database.GamesCollection).Doc(game.ID)
		batch.Set(ref, map[string]interface{}{
			"gameName":   game.Name,
			"gameSeason": game.Season,
			"gameDate":   game.Date,
			"gameStatus": game.Status,
		}, firestore.MergeAll)
		seeded++
		batched++
		if batched == maxBatchOps {
			if _, err := batch.Commit(ctx); err != nil {
				return err
			}
			batch = s.client.Batch()
			batched = 0
		}
	}
	if batched > 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return err
		}
	}
	logger.Info.Printf("[BackfillGames] Crew %s seeded with %d game mirrors", crewID, seeded)
	return nil
}

// ListCrewGames returns the crew's mirrored games.
func (s *CrewService) ListCrewGames(ctx context.Context, crewID string) ([]models.CrewGame, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.CrewGame, error) {
		var games []models.CrewGame
		iter := s.client.Collection(database.CrewsCollection).Doc(crewID).
			Collection(database.GamesCollection).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var game models.CrewGame
			if err := doc.DataTo(&game); err != nil {
				return nil, err
			}
			game.ID = doc.Ref.ID
			games = append(games, game)
		}
		return games, nil
	})
}

// SetCrewGameResult updates the crew-owned fields of one mirror:
// participation status and the points the crew scored in the game.
func (s *CrewService) SetCrewGameResult(ctx context.Context, crewID, gameID, participationStatus string, points int) error {
	ref := s.client.Collection(database.CrewsCollection).Doc(crewID).
		Collection(database.GamesCollection).Doc(gameID)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "participationStatus", Value: participationStatus},
		{Path: "points", Value: points},
	})
	if err != nil {
		return fmt.Errorf("setting result for crew %s game %s: %w", crewID, gameID, err)
	}
	return nil
}

// TotalPoints sums the points across a crew's mirrored games.
func (s *CrewService) TotalPoints(ctx context.Context, crewID string) (int, error) {
	games, err := s.ListCrewGames(ctx, crewID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, game := range games {
		total += game.Points
	}
	return total, nil
}

// UpdateCrew applies a partial update to a crew document.
func (s *CrewService) UpdateCrew(ctx context.Context, crewID string, fields map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(fields)+1)
	for field, value := range fields {
		updates = append(updates, firestore.Update{Path: field, Value: value})
	}
	updates = append(updates, firestore.Update{Path: "lastUpdateDate", Value: firestore.ServerTimestamp})

	ref := s.client.Collection(database.CrewsCollection).Doc(crewID)
	if _, err := ref.Update(ctx, updates); err != nil {
		return fmt.Errorf("updating crew %s: %w", crewID, err)
	}
	return nil
}
