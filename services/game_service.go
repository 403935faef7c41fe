// Package services: services/game_service.go
// Game CRUD plus the denormalized fan-out into each active crew's
// games subcollection. The crew copies are a materialized mirror kept
// in sync here, not by the database.
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

// maxBatchOps caps one committed write batch, below Firestore's hard
// 500-operation limit.
const maxBatchOps = 450

// mirroredGameFields maps canonical game fields to their names inside
// the crews/{id}/games mirror. Edits touching anything else do not fan
// out.
var mirroredGameFields = map[string]string{
	"name":   "gameName",
	"season": "gameSeason",
	"date":   "gameDate",
	"status": "gameStatus",
}

// chunk splits items into runs of at most size elements.
func chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// GameService reads and writes the games collection and keeps the crew
// mirrors in sync.
type GameService struct {
	client *firestore.Client
	retry  RetryConfig
}

// NewGameService creates a GameService with the default read retry budget.
func NewGameService(client *firestore.Client) *GameService {
	return &GameService{client: client, retry: DefaultRetryConfig()}
}

// ----------------------- reads -----------------------

// ListGames returns every game document.
func (s *GameService) ListGames(ctx context.Context) ([]models.Game, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.Game, error) {
		var games []models.Game
		iter := s.client.Collection(database.GamesCollection).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var game models.Game
			if err := doc.DataTo(&game); err != nil {
				return nil, err
			}
			game.ID = doc.Ref.ID
			games = append(games, game)
		}
		return games, nil
	})
}

// GetGame fetches one game by ID; nil when it does not exist.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	doc, err := s.client.Collection(database.GamesCollection).Doc(gameID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var game models.Game
	if err := doc.DataTo(&game); err != nil {
		return nil, err
	}
	game.ID = doc.Ref.ID
	return &game, nil
}

// ----------------------- writes -----------------------

// CreateGame writes the canonical game document and fans a denormalized
// copy out into the games subcollection of every crew whose status is
// "Activo".
func (s *GameService) CreateGame(ctx context.Context, game models.Game) (*models.Game, error) {
	ref := s.client.Collection(database.GamesCollection).NewDoc()
	if _, err := ref.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("creating game %q: %w", game.Name, err)
	}
	game.ID = ref.ID
	logger.Info.Printf("[CreateGame] Created game %q (%s)", game.Name, ref.ID)

	if err := s.fanOutNewGame(ctx, game); err != nil {
		return &game, fmt.Errorf("fanning out game %s to crews: %w", ref.ID, err)
	}
	return &game, nil
}

// fanOutNewGame seeds the denormalized copy into every active crew.
func (s *GameService) fanOutNewGame(ctx context.Context, game models.Game) error {
	crewIDs, err := s.activeCrewIDs(ctx)
	if err != nil {
		return err
	}

	mirror := models.CrewGame{
		GameName:            game.Name,
		GameSeason:          game.Season,
		GameDate:            game.Date,
		GameStatus:          game.Status,
		ParticipationStatus: "",
		Points:              0,
	}

	for _, ids := range chunk(crewIDs, maxBatchOps) {
		batch := s.client.Batch()
		for _, crewID := range ids {
			ref := s.crewGameRef(crewID, game.ID)
			batch.Set(ref, mirror)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return err
		}
	}
	logger.Info.Printf("[fanOutNewGame] Game %s mirrored into %d active crews", game.ID, len(crewIDs))
	return nil
}

// UpdateGame applies a partial update to the canonical document and, if
// any mirrored field changed, propagates it to every crew that already
// holds the game's subdocument.
func (s *GameService) UpdateGame(ctx context.Context, gameID string, fields map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(fields)+1)
	for field, value := range fields {
		updates = append(updates, firestore.Update{Path: field, Value: value})
	}
	updates = append(updates, firestore.Update{Path: "lastUpdateDate", Value: firestore.ServerTimestamp})

	ref := s.client.Collection(database.GamesCollection).Doc(gameID)
	if _, err := ref.Update(ctx, updates); err != nil {
		return fmt.Errorf("updating game %s: %w", gameID, err)
	}

	mirrored := mirrorUpdates(fields)
	if len(mirrored) == 0 {
		return nil
	}
	return s.UpdateGameInCrews(ctx, gameID, mirrored)
}

// UpdateGameStatusInCrews propagates only a status change into the crew
// mirrors.
func (s *GameService) UpdateGameStatusInCrews(ctx context.Context, gameID, newStatus string) error {
	return s.UpdateGameInCrews(ctx, gameID, []firestore.Update{
		{Path: "gameStatus", Value: newStatus},
	})
}

// UpdateGameInCrews applies the given mirror-field updates to
// crews/{id}/games/{gameID} for every crew that holds the subdocument.
// Crews are checked for the copy first; writes go out in batches of at
// most maxBatchOps, committed incrementally. The existence check and
// the batched write are not transactional: a crew deleted in between is
// silently skipped.
func (s *GameService) UpdateGameInCrews(ctx context.Context, gameID string, updates []firestore.Update) error {
	crewIDs, err := s.allCrewIDs(ctx)
	if err != nil {
		return err
	}

	var targets []*firestore.DocumentRef
	for _, crewID := range crewIDs {
		ref := s.crewGameRef(crewID, gameID)
		_, err := ref.Get(ctx)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				continue
			}
			return fmt.Errorf("checking crew %s for game %s: %w", crewID, gameID, err)
		}
		targets = append(targets, ref)
	}

	batches := chunk(targets, maxBatchOps)
	for _, refs := range batches {
		batch := s.client.Batch()
		for _, ref := range refs {
			batch.Update(ref, updates)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing crew mirror batch for game %s: %w", gameID, err)
		}
	}
	logger.Info.Printf("[UpdateGameInCrews] Game %s: %d crew mirrors updated in %d batches",
		gameID, len(targets), len(batches))
	return nil
}

// DeleteGame removes the canonical document and every crew mirror.
func (s *GameService) DeleteGame(ctx context.Context, gameID string) error {
	crewIDs, err := s.allCrewIDs(ctx)
	if err != nil {
		return err
	}

	var targets []*firestore.DocumentRef
	for _, crewID := range crewIDs {
		ref := s.crewGameRef(crewID, gameID)
		if _, err := ref.Get(ctx); err != nil {
			if status.Code(err) == codes.NotFound {
				continue
			}
			return err
		}
		targets = append(targets, ref)
	}

	for _, refs := range chunk(targets, maxBatchOps) {
		batch := s.client.Batch()
		for _, ref := range refs {
			batch.Delete(ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return err
		}
	}

	if _, err := s.client.Collection(database.GamesCollection).Doc(gameID).Delete(ctx); err != nil {
		return fmt.Errorf("deleting game %s: %w", gameID, err)
	}
	logger.Info.Printf("[DeleteGame] Deleted game %s and %d crew mirrors", gameID, len(targets))
	return nil
}

// ----------------------- helpers -----------------------

// mirrorUpdates translates canonical-field updates into the mirror's
// field names, dropping fields that are not mirrored.
func mirrorUpdates(fields map[string]interface{}) []firestore.Update {
	var updates []firestore.Update
	for field, value := range fields {
		if mirrorName, ok := mirroredGameFields[field]; ok {
			updates = append(updates, firestore.Update{Path: mirrorName, Value: value})
		}
	}
	return updates
}

func (s *GameService) crewGameRef(crewID, gameID string) *firestore.DocumentRef {
	return s.client.Collection(database.CrewsCollection).Doc(crewID).
		Collection(database.GamesCollection).Doc(gameID)
}

func (s *GameService) allCrewIDs(ctx context.Context) ([]string, error) {
	return s.crewIDs(ctx, false)
}

func (s *GameService) activeCrewIDs(ctx context.Context) ([]string, error) {
	return s.crewIDs(ctx, true)
}

func (s *GameService) crewIDs(ctx context.Context, activeOnly bool) ([]string, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]string, error) {
		query := s.client.Collection(database.CrewsCollection).Query
		if activeOnly {
			query = query.Where("status", "==", models.GameStatusActive)
		}
		var ids []string
		iter := query.Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			ids = append(ids, doc.Ref.ID)
		}
		return ids, nil
	})
}
