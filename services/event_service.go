// Package services: services/event_service.go
// Events, their dynamic participation forms (formCamps) and the
// inscriptions submitted through them.
package services

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"festes-portal/database"
	"festes-portal/logger"
	"festes-portal/models"
)

// ErrEventNotFound is returned when an event ID or slug resolves to nothing.
var ErrEventNotFound = errors.New("event not found")

// EventService reads and writes events, form fields and inscriptions.
type EventService struct {
	client *firestore.Client
	retry  RetryConfig
}

// NewEventService creates an EventService.
func NewEventService(client *firestore.Client) *EventService {
	return &EventService{client: client, retry: DefaultRetryConfig()}
}

// CreateEvent writes a new event; the slug is derived from the title.
func (s *EventService) CreateEvent(ctx context.Context, event models.Event, fields []models.FormField) (*models.Event, error) {
	if event.Title == "" {
		return nil, errors.New("event title is required")
	}
	event.Slug = Slugify(event.Title)

	ref := s.client.Collection(database.EventsCollection).NewDoc()
	if _, err := ref.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("creating event %q: %w", event.Title, err)
	}
	event.ID = ref.ID

	if event.NeedForm {
		for _, field := range fields {
			fieldRef := ref.Collection(database.FormFieldsCollection).NewDoc()
			if _, err := fieldRef.Create(ctx, field); err != nil {
				return &event, fmt.Errorf("creating form field %q for event %s: %w", field.Label, ref.ID, err)
			}
		}
	}
	logger.Info.Printf("[CreateEvent] Created event %q (%s, slug=%s)", event.Title, ref.ID, event.Slug)
	return &event, nil
}

// ListEvents returns every event document.
func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.Event, error) {
		var events []models.Event
		iter := s.client.Collection(database.EventsCollection).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var event models.Event
			if err := doc.DataTo(&event); err != nil {
				return nil, err
			}
			event.ID = doc.Ref.ID
			events = append(events, event)
		}
		return events, nil
	})
}

// GetEventBySlug resolves an event by its slug.
func (s *EventService) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	docs, err := s.client.Collection(database.EventsCollection).
		Where("slug", "==", slug).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrEventNotFound
	}
	var event models.Event
	if err := docs[0].DataTo(&event); err != nil {
		return nil, err
	}
	event.ID = docs[0].Ref.ID
	return &event, nil
}

// GetEvent fetches one event by ID.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	doc, err := s.client.Collection(database.EventsCollection).Doc(eventID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	var event models.Event
	if err := doc.DataTo(&event); err != nil {
		return nil, err
	}
	event.ID = doc.Ref.ID
	return &event, nil
}

// ListFormFields returns the event's form fields in render order.
func (s *EventService) ListFormFields(ctx context.Context, eventID string) ([]models.FormField, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.FormField, error) {
		var fields []models.FormField
		iter := s.client.Collection(database.EventsCollection).Doc(eventID).
			Collection(database.FormFieldsCollection).
			OrderBy("order", firestore.Asc).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var field models.FormField
			if err := doc.DataTo(&field); err != nil {
				return nil, err
			}
			field.ID = doc.Ref.ID
			fields = append(fields, field)
		}
		return fields, nil
	})
}

// SubmitInscription validates a form submission against the event's
// required fields and stores it.
func (s *EventService) SubmitInscription(ctx context.Context, eventID string, values map[string]interface{}) (*models.Inscription, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.NeedForm {
		return nil, errors.New("event does not accept inscriptions")
	}

	fields, err := s.ListFormFields(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, field := range fields {
		if !field.Required {
			continue
		}
		value, ok := values[field.FieldID]
		if !ok || value == nil || value == "" {
			return nil, fmt.Errorf("field %q is required", field.Label)
		}
	}

	inscription := models.Inscription{
		EventID: eventID,
		Values:  values,
	}
	ref := s.client.Collection(database.InscriptionsCollection).NewDoc()
	if _, err := ref.Create(ctx, map[string]interface{}{
		"eventId":   eventID,
		"values":    values,
		"createdAt": firestore.ServerTimestamp,
	}); err != nil {
		return nil, fmt.Errorf("storing inscription for event %s: %w", eventID, err)
	}
	inscription.ID = ref.ID
	logger.Info.Printf("[SubmitInscription] Stored inscription %s for event %s", ref.ID, eventID)
	return &inscription, nil
}

// ListInscriptions returns the submissions for one event.
func (s *EventService) ListInscriptions(ctx context.Context, eventID string) ([]models.Inscription, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.Inscription, error) {
		var inscriptions []models.Inscription
		iter := s.client.Collection(database.InscriptionsCollection).
			Where("eventId", "==", eventID).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var inscription models.Inscription
			if err := doc.DataTo(&inscription); err != nil {
				return nil, err
			}
			inscription.ID = doc.Ref.ID
			inscriptions = append(inscriptions, inscription)
		}
		return inscriptions, nil
	})
}

// DeleteEvent removes an event, its form fields and its inscriptions.
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	eventRef := s.client.Collection(database.EventsCollection).Doc(eventID)

	fieldDocs, err := eventRef.Collection(database.FormFieldsCollection).Documents(ctx).GetAll()
	if err != nil {
		return err
	}
	inscriptionDocs, err := s.client.Collection(database.InscriptionsCollection).
		Where("eventId", "==", eventID).Documents(ctx).GetAll()
	if err != nil {
		return err
	}

	var refs []*firestore.DocumentRef
	for _, doc := range fieldDocs {
		refs = append(refs, doc.Ref)
	}
	for _, doc := range inscriptionDocs {
		refs = append(refs, doc.Ref)
	}
	refs = append(refs, eventRef)

	for _, batchRefs := range chunk(refs, maxBatchOps) {
		batch := s.client.Batch()
		for _, ref := range batchRefs {
			batch.Delete(ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("deleting event %s: %w", eventID, err)
		}
	}
	logger.Info.Printf("[DeleteEvent] Deleted event %s (%d related documents)", eventID, len(refs)-1)
	return nil
}
