// Package services: services/partner_service.go
// Partner lifecycle: registration lands in pending, approval creates
// the active season's payment, rejection and hard delete are terminal.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"festes-portal/database"
	"festes-portal/logger"
	"festes-portal/models"
)

// ErrPartnerNotFound is returned when a partner ID resolves to nothing.
var ErrPartnerNotFound = errors.New("partner not found")

// PartnerService reads and writes the partners collection.
type PartnerService struct {
	client   *firestore.Client
	payments *PaymentService
	seasons  *SeasonService
	changes  *ChangeService
	retry    RetryConfig
}

// NewPartnerService wires the partner service to the payment, season
// and audit services it depends on.
func NewPartnerService(client *firestore.Client, payments *PaymentService, seasons *SeasonService, changes *ChangeService) *PartnerService {
	return &PartnerService{
		client:   client,
		payments: payments,
		seasons:  seasons,
		changes:  changes,
		retry:    DefaultRetryConfig(),
	}
}

// RegisterPartnerInput is a registration form submission.
type RegisterPartnerInput struct {
	Name          string      `json:"name"`
	LastName      string      `json:"lastName"`
	Email         string      `json:"email"`
	DNI           string      `json:"dni"`
	Phone         string      `json:"phone"`
	Address       string      `json:"address"`
	AccountNumber string      `json:"accountNumber"`
	BirthDate     interface{} `json:"birthDate"`
}

// Validate checks the identity fields before any network call.
func (in RegisterPartnerInput) Validate() error {
	if in.Name == "" || in.LastName == "" {
		return errors.New("name and last name are required")
	}
	if err := ValidateEmail(in.Email); err != nil {
		return err
	}
	if err := ValidateDNI(in.DNI); err != nil {
		return err
	}
	if in.Phone != "" {
		if err := ValidatePhone(in.Phone); err != nil {
			return err
		}
	}
	if in.AccountNumber != "" {
		if err := ValidateIBAN(in.AccountNumber); err != nil {
			return err
		}
	}
	return nil
}

// RegisterPartner creates a new partner in pending status.
func (s *PartnerService) RegisterPartner(ctx context.Context, input RegisterPartnerInput) (*models.Partner, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	partner := models.Partner{
		Name:          input.Name,
		LastName:      input.LastName,
		Email:         input.Email,
		DNI:           input.DNI,
		Phone:         input.Phone,
		Address:       input.Address,
		AccountNumber: input.AccountNumber,
		BirthDate:     NormalizeDate(input.BirthDate),
		Status:        models.PartnerStatusPending,
	}

	ref := s.client.Collection(database.PartnersCollection).NewDoc()
	if _, err := ref.Create(ctx, partner); err != nil {
		return nil, fmt.Errorf("registering partner %s %s: %w", input.Name, input.LastName, err)
	}
	partner.ID = ref.ID
	logger.Info.Printf("[RegisterPartner] Registered partner %s %s (%s) as pending", partner.Name, partner.LastName, ref.ID)
	return &partner, nil
}

// GetPartner fetches one partner; ErrPartnerNotFound when missing.
func (s *PartnerService) GetPartner(ctx context.Context, partnerID string) (*models.Partner, error) {
	doc, err := s.client.Collection(database.PartnersCollection).Doc(partnerID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	var partner models.Partner
	if err := doc.DataTo(&partner); err != nil {
		return nil, err
	}
	partner.ID = doc.Ref.ID
	return &partner, nil
}

// ListPartners returns partners, optionally restricted to one status.
func (s *PartnerService) ListPartners(ctx context.Context, statusFilter string) ([]models.Partner, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.Partner, error) {
		query := s.client.Collection(database.PartnersCollection).Query
		if statusFilter != "" {
			query = query.Where("status", "==", statusFilter)
		}
		var partners []models.Partner
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

// ApprovePartner flips a pending partner to approved and creates the
// payment document for the currently active season, priced by the
// partner's age tier. No active season means no payment yet; the next
// season activation will fan one out.
func (s *PartnerService) ApprovePartner(ctx context.Context, partnerID, userID string) (*models.Partner, error) {
	partner, err := s.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	ref := s.client.Collection(database.PartnersCollection).Doc(partnerID)
	if _, err := ref.Update(ctx, []firestore.Update{
		{Path: "status", Value: models.PartnerStatusApproved},
		{Path: "lastUpdateDate", Value: firestore.ServerTimestamp},
	}); err != nil {
		return nil, fmt.Errorf("approving partner %s: %w", partnerID, err)
	}

	previousStatus := partner.Status
	partner.Status = models.PartnerStatusApproved
	s.recordStatusChange(ctx, partner, previousStatus, userID)

	activeSeason, err := s.seasons.GetActiveSeason(ctx)
	if err != nil {
		return partner, fmt.Errorf("looking up active season after approval: %w", err)
	}
	if activeSeason == nil {
		logger.Warn.Printf("[ApprovePartner] Partner %s approved with no active season; no payment created", partnerID)
		return partner, nil
	}

	input := buildSeasonPaymentInput(*activeSeason, *partner, time.Now())
	if _, err := s.payments.CreatePaymentForPartner(ctx, partnerID, input, userID); err != nil {
		return partner, fmt.Errorf("creating payment for approved partner %s: %w", partnerID, err)
	}
	return partner, nil
}

// RejectPartner flips a partner to rejected.
func (s *PartnerService) RejectPartner(ctx context.Context, partnerID, userID string) (*models.Partner, error) {
	partner, err := s.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	ref := s.client.Collection(database.PartnersCollection).Doc(partnerID)
	if _, err := ref.Update(ctx, []firestore.Update{
		{Path: "status", Value: models.PartnerStatusRejected},
		{Path: "lastUpdateDate", Value: firestore.ServerTimestamp},
	}); err != nil {
		return nil, fmt.Errorf("rejecting partner %s: %w", partnerID, err)
	}

	previousStatus := partner.Status
	partner.Status = models.PartnerStatusRejected
	s.recordStatusChange(ctx, partner, previousStatus, userID)
	return partner, nil
}

// UpdatePartner applies a partial update to a partner's identity
// fields, restamps lastUpdateDate and writes the audit diff.
func (s *PartnerService) UpdatePartner(ctx context.Context, partnerID string, fields map[string]interface{}, userID string) error {
	partner, err := s.GetPartner(ctx, partnerID)
	if err != nil {
		return err
	}

	updates := make([]firestore.Update, 0, len(fields)+1)
	previous := make(map[string]interface{}, len(fields))
	next := make(map[string]interface{}, len(fields))
	for field, value := range fields {
		if field == "status" {
			return errors.New("status changes go through approve/reject")
		}
		updates = append(updates, firestore.Update{Path: field, Value: value})
		previous[field] = partnerFieldValue(*partner, field)
		next[field] = value
	}
	updates = append(updates, firestore.Update{Path: "lastUpdateDate", Value: firestore.ServerTimestamp})

	ref := s.client.Collection(database.PartnersCollection).Doc(partnerID)
	if _, err := ref.Update(ctx, updates); err != nil {
		return fmt.Errorf("updating partner %s: %w", partnerID, err)
	}

	record := models.ChangeRecord{
		EntityType:    "partner",
		EntityID:      partnerID,
		EntityName:    partner.Name + " " + partner.LastName,
		ChangeType:    models.ChangeTypeUpdate,
		ChangesDetail: BuildChangesDetail(previous, next),
		ModifiedBy:    userID,
	}
	if err := s.changes.Record(ctx, record); err != nil {
		logger.Error.Printf("[UpdatePartner] Audit record for partner %s failed: %v", partnerID, err)
	}
	return nil
}

// DeletePartner hard-deletes a partner and its payments subcollection.
func (s *PartnerService) DeletePartner(ctx context.Context, partnerID, userID string) error {
	partner, err := s.GetPartner(ctx, partnerID)
	if err != nil {
		return err
	}

	// Subcollection documents do not disappear with the parent; delete
	// them explicitly.
	paymentsIter := s.payments.paymentsRef(partnerID).Documents(ctx)
	defer paymentsIter.Stop()
	batch := s.client.Batch()
	batched := 0
	for {
		doc, err := paymentsIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return err
		}
		batch.Delete(doc.Ref)
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

	if _, err := s.client.Collection(database.PartnersCollection).Doc(partnerID).Delete(ctx); err != nil {
		return fmt.Errorf("deleting partner %s: %w", partnerID, err)
	}

	record := models.ChangeRecord{
		EntityType: "partner",
		EntityID:   partnerID,
		EntityName: partner.Name + " " + partner.LastName,
		ChangeType: models.ChangeTypeDelete,
		ModifiedBy: userID,
	}
	if err := s.changes.Record(ctx, record); err != nil {
		logger.Error.Printf("[DeletePartner] Audit record for partner %s failed: %v", partnerID, err)
	}
	logger.Info.Printf("[DeletePartner] Deleted partner %s", partnerID)
	return nil
}

func (s *PartnerService) recordStatusChange(ctx context.Context, partner *models.Partner, previousStatus, userID string) {
	record := models.ChangeRecord{
		EntityType: "partner",
		EntityID:   partner.ID,
		EntityName: partner.Name + " " + partner.LastName,
		ChangeType: models.ChangeTypeUpdate,
		ChangesDetail: map[string]models.FieldChange{
			"status": {PreviousValue: previousStatus, NewValue: partner.Status},
		},
		ModifiedBy: userID,
	}
	if err := s.changes.Record(ctx, record); err != nil {
		logger.Error.Printf("[recordStatusChange] Audit record for partner %s failed: %v", partner.ID, err)
	}
}

// partnerFieldValue maps an updatable field name to its current value,
// for audit diffs.
func partnerFieldValue(partner models.Partner, field string) interface{} {
	switch field {
	case "name":
		return partner.Name
	case "lastName":
		return partner.LastName
	case "email":
		return partner.Email
	case "dni":
		return partner.DNI
	case "phone":
		return partner.Phone
	case "address":
		return partner.Address
	case "accountNumber":
		return partner.AccountNumber
	case "birthDate":
		return partner.BirthDate
	default:
		return nil
	}
}
