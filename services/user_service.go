// Package services: services/user_service.go
// Application accounts: login lookup, staff creation and the
// notification/language preferences used by the bulk-mail tool.
package services

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"festes-portal/database"
	"festes-portal/logger"
	"festes-portal/models"
)

// ErrUserNotFound is returned when no account matches.
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidCredentials is returned on a failed password check.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService reads and writes the users collection.
type UserService struct {
	client *firestore.Client
	retry  RetryConfig
}

// NewUserService creates a UserService.
func NewUserService(client *firestore.Client) *UserService {
	return &UserService{client: client, retry: DefaultRetryConfig()}
}

// CreateUser stores a new account with a bcrypt password hash.
func (s *UserService) CreateUser(ctx context.Context, user models.User, password string) (*models.User, error) {
	if err := ValidateEmail(user.Email); err != nil {
		return nil, err
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	if existing, err := s.GetUserByEmail(ctx, user.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("an account for %s already exists", user.Email)
	} else if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	ref := s.client.Collection(database.UsersCollection).NewDoc()
	if _, err := ref.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user %s: %w", user.Email, err)
	}
	user.ID = ref.ID
	logger.Info.Printf("[CreateUser] Created account for %s (staff=%v)", user.Email, user.IsStaff)
	return &user, nil
}

// Authenticate checks an email/password pair and returns the account.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		logger.Warn.Printf("[Authenticate] Failed login attempt for %s", email)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByEmail resolves an account by email address.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := s.client.Collection(database.UsersCollection).
		Where("email", "==", email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrUserNotFound
	}
	var user models.User
	if err := docs[0].DataTo(&user); err != nil {
		return nil, err
	}
	user.ID = docs[0].Ref.ID
	return &user, nil
}

// GetUser fetches one account by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	doc, err := s.client.Collection(database.UsersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	user.ID = doc.Ref.ID
	return &user, nil
}

// ListNotifiableUsers returns accounts that opted into email
// notifications, the recipient pool for bulk sends.
func (s *UserService) ListNotifiableUsers(ctx context.Context) ([]models.User, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.User, error) {
		var users []models.User
		iter := s.client.Collection(database.UsersCollection).
			Where("emailNotifications", "==", true).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var user models.User
			if err := doc.DataTo(&user); err != nil {
				return nil, err
			}
			user.ID = doc.Ref.ID
			users = append(users, user)
		}
		return users, nil
	})
}

// UpdatePreferences updates the notification and language settings.
func (s *UserService) UpdatePreferences(ctx context.Context, userID string, emailNotifications bool, preferredLanguage string) error {
	ref := s.client.Collection(database.UsersCollection).Doc(userID)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "emailNotifications", Value: emailNotifications},
		{Path: "preferredLanguage", Value: preferredLanguage},
		{Path: "lastUpdateDate", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("updating preferences for user %s: %w", userID, err)
	}
	return nil
}
