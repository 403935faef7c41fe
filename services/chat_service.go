// Package services: services/chat_service.go
// Chat persistence: one chat document per user, with a messages
// subcollection. Live delivery is the websocket package's job; this
// service is the system of record.
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

// ChatStore is the persistence surface the websocket hub depends on.
type ChatStore interface {
	GetOrCreateChat(ctx context.Context, userID, userName string) (*models.Chat, error)
	AppendMessage(ctx context.Context, chatID string, message models.Message) (*models.Message, error)
	MarkMessagesRead(ctx context.Context, chatID, reader string) (int, error)
	CloseChat(ctx context.Context, chatID string) error
}

// ChatService reads and writes chats and their messages. Chats are
// keyed by user ID, so "get or create" is a single document lookup.
type ChatService struct {
	client *firestore.Client
	retry  RetryConfig
}

// NewChatService creates a ChatService.
func NewChatService(client *firestore.Client) *ChatService {
	return &ChatService{client: client, retry: DefaultRetryConfig()}
}

func (s *ChatService) chatRef(chatID string) *firestore.DocumentRef {
	return s.client.Collection(database.ChatsCollection).Doc(chatID)
}

// GetOrCreateChat returns the user's chat, reactivating or creating it
// as needed.
func (s *ChatService) GetOrCreateChat(ctx context.Context, userID, userName string) (*models.Chat, error) {
	ref := s.chatRef(userID)
	doc, err := ref.Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return nil, fmt.Errorf("looking up chat for user %s: %w", userID, err)
	}

	if err == nil {
		var chat models.Chat
		if err := doc.DataTo(&chat); err != nil {
			return nil, err
		}
		chat.ID = doc.Ref.ID
		if !chat.IsActive {
			if _, err := ref.Update(ctx, []firestore.Update{
				{Path: "isActive", Value: true},
				{Path: "lastUpdateDate", Value: firestore.ServerTimestamp},
			}); err != nil {
				return nil, err
			}
			chat.IsActive = true
		}
		return &chat, nil
	}

	chat := models.Chat{
		UserID:   userID,
		UserName: userName,
		IsActive: true,
	}
	if _, err := ref.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("creating chat for user %s: %w", userID, err)
	}
	chat.ID = userID
	logger.Info.Printf("[GetOrCreateChat] Created chat for user %s", userID)
	return &chat, nil
}

// ListActiveChats returns the chats currently marked active (the staff
// dashboard's inbox).
func (s *ChatService) ListActiveChats(ctx context.Context) ([]models.Chat, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.Chat, error) {
		var chats []models.Chat
		iter := s.client.Collection(database.ChatsCollection).
			Where("isActive", "==", true).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var chat models.Chat
			if err := doc.DataTo(&chat); err != nil {
				return nil, err
			}
			chat.ID = doc.Ref.ID
			chats = append(chats, chat)
		}
		return chats, nil
	})
}

// AppendMessage stores one message under the chat and bumps the chat's
// lastUpdateDate.
func (s *ChatService) AppendMessage(ctx context.Context, chatID string, message models.Message) (*models.Message, error) {
	ref := s.chatRef(chatID).Collection(database.MessagesCollection).NewDoc()
	if _, err := ref.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("appending message to chat %s: %w", chatID, err)
	}
	message.ID = ref.ID

	if _, err := s.chatRef(chatID).Update(ctx, []firestore.Update{
		{Path: "lastUpdateDate", Value: firestore.ServerTimestamp},
	}); err != nil {
		logger.Warn.Printf("[AppendMessage] Could not bump chat %s: %v", chatID, err)
	}
	return &message, nil
}

// ListMessages returns a chat's messages in chronological order.
func (s *ChatService) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	return RetryRead(ctx, s.retry, func(ctx context.Context) ([]models.Message, error) {
		var messages []models.Message
		iter := s.chatRef(chatID).Collection(database.MessagesCollection).
			OrderBy("createdAt", firestore.Asc).Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}
			var message models.Message
			if err := doc.DataTo(&message); err != nil {
				return nil, err
			}
			message.ID = doc.Ref.ID
			messages = append(messages, message)
		}
		return messages, nil
	})
}

// MarkMessagesRead flags every unread message not sent by the reader as
// read, in capped batches. Returns how many messages were flagged.
func (s *ChatService) MarkMessagesRead(ctx context.Context, chatID, reader string) (int, error) {
	docs, err := s.chatRef(chatID).Collection(database.MessagesCollection).
		Where("isRead", "==", false).Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}

	var refs []*firestore.DocumentRef
	for _, doc := range docs {
		var message models.Message
		if err := doc.DataTo(&message); err != nil {
			return 0, err
		}
		if message.Sender == reader {
			continue
		}
		refs = append(refs, doc.Ref)
	}

	marked := 0
	for _, batchRefs := range chunk(refs, maxBatchOps) {
		batch := s.client.Batch()
		for _, ref := range batchRefs {
			batch.Update(ref, []firestore.Update{{Path: "isRead", Value: true}})
		}
		if _, err := batch.Commit(ctx); err != nil {
			return marked, fmt.Errorf("marking messages read in chat %s: %w", chatID, err)
		}
		marked += len(batchRefs)
	}
	return marked, nil
}

// CloseChat deactivates a chat; the history stays.
func (s *ChatService) CloseChat(ctx context.Context, chatID string) error {
	if _, err := s.chatRef(chatID).Update(ctx, []firestore.Update{
		{Path: "isActive", Value: false},
		{Path: "lastUpdateDate", Value: firestore.ServerTimestamp},
	}); err != nil {
		return fmt.Errorf("closing chat %s: %w", chatID, err)
	}
	logger.Info.Printf("[CloseChat] Chat %s closed", chatID)
	return nil
}
