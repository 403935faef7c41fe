//go:build integration
// +build integration

// integration/connection_test.go
package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festes-portal/models"
	chatws "festes-portal/websocket"
)

func init() {
	chatws.SetMetricsEnabled(false)
}

// memoryChatStore keeps chats and messages in memory so the full
// WebSocket round trip runs without Firestore.
type memoryChatStore struct {
	mu       sync.Mutex
	chats    map[string]*models.Chat
	messages map[string][]models.Message
}

func newMemoryChatStore() *memoryChatStore {
	return &memoryChatStore{
		chats:    make(map[string]*models.Chat),
		messages: make(map[string][]models.Message),
	}
}

func (s *memoryChatStore) GetOrCreateChat(_ context.Context, userID, userName string) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chat, ok := s.chats[userID]; ok {
		return chat, nil
	}
	chat := &models.Chat{ID: userID, UserID: userID, UserName: userName, IsActive: true}
	s.chats[userID] = chat
	return chat, nil
}

func (s *memoryChatStore) AppendMessage(_ context.Context, chatID string, message models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	message.ID = "msg-1"
	s.messages[chatID] = append(s.messages[chatID], message)
	return &message, nil
}

func (s *memoryChatStore) MarkMessagesRead(_ context.Context, chatID, reader string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	marked := 0
	for i, m := range s.messages[chatID] {
		if !m.IsRead && m.Sender != reader {
			s.messages[chatID][i].IsRead = true
			marked++
		}
	}
	return marked, nil
}

func (s *memoryChatStore) CloseChat(_ context.Context, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chat, ok := s.chats[chatID]; ok {
		chat.IsActive = false
	}
	return nil
}

// startTestServer serves the chat WebSocket endpoint for a fixed user.
func startTestServer(t *testing.T, userID, userName string, isStaff bool) (*httptest.Server, *websocket.Conn) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatws.ServeWs(w, r, userID, userName, isStaff)
	}))

	header := http.Header{"Test-Mode": []string{"true"}}
	wsURL := "ws" + server.URL[4:]
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err, "WebSocket connection should succeed")

	return server, conn
}

func readAction(t *testing.T, conn *websocket.Conn, want string) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &payload))
		if payload["action"] == want {
			return payload
		}
	}
}

// A member sends a message; it is persisted and echoed back to the chat.
func TestSendMessageRoundTrip(t *testing.T) {
	store := newMemoryChatStore()
	chatws.SetChatStore(store)
	defer chatws.SetChatStore(nil)

	server, conn := startTestServer(t, "member-1", "Paco", false)
	defer server.Close()
	defer conn.Close()

	out, _ := json.Marshal(map[string]string{
		"action": "sendMessage",
		"text":   "Hola, tengo una duda sobre mi cuota",
	})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, out))

	payload := readAction(t, conn, "newMessage")
	assert.Equal(t, "member-1", payload["chatId"])
	assert.Equal(t, "member-1", payload["sender"])
	assert.Equal(t, "Hola, tengo una duda sobre mi cuota", payload["text"])

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.messages["member-1"], 1)
	assert.Equal(t, "Hola, tengo una duda sobre mi cuota", store.messages["member-1"][0].Text)
}

// Closing a chat deactivates it and notifies the participants.
func TestCloseChat(t *testing.T) {
	store := newMemoryChatStore()
	chatws.SetChatStore(store)
	defer chatws.SetChatStore(nil)

	server, conn := startTestServer(t, "member-2", "Marta", false)
	defer server.Close()
	defer conn.Close()

	out, _ := json.Marshal(map[string]string{"action": "closeChat"})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, out))

	payload := readAction(t, conn, "chatClosed")
	assert.Equal(t, "member-2", payload["chatId"])

	store.mu.Lock()
	defer store.mu.Unlock()
	require.NotNil(t, store.chats["member-2"])
	assert.False(t, store.chats["member-2"].IsActive)
}
