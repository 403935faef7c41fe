// websocket/connection_test.go
package websocket

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festes-portal/models"
)

func init() {
	SetMetricsEnabled(false)
}

// fakeConn satisfies WSConn without a network socket.
type fakeConn struct {
	written [][]byte
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.written = append(f.written, data)
	return nil
}
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) ReadMessage() (int, []byte, error) { return 0, nil, nil }
func (f *fakeConn) Close() error                      { return nil }
func (f *fakeConn) RemoteAddr() net.Addr              { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }
func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

// recordingStore captures what the handlers persist.
type recordingStore struct {
	appended  []models.Message
	marked    []string
	closed    []string
	failWrite bool
}

func (s *recordingStore) GetOrCreateChat(_ context.Context, userID, userName string) (*models.Chat, error) {
	return &models.Chat{ID: userID, UserID: userID, UserName: userName, IsActive: true}, nil
}

func (s *recordingStore) AppendMessage(_ context.Context, chatID string, message models.Message) (*models.Message, error) {
	if s.failWrite {
		return nil, assert.AnError
	}
	message.ID = "m1"
	s.appended = append(s.appended, message)
	return &message, nil
}

func (s *recordingStore) MarkMessagesRead(_ context.Context, chatID, reader string) (int, error) {
	s.marked = append(s.marked, chatID+"/"+reader)
	return 2, nil
}

func (s *recordingStore) CloseChat(_ context.Context, chatID string) error {
	s.closed = append(s.closed, chatID)
	return nil
}

func newTestConnection(chatID, userID string, isStaff bool) *Connection {
	c := &Connection{
		conn:    &fakeConn{},
		send:    make(chan []byte, 16),
		chatID:  chatID,
		userID:  userID,
		isStaff: isStaff,
	}
	registerConnection(c)
	return c
}

func drain(t *testing.T, c *Connection) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-c.send:
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &payload))
		return payload
	case <-time.After(time.Second):
		t.Fatal("expected a message on the send channel")
		return nil
	}
}

// Test: messages only reach connections on the same chat
func TestBroadcastToChat_Filters(t *testing.T) {
	member := newTestConnection("chat-a", "user-a", false)
	agent := newTestConnection("chat-a", "staff-1", true)
	other := newTestConnection("chat-b", "user-b", false)
	defer unregisterConnection(member)
	defer unregisterConnection(agent)
	defer unregisterConnection(other)

	broadcastToChat("chat-a", []byte(`{"action":"ping"}`))

	assert.Len(t, member.send, 1)
	assert.Len(t, agent.send, 1)
	assert.Len(t, other.send, 0)
}

// Test: a sendMessage persists the text and relays it to the chat
func TestHandleIncoming_SendMessage(t *testing.T) {
	store := &recordingStore{}
	SetChatStore(store)
	defer SetChatStore(nil)

	member := newTestConnection("user-a", "user-a", false)
	defer unregisterConnection(member)

	handleIncoming(member, ChatMessage{Action: "sendMessage", Text: "Hola"})

	require.Len(t, store.appended, 1)
	assert.Equal(t, "Hola", store.appended[0].Text)
	assert.Equal(t, "user-a", store.appended[0].Sender)

	payload := drain(t, member)
	assert.Equal(t, "newMessage", payload["action"])
	assert.Equal(t, "user-a", payload["chatId"])
}

// Test: clients cannot smuggle another chat ID into their messages
func TestHandleIncoming_ForcesOwnChat(t *testing.T) {
	store := &recordingStore{}
	SetChatStore(store)
	defer SetChatStore(nil)

	member := newTestConnection("user-a", "user-a", false)
	defer unregisterConnection(member)

	handleIncoming(member, ChatMessage{Action: "sendMessage", ChatID: "chat-someone-else", Text: "Hola"})

	payload := drain(t, member)
	assert.Equal(t, "user-a", payload["chatId"])
}

// Test: a persistence failure answers a localized error to the sender only
func TestHandleIncoming_PersistFailure(t *testing.T) {
	store := &recordingStore{failWrite: true}
	SetChatStore(store)
	defer SetChatStore(nil)

	member := newTestConnection("user-a", "user-a", false)
	defer unregisterConnection(member)

	handleIncoming(member, ChatMessage{Action: "sendMessage", Text: "Hola"})

	payload := drain(t, member)
	assert.Equal(t, "error", payload["action"])
	assert.Equal(t, "Tu mensaje no se ha podido guardar", payload["error"])
}

// Test: markRead notifies the chat with the read count
func TestHandleIncoming_MarkRead(t *testing.T) {
	store := &recordingStore{}
	SetChatStore(store)
	defer SetChatStore(nil)

	agent := newTestConnection("user-a", "staff-1", true)
	defer unregisterConnection(agent)

	handleIncoming(agent, ChatMessage{Action: "markRead"})

	require.Len(t, store.marked, 1)
	assert.Equal(t, "user-a/staff-1", store.marked[0])

	payload := drain(t, agent)
	assert.Equal(t, "messagesRead", payload["action"])
	assert.Equal(t, float64(2), payload["count"])
}

// Test: closeChat deactivates the chat and notifies participants
func TestHandleIncoming_CloseChat(t *testing.T) {
	store := &recordingStore{}
	SetChatStore(store)
	defer SetChatStore(nil)

	member := newTestConnection("user-a", "user-a", false)
	defer unregisterConnection(member)

	handleIncoming(member, ChatMessage{Action: "closeChat"})

	require.Len(t, store.closed, 1)
	assert.Equal(t, "user-a", store.closed[0])

	payload := drain(t, member)
	assert.Equal(t, "chatClosed", payload["action"])
}

// Test: empty message text is dropped without persisting
func TestHandleIncoming_EmptyText(t *testing.T) {
	store := &recordingStore{}
	SetChatStore(store)
	defer SetChatStore(nil)

	member := newTestConnection("user-a", "user-a", false)
	defer unregisterConnection(member)

	handleIncoming(member, ChatMessage{Action: "sendMessage", Text: ""})

	assert.Empty(t, store.appended)
	assert.Empty(t, member.send)
}
