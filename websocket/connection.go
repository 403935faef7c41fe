// Package websocket provides the live-chat WebSocket server and
// connection handling.
// file: websocket/connection.go
package websocket

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"festes-portal/logger"
	"festes-portal/models"
)

// WSConn is an interface for the WebSocket connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Connection represents a single WebSocket connection for one chat
// participant: the member who owns the chat, or a staff agent.
type Connection struct {
	conn    WSConn
	send    chan []byte
	chatID  string
	userID  string
	isStaff bool
}

// Configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	storeTimeout   = 10 * time.Second
)

// ServeWs upgrades the HTTP request to a WebSocket connection and
// starts the read and write pumps. The caller passes the authenticated
// user's identity; the chat is keyed by the member's user ID, so staff
// agents join by chatId while members join their own chat.
func ServeWs(w http.ResponseWriter, r *http.Request, userID, userName string, isStaff bool) {
	if userID == "" {
		logger.Error.Println("[ServeWs] No user identity; rejecting WebSocket connection")
		http.Error(w, "Not authenticated", http.StatusBadRequest)
		return
	}

	chatID := r.URL.Query().Get("chatId")
	if chatID == "" {
		chatID = userID
	}
	if chatID != userID && !isStaff {
		logger.Warn.Printf("[ServeWs] User %s tried to join chat %s without staff rights", userID, chatID)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	logger.Info.Printf("[ServeWs] Upgrading to WS: remoteAddr=%v, chatId=%q user=%q", r.RemoteAddr, chatID, userID)
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error.Printf("[ServeWs] WebSocket upgrade error: %v", err)
		return
	}

	// Make sure the chat document exists (and is active) before any
	// message lands.
	if chatStore != nil && chatID == userID {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if _, err := chatStore.GetOrCreateChat(ctx, userID, userName); err != nil {
			logger.Error.Printf("[ServeWs] Could not open chat for user %s: %v", userID, err)
			_ = wsConn.Close()
			return
		}
	}

	c := &Connection{
		conn:    wsConn,
		send:    make(chan []byte, 256),
		chatID:  chatID,
		userID:  userID,
		isStaff: isStaff,
	}

	registerConnection(c)
	PublishChatConnections(connectionCount(), chatID)

	go c.readPump()
	go c.writePump()
}

// readPump handles inbound messages from the client.
func (c *Connection) readPump() {
	defer func() {
		unregisterConnection(c)
		PublishChatConnections(connectionCount(), c.chatID)
		if err := c.conn.Close(); err != nil {
			return
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Warn.Printf("[readPump] Read error from %v: %v", c.conn.RemoteAddr(), err)
			break
		}
		if messageType != websocket.TextMessage {
			logger.Debug.Printf("[readPump] Ignoring non-text messageType=%d", messageType)
			continue
		}

		var cm ChatMessage
		if err := json.Unmarshal(message, &cm); err != nil {
			logger.Warn.Printf("[readPump] Invalid JSON from %v: %v", c.conn.RemoteAddr(), err)
			continue
		}
		handleIncoming(c, cm)
	}
}

// writePump handles outbound messages to the client, including periodic pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			return
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// The channel was closed.
				logger.Debug.Printf("[writePump] Send channel closed for %v", c.conn.RemoteAddr())
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn.Printf("[writePump] Error writing to %v: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("[writePump] Ping error for %v: %v", c.conn.RemoteAddr(), err)
				return
			}
		}
	}
}

// registerConnection adds the given connection to the global connections map.
func registerConnection(c *Connection) {
	connectionsMutex.Lock()
	defer connectionsMutex.Unlock()
	connections[c] = true
}

// unregisterConnection removes the given connection from the global connections map.
func unregisterConnection(c *Connection) {
	connectionsMutex.Lock()
	defer connectionsMutex.Unlock()
	if _, ok := connections[c]; ok {
		delete(connections, c)
		close(c.send)
	}
}

func connectionCount() int {
	connectionsMutex.Lock()
	defer connectionsMutex.Unlock()
	return len(connections)
}

// ChatMessage represents the JSON structure of messages from clients.
type ChatMessage struct {
	Action string `json:"action"`
	ChatID string `json:"chatId"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// handleIncoming processes an inbound JSON message.
func handleIncoming(c *Connection, cm ChatMessage) {
	logger.Debug.Printf("[handleIncoming] Action=%s, ChatID=%s, Sender=%s", cm.Action, cm.ChatID, cm.Sender)

	// Clients can only act on the chat their connection joined.
	cm.ChatID = c.chatID
	if cm.Sender == "" {
		cm.Sender = c.userID
	}

	switch cm.Action {
	case "sendMessage":
		processChatMessage(c, cm)
	case "markRead":
		processMarkRead(c, cm)
	case "closeChat":
		processCloseChat(c, cm)
	default:
		logger.Debug.Printf("Unhandled action: %s", cm.Action)
	}
}

// processChatMessage persists an inbound message and relays it to every
// connection on the same chat.
func processChatMessage(c *Connection, cm ChatMessage) {
	if cm.Text == "" {
		logger.Warn.Printf("Empty chat message received from %v; ignoring", c.conn.RemoteAddr())
		return
	}

	stored := models.Message{Text: cm.Text, Sender: cm.Sender, IsRead: false}
	if chatStore != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		start := time.Now()
		persisted, err := chatStore.AppendMessage(ctx, cm.ChatID, stored)
		if err != nil {
			logger.Error.Printf("Persisting message in chat %s failed: %v", cm.ChatID, err)
			c.sendError("Tu mensaje no se ha podido guardar")
			return
		}
		PublishMessageLatency(float64(time.Since(start).Milliseconds()), cm.ChatID)
		stored = *persisted
	}

	out, err := json.Marshal(map[string]interface{}{
		"action":    "newMessage",
		"chatId":    cm.ChatID,
		"messageId": stored.ID,
		"text":      stored.Text,
		"sender":    stored.Sender,
	})
	if err != nil {
		logger.Error.Printf("Error marshaling newMessage: %v", err)
		return
	}
	broadcastToChat(cm.ChatID, out)
}

// processMarkRead flags the chat's unread messages as read for this reader.
func processMarkRead(c *Connection, cm ChatMessage) {
	if chatStore == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	marked, err := chatStore.MarkMessagesRead(ctx, cm.ChatID, cm.Sender)
	if err != nil {
		logger.Error.Printf("Marking messages read in chat %s failed: %v", cm.ChatID, err)
		return
	}
	if marked == 0 {
		return
	}
	out, _ := json.Marshal(map[string]interface{}{
		"action": "messagesRead",
		"chatId": cm.ChatID,
		"reader": cm.Sender,
		"count":  marked,
	})
	broadcastToChat(cm.ChatID, out)
}

// processCloseChat deactivates the chat and tells every participant.
func processCloseChat(c *Connection, cm ChatMessage) {
	if chatStore != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := chatStore.CloseChat(ctx, cm.ChatID); err != nil {
			logger.Error.Printf("Closing chat %s failed: %v", cm.ChatID, err)
			return
		}
	}
	out, _ := json.Marshal(map[string]string{
		"action": "chatClosed",
		"chatId": cm.ChatID,
	})
	broadcastToChat(cm.ChatID, out)
}

// sendError pushes a localized error payload to this connection only.
func (c *Connection) sendError(text string) {
	out, err := json.Marshal(map[string]string{
		"action": "error",
		"error":  text,
	})
	if err != nil {
		return
	}
	select {
	case c.send <- out:
	default:
		logger.Warn.Printf("Dropping error message for connection %v", c.conn.RemoteAddr())
	}
}

// broadcastToChat sends a message to all connections in the given chat.
func broadcastToChat(chatID string, message []byte) {
	connectionsMutex.Lock()
	defer connectionsMutex.Unlock()
	for c := range connections {
		if c.chatID == chatID {
			select {
			case c.send <- message:
			default:
				logger.Warn.Printf("Dropping message for connection %v", c.conn.RemoteAddr())
			}
		}
	}
}
