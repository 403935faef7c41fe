// Package websocket handles real-time chat communication between
// members and staff.
// file: websocket/broadcast.go
package websocket

import (
	"encoding/json"

	"festes-portal/logger"
)

// HandleMessages listens for messages on the broadcast channel and distributes them to connections.
func HandleMessages() {
	for {
		msg := <-broadcast // Read incoming message from the broadcast channel

		var msgMap map[string]interface{}
		var chatFilter string

		// attempt to parse the message as JSON
		if err := json.Unmarshal(msg, &msgMap); err == nil {
			if id, ok := msgMap["chatId"].(string); ok {
				chatFilter = id
			}
		}

		// iterate over all active WebSocket connections
		connectionsMutex.Lock()
		for c := range connections {
			// if a chat filter is set, only send to matching connections
			if chatFilter != "" && c.chatID != chatFilter {
				continue
			}
			select {
			case c.send <- msg:
			default:
				logger.Warn.Printf("Dropping broadcast message for connection %v", c.conn.RemoteAddr())
			}
		}
		connectionsMutex.Unlock()
	}
}

// BroadcastMessage sends a message to the WebSocket clients of the
// given chat, or to every connected client when chatID is empty.
func BroadcastMessage(chatID string, message map[string]interface{}) {
	logger.Debug.Printf("Broadcasting message for chat: %s", chatID)

	if chatID != "" {
		message["chatId"] = chatID
	}
	msg, err := json.Marshal(message)
	if err != nil {
		logger.Error.Printf("Error marshalling message: %v", err)
		return
	}

	// send the marshalled message to the broadcast channel
	broadcast <- msg
}
