// Package websocket - websocket/globals.go
package websocket

import (
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"

	"festes-portal/services"
)

// connections tracks all live chat connections (for broadcast usage)
var connections = make(map[*Connection]bool)

// connectionsMutex guards the connections map; registrations come from
// handler goroutines while HandleMessages iterates.
var connectionsMutex sync.Mutex

// broadcast is a channel for sending messages to all clients
var broadcast = make(chan []byte, 256)

// chatStore persists chats and messages; injected from main.
var chatStore services.ChatStore

// SetChatStore injects the persistence layer the hub writes through.
func SetChatStore(store services.ChatStore) {
	chatStore = store
}

// websocket upgrade
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all if Test-Mode
		if r.Header.Get("Test-Mode") == "true" {
			return true
		}
		origin := r.Header.Get("Origin")
		allowed := os.Getenv("APPLICATION_URL")
		if allowed == "" {
			allowed = "http://localhost:8080"
		}
		return origin == allowed || origin == "http://localhost:8080"
	},
}
