// file: heartbeat.go
package main

import (
	"fmt"
	"net/http"

	"festes-portal/logger"
	"festes-portal/websocket"
)

// HeartbeatHandler updates the last-seen timestamp for a chat user so
// the staff inbox can show who is still on the page.
func HeartbeatHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		logger.Warn.Println("[HeartbeatHandler] Missing user ID in query params")
		http.Error(w, "Missing user ID", http.StatusBadRequest)
		return
	}

	websocket.TouchPresence(userID)
	logger.Debug.Printf("[HeartbeatHandler] Updated heartbeat for user=%s", userID)

	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintln(w, "Heartbeat received"); err != nil {
		logger.Warn.Printf("[HeartbeatHandler] Error writing response for user=%s: %v", userID, err)
	}
}
