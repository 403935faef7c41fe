// Package websocket handles real-time chat communication between
// members and staff.
// file: websocket/presence.go
package websocket

import (
	"sync"
	"time"

	"festes-portal/logger"
)

// presenceTimeout is how long after the last heartbeat a user still
// counts as present.
const presenceTimeout = 10 * time.Minute

var (
	chatPresence = make(map[string]time.Time)
	presenceLock = sync.Mutex{}
)

// TouchPresence records a heartbeat from a chat user.
func TouchPresence(userID string) {
	presenceLock.Lock()
	chatPresence[userID] = time.Now()
	presenceLock.Unlock()
}

// IsPresent reports whether a chat user has sent a heartbeat within
// the timeout window.
func IsPresent(userID string) bool {
	presenceLock.Lock()
	defer presenceLock.Unlock()
	lastSeen, ok := chatPresence[userID]
	return ok && time.Since(lastSeen) <= presenceTimeout
}

// CleanupPresence drops chat users that have stopped sending heartbeats.
func CleanupPresence() {
	ticker := time.NewTicker(30 * time.Second)
	for range ticker.C {
		presenceLock.Lock()
		for id, lastSeen := range chatPresence {
			if time.Since(lastSeen) > presenceTimeout {
				logger.Info.Printf("[CleanupPresence] Removing inactive chat user=%s", id)
				delete(chatPresence, id)
			}
		}
		presenceLock.Unlock()
	}
}
