// Package controllers: controllers/chat_controller.go
// REST side of the support chat: chat lists, message history and the
// websocket entry point.
package controllers

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"festes-portal/logger"
	"festes-portal/models"
	"festes-portal/websocket"
)

// ChatDirectory is the chat surface this controller needs beyond the
// websocket store.
type ChatDirectory interface {
	GetOrCreateChat(ctx context.Context, userID, userName string) (*models.Chat, error)
	ListActiveChats(ctx context.Context) ([]models.Chat, error)
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)
}

// ChatController serves the chat REST endpoints and upgrades websocket
// connections.
type ChatController struct {
	chats ChatDirectory
}

// NewChatController wires the controller to the chat service.
func NewChatController(chats ChatDirectory) *ChatController {
	return &ChatController{chats: chats}
}

// ActiveChats lists open chats for the staff inbox, each flagged with
// whether its user has heartbeated recently.
func (cc *ChatController) ActiveChats(c *gin.Context) {
	chats, err := cc.chats.ListActiveChats(c.Request.Context())
	if err != nil {
		logger.Error.Printf("List active chats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se han podido cargar las conversaciones."})
		return
	}

	entries := make([]gin.H, 0, len(chats))
	for _, chat := range chats {
		entries = append(entries, gin.H{
			"chat":   chat,
			"online": websocket.IsPresent(chat.UserID),
		})
	}
	c.JSON(http.StatusOK, gin.H{"chats": entries})
}

// Messages returns a chat's message history. Members can only read
// their own chat; staff can read any.
func (cc *ChatController) Messages(c *gin.Context) {
	session := sessions.Default(c)
	chatID := c.Param("id")
	isStaff, _ := session.Get("isStaff").(bool)
	if !isStaff && chatID != sessionUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "No tienes acceso a esta conversación."})
		return
	}

	messages, err := cc.chats.ListMessages(c.Request.Context(), chatID)
	if err != nil {
		logger.Error.Printf("List messages for chat %s: %v", chatID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se han podido cargar los mensajes."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Connect upgrades the request to a websocket tied to the session's
// user. Staff may pass ?chatId= to join another user's chat.
func (cc *ChatController) Connect(c *gin.Context) {
	session := sessions.Default(c)
	userID := sessionUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no iniciada."})
		return
	}
	userName, _ := session.Get("userName").(string)
	isStaff, _ := session.Get("isStaff").(bool)

	websocket.ServeWs(c.Writer, c.Request, userID, userName, isStaff)
}
