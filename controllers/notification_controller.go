// Package controllers: controllers/notification_controller.go
// Outbound mail: the public contact form and the staff bulk sender.
package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"festes-portal/logger"
	"festes-portal/services"
)

// NotificationController sends contact and bulk emails through the
// configured mailer.
type NotificationController struct {
	mailer services.Mailer
}

// NewNotificationController wires the controller to a mailer.
func NewNotificationController(mailer services.Mailer) *NotificationController {
	return &NotificationController{mailer: mailer}
}

// SendContactEmail handles the public contact form. Only POST is
// accepted; anything else gets a 405.
func (nc *NotificationController) SendContactEmail(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "error": "Método no permitido"})
		return
	}

	var msg services.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Solicitud no válida"})
		return
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Faltan campos obligatorios"})
		return
	}
	if err := services.ValidateEmail(msg.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Dirección de correo no válida"})
		return
	}

	if err := nc.mailer.SendContact(msg); err != nil {
		logger.Error.Printf("Contact email from %s: %v", msg.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "No se ha podido enviar el mensaje"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Mensaje enviado correctamente"})
}

// SendBulkEmails sends one message to a list of recipients, all of
// them in Bcc. Only POST is accepted.
func (nc *NotificationController) SendBulkEmails(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "error": "Método no permitido"})
		return
	}

	var msg services.BulkMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Solicitud no válida"})
		return
	}
	if len(msg.Recipients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Se requiere una lista válida de destinatarios"})
		return
	}
	if strings.TrimSpace(msg.Subject) == "" || strings.TrimSpace(msg.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "El asunto y el mensaje son obligatorios"})
		return
	}

	if err := nc.mailer.SendBulk(msg); err != nil {
		logger.Error.Printf("Bulk email to %d recipients: %v", len(msg.Recipients), err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "No se han podido enviar los correos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Correos enviados correctamente"})
}
