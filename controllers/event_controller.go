// Package controllers: controllers/event_controller.go
// Events with dynamic inscription forms, plus the QR code endpoint.
package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"festes-portal/logger"
	"festes-portal/models"
	"festes-portal/services"
)

// EventAgenda is the event surface this controller needs.
type EventAgenda interface {
	CreateEvent(ctx context.Context, event models.Event, fields []models.FormField) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*models.Event, error)
	ListFormFields(ctx context.Context, eventID string) ([]models.FormField, error)
	SubmitInscription(ctx context.Context, eventID string, values map[string]interface{}) (*models.Inscription, error)
	ListInscriptions(ctx context.Context, eventID string) ([]models.Inscription, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// EventController serves the events agenda and inscriptions.
type EventController struct {
	events EventAgenda
}

// NewEventController wires the controller to the event service.
func NewEventController(events EventAgenda) *EventController {
	return &EventController{events: events}
}

// List returns every event, soonest first.
func (ec *EventController) List(c *gin.Context) {
	events, err := ec.events.ListEvents(c.Request.Context())
	if err != nil {
		logger.Error.Printf("List events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se han podido cargar los eventos."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type createEventRequest struct {
	Event  models.Event       `json:"event"`
	Fields []models.FormField `json:"formFields"`
}

// Create stores a new event, deriving its slug from the title. When
// the event needs a form, the supplied fields are stored alongside.
func (ec *EventController) Create(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Event.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El evento necesita un título."})
		return
	}

	created, err := ec.events.CreateEvent(c.Request.Context(), req.Event, req.Fields)
	if err != nil {
		logger.Error.Printf("Create event: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido crear el evento."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": created})
}

// GetBySlug resolves an event from its URL slug, with its form fields
// when it has an inscription form.
func (ec *EventController) GetBySlug(c *gin.Context) {
	event, err := ec.events.GetEventBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Evento no encontrado."})
			return
		}
		logger.Error.Printf("Get event by slug %s: %v", c.Param("slug"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido cargar el evento."})
		return
	}

	resp := gin.H{"event": event}
	if event.NeedForm {
		fields, err := ec.events.ListFormFields(c.Request.Context(), event.ID)
		if err != nil {
			logger.Warn.Printf("Form fields for event %s: %v", event.ID, err)
		} else {
			resp["formFields"] = fields
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Inscribe validates a submission against the event's form definition
// and stores it.
func (ec *EventController) Inscribe(c *gin.Context) {
	var values map[string]interface{}
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud no válida."})
		return
	}

	inscription, err := ec.events.SubmitInscription(c.Request.Context(), c.Param("id"), values)
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Evento no encontrado."})
			return
		}
		logger.Warn.Printf("Inscription for event %s: %v", c.Param("id"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"inscription": inscription})
}

// Inscriptions lists an event's submissions, staff only.
func (ec *EventController) Inscriptions(c *gin.Context) {
	inscriptions, err := ec.events.ListInscriptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Error.Printf("List inscriptions for event %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se han podido cargar las inscripciones."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inscriptions": inscriptions})
}

// Delete removes an event together with its form fields and
// inscriptions.
func (ec *EventController) Delete(c *gin.Context) {
	if err := ec.events.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		logger.Error.Printf("Delete event %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido eliminar el evento."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// QRCode renders a PNG QR code pointing at the event's public page.
// Size comes from the ?size= query, defaulting to 256.
func (ec *EventController) QRCode(c *gin.Context) {
	event, err := ec.events.GetEventBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Evento no encontrado."})
		return
	}

	size := 256
	if raw := c.Query("size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			size = parsed
		}
	}

	baseURL := os.Getenv("APPLICATION_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	eventURL := fmt.Sprintf("%s/events/%s", baseURL, event.Slug)

	png, err := services.GenerateEventQRCode(eventURL, size, qrcode.Encode)
	if err != nil {
		logger.Error.Printf("QR code for event %s: %v", event.Slug, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido generar el código QR."})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
