// Package controllers: controllers/partner_controller.go
// Partner registration, approval workflow and payment endpoints.
package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"festes-portal/logger"
	"festes-portal/models"
	"festes-portal/services"
)

// PartnerDirectory is the partner surface this controller needs.
type PartnerDirectory interface {
	RegisterPartner(ctx context.Context, input services.RegisterPartnerInput) (*models.Partner, error)
	GetPartner(ctx context.Context, partnerID string) (*models.Partner, error)
	ListPartners(ctx context.Context, statusFilter string) ([]models.Partner, error)
	ApprovePartner(ctx context.Context, partnerID, userID string) (*models.Partner, error)
	RejectPartner(ctx context.Context, partnerID, userID string) (*models.Partner, error)
	UpdatePartner(ctx context.Context, partnerID string, fields map[string]interface{}, userID string) error
	DeletePartner(ctx context.Context, partnerID, userID string) error
}

// PartnerLedger is the payment surface this controller needs.
type PartnerLedger interface {
	GetPartnerPaymentsByStatus(ctx context.Context, partnerID string) (models.PartnerPayments, error)
	CreatePaymentForPartner(ctx context.Context, partnerID string, input services.PaymentInput, userID string) (models.PaymentResult, error)
	UpdatePartnerPayment(ctx context.Context, partnerID, paymentID string, input services.UpdatePaymentInput, userID string) error
}

// PartnerController serves the partner list, the approval workflow and
// the per-partner payment records.
type PartnerController struct {
	partners PartnerDirectory
	payments PartnerLedger
}

// NewPartnerController wires the controller to its services.
func NewPartnerController(partners PartnerDirectory, payments PartnerLedger) *PartnerController {
	return &PartnerController{partners: partners, payments: payments}
}

// sessionUserID pulls the authenticated user from the session.
func sessionUserID(c *gin.Context) string {
	session := sessions.Default(c)
	if id, ok := session.Get("userID").(string); ok {
		return id
	}
	return ""
}

// Register handles the public registration form. New partners land in
// pending until staff approves them.
func (pc *PartnerController) Register(c *gin.Context) {
	var input services.RegisterPartnerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud no válida."})
		return
	}

	partner, err := pc.partners.RegisterPartner(c.Request.Context(), input)
	if err != nil {
		logger.Warn.Printf("Register: Registration rejected: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"partner": partner})
}

// List returns partners, optionally filtered by status and by a
// free-text query over name/lastName/email/dni.
func (pc *PartnerController) List(c *gin.Context) {
	partners, err := pc.partners.ListPartners(c.Request.Context(), c.Query("status"))
	if err != nil {
		logger.Error.Printf("List partners: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido cargar la lista de socios."})
		return
	}

	query := c.Query("q")
	if query != "" {
		docs := make([]map[string]interface{}, 0, len(partners))
		byID := make(map[string]models.Partner, len(partners))
		for _, partner := range partners {
			docs = append(docs, map[string]interface{}{
				"id":       partner.ID,
				"name":     partner.Name,
				"lastName": partner.LastName,
				"email":    partner.Email,
				"dni":      partner.DNI,
			})
			byID[partner.ID] = partner
		}
		matched := services.FilterDocuments(docs, query, services.SearchConfig{
			Fields: []string{"name", "lastName", "email", "dni"},
		})
		filtered := make([]models.Partner, 0, len(matched))
		for _, doc := range matched {
			filtered = append(filtered, byID[doc["id"].(string)])
		}
		partners = filtered
	}

	c.JSON(http.StatusOK, gin.H{"partners": partners})
}

// Get returns one partner, or a dedicated not-found payload.
func (pc *PartnerController) Get(c *gin.Context) {
	partner, err := pc.partners.GetPartner(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrPartnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Socio no encontrado."})
			return
		}
		logger.Error.Printf("Get partner: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partner": partner})
}

// Approve flips a pending partner to approved; the active season's
// payment document is created as part of the approval.
func (pc *PartnerController) Approve(c *gin.Context) {
	partner, err := pc.partners.ApprovePartner(c.Request.Context(), c.Param("id"), sessionUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrPartnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Socio no encontrado."})
			return
		}
		logger.Error.Printf("Approve partner: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido aprobar el socio."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partner": partner})
}

// Reject flips a partner to rejected.
func (pc *PartnerController) Reject(c *gin.Context) {
	partner, err := pc.partners.RejectPartner(c.Request.Context(), c.Param("id"), sessionUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrPartnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Socio no encontrado."})
			return
		}
		logger.Error.Printf("Reject partner: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido rechazar el socio."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partner": partner})
}

// Update applies a partial update to a partner's identity fields.
func (pc *PartnerController) Update(c *gin.Context) {
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil || len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud no válida."})
		return
	}
	if err := pc.partners.UpdatePartner(c.Request.Context(), c.Param("id"), fields, sessionUserID(c)); err != nil {
		if errors.Is(err, services.ErrPartnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Socio no encontrado."})
			return
		}
		logger.Error.Printf("Update partner: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido actualizar el socio."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete hard-deletes a partner and its payments.
func (pc *PartnerController) Delete(c *gin.Context) {
	if err := pc.partners.DeletePartner(c.Request.Context(), c.Param("id"), sessionUserID(c)); err != nil {
		if errors.Is(err, services.ErrPartnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Socio no encontrado."})
			return
		}
		logger.Error.Printf("Delete partner: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido eliminar el socio."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Payments returns the partner's current and historical payments.
func (pc *PartnerController) Payments(c *gin.Context) {
	payments, err := pc.payments.GetPartnerPaymentsByStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Error.Printf("Partner payments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se han podido cargar los pagos."})
		return
	}
	c.JSON(http.StatusOK, payments)
}

// CreatePayment adds a payment document for one season. Duplicate
// seasons answer 200 with existing=true rather than an error.
func (pc *PartnerController) CreatePayment(c *gin.Context) {
	var input services.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud no válida."})
		return
	}
	result, err := pc.payments.CreatePaymentForPartner(c.Request.Context(), c.Param("id"), input, sessionUserID(c))
	if err != nil {
		logger.Error.Printf("Create payment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido crear el pago."})
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// UpdatePayment applies a partial update to one payment document.
func (pc *PartnerController) UpdatePayment(c *gin.Context) {
	var input services.UpdatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Solicitud no válida."})
		return
	}
	err := pc.payments.UpdatePartnerPayment(c.Request.Context(), c.Param("id"), c.Param("paymentId"), input, sessionUserID(c))
	if err != nil {
		logger.Error.Printf("Update payment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido actualizar el pago."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
