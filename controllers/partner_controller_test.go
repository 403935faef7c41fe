// controllers/partner_controller_test.go
//go:build unit
// +build unit

package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festes-portal/models"
	"festes-portal/services"
)

// mockPartnerDirectory serves a fixed partner roster.
type mockPartnerDirectory struct {
	partners   map[string]models.Partner
	approvedBy string
}

func (m *mockPartnerDirectory) RegisterPartner(_ context.Context, input services.RegisterPartnerInput) (*models.Partner, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	partner := models.Partner{ID: "new-partner", Name: input.Name, LastName: input.LastName,
		Email: input.Email, DNI: input.DNI, Status: models.PartnerStatusPending}
	return &partner, nil
}

func (m *mockPartnerDirectory) GetPartner(_ context.Context, partnerID string) (*models.Partner, error) {
	partner, ok := m.partners[partnerID]
	if !ok {
		return nil, services.ErrPartnerNotFound
	}
	return &partner, nil
}

func (m *mockPartnerDirectory) ListPartners(_ context.Context, statusFilter string) ([]models.Partner, error) {
	var out []models.Partner
	for _, partner := range m.partners {
		if statusFilter == "" || partner.Status == statusFilter {
			out = append(out, partner)
		}
	}
	return out, nil
}

func (m *mockPartnerDirectory) ApprovePartner(_ context.Context, partnerID, userID string) (*models.Partner, error) {
	partner, ok := m.partners[partnerID]
	if !ok {
		return nil, services.ErrPartnerNotFound
	}
	partner.Status = models.PartnerStatusApproved
	m.partners[partnerID] = partner
	m.approvedBy = userID
	return &partner, nil
}

func (m *mockPartnerDirectory) RejectPartner(_ context.Context, partnerID, userID string) (*models.Partner, error) {
	partner, ok := m.partners[partnerID]
	if !ok {
		return nil, services.ErrPartnerNotFound
	}
	partner.Status = models.PartnerStatusRejected
	m.partners[partnerID] = partner
	return &partner, nil
}

func (m *mockPartnerDirectory) UpdatePartner(_ context.Context, partnerID string, fields map[string]interface{}, userID string) error {
	if _, ok := m.partners[partnerID]; !ok {
		return services.ErrPartnerNotFound
	}
	return nil
}

func (m *mockPartnerDirectory) DeletePartner(_ context.Context, partnerID, userID string) error {
	if _, ok := m.partners[partnerID]; !ok {
		return services.ErrPartnerNotFound
	}
	delete(m.partners, partnerID)
	return nil
}

// mockPartnerLedger tracks per-partner payments by season.
type mockPartnerLedger struct {
	existing map[int]bool // season years that already have a payment
}

func (m *mockPartnerLedger) GetPartnerPaymentsByStatus(_ context.Context, partnerID string) (models.PartnerPayments, error) {
	return models.PartnerPayments{Historical: []models.Payment{}}, nil
}

func (m *mockPartnerLedger) CreatePaymentForPartner(_ context.Context, partnerID string, input services.PaymentInput, userID string) (models.PaymentResult, error) {
	if m.existing[input.SeasonYear] {
		return models.PaymentResult{Existing: true, Payment: &models.Payment{SeasonYear: input.SeasonYear}}, nil
	}
	m.existing[input.SeasonYear] = true
	return models.PaymentResult{Created: true, Payment: &models.Payment{ID: "pay-1", SeasonYear: input.SeasonYear}}, nil
}

func (m *mockPartnerLedger) UpdatePartnerPayment(_ context.Context, partnerID, paymentID string, input services.UpdatePaymentInput, userID string) error {
	return nil
}

func fixtureDirectory() *mockPartnerDirectory {
	return &mockPartnerDirectory{partners: map[string]models.Partner{
		"p1": {ID: "p1", Name: "María", LastName: "García", Email: "maria@patronat.org", DNI: "12345678Z", Status: models.PartnerStatusPending},
		"p2": {ID: "p2", Name: "Josep", LastName: "Ferrer", Email: "josep@patronat.org", DNI: "87654321X", Status: models.PartnerStatusApproved},
	}}
}

func setupPartnerRouter(directory *mockPartnerDirectory, ledger *mockPartnerLedger) *gin.Engine {
	router := setupTestRouter()
	pc := NewPartnerController(directory, ledger)
	router.POST("/partners/register", pc.Register)
	router.GET("/partners", pc.List)
	router.GET("/partners/:id", pc.Get)
	router.POST("/partners/:id/approve", pc.Approve)
	router.POST("/partners/:id/reject", pc.Reject)
	router.POST("/partners/:id/payments", pc.CreatePayment)
	router.GET("/partners/:id/payments", pc.Payments)
	return router
}

// Test: a valid registration answers 201 with a pending partner
func TestRegisterPartner(t *testing.T) {
	router := setupPartnerRouter(fixtureDirectory(), &mockPartnerLedger{existing: map[int]bool{}})

	body := `{"name":"Nou","lastName":"Soci","email":"nou@patronat.org","dni":"12345678Z"}`
	req, _ := http.NewRequest("POST", "/partners/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
}

// Test: an invalid DNI is rejected with 400
func TestRegisterPartner_InvalidDNI(t *testing.T) {
	router := setupPartnerRouter(fixtureDirectory(), &mockPartnerLedger{existing: map[int]bool{}})

	body := `{"name":"Nou","lastName":"Soci","email":"nou@patronat.org","dni":"12345678A"}`
	req, _ := http.NewRequest("POST", "/partners/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Test: ?q= filters the list by free text
func TestListPartners_Search(t *testing.T) {
	router := setupPartnerRouter(fixtureDirectory(), &mockPartnerLedger{existing: map[int]bool{}})

	req, _ := http.NewRequest("GET", "/partners?q=ferrer", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Josep")
	assert.NotContains(t, w.Body.String(), "María")
}

// Test: approving a pending partner records who approved it
func TestApprovePartner(t *testing.T) {
	directory := fixtureDirectory()
	router := setupPartnerRouter(directory, &mockPartnerLedger{existing: map[int]bool{}})
	cookie := SetSession(router, "/set-session", map[string]interface{}{"userID": "staff-1"})
	require.NotNil(t, cookie)

	req, _ := http.NewRequest("POST", "/partners/p1/approve", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"approved"`)
	assert.Equal(t, "staff-1", directory.approvedBy)
}

// Test: approving a missing partner answers 404
func TestApprovePartner_NotFound(t *testing.T) {
	router := setupPartnerRouter(fixtureDirectory(), &mockPartnerLedger{existing: map[int]bool{}})

	req, _ := http.NewRequest("POST", "/partners/nope/approve", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Test: a new payment answers 201; a duplicate season answers 200 with
// existing=true
func TestCreatePayment_DuplicateSeason(t *testing.T) {
	router := setupPartnerRouter(fixtureDirectory(), &mockPartnerLedger{existing: map[int]bool{}})

	body := `{"seasonYear":2025}`
	first, _ := http.NewRequest("POST", "/partners/p2/payments", strings.NewReader(body))
	first.Header.Set("Content-Type", "application/json")
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, first)

	assert.Equal(t, http.StatusCreated, w1.Code)
	assert.Contains(t, w1.Body.String(), `"created":true`)

	second, _ := http.NewRequest("POST", "/partners/p2/payments", strings.NewReader(body))
	second.Header.Set("Content-Type", "application/json")
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, second)

	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), `"existing":true`)
}

// Test: the payments endpoint returns the classified buckets shape
func TestPartnerPayments(t *testing.T) {
	router := setupPartnerRouter(fixtureDirectory(), &mockPartnerLedger{existing: map[int]bool{}})

	req, _ := http.NewRequest("GET", "/partners/p2/payments", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"current":null`)
	assert.Contains(t, w.Body.String(), `"historical":[]`)
}
