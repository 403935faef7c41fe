// Package controllers: controllers/upload_controller.go
// Multipart uploads to S3: collaborator logos, participant photos and
// general documents.
package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"festes-portal/logger"
	"festes-portal/models"
	"festes-portal/services"
)

// FileStore is the storage surface this controller needs.
type FileStore interface {
	UploadFile(ctx context.Context, folder, filename, contentType string, body io.Reader, uploadedBy, replaceURL string) (*models.Upload, error)
	ListUploads(ctx context.Context) ([]models.Upload, error)
	SaveCollaborator(ctx context.Context, name, fileURL string) (*models.Collaborator, error)
	SaveParticipant(ctx context.Context, name, fileURL string) (*models.Participant, error)
}

// UploadController handles multipart uploads and the gallery records
// built on top of them.
type UploadController struct {
	store FileStore
}

// NewUploadController wires the controller to the storage service.
func NewUploadController(store FileStore) *UploadController {
	return &UploadController{store: store}
}

// policyForFolder picks the file policy matching the destination:
// image folders accept only images, document folders accept PDFs too.
func policyForFolder(folder string) services.FilePolicy {
	switch folder {
	case "collaborators", "participants", "images":
		return services.ImageFilePolicy
	default:
		return services.DocumentFilePolicy
	}
}

// Upload receives one multipart file, validates it against the
// folder's policy and stores it. An optional replaceUrl form value
// points at the previous file to delete.
func (uc *UploadController) Upload(c *gin.Context) {
	folder := c.PostForm("folder")
	if folder == "" {
		folder = "files"
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Falta el archivo."})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if err := policyForFolder(folder).ValidateFile(contentType, header.Size); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := header.Open()
	if err != nil {
		logger.Error.Printf("Open uploaded file %s: %v", header.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido leer el archivo."})
		return
	}
	defer file.Close()

	upload, err := uc.store.UploadFile(c.Request.Context(), folder, header.Filename, contentType, file, sessionUserID(c), c.PostForm("replaceUrl"))
	if err != nil {
		logger.Error.Printf("Upload %s to %s: %v", header.Filename, folder, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido subir el archivo."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"upload": upload})
}

// List returns the upload records, staff only.
func (uc *UploadController) List(c *gin.Context) {
	uploads, err := uc.store.ListUploads(c.Request.Context())
	if err != nil {
		logger.Error.Printf("List uploads: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se han podido cargar los archivos."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploads": uploads})
}

type galleryEntryRequest struct {
	Name    string `json:"name"`
	FileURL string `json:"fileUrl"`
}

// CreateCollaborator records a collaborator logo already uploaded.
func (uc *UploadController) CreateCollaborator(c *gin.Context) {
	var req galleryEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.FileURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se requieren el nombre y la URL del archivo."})
		return
	}

	collaborator, err := uc.store.SaveCollaborator(c.Request.Context(), req.Name, req.FileURL)
	if err != nil {
		logger.Error.Printf("Save collaborator %s: %v", req.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido guardar el colaborador."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"collaborator": collaborator})
}

// CreateParticipant records a participant photo already uploaded.
func (uc *UploadController) CreateParticipant(c *gin.Context) {
	var req galleryEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.FileURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se requieren el nombre y la URL del archivo."})
		return
	}

	participant, err := uc.store.SaveParticipant(c.Request.Context(), req.Name, req.FileURL)
	if err != nil {
		logger.Error.Printf("Save participant %s: %v", req.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se ha podido guardar el participante."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"participant": participant})
}
