// Package services: services/storage_service.go
// Object storage for uploaded files: S3 puts under a fixed folder
// convention, best-effort deletion of replaced objects, and the
// uploads/collaborators/participants catalog documents in Firestore.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"google.golang.org/api/iterator"

	"festes-portal/database"
	"festes-portal/logger"
	"festes-portal/models"
)

// Storage folders. Upload paths outside this set are rejected.
var allowedFolders = map[string]bool{
	"collaborators": true,
	"participants":  true,
	"images":        true,
	"files":         true,
	"staff":         true,
}

// BuildObjectKey returns the S3 key for a file: the folder prefix plus
// the sanitized filename. Unknown folders are an error.
func BuildObjectKey(folder, filename string) (string, error) {
	if !allowedFolders[folder] {
		return "", fmt.Errorf("unknown storage folder %q", folder)
	}
	sanitized := SanitizeFilename(filename)
	if sanitized == "" || sanitized == "." {
		return "", errors.New("empty filename after sanitizing")
	}
	return folder + "/" + sanitized, nil
}

// S3Uploader is the slice of the AWS upload manager the service uses.
type S3Uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// StorageService uploads objects to S3 and records them in Firestore.
type StorageService struct {
	client   *firestore.Client
	uploader S3Uploader
	s3       *s3.S3
	bucket   string
}

// NewStorageService builds the service on the default AWS credential
// chain. The bucket comes from UPLOADS_BUCKET.
func NewStorageService(client *firestore.Client) *StorageService {
	sess := session.Must(session.NewSession())
	bucket := os.Getenv("UPLOADS_BUCKET")
	if bucket == "" {
		bucket = "festes-portal-uploads"
	}
	return &StorageService{
		client:   client,
		uploader: s3manager.NewUploader(sess),
		s3:       s3.New(sess),
		bucket:   bucket,
	}
}

// UploadFile validates nothing (callers run the file policy first),
// puts the object and records it in the uploads collection. When
// replaceURL names a previously stored object, that object is deleted
// best-effort: a failed delete is logged, never fatal.
func (s *StorageService) UploadFile(ctx context.Context, folder, filename, contentType string, body io.Reader, uploadedBy, replaceURL string) (*models.Upload, error) {
	key, err := BuildObjectKey(folder, filename)
	if err != nil {
		return nil, err
	}

	result, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", key, err)
	}

	if replaceURL != "" {
		s.deleteByURL(ctx, replaceURL)
	}

	upload := models.Upload{
		Name:       filename,
		Folder:     folder,
		FileURL:    result.Location,
		UploadedBy: uploadedBy,
	}
	ref := s.client.Collection(database.UploadsCollection).NewDoc()
	if _, err := ref.Create(ctx, upload); err != nil {
		return nil, fmt.Errorf("recording upload %s: %w", key, err)
	}
	upload.ID = ref.ID
	logger.Info.Printf("[UploadFile] Stored %s as %s", key, result.Location)
	return &upload, nil
}

// deleteByURL removes a replaced object. Failures are logged only.
func (s *StorageService) deleteByURL(ctx context.Context, fileURL string) {
	key := objectKeyFromURL(fileURL)
	if key == "" {
		logger.Warn.Printf("[deleteByURL] Could not derive object key from %s", fileURL)
		return
	}
	_, err := s.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logger.Warn.Printf("[deleteByURL] Best-effort delete of %s failed: %v", key, err)
	}
}

// objectKeyFromURL extracts "folder/filename" from a stored object URL
// by matching one of the known folder prefixes.
func objectKeyFromURL(fileURL string) string {
	for folder := range allowedFolders {
		marker := "/" + folder + "/"
		if idx := strings.Index(fileURL, marker); idx >= 0 {
			return fileURL[idx+1:]
		}
	}
	return ""
}

// ListUploads returns the stored upload records.
func (s *StorageService) ListUploads(ctx context.Context) ([]models.Upload, error) {
	var uploads []models.Upload
	iter := s.client.Collection(database.UploadsCollection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var upload models.Upload
		if err := doc.DataTo(&upload); err != nil {
			return nil, err
		}
		upload.ID = doc.Ref.ID
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

// SaveCollaborator records a collaborator with its stored logo URL.
func (s *StorageService) SaveCollaborator(ctx context.Context, name, fileURL string) (*models.Collaborator, error) {
	collaborator := models.Collaborator{Name: name, FileURL: fileURL}
	ref := s.client.Collection(database.CollaboratorsCollection).NewDoc()
	if _, err := ref.Create(ctx, collaborator); err != nil {
		return nil, fmt.Errorf("recording collaborator %q: %w", name, err)
	}
	collaborator.ID = ref.ID
	return &collaborator, nil
}

// SaveParticipant records a participant with its stored photo URL.
func (s *StorageService) SaveParticipant(ctx context.Context, name, fileURL string) (*models.Participant, error) {
	participant := models.Participant{Name: name, FileURL: fileURL}
	ref := s.client.Collection(database.ParticipantsCollection).NewDoc()
	if _, err := ref.Create(ctx, participant); err != nil {
		return nil, fmt.Errorf("recording participant %q: %w", name, err)
	}
	participant.ID = ref.ID
	return &participant, nil
}
