package services

import (
	"context"
	"time"

	"course-material-service/internal/logger"
	"course-material-service/internal/repositories"
	"course-material-service/internal/storage"
	"course-material-service/internal/vectorstore"
	"course-material-service/models"
	"course-material-service/utils"

	"github.com/google/uuid"
)

// DocumentService owns the document registry and the compensation protocol
// that keeps it consistent with the blob store and vector store. Writes are
// not transactional across services: upload compensates a failed registry
// insert with a best-effort blob delete, and delete removes blob, vectors,
// and registry row in that order so a partial failure leaves an orphan that
// a retried delete reconciles.
type DocumentService struct {
	docs    repositories.DocumentRepository
	courses repositories.CourseRepository
	blob    storage.BlobStore
	vectors vectorstore.VectorStore
}

func NewDocumentService(docs repositories.DocumentRepository, courses repositories.CourseRepository, blob storage.BlobStore, vectors vectorstore.VectorStore) *DocumentService {
	return &DocumentService{docs: docs, courses: courses, blob: blob, vectors: vectors}
}

func (s *DocumentService) Upload(ctx context.Context, courseCode, filename string, content []byte, contentType string, uploadedBy string) (*models.Document, error) {
	course, err := s.courses.FindByCode(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, &models.CourseNotFoundError{Code: courseCode}
	}

	documentID := uuid.NewString()
	s3Key := storage.DocumentKey(courseCode, documentID, utils.SanitizeFilename(filename))

	if err := s.blob.Upload(ctx, s3Key, content, contentType); err != nil {
		return nil, err
	}

	doc := &models.Document{
		DocumentID:      documentID,
		CourseCode:      courseCode,
		Filename:        filename,
		S3Key:           s3Key,
		ContentType:     contentType,
		FileSize:        int64(len(content)),
		UploadTimestamp: time.Now().UTC(),
		UploadedBy:      uploadedBy,
		Status:          models.DocumentStatusUploaded,
	}

	if err := s.docs.Insert(ctx, doc); err != nil {
		// Compensate the orphaned blob; the registry row is the source of
		// truth and it was never written.
		if cleanupErr := s.blob.Delete(ctx, s3Key); cleanupErr != nil {
			logger.Warn("orphaned blob cleanup failed",
				"s3_key", s3Key, "cleanup_error", cleanupErr.Error(), "original_error", err.Error())
		}
		return nil, err
	}

	logger.Info("document uploaded",
		"document_id", documentID, "course_code", courseCode,
		"filename", filename, "file_size", doc.FileSize, "uploaded_by", uploadedBy)
	return doc, nil
}

func (s *DocumentService) ListByCourse(ctx context.Context, courseCode string) ([]models.Document, error) {
	return s.docs.FindByCourse(ctx, courseCode)
}

func (s *DocumentService) GetWithDownloadURL(ctx context.Context, documentID string) (*models.DocumentWithDownloadURL, error) {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &models.DocumentNotFoundError{DocumentID: documentID}
	}

	url, err := s.blob.PresignGet(ctx, doc.S3Key, storage.DefaultPresignTTL)
	if err != nil {
		return nil, err
	}
	return &models.DocumentWithDownloadURL{Document: *doc, DownloadURL: url}, nil
}

// Delete removes blob, vectors, then the registry row. Failures before the
// registry removal leave the row in place so the caller can retry the whole
// operation and reconcile the orphan.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return &models.DocumentNotFoundError{DocumentID: documentID}
	}

	if err := s.blob.Delete(ctx, doc.S3Key); err != nil {
		return err
	}
	if err := s.vectors.DeleteByDocument(ctx, documentID); err != nil {
		return err
	}

	deleted, err := s.docs.Delete(ctx, documentID)
	if err != nil {
		return err
	}
	if !deleted {
		return &models.DocumentNotFoundError{DocumentID: documentID}
	}

	logger.Info("document deleted",
		"document_id", documentID, "course_code", doc.CourseCode, "filename", doc.Filename)
	return nil
}
