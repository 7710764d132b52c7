package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"lending-backend/internal/extract"
	"lending-backend/internal/shared/storage/object"
	"lending-backend/internal/shared/telemetry"
)

// Service contains business logic for documents.
type Service struct {
	Store           object.ObjectStore
	Repo            DocumentsRepo
	StorageProvider string
}

// Upload saves the file to object storage and records the document against
// an application.
func (s *Service) Upload(ctx context.Context, userID, applicationID, docType, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, fmt.Errorf("%w: fileName is required", ErrInvalidInput)
	}
	if strings.TrimSpace(applicationID) == "" {
		return Document{}, fmt.Errorf("%w: applicationId is required", ErrInvalidInput)
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:              uuid.NewString(),
		UserID:          userID,
		ApplicationID:   applicationID,
		DocType:         normalizeDocType(docType),
		FileName:        fileName,
		MimeType:        mimeType,
		SizeBytes:       size,
		StorageProvider: s.StorageProvider,
		StorageKey:      storageKey,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// CreateFromS3 records a document already uploaded through a presigned URL.
func (s *Service) CreateFromS3(ctx context.Context, userID, applicationID, docType, s3Key, originalFileName, contentType string, sizeBytes int64) (Document, error) {
	if strings.TrimSpace(applicationID) == "" {
		return Document{}, fmt.Errorf("%w: applicationId is required", ErrInvalidInput)
	}

	doc := Document{
		ID:               uuid.NewString(),
		UserID:           userID,
		ApplicationID:    applicationID,
		DocType:          normalizeDocType(docType),
		FileName:         originalFileName,
		OriginalFilename: originalFileName,
		MimeType:         contentType,
		ContentType:      contentType,
		SizeBytes:        sizeBytes,
		StorageProvider:  "s3",
		StorageKey:       s3Key,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Get returns a document by ID for a user.
func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	if userID == "" || documentID == "" {
		return Document{}, fmt.Errorf("%w: user id and document id are required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID, documentID)
}

// ListByApplication returns documents attached to an application.
func (s *Service) ListByApplication(ctx context.Context, applicationID string, limit, offset int) ([]Document, error) {
	if strings.TrimSpace(applicationID) == "" {
		return nil, fmt.Errorf("%w: applicationId is required", ErrInvalidInput)
	}
	return s.Repo.ListByApplication(ctx, applicationID, limit, offset)
}

// Text extracts and returns the plain text of a stored document, persisting
// the derived copy so repeat calls read the cached extraction.
func (s *Service) Text(ctx context.Context, userID, documentID string) (string, error) {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return "", err
	}

	if doc.ExtractedTextKey != "" {
		body, err := s.Store.Open(ctx, doc.ExtractedTextKey)
		if err == nil {
			defer body.Close()
			data, err := io.ReadAll(body)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
	}

	text, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		return "", err
	}
	extractedKey := doc.StorageKey + ".extracted.txt"
	if err := s.Repo.UpdateExtraction(ctx, doc.UserID, doc.ID, extractedKey, time.Now().UTC()); err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	return text, nil
}

// SurveyNoteTexts returns the extracted text of every survey-note document
// attached to an application. Documents whose text cannot be extracted are
// skipped rather than failing the whole batch.
func (s *Service) SurveyNoteTexts(ctx context.Context, applicationID string) ([]string, error) {
	docs, err := s.ListByApplication(ctx, applicationID, 50, 0)
	if err != nil {
		return nil, err
	}
	var texts []string
	for _, doc := range docs {
		if doc.DocType != TypeSurveyNotes {
			continue
		}
		text, err := s.Text(ctx, doc.UserID, doc.ID)
		if err != nil {
			telemetry.Warn("document.text_extract", map[string]any{
				"document_id":    doc.ID,
				"application_id": applicationID,
				"err":            err.Error(),
			})
			continue
		}
		if strings.TrimSpace(text) != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

func normalizeDocType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case TypePayslip:
		return TypePayslip
	case TypeIdentity:
		return TypeIdentity
	case TypeSurveyNotes:
		return TypeSurveyNotes
	case TypeCollateral:
		return TypeCollateral
	default:
		return TypeOther
	}
}
