package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"safebite/internal/config"
	"safebite/internal/domain"
	"safebite/internal/engine"
	"safebite/internal/metrics"
	"safebite/internal/port"
	"safebite/internal/storage/s3"
)

// LabelUploadInput is the DTO for label upload requests.
type LabelUploadInput struct {
	OwnerID uuid.UUID
	File    multipart.File
	Header  *multipart.FileHeader
}

// LabelUploadResult is the stored label, the text read from it and its
// reconciliation against the owner's allergens.
type LabelUploadResult struct {
	Document       *domain.LabelDocument  `json:"document"`
	ExtractedText  string                 `json:"extracted_text"`
	Reconciliation *domain.Reconciliation `json:"reconciliation"`
}

// DocumentService turns product labels into candidate allergens and manages
// the pending-review set.
type DocumentService interface {
	Upload(ctx context.Context, input LabelUploadInput) (*LabelUploadResult, error)
	ReconcileText(ctx context.Context, ownerID uuid.UUID, rawText string) (*domain.Reconciliation, error)
	ListPending(ctx context.Context, ownerID uuid.UUID) ([]domain.CandidateAllergen, error)
	// Confirm registers the named candidates as allergens and removes them
	// from the pending set. Names need not be pending.
	Confirm(ctx context.Context, ownerID uuid.UUID, names []string) ([]domain.Allergen, error)
	Discard(ctx context.Context, ownerID uuid.UUID, names []string) (int, error)
}

type documentService struct {
	docRepo       port.LabelDocumentRepository
	candidateRepo port.CandidateRepository
	allergenRepo  port.AllergenRepository
	allergens     AllergenService
	storage       port.ObjectStorage
	extractor     port.TextExtractor
	engine        *engine.Engine
	metrics       *metrics.Metrics
	cfg           *config.S3Config
	logger        *zap.Logger
	now           func() time.Time
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	docRepo port.LabelDocumentRepository,
	candidateRepo port.CandidateRepository,
	allergenRepo port.AllergenRepository,
	allergens AllergenService,
	storage port.ObjectStorage,
	extractor port.TextExtractor,
	eng *engine.Engine,
	m *metrics.Metrics,
	cfg *config.S3Config,
	logger *zap.Logger,
) DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &documentService{
		docRepo:       docRepo,
		candidateRepo: candidateRepo,
		allergenRepo:  allergenRepo,
		allergens:     allergens,
		storage:       storage,
		extractor:     extractor,
		engine:        eng,
		metrics:       m,
		cfg:           cfg,
		logger:        logger.Named("documents"),
		now:           time.Now,
	}
}

func (s *documentService) Upload(ctx context.Context, input LabelUploadInput) (*LabelUploadResult, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading label file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Magic bytes must agree with an allowed type, whatever the extension says.
	if _, ok := domain.AllowedContentTypes[http.DetectContentType(data)]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	docID := uuid.New()
	doc := &domain.LabelDocument{
		ID:           docID,
		OwnerID:      input.OwnerID,
		OriginalName: input.Header.Filename,
		FileType:     fileType,
		FileSize:     int64(len(data)),
		S3Bucket:     s.cfg.Bucket,
		S3Key:        s3.ObjectKey(input.OwnerID, docID, input.Header.Filename),
		ContentType:  domain.AllowedFileTypes[fileType],
		Status:       domain.DocumentStatusPending,
	}

	log := s.logger.With(zap.String("owner_id", input.OwnerID.String()), zap.String("document_id", docID.String()))
	log.Info("uploading label", zap.String("file", doc.OriginalName), zap.Int64("bytes", doc.FileSize))

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating label document: %w", err)
	}

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      doc.S3Bucket,
		Key:         doc.S3Key,
		Body:        bytes.NewReader(data),
		ContentType: doc.ContentType,
		Size:        doc.FileSize,
	}); err != nil {
		log.Error("label upload failed", zap.Error(err))
		s.setStatus(ctx, doc, domain.DocumentStatusFailed)
		return nil, domain.ErrUploadFailed
	}
	s.setStatus(ctx, doc, domain.DocumentStatusUploaded)

	text, err := s.extractor.ExtractText(ctx, port.ExtractInput{FileBytes: data, ContentType: doc.ContentType})
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("no text found on label")
	}
	if err != nil {
		log.Warn("label text extraction failed", zap.Error(err))
		s.setStatus(ctx, doc, domain.DocumentStatusFailed)
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	s.setStatus(ctx, doc, domain.DocumentStatusExtracted)

	rec, err := s.reconcile(ctx, input.OwnerID, text, &doc.ID)
	if err != nil {
		return nil, err
	}
	return &LabelUploadResult{Document: doc, ExtractedText: text, Reconciliation: rec}, nil
}

func (s *documentService) ReconcileText(ctx context.Context, ownerID uuid.UUID, rawText string) (*domain.Reconciliation, error) {
	return s.reconcile(ctx, ownerID, rawText, nil)
}

func (s *documentService) reconcile(ctx context.Context, ownerID uuid.UUID, rawText string, sourceDocID *uuid.UUID) (*domain.Reconciliation, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("%w: label text is empty", domain.ErrInvalidInput)
	}
	existing, err := s.allergenRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	rec, err := s.engine.Reconcile(rawText, existing, sourceDocID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	for i := range rec.Candidates {
		rec.Candidates[i].OwnerID = ownerID
	}

	stored, err := s.candidateRepo.Upsert(ctx, rec.Candidates)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]domain.CandidateAllergen, len(stored))
	for _, c := range stored {
		byName[c.NormalizedText] = c
	}
	for i := range rec.Candidates {
		if c, ok := byName[rec.Candidates[i].NormalizedText]; ok {
			rec.Candidates[i] = c
		}
	}
	s.metrics.AddCandidates(len(rec.Candidates))

	s.logger.Info("label reconciled",
		zap.String("owner_id", ownerID.String()),
		zap.Int("candidates", len(rec.Candidates)),
		zap.Int("already_known", len(rec.AlreadyKnown)))
	return rec, nil
}

func (s *documentService) ListPending(ctx context.Context, ownerID uuid.UUID) ([]domain.CandidateAllergen, error) {
	return s.candidateRepo.ListByOwner(ctx, ownerID)
}

func (s *documentService) Confirm(ctx context.Context, ownerID uuid.UUID, names []string) ([]domain.Allergen, error) {
	canonical, err := canonicalNames(names)
	if err != nil {
		return nil, err
	}

	confirmed := make([]domain.Allergen, 0, len(canonical))
	for _, name := range canonical {
		allergen, _, err := s.allergens.Register(ctx, ownerID, name)
		if err != nil {
			return nil, err
		}
		confirmed = append(confirmed, *allergen)
	}

	if _, err := s.candidateRepo.DeleteByNames(ctx, ownerID, canonical); err != nil {
		return nil, err
	}
	return confirmed, nil
}

func (s *documentService) Discard(ctx context.Context, ownerID uuid.UUID, names []string) (int, error) {
	if len(names) == 0 {
		return 0, fmt.Errorf("%w: at least one name required", domain.ErrInvalidInput)
	}
	normalized := make([]string, 0, len(names))
	for _, raw := range names {
		if n, err := engine.Normalize(raw); err == nil {
			normalized = append(normalized, n)
		}
	}
	return s.candidateRepo.DeleteByNames(ctx, ownerID, normalized)
}

func (s *documentService) setStatus(ctx context.Context, doc *domain.LabelDocument, status domain.DocumentStatus) {
	if err := s.docRepo.UpdateStatus(ctx, doc.OwnerID, doc.ID, status); err != nil {
		s.logger.Warn("updating label status failed",
			zap.String("document_id", doc.ID.String()),
			zap.String("status", string(status)),
			zap.Error(err))
		return
	}
	doc.Status = status
}

// canonicalNames validates every name before anything is written and drops
// duplicates.
func canonicalNames(names []string) ([]string, error) {
	if len(names) == 0 || len(names) > maxBatchNames {
		return nil, fmt.Errorf("%w: between 1 and %d names required", domain.ErrInvalidInput, maxBatchNames)
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name, err := CanonicalAllergenName(raw)
		if err != nil {
			return nil, fmt.Errorf("%w (%q)", err, raw)
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}
