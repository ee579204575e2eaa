package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealflow-backend/internal/deals"
	"dealflow-backend/internal/extract"
	"dealflow-backend/internal/facts"
	"dealflow-backend/internal/queue"
	"dealflow-backend/internal/shared/storage/object"
	"dealflow-backend/internal/shared/telemetry"
	"dealflow-backend/internal/stages"
)

// ErrUnreadableDocument is returned when deal creation from a document
// cannot get usable structured data out of it.
var ErrUnreadableDocument = errors.New("could not extract deal information from document")

type Service struct {
	Repo   Repo
	Deals  *deals.Service
	Stages *stages.Service
	Store  object.ObjectStore
	Queue  queue.Client
	Facts  *facts.Extractor
}

func (s *Service) ListByDeal(ctx context.Context, dealID string) ([]Document, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("documents service not configured")
	}
	if _, err := s.Deals.GetByID(ctx, dealID); err != nil {
		return nil, err
	}
	return s.Repo.ListByDeal(ctx, dealID)
}

func (s *Service) GetByID(ctx context.Context, documentID string) (Document, error) {
	if s == nil || s.Repo == nil {
		return Document{}, errors.New("documents service not configured")
	}
	return s.Repo.GetByID(ctx, documentID)
}

// Upload stores the file content, records the document row, and enqueues
// background processing.
func (s *Service) Upload(ctx context.Context, dealID, fileName, category string, r io.Reader) (Document, error) {
	if s == nil || s.Repo == nil || s.Store == nil {
		return Document{}, errors.New("documents service not configured")
	}
	if _, err := s.Deals.GetByID(ctx, dealID); err != nil {
		return Document{}, err
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Document{}, errors.New("file name is required")
	}
	objectPath, size, mimeType, err := s.Store.Save(ctx, dealID, fileName, r)
	if err != nil {
		return Document{}, fmt.Errorf("store document: %w", err)
	}
	doc := Document{
		ID:         uuid.NewString(),
		DealID:     dealID,
		Name:       fileName,
		ObjectPath: objectPath,
		Category:   normalizeCategory(category),
	}
	if mimeType != "" {
		doc.MimeType = &mimeType
	}
	if size > 0 {
		doc.SizeBytes = &size
	}
	return s.finishCreate(ctx, doc)
}

type RegisterRequest struct {
	Name       string
	MimeType   *string
	SizeBytes  *int64
	ObjectPath string
	Category   string
}

// Register records a document whose content was already placed in object
// storage, then enqueues processing.
func (s *Service) Register(ctx context.Context, dealID string, req RegisterRequest) (Document, error) {
	if s == nil || s.Repo == nil {
		return Document{}, errors.New("documents service not configured")
	}
	if _, err := s.Deals.GetByID(ctx, dealID); err != nil {
		return Document{}, err
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.ObjectPath) == "" {
		return Document{}, errors.New("document name and object path are required")
	}
	doc := Document{
		ID:         uuid.NewString(),
		DealID:     dealID,
		Name:       req.Name,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
		ObjectPath: req.ObjectPath,
		Category:   normalizeCategory(req.Category),
	}
	return s.finishCreate(ctx, doc)
}

func (s *Service) finishCreate(ctx context.Context, doc Document) (Document, error) {
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	s.Deals.RecordActivity(ctx, doc.DealID, deals.ActivityDocumentUploaded,
		fmt.Sprintf("Document %q was uploaded", doc.Name))
	s.enqueue(ctx, doc)
	return s.Repo.GetByID(ctx, doc.ID)
}

func (s *Service) enqueue(ctx context.Context, doc Document) {
	if s.Queue == nil {
		return
	}
	err := s.Queue.Send(ctx, queue.Message{
		DocumentID: doc.ID,
		DealID:     doc.DealID,
		RequestID:  uuid.NewString(),
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    1,
	})
	if err != nil {
		telemetry.Error("document.enqueue_failed", map[string]any{
			"document_id": doc.ID,
			"deal_id":     doc.DealID,
			"error":       err.Error(),
		})
	}
}

func (s *Service) Delete(ctx context.Context, documentID string) error {
	if s == nil || s.Repo == nil {
		return errors.New("documents service not configured")
	}
	return s.Repo.Delete(ctx, documentID)
}

type CreateFromDocumentRequest struct {
	ObjectPath string
	FileName   string
	FileType   *string
	FileSize   *int64
}

type CreateFromDocumentResult struct {
	Deal      deals.Deal        `json:"deal"`
	Document  Document          `json:"document"`
	Extracted facts.DealProfile `json:"extracted"`
}

// CreateFromDocument reads an already-uploaded file, asks the model for a
// deal profile, creates the deal in the first pipeline stage, attaches the
// document, and enqueues processing.
func (s *Service) CreateFromDocument(ctx context.Context, req CreateFromDocumentRequest) (CreateFromDocumentResult, error) {
	if s == nil || s.Repo == nil || s.Store == nil || s.Facts == nil {
		return CreateFromDocumentResult{}, errors.New("documents service not configured")
	}
	mimeType := ""
	if req.FileType != nil {
		mimeType = *req.FileType
	}
	text := extract.ExtractText(ctx, s.Store, req.ObjectPath, req.FileName, mimeType)
	telemetry.Info("document.extracted_for_deal", map[string]any{
		"file":  req.FileName,
		"chars": len(text),
	})

	profile, err := s.Facts.ExtractProfile(ctx, req.FileName, text)
	if err != nil {
		if errors.Is(err, facts.ErrNoJSON) {
			return CreateFromDocumentResult{}, ErrUnreadableDocument
		}
		return CreateFromDocumentResult{}, err
	}

	deal := deals.Deal{
		Name:          profile.Name,
		Description:   profile.Description,
		TargetCompany: profile.TargetCompany,
		Geography:     profile.Geography,
		Valuation:     profile.Valuation,
		Revenue:       profile.Revenue,
		EBITDA:        profile.EBITDA,
	}
	if deal.Name == "" {
		deal.Name = strings.TrimSuffix(req.FileName, filepath.Ext(req.FileName))
	}
	if s.Stages != nil {
		if all, err := s.Stages.List(ctx); err == nil && len(all) > 0 {
			deal.StageID = &all[0].ID
		}
	}

	created, err := s.Deals.CreateFromDocument(ctx, deal, req.FileName)
	if err != nil {
		return CreateFromDocumentResult{}, err
	}

	doc := Document{
		ID:         uuid.NewString(),
		DealID:     created.ID,
		Name:       req.FileName,
		MimeType:   req.FileType,
		SizeBytes:  req.FileSize,
		ObjectPath: req.ObjectPath,
		Category:   defaultCategory,
	}
	doc, err = s.finishCreate(ctx, doc)
	if err != nil {
		return CreateFromDocumentResult{}, err
	}
	return CreateFromDocumentResult{Deal: created, Document: doc, Extracted: profile}, nil
}

func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return defaultCategory
	}
	return category
}
