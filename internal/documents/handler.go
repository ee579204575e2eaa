package documents

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dealflow-backend/internal/deals"
	"dealflow-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc       *Service
	Processor *Processor
}

func NewHandler(svc *Service, processor *Processor) *Handler {
	return &Handler{Svc: svc, Processor: processor}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/deals/:id/documents", h.listByDeal)
	rg.POST("/deals/:id/documents", h.create)
	rg.POST("/deals/create-from-document", h.createDealFromDocument)
	rg.DELETE("/documents/:id", h.delete)
	rg.POST("/documents/:id/process", h.process)
}

func (h *Handler) listByDeal(c *gin.Context) {
	out, err := h.Svc.ListByDeal(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, deals.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "deal not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch documents", nil)
		return
	}
	respond.JSON(c, http.StatusOK, out)
}

type registerRequest struct {
	Name       string  `json:"name"`
	Type       *string `json:"type"`
	Size       *int64  `json:"size"`
	ObjectPath string  `json:"objectPath"`
	Category   string  `json:"category"`
}

// create accepts either a multipart upload with the file content inline, or
// a JSON body referencing content already placed in object storage.
func (h *Handler) create(c *gin.Context) {
	dealID := c.Param("id")
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.upload(c, dealID)
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	violations := make([]respond.FieldViolation, 0, 2)
	if strings.TrimSpace(req.Name) == "" {
		violations = append(violations, respond.FieldViolation{Field: "name", Message: "document name is required"})
	}
	if strings.TrimSpace(req.ObjectPath) == "" {
		violations = append(violations, respond.FieldViolation{Field: "objectPath", Message: "object path is required"})
	}
	if len(violations) > 0 {
		respond.ValidationError(c, violations)
		return
	}

	doc, err := h.Svc.Register(c.Request.Context(), dealID, RegisterRequest{
		Name:       req.Name,
		MimeType:   req.Type,
		SizeBytes:  req.Size,
		ObjectPath: req.ObjectPath,
		Category:   req.Category,
	})
	if err != nil {
		if errors.Is(err, deals.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "deal not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create document", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, doc)
}

func (h *Handler) upload(c *gin.Context, dealID string) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respond.ValidationError(c, []respond.FieldViolation{{Field: "file", Message: "file is required"}})
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), dealID, header.Filename, c.PostForm("category"), file)
	if err != nil {
		if errors.Is(err, deals.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "deal not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload document", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, doc)
}

type createFromDocumentBody struct {
	ObjectPath string  `json:"objectPath"`
	FileName   string  `json:"fileName"`
	FileType   *string `json:"fileType"`
	FileSize   *int64  `json:"fileSize"`
}

func (h *Handler) createDealFromDocument(c *gin.Context) {
	var req createFromDocumentBody
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	violations := make([]respond.FieldViolation, 0, 2)
	if strings.TrimSpace(req.ObjectPath) == "" {
		violations = append(violations, respond.FieldViolation{Field: "objectPath", Message: "objectPath is required"})
	}
	if strings.TrimSpace(req.FileName) == "" {
		violations = append(violations, respond.FieldViolation{Field: "fileName", Message: "fileName is required"})
	}
	if len(violations) > 0 {
		respond.ValidationError(c, violations)
		return
	}

	result, err := h.Svc.CreateFromDocument(c.Request.Context(), CreateFromDocumentRequest{
		ObjectPath: req.ObjectPath,
		FileName:   req.FileName,
		FileType:   req.FileType,
		FileSize:   req.FileSize,
	})
	if err != nil {
		if errors.Is(err, ErrUnreadableDocument) {
			respond.Error(c, http.StatusUnprocessableEntity, "unprocessable", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create deal from document", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, result)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete document", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// process runs the pipeline synchronously and returns the updated document.
func (h *Handler) process(c *gin.Context) {
	if h.Processor == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "processing unavailable", nil)
		return
	}
	documentID := c.Param("id")
	if _, err := h.Svc.GetByID(c.Request.Context(), documentID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		return
	}
	if err := h.Processor.Process(c.Request.Context(), documentID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process document", nil)
		return
	}
	doc, err := h.Svc.GetByID(c.Request.Context(), documentID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		return
	}
	respond.JSON(c, http.StatusOK, doc)
}
