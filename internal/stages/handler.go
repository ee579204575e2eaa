package stages

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dealflow-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stages", h.list)
	rg.POST("/stages", h.create)
	rg.POST("/stages/seed", h.seed)
	rg.PATCH("/stages/:id", h.update)
	rg.DELETE("/stages/:id", h.delete)
}

type stageRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	SortOrder   *int    `json:"sortOrder"`
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch stages", nil)
		return
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) create(c *gin.Context) {
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	if req.Name == nil || *req.Name == "" {
		respond.ValidationError(c, []respond.FieldViolation{{Field: "name", Message: "stage name is required"}})
		return
	}
	stage := Stage{Name: *req.Name}
	if req.Description != nil {
		stage.Description = *req.Description
	}
	if req.Color != nil {
		stage.Color = *req.Color
	}
	if req.SortOrder != nil {
		stage.SortOrder = *req.SortOrder
	}
	created, err := h.Svc.Create(c.Request.Context(), stage)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create stage", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, created)
}

func (h *Handler) seed(c *gin.Context) {
	out, created, err := h.Svc.Seed(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to seed stages", nil)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond.JSON(c, status, out)
}

func (h *Handler) update(c *gin.Context) {
	var req stageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	patch := Patch{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		SortOrder:   req.SortOrder,
	}
	stage, err := h.Svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "stage not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update stage", nil)
		return
	}
	respond.JSON(c, http.StatusOK, stage)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "stage not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete stage", nil)
		return
	}
	c.Status(http.StatusNoContent)
}
