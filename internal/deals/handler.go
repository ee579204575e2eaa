package deals

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
	rg.GET("/deals", h.list)
	rg.POST("/deals", h.create)
	rg.GET("/deals/:id", h.get)
	rg.PATCH("/deals/:id", h.update)
	rg.DELETE("/deals/:id", h.delete)
	rg.GET("/deals/:id/activities", h.activities)
}

type dealRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	StageID         *string  `json:"stageId"`
	TargetCompany   *string  `json:"targetCompany"`
	Geography       *string  `json:"geography"`
	Valuation       *float64 `json:"valuation"`
	Revenue         *float64 `json:"revenue"`
	EBITDA          *float64 `json:"ebitda"`
	Status          *string  `json:"status"`
	SummaryContext  *string  `json:"summaryContext"`
	AnalysisContext *string  `json:"analysisContext"`
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{
		StageID: c.Query("stageId"),
		Status:  c.Query("status"),
		Search:  c.Query("search"),
	}
	out, err := h.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch deals", nil)
		return
	}
	respond.JSON(c, http.StatusOK, out)
}

func (h *Handler) get(c *gin.Context) {
	deal, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "deal not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch deal", nil)
		return
	}
	respond.JSON(c, http.StatusOK, deal)
}

func (h *Handler) create(c *gin.Context) {
	var req dealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	if req.Name == nil || *req.Name == "" {
		respond.ValidationError(c, []respond.FieldViolation{{Field: "name", Message: "deal name is required"}})
		return
	}
	deal := Deal{
		Name:            *req.Name,
		Description:     req.Description,
		StageID:         req.StageID,
		TargetCompany:   req.TargetCompany,
		Geography:       req.Geography,
		Valuation:       req.Valuation,
		Revenue:         req.Revenue,
		EBITDA:          req.EBITDA,
		SummaryContext:  req.SummaryContext,
		AnalysisContext: req.AnalysisContext,
	}
	if req.Status != nil {
		deal.Status = *req.Status
	}
	created, err := h.Svc.Create(c.Request.Context(), deal)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}
	respond.JSON(c, http.StatusCreated, created)
}

func (h *Handler) update(c *gin.Context) {
	var req dealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	patch := Patch{
		Name:            req.Name,
		Description:     req.Description,
		StageID:         req.StageID,
		TargetCompany:   req.TargetCompany,
		Geography:       req.Geography,
		Valuation:       req.Valuation,
		Revenue:         req.Revenue,
		EBITDA:          req.EBITDA,
		Status:          req.Status,
		SummaryContext:  req.SummaryContext,
		AnalysisContext: req.AnalysisContext,
	}
	deal, err := h.Svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "deal not found", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}
	respond.JSON(c, http.StatusOK, deal)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "deal not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete deal", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) activities(c *gin.Context) {
	out, err := h.Svc.ListActivities(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "deal not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch activities", nil)
		return
	}
	respond.JSON(c, http.StatusOK, out)
}
