package handler

import (
	"net/http"
	"strconv"

	"haccp-flow/internal/api/dto"
	"haccp-flow/internal/domain"
	"haccp-flow/internal/service"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documents service.DocumentService
	audit     service.AuditService
}

func NewDocumentHandler(docs service.DocumentService, audit service.AuditService) *DocumentHandler {
	return &DocumentHandler{documents: docs, audit: audit}
}

func (h *DocumentHandler) Register(api *gin.RouterGroup) {
	api.Use(RequireActor())

	api.POST("/documents", h.CreateDocument)
	api.GET("/documents/:id", h.GetDocument)
	api.POST("/documents/:id/execution/start", h.StartExecution)
	api.POST("/documents/:id/execution/complete", h.CompleteExecution)
	api.GET("/inbox", h.Inbox)
	api.POST("/tasks/:id/decision", h.Decide)

	api.GET("/audit-mode", h.GetAuditMode)
	api.PUT("/audit-mode", h.SetAuditMode)
	api.GET("/audit-log", h.AuditLog)
}

func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "bad_request"})
		return
	}

	doc, err := h.documents.CreateDocument(c.Request.Context(), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateDocumentResponse{ID: doc.ID})
}

func (h *DocumentHandler) GetDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	doc, err := h.documents.GetDocument(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Inbox(c *gin.Context) {
	tasks, err := h.documents.ListInbox(c.Request.Context(), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *DocumentHandler) Decide(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "bad_request"})
		return
	}

	res, err := h.documents.DecideTask(c.Request.Context(), actor(c), id, domain.Decision(req.Decision), req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DecisionResponse{
		TaskID:         res.TaskID,
		DocumentID:     res.DocumentID,
		DocumentStatus: string(res.DocumentStatus),
		CurrentStep:    res.CurrentStep,
		Notifications:  len(res.Notifications),
	})
}

func (h *DocumentHandler) StartExecution(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.documents.StartExecution(c.Request.Context(), actor(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) CompleteExecution(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.documents.CompleteExecution(c.Request.Context(), actor(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) GetAuditMode(c *gin.Context) {
	enabled, err := h.audit.AuditModeEnabled(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuditModeResponse{Enabled: enabled})
}

func (h *DocumentHandler) SetAuditMode(c *gin.Context) {
	var req dto.AuditModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Code: "bad_request"})
		return
	}
	if err := h.audit.SetAuditMode(c.Request.Context(), actor(c), *req.Enabled); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuditModeResponse{Enabled: *req.Enabled})
}

func (h *DocumentHandler) AuditLog(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid limit " + strconv.Quote(c.Query("limit")), Code: "bad_request"})
		return
	}
	entries, err := h.audit.ListAuditLog(c.Request.Context(), actor(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id " + strconv.Quote(c.Param("id")), Code: "bad_request"})
		return 0, false
	}
	return uint(id), true
}
