package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harvestchapel/testimony-live/internal/stage"
	"github.com/harvestchapel/testimony-live/internal/testimony"
	"github.com/harvestchapel/testimony-live/internal/testimony/repository"
	"github.com/harvestchapel/testimony-live/internal/testimony/service"
	"github.com/harvestchapel/testimony-live/pkg/metrics"
)

// TestimonyHandler holds dependencies for the testimony routes.
type TestimonyHandler struct {
	svc *service.Service
}

func NewTestimonyHandler(svc *service.Service) *TestimonyHandler {
	return &TestimonyHandler{svc: svc}
}

// Register routes under /api
func (h *TestimonyHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/testimonies", h.Submit)
	rg.GET("/testimonies", h.List)
	rg.GET("/testimonies/:id", h.Get)
	rg.PATCH("/testimonies/:id/status", h.Review)
	rg.PUT("/testimonies/:id", h.Update)
	rg.DELETE("/testimonies/:id", h.Delete)
	rg.POST("/admin/testimonies", h.Create)
	rg.GET("/phone-lookup", h.PhoneLookup)
	rg.GET("/stage/stream", h.StageStream)
}

// Submit takes a congregant submission. Validation failures come back inline
// as 400s; they never reach the store.
func (h *TestimonyHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submit failed"})
		return
	}
	metrics.SubmissionsTotal.Inc()
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// List dispatches on the query shape: date+service (ascending, optional
// status filter), date only (ascending), or no filter at all (the admin
// table, newest first).
func (h *TestimonyHandler) List(c *gin.Context) {
	date := c.Query("date")
	svc := c.Query("service")

	var status *testimony.Status
	if raw := c.Query("status"); raw != "" {
		st := testimony.Status(raw)
		if !st.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		status = &st
	}

	var (
		list []testimony.Testimony
		err  error
	)
	switch {
	case date != "" && svc != "":
		list, err = h.svc.ListByDateService(c.Request.Context(), date, svc, status)
	case date != "":
		list, err = h.svc.ListByDate(c.Request.Context(), date)
	default:
		list, err = h.svc.ListAll(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TestimonyHandler) Get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// Review is the pastor surface: workflow-checked status changes only.
func (h *TestimonyHandler) Review(c *gin.Context) {
	var req struct {
		Status testimony.Status `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.svc.Review(c.Request.Context(), c.Param("id"), req.Status)
	switch {
	case err == nil:
		metrics.StatusTransitions.WithLabelValues(string(req.Status)).Inc()
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
	case errors.Is(err, testimony.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "illegal status transition"})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "review failed"})
	}
}

type updateRequest struct {
	Date         *string `json:"date,omitempty"`
	Service      *string `json:"service,omitempty"`
	Name         *string `json:"name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
	WhatDidYouDo *string `json:"whatDidYouDo,omitempty"`
	Description  *string `json:"description,omitempty"`
	Status       *string `json:"status,omitempty"`
}

// Update is the administrative edit: any field, any status, no workflow.
func (h *TestimonyHandler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	upd := repository.Update{
		Date:         req.Date,
		Service:      req.Service,
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		WhatDidYouDo: req.WhatDidYouDo,
		Description:  req.Description,
	}
	if req.Status != nil {
		st := testimony.Status(*req.Status)
		upd.Status = &st
	}
	err := h.svc.Update(c.Request.Context(), c.Param("id"), upd)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
	}
}

func (h *TestimonyHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Create imports a full testimony record (admin path, no validation).
func (h *TestimonyHandler) Create(c *gin.Context) {
	var t testimony.Testimony
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.svc.Create(c.Request.Context(), &t)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// PhoneLookup pre-fills a returning submitter's form. A miss is a 204, not
// an error.
func (h *TestimonyHandler) PhoneLookup(c *gin.Context) {
	got, err := h.svc.LookupPhone(c.Request.Context(), c.Query("phone"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if got == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, got)
}

// StageStream serves the stage display: an SSE stream of approved
// testimonies for one date+service, classified new-vs-known server-side.
// The baseline is taken from the first snapshot of this connection; the
// client reconnects to refresh it.
func (h *TestimonyHandler) StageStream(c *gin.Context) {
	date := c.Query("date")
	svc := c.Query("service")
	if date == "" || svc == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and service are required"})
		return
	}

	approved := testimony.StatusApproved
	stream, cancel := h.svc.Subscribe(c.Request.Context(), date, svc, &approved)
	defer cancel()

	tracker := stage.NewTracker()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", tracker.Apply(snap))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
