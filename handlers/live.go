package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harvestchapel/testimony-live/internal/live"
	"github.com/harvestchapel/testimony-live/pkg/metrics"
)

// LiveHandler exposes the broadcast slot to the media operator console.
type LiveHandler struct {
	svc *live.Service
}

func NewLiveHandler(svc *live.Service) *LiveHandler {
	return &LiveHandler{svc: svc}
}

func (h *LiveHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/live", h.Get)
	rg.PUT("/live", h.Set)
	rg.DELETE("/live", h.Clear)
	rg.GET("/live/stream", h.Stream)
}

func (h *LiveHandler) Get(c *gin.Context) {
	rec, err := h.svc.GetLive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read failed"})
		return
	}
	if rec == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Set promotes a testimony to the slot. Last write wins: two operators
// racing here silently overwrite each other, matching the one-operator
// usage model.
func (h *LiveHandler) Set(c *gin.Context) {
	var req struct {
		TestimonyID string `json:"testimonyId" binding:"required"`
		Name        string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.SetLive(c.Request.Context(), req.TestimonyID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "set failed"})
		return
	}
	metrics.LiveUpdates.WithLabelValues("set").Inc()
	c.JSON(http.StatusOK, rec)
}

func (h *LiveHandler) Clear(c *gin.Context) {
	if err := h.svc.ClearLive(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "clear failed"})
		return
	}
	metrics.LiveUpdates.WithLabelValues("clear").Inc()
	c.Status(http.StatusNoContent)
}

// Stream is the SSE view of the slot: current value immediately, then every
// change, an explicit null after a clear.
func (h *LiveHandler) Stream(c *gin.Context) {
	stream, cancel := h.svc.SubscribeLive(c.Request.Context())
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		select {
		case rec, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent("live", rec)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
