package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harvestchapel/testimony-live/internal/feed"
	"github.com/harvestchapel/testimony-live/internal/live"
	"github.com/harvestchapel/testimony-live/pkg/logger"
	"github.com/harvestchapel/testimony-live/pkg/metrics"
)

// RSSHandler serves the presentation-tool feed. This route must never fail:
// the consumer polls continuously and expects a parseable document every
// time, so errors degrade to an empty feed rather than a non-2xx.
type RSSHandler struct {
	svc  *live.Service
	opts feed.Options
}

func NewRSSHandler(svc *live.Service, opts feed.Options) *RSSHandler {
	return &RSSHandler{svc: svc, opts: opts}
}

func (h *RSSHandler) Register(r gin.IRoutes) {
	r.GET("/rss", h.Get)
}

func (h *RSSHandler) Get(c *gin.Context) {
	// any intermediary caching this defeats the near-real-time polling
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	rec, err := h.svc.GetLive(c.Request.Context())
	if err != nil {
		logger.Errorf("rss: live read failed, serving empty feed: %v", err)
		metrics.FeedPolls.WithLabelValues("degraded").Inc()
		c.Data(http.StatusOK, feed.ContentType, []byte(feed.RenderEmpty(h.opts)))
		return
	}
	metrics.FeedPolls.WithLabelValues("ok").Inc()
	c.Data(http.StatusOK, feed.ContentType, []byte(feed.Render(rec, h.opts, time.Now())))
}
