package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/harvestchapel/testimony-live/internal/config"
	"github.com/harvestchapel/testimony-live/internal/feed"
	"github.com/harvestchapel/testimony-live/internal/live"
	"github.com/harvestchapel/testimony-live/internal/testimony/repository"
	"github.com/harvestchapel/testimony-live/internal/testimony/service"
	"github.com/harvestchapel/testimony-live/internal/watch"
)

// newTestRouter wires the full route surface over in-memory backings.
func newTestRouter() (*gin.Engine, *service.Service, *live.Service) {
	gin.SetMode(gin.TestMode)

	bus := watch.NewBus()
	repo := repository.NewMemoryRepo(bus)
	services := repository.NewMemoryServiceRepo(bus)
	svc := service.New(repo, services, bus)

	liveBus := watch.NewBus()
	liveSvc := live.New(live.NewMemoryRegister(liveBus), liveBus)

	cfg := &config.Config{}
	cfg.Gate.Pin = "1212"
	cfg.Gate.TokenSecret = "test-secret"
	cfg.Gate.TokenTTL = time.Hour
	cfg.Feed.Title = "Church Testimony"
	cfg.Feed.Description = "Live testimony display"
	cfg.Feed.SiteURL = "https://example.org"

	g := gin.New()
	api := g.Group("/api")
	NewTestimonyHandler(svc).Register(api)
	NewServiceHandler(svc).Register(api)
	NewLiveHandler(liveSvc).Register(api)
	NewPinHandler(cfg).Register(api)
	NewRSSHandler(liveSvc, feed.Options{
		Title:       cfg.Feed.Title,
		Description: cfg.Feed.Description,
		Link:        cfg.Feed.SiteURL,
	}).Register(g)

	return g, svc, liveSvc
}

func do(t *testing.T, g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
