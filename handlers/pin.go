package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harvestchapel/testimony-live/internal/config"
	"github.com/harvestchapel/testimony-live/internal/tokens"
	"github.com/harvestchapel/testimony-live/pkg/logger"
)

// PinHandler is the front-of-house PIN gate. It is a UI convenience, not a
// security boundary: nothing server-side depends on having passed it.
type PinHandler struct {
	cfg *config.Config
}

func NewPinHandler(cfg *config.Config) *PinHandler {
	return &PinHandler{cfg: cfg}
}

func (h *PinHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/verify-pin", h.Verify)
}

func (h *PinHandler) Verify(c *gin.Context) {
	var req struct {
		Pin string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "invalid request"})
		return
	}
	valid := req.Pin == h.cfg.Gate.Pin

	resp := gin.H{"valid": valid}
	if valid && h.cfg.Gate.TokenSecret != "" {
		tok, err := tokens.MintGateToken(h.cfg.Gate.TokenSecret, h.cfg.Gate.TokenTTL)
		if err != nil {
			logger.Warnf("pin: gate token mint failed: %v", err)
		} else {
			resp["token"] = tok
		}
	}
	c.JSON(http.StatusOK, resp)
}
