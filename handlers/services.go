package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harvestchapel/testimony-live/internal/testimony"
	"github.com/harvestchapel/testimony-live/internal/testimony/repository"
	"github.com/harvestchapel/testimony-live/internal/testimony/service"
)

// ServiceHandler exposes the admin-managed service slots.
type ServiceHandler struct {
	svc *service.Service
}

func NewServiceHandler(svc *service.Service) *ServiceHandler {
	return &ServiceHandler{svc: svc}
}

func (h *ServiceHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/services", h.List)
	rg.POST("/services", h.Add)
	rg.PUT("/services/:id", h.Update)
	rg.DELETE("/services/:id", h.Delete)
}

// List returns services in display order, seeding defaults on first use.
func (h *ServiceHandler) List(c *gin.Context) {
	list, err := h.svc.ListServices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ServiceHandler) Add(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		Key  string `json:"key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.svc.AddService(c.Request.Context(), testimony.Service{Name: req.Name, Key: req.Key})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "add failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *ServiceHandler) Update(c *gin.Context) {
	var req struct {
		Name  *string `json:"name,omitempty"`
		Key   *string `json:"key,omitempty"`
		Order *int    `json:"order,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.svc.UpdateService(c.Request.Context(), c.Param("id"), repository.ServiceUpdate{Name: req.Name, Key: req.Key, Order: req.Order})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
	}
}

// Delete removes a slot. Testimonies keep their (now dangling) service key;
// displays fall back to showing the raw key.
func (h *ServiceHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteService(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
