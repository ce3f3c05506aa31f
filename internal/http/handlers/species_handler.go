// Species HTTP handlers.
//
// This file exposes read-only endpoints for the species catalog:
//   - GET /species            (full catalog)
//   - GET /species/search?q=  (name search)
//   - GET /species/{id}       (fetch one)
//
// The catalog is seeded at startup and effectively static at runtime, so the
// list response carries a generous Cache-Control hint.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/verdant/go-plant-backend/internal/services"
)

// ListSpecies returns the full species catalog ordered by common name.
func (h *Handlers) ListSpecies(c *gin.Context) {
	items, err := h.speciesSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	ok(c, http.StatusOK, gin.H{"species": items, "total": len(items)})
}

// SearchSpecies matches species by common or latin name. The query must be at
// least two characters; shorter queries are rejected with 400.
func (h *Handlers) SearchSpecies(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	items, err := h.speciesSvc.Search(c.Request.Context(), q)
	if serviceErr(c, err) {
		return
	}
	ok(c, http.StatusOK, gin.H{"species": items, "total": len(items)})
}

// GetSpecies returns a single species by ID.
func (h *Handlers) GetSpecies(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "species id must be a UUID")
		return
	}
	sp, err := h.speciesSvc.Get(c.Request.Context(), id)
	if errors.Is(err, services.ErrSpeciesNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "species not found")
		return
	}
	if serviceErr(c, err) {
		return
	}
	ok(c, http.StatusOK, sp)
}
