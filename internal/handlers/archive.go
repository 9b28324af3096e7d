package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"filadash"
	"filadash/internal/repository"

	"github.com/gin-gonic/gin"
)

const (
	errCreateArchive = "failed to create archive"
	errListArchives  = "failed to load archives"
	errDeleteArchive = "failed to delete archive"
	errGetStats      = "failed to load stats"
)

// Request DTO for creating an archive record.
type archiveRequest struct {
	FileName      string  `json:"file_name" binding:"required"`
	PrintName     string  `json:"print_name,omitempty"`
	PrinterName   string  `json:"printer_name,omitempty"`
	Status        string  `json:"status" binding:"required"` // SUCCESS | FAILED | CANCELED
	DurationSec   int     `json:"duration_sec,omitempty"`
	FilamentGrams float64 `json:"filament_grams,omitempty"`
}

// CreateArchiveRequest is an exported model for Swagger docs of the archive payload.
type CreateArchiveRequest struct {
	FileName string `json:"file_name" example:"benchy.3mf"`
	// Final print status. Allowed: SUCCESS, FAILED, CANCELED
	Status        string  `json:"status" example:"SUCCESS"`
	PrintName     string  `json:"print_name,omitempty" example:"Benchy"`
	PrinterName   string  `json:"printer_name,omitempty" example:"X1C"`
	DurationSec   int     `json:"duration_sec,omitempty" example:"5400"`
	FilamentGrams float64 `json:"filament_grams,omitempty" example:"13.5"`
}

func parseIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// @Summary      Create archive record
// @Tags         archives
// @Accept       json
// @Produce      json
// @Param        body  body   CreateArchiveRequest  true  "Archive payload"
// @Success      200   {object}  map[string]int  "id"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/archives [post]
// @Security     BearerAuth
func (h *Handler) createArchive(c *gin.Context) {
	var req archiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	id, err := h.services.Archive.Create(ctx, filadash.PrintArchive{
		FileName:      req.FileName,
		PrintName:     req.PrintName,
		PrinterName:   req.PrinterName,
		Status:        req.Status,
		DurationSec:   req.DurationSec,
		FilamentGrams: req.FilamentGrams,
	})
	if err != nil {
		// Validation failures come back as typed service errors; anything
		// that reaches the repository and fails is internal.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// @Summary      List archive records
// @Tags         archives
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, archives"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/archives [get]
// @Security     BearerAuth
func (h *Handler) listArchives(c *gin.Context) {
	ctx := c.Request.Context()
	archives, err := h.services.Archive.List(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListArchives, "archive_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(archives),
		"archives": archives,
	})
}

// @Summary      Get archive record
// @Tags         archives
// @Produce      json
// @Param        id  path  int  true  "Archive ID"
// @Success      200  {object}  filadash.PrintArchive
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/archives/{id} [get]
// @Security     BearerAuth
func (h *Handler) getArchive(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	a, err := h.services.Archive.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "archive not found"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errListArchives, "archive_get_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary      Delete archive record
// @Tags         archives
// @Produce      json
// @Param        id  path  int  true  "Archive ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/archives/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteArchive(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Archive.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "archive not found"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteArchive, "archive_delete_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary      Print statistics
// @Description  Aggregates over the whole archive: totals, success rate, filament use
// @Tags         archives
// @Produce      json
// @Success      200  {object}  filadash.PrintStats
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/stats [get]
// @Security     BearerAuth
func (h *Handler) getStats(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Archive.Stats(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStats, "archive_stats_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
