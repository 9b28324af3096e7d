package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"filadash/internal/ams"
	"filadash/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusAccepted = "accepted"
	statusCanceled = "canceled"

	errRefreshSlot     = "failed to start refresh"
	errLoadSlot        = "failed to start load"
	errUnloadFilament  = "failed to start unload"
	errGetHistory      = "failed to load sensor history"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and the current AMS view.
func (h *Handler) respondWithStatus(c *gin.Context, status string, extra gin.H) {
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	resp["ams"] = h.services.AMS.Status()
	c.JSON(http.StatusOK, resp)
}

// Request DTO for slot-addressed commands.
type slotRequest struct {
	UnitID    int `json:"unit_id"`
	SlotIndex int `json:"slot_index"`
}

// SlotRequest is an exported model for Swagger docs of slot command payloads.
type SlotRequest struct {
	// Feed unit ID as reported by the printer
	UnitID int `json:"unit_id" example:"0"`
	// Slot index within the unit (0-based)
	SlotIndex int `json:"slot_index" example:"2"`
}

// writeOperationError maps coordinator/service errors onto HTTP codes:
// a busy coordinator is a conflict, an unknown slot is a not-found, and
// everything else (e.g. the device refusing the command) is internal.
func (h *Handler) writeOperationError(c *gin.Context, userMsg, logKey string, err error, kv ...interface{}) {
	switch {
	case errors.Is(err, ams.ErrOperationInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownSlot):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, userMsg, logKey, err, kv...)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Refresh spool tag
// @Description  Re-reads the spool identification tag in one slot
// @Tags         ams
// @Accept       json
// @Produce      json
// @Param        body  body   SlotRequest  true  "Slot to refresh"
// @Success      200   {object}  map[string]interface{}  "status, ams"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string  "another operation is in flight"
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/ams/refresh [post]
// @Security     BearerAuth
func (h *Handler) refreshSlot(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.AMS.Refresh(ctx, req.UnitID, req.SlotIndex); err != nil {
		h.writeOperationError(c, errRefreshSlot, "ams_refresh_failed", err, "unit_id", req.UnitID, "slot_index", req.SlotIndex)
		return
	}
	h.respondWithStatus(c, statusAccepted, gin.H{"kind": "refresh"})
}

// @Summary      Load filament
// @Description  Loads filament from one slot into the extruder
// @Tags         ams
// @Accept       json
// @Produce      json
// @Param        body  body   SlotRequest  true  "Slot to load from"
// @Success      200   {object}  map[string]interface{}  "status, ams"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/ams/load [post]
// @Security     BearerAuth
func (h *Handler) loadSlot(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.AMS.Load(ctx, req.UnitID, req.SlotIndex); err != nil {
		h.writeOperationError(c, errLoadSlot, "ams_load_failed", err, "unit_id", req.UnitID, "slot_index", req.SlotIndex)
		return
	}
	h.respondWithStatus(c, statusAccepted, gin.H{"kind": "load"})
}

// @Summary      Unload filament
// @Tags         ams
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/ams/unload [post]
// @Security     BearerAuth
func (h *Handler) unloadFilament(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.AMS.Unload(ctx); err != nil {
		h.writeOperationError(c, errUnloadFilament, "ams_unload_failed", err)
		return
	}
	h.respondWithStatus(c, statusAccepted, gin.H{"kind": "unload"})
}

// @Summary      Cancel operation
// @Description  Clears the in-flight operation locally; the device may still finish the physical action
// @Tags         ams
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/ams/cancel [post]
// @Security     BearerAuth
func (h *Handler) cancelOperation(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.AMS.Cancel(ctx); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to cancel", "ams_cancel_failed", err)
		return
	}
	h.respondWithStatus(c, statusCanceled, gin.H{})
}

// @Summary      Get AMS status
// @Tags         ams
// @Produce      json
// @Success      200  {object}  service.AMSStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/ams/status [get]
// @Security     BearerAuth
func (h *Handler) getAMSStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.AMS.Status())
}

// @Summary      Sensor history
// @Description  Humidity/temperature samples per feed unit. Omit unit_id for all units.
// @Tags         ams
// @Produce      json
// @Param        unit_id  query   int     false  "Feed unit ID"
// @Param        from     query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"
// @Param        to       query   string  false  "End of range; date-only treated as end of day"
// @Success      200  {object}  map[string]interface{}  "count, samples"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/ams/history [get]
// @Security     BearerAuth
func (h *Handler) getSensorHistory(c *gin.Context) {
	ctx := c.Request.Context()

	unitID := -1
	if qs := c.Query("unit_id"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid unit_id"})
			return
		}
		unitID = v
	}

	var from, to time.Time
	var err error
	if qs := c.Query("from"); qs != "" {
		if from, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		if to, err = parseQueryTime(qs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}

	samples, err := h.services.AMS.SensorHistory(ctx, unitID, from, to)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetHistory, "ams_history_failed", err, "unit_id", unitID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(samples),
		"samples": samples,
	})
}
