package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	errGetSettings = "failed to load settings"
	errPutSetting  = "failed to save setting"
)

// Request DTO for writing a setting value.
type settingRequest struct {
	Value string `json:"value"`
}

// @Summary      List settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, settings"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/settings [get]
// @Security     BearerAuth
func (h *Handler) getSettings(c *gin.Context) {
	ctx := c.Request.Context()
	settings, err := h.services.Settings.GetAll(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetSettings, "settings_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(settings),
		"settings": settings,
	})
}

// @Summary      Get setting
// @Tags         settings
// @Produce      json
// @Param        key  path  string  true  "Setting key"
// @Success      200  {object}  filadash.Setting
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/settings/{key} [get]
// @Security     BearerAuth
func (h *Handler) getSetting(c *gin.Context) {
	ctx := c.Request.Context()
	s, err := h.services.Settings.Get(ctx, c.Param("key"))
	if err != nil {
		// Unknown keys and blank keys both read as "nothing here".
		c.JSON(http.StatusNotFound, gin.H{"error": "setting not found"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// @Summary      Put setting
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        key   path  string          true  "Setting key"
// @Param        body  body  settingRequest  true  "Value payload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/settings/{key} [put]
// @Security     BearerAuth
func (h *Handler) putSetting(c *gin.Context) {
	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Settings.Put(ctx, c.Param("key"), req.Value); err != nil {
		// Key/value validation errors are the caller's fault.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}
