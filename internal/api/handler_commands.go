package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smart-orchard-backend/internal/metrics"
	"smart-orchard-backend/internal/model"
	"smart-orchard-backend/internal/store"
)

type controlRequest struct {
	Device  string `json:"device"`
	Command string `json:"command" binding:"required"`
	UserID  *int64 `json:"user_id"`
}

// PostControl handles POST /api/control. The command is queued as pending for
// the executor.
func (h *Handler) PostControl(c *gin.Context) {
	var req controlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "msg": "command is required"})
		return
	}
	if req.Device == "" {
		req.Device = "unknown"
	}

	id, err := h.store.SubmitCommand(c.Request.Context(), req.Device, req.Command, req.UserID)
	if err != nil {
		h.internalError(c, "failed to submit command", err)
		return
	}
	metrics.CommandsSubmittedTotal.Inc()
	h.log.Info("command submitted", "command_id", id, "device", req.Device, "command", req.Command)

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"msg":    fmt.Sprintf("%s command sent", req.Device),
		"id":     id,
	})
}

// GetPendingCommands handles GET /api/commands/pending.
func (h *Handler) GetPendingCommands(c *gin.Context) {
	cmds, err := h.store.ListPending(c.Request.Context())
	if err != nil {
		h.internalError(c, "failed to list pending commands", err)
		return
	}
	if cmds == nil {
		cmds = []model.ControlCommand{}
	}
	c.JSON(http.StatusOK, cmds)
}

// GetLatestCommand handles GET /api/commands/latest.
func (h *Handler) GetLatestCommand(c *gin.Context) {
	cmd, err := h.store.LatestCommand(c.Request.Context())
	h.writeCommand(c, cmd, err)
}

// GetCommand handles GET /api/commands/:id.
func (h *Handler) GetCommand(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid command id"})
		return
	}
	cmd, err := h.store.GetCommand(c.Request.Context(), id)
	h.writeCommand(c, cmd, err)
}

func (h *Handler) writeCommand(c *gin.Context, cmd *model.ControlCommand, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "command not found"})
	case err != nil:
		h.internalError(c, "failed to load command", err)
	default:
		c.JSON(http.StatusOK, cmd)
	}
}
