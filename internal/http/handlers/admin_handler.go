// Admin HTTP handlers.
//
// This file exposes operational endpoints for the reminder dispatcher:
//   - POST /admin/reminders/run   (trigger a full reminder sweep)
//   - POST /admin/reminders/test  (send capped sample reminders to the caller)
//
// The run endpoint is guarded against overlapping executions by the service's
// reentrancy check; a second trigger while a sweep is in flight yields 409.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verdant/go-plant-backend/internal/http/middleware"
	"github.com/verdant/go-plant-backend/internal/services"
)

// RunReminders triggers a bulk reminder sweep over all due plants and reports
// the outcome counts.
func (h *Handlers) RunReminders(c *gin.Context) {
	report, err := h.reminderSvc.RunBulkReminders(c.Request.Context())
	if errors.Is(err, services.ErrRunInProgress) {
		fail(c, http.StatusConflict, ErrCodeRunInProgress, err.Error())
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	middleware.LoggerFrom(c).Info().
		Int("visited", report.Visited).
		Int("sent", report.Sent).
		Int("failed", report.Failed).
		Msg("reminder run completed")
	ok(c, http.StatusOK, report)
}

// TestReminders sends a small capped batch of sample reminders to the current
// user so they can verify their notification channel.
func (h *Handlers) TestReminders(c *gin.Context) {
	report, err := h.reminderSvc.SendTestReminders(c.Request.Context(), userID(c))
	if serviceErr(c, err) {
		return
	}
	ok(c, http.StatusOK, report)
}
