package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/service"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
	"github.com/periyanachi-erp/fees-api/pkg/response"
)

// NotificationHandler exposes fee notification and reminder endpoints.
type NotificationHandler struct {
	notifications *service.NotificationService
	reminders     *service.ReminderService
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(notifications *service.NotificationService, reminders *service.ReminderService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, reminders: reminders}
}

// ListByStudent godoc
// @Summary List a student's fee notifications
// @Tags Notifications
// @Produce json
// @Param student_id path string true "Student ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students/{student_id}/notifications [get]
func (h *NotificationHandler) ListByStudent(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	notifications, pagination, err := h.notifications.ListByStudent(c.Request.Context(), c.Param("student_id"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, pagination)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204
// @Router /fee-notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SendReminders godoc
// @Summary Send balance reminders to a class
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body dto.SendRemindersRequest true "Reminder payload"
// @Success 200 {object} response.Envelope
// @Router /fee-reminders [post]
func (h *NotificationHandler) SendReminders(c *gin.Context) {
	var req dto.SendRemindersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.reminders.SendClassReminders(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ReminderHistory godoc
// @Summary Reminder history for one student
// @Tags Notifications
// @Produce json
// @Param student_id path string true "Student ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students/{student_id}/reminders [get]
func (h *NotificationHandler) ReminderHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	reminders, pagination, err := h.reminders.History(c.Request.Context(), c.Param("student_id"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reminders, pagination)
}
