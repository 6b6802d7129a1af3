package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/models"
	"github.com/periyanachi-erp/fees-api/internal/service"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
	"github.com/periyanachi-erp/fees-api/pkg/response"
)

// FeeAssignmentHandler exposes fee assignment endpoints.
type FeeAssignmentHandler struct {
	service *service.FeeAssignmentService
}

// NewFeeAssignmentHandler constructs a fee assignment handler.
func NewFeeAssignmentHandler(svc *service.FeeAssignmentService) *FeeAssignmentHandler {
	return &FeeAssignmentHandler{service: svc}
}

// List godoc
// @Summary List fee assignments
// @Tags Fee Assignments
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param fee_structure_id query string false "Filter by structure"
// @Param class_name query string false "Filter by class"
// @Param fully_paid query bool false "Filter by payment completion"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /fee-assignments [get]
func (h *FeeAssignmentHandler) List(c *gin.Context) {
	var filter models.FeeAssignmentFilter
	filter.StudentID = c.Query("student_id")
	filter.FeeStructureID = c.Query("fee_structure_id")
	filter.ClassName = c.Query("class_name")
	if raw := c.Query("fully_paid"); raw != "" {
		fullyPaid := raw == "true"
		filter.FullyPaid = &fullyPaid
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	assignments, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, pagination)
}

// Get godoc
// @Summary Get fee assignment
// @Tags Fee Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /fee-assignments/{id} [get]
func (h *FeeAssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Assign godoc
// @Summary Assign a fee structure to one student
// @Tags Fee Assignments
// @Accept json
// @Produce json
// @Param payload body dto.AssignFeeRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /fee-assignments [post]
func (h *FeeAssignmentHandler) Assign(c *gin.Context) {
	var req dto.AssignFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// BulkAssign godoc
// @Summary Assign a fee structure to every eligible student of a class
// @Tags Fee Assignments
// @Accept json
// @Produce json
// @Param payload body dto.BulkAssignFeeRequest true "Bulk assignment payload"
// @Success 200 {object} response.Envelope
// @Router /fee-assignments/bulk [post]
func (h *FeeAssignmentHandler) BulkAssign(c *gin.Context) {
	var req dto.BulkAssignFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.BulkAssignByClass(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// UpdateDiscount godoc
// @Summary Update the discount on an assignment
// @Tags Fee Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body dto.UpdateDiscountRequest true "Discount payload"
// @Success 200 {object} response.Envelope
// @Router /fee-assignments/{id}/discount [put]
func (h *FeeAssignmentHandler) UpdateDiscount(c *gin.Context) {
	var req dto.UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.UpdateDiscount(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Delete a fee assignment without payments
// @Tags Fee Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /fee-assignments/{id} [delete]
func (h *FeeAssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
