package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/models"
	"github.com/periyanachi-erp/fees-api/internal/service"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
	"github.com/periyanachi-erp/fees-api/pkg/response"
)

// FeePaymentHandler exposes fee payment endpoints, including the printable
// receipt.
type FeePaymentHandler struct {
	service *service.FeePaymentService
	exports *service.ExportService
}

// NewFeePaymentHandler constructs a fee payment handler.
func NewFeePaymentHandler(svc *service.FeePaymentService, exports *service.ExportService) *FeePaymentHandler {
	return &FeePaymentHandler{service: svc, exports: exports}
}

// List godoc
// @Summary List fee payments
// @Tags Fee Payments
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param fee_assignment_id query string false "Filter by assignment"
// @Param payment_mode query string false "Filter by payment mode"
// @Param from query string false "Payments on or after this date (YYYY-MM-DD)"
// @Param to query string false "Payments on or before this date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /fee-payments [get]
func (h *FeePaymentHandler) List(c *gin.Context) {
	var filter models.FeePaymentFilter
	filter.StudentID = c.Query("student_id")
	filter.FeeAssignmentID = c.Query("fee_assignment_id")
	filter.PaymentMode = c.Query("payment_mode")
	filter.From = parseDateQuery(c.Query("from"))
	filter.To = parseDateQuery(c.Query("to"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	payments, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, pagination)
}

// Get godoc
// @Summary Get fee payment detail
// @Tags Fee Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /fee-payments/{id} [get]
func (h *FeePaymentHandler) Get(c *gin.Context) {
	detail, err := h.service.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Record a fee payment
// @Tags Fee Payments
// @Accept json
// @Produce json
// @Param payload body dto.CreateFeePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /fee-payments [post]
func (h *FeePaymentHandler) Create(c *gin.Context) {
	var req dto.CreateFeePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.ProcessedBy == "" {
		req.ProcessedBy = actorName(c)
	}
	payment, assignment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	result := dto.FeePaymentResult{Payment: payment}
	if assignment != nil {
		result.Assignment = assignment
	}
	response.Created(c, result)
}

// Receipt godoc
// @Summary Download the PDF receipt for a payment
// @Tags Fee Payments
// @Produce application/pdf
// @Param id path string true "Payment ID"
// @Success 200 {file} binary
// @Router /fee-payments/{id}/receipt [get]
func (h *FeePaymentHandler) Receipt(c *gin.Context) {
	payload, filename, err := h.exports.Receipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

func parseDateQuery(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}
