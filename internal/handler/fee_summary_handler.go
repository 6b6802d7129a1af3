package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/periyanachi-erp/fees-api/internal/service"
	"github.com/periyanachi-erp/fees-api/pkg/response"
)

// FeeSummaryHandler exposes collection summaries, student statements and
// the reconciliation audit.
type FeeSummaryHandler struct {
	service *service.FeeSummaryService
	exports *service.ExportService
}

// NewFeeSummaryHandler constructs a fee summary handler.
func NewFeeSummaryHandler(svc *service.FeeSummaryService, exports *service.ExportService) *FeeSummaryHandler {
	return &FeeSummaryHandler{service: svc, exports: exports}
}

// ClassSummary godoc
// @Summary Collection summary for one class
// @Tags Fee Summaries
// @Produce json
// @Param class_name path string true "Class name"
// @Success 200 {object} response.Envelope
// @Router /fee-summaries/classes/{class_name} [get]
func (h *FeeSummaryHandler) ClassSummary(c *gin.Context) {
	summary, err := h.service.ClassSummary(c.Request.Context(), c.Param("class_name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// StudentStatement godoc
// @Summary Fee statement for one student
// @Tags Fee Summaries
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /fee-summaries/students/{student_id} [get]
func (h *FeeSummaryHandler) StudentStatement(c *gin.Context) {
	statement, err := h.service.StudentStatement(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, statement, nil)
}

// StudentStatementPDF godoc
// @Summary Download the fee statement for one student as PDF
// @Tags Fee Summaries
// @Produce application/pdf
// @Param student_id path string true "Student ID"
// @Success 200 {file} binary
// @Router /fee-summaries/students/{student_id}/statement [get]
func (h *FeeSummaryHandler) StudentStatementPDF(c *gin.Context) {
	statement, err := h.service.StudentStatement(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, filename, err := h.exports.StatementPDF(statement)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// Audit godoc
// @Summary Reconcile the ledger against its invariants
// @Tags Fee Summaries
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /fee-summaries/audit [get]
func (h *FeeSummaryHandler) Audit(c *gin.Context) {
	report, err := h.service.Audit(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// CollectionsExport godoc
// @Summary Export payment collections as CSV
// @Tags Fee Summaries
// @Produce text/csv
// @Param from query string false "Payments on or after this date (YYYY-MM-DD)"
// @Param to query string false "Payments on or before this date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /fee-summaries/collections/export [get]
func (h *FeeSummaryHandler) CollectionsExport(c *gin.Context) {
	from := parseDateQuery(c.Query("from"))
	to := parseDateQuery(c.Query("to"))
	payload, filename, err := h.exports.CollectionsCSV(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}
