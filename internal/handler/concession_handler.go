package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/periyanachi-erp/fees-api/internal/dto"
	"github.com/periyanachi-erp/fees-api/internal/service"
	appErrors "github.com/periyanachi-erp/fees-api/pkg/errors"
	"github.com/periyanachi-erp/fees-api/pkg/response"
)

// ConcessionHandler exposes fee concession endpoints.
type ConcessionHandler struct {
	service *service.ConcessionService
}

// NewConcessionHandler constructs a concession handler.
func NewConcessionHandler(svc *service.ConcessionService) *ConcessionHandler {
	return &ConcessionHandler{service: svc}
}

// ListByStudent godoc
// @Summary List a student's concessions
// @Tags Concessions
// @Produce json
// @Param student_id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{student_id}/concessions [get]
func (h *ConcessionHandler) ListByStudent(c *gin.Context) {
	concessions, err := h.service.ListByStudent(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, concessions, nil)
}

// Create godoc
// @Summary Grant a concession
// @Tags Concessions
// @Accept json
// @Produce json
// @Param payload body dto.CreateConcessionRequest true "Concession payload"
// @Success 201 {object} response.Envelope
// @Router /fee-concessions [post]
func (h *ConcessionHandler) Create(c *gin.Context) {
	var req dto.CreateConcessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	concession, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, concession)
}

// Delete godoc
// @Summary Revoke a concession
// @Tags Concessions
// @Produce json
// @Param id path string true "Concession ID"
// @Success 204
// @Router /fee-concessions/{id} [delete]
func (h *ConcessionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
