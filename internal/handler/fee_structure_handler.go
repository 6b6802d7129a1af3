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

// FeeStructureHandler exposes fee structure CRUD endpoints.
type FeeStructureHandler struct {
	service *service.FeeStructureService
}

// NewFeeStructureHandler constructs a fee structure handler.
func NewFeeStructureHandler(svc *service.FeeStructureService) *FeeStructureHandler {
	return &FeeStructureHandler{service: svc}
}

// List godoc
// @Summary List fee structures
// @Tags Fee Structures
// @Produce json
// @Param academic_year_id query string false "Filter by academic year"
// @Param class_name query string false "Filter by class"
// @Param medium query string false "Filter by medium"
// @Param fee_category_id query string false "Filter by category"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /fee-structures [get]
func (h *FeeStructureHandler) List(c *gin.Context) {
	var filter models.FeeStructureFilter
	filter.AcademicYearID = c.Query("academic_year_id")
	filter.ClassName = c.Query("class_name")
	filter.Medium = c.Query("medium")
	filter.FeeCategoryID = c.Query("fee_category_id")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	structures, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, structures, pagination)
}

// Get godoc
// @Summary Get fee structure
// @Tags Fee Structures
// @Produce json
// @Param id path string true "Structure ID"
// @Success 200 {object} response.Envelope
// @Router /fee-structures/{id} [get]
func (h *FeeStructureHandler) Get(c *gin.Context) {
	structure, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, structure, nil)
}

// Create godoc
// @Summary Create fee structure
// @Tags Fee Structures
// @Accept json
// @Produce json
// @Param payload body dto.CreateFeeStructureRequest true "Structure payload"
// @Success 201 {object} response.Envelope
// @Router /fee-structures [post]
func (h *FeeStructureHandler) Create(c *gin.Context) {
	var req dto.CreateFeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	structure, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, structure)
}

// Update godoc
// @Summary Update fee structure
// @Tags Fee Structures
// @Accept json
// @Produce json
// @Param id path string true "Structure ID"
// @Param payload body dto.UpdateFeeStructureRequest true "Structure payload"
// @Success 200 {object} response.Envelope
// @Router /fee-structures/{id} [put]
func (h *FeeStructureHandler) Update(c *gin.Context) {
	var req dto.UpdateFeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	structure, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, structure, nil)
}

// Delete godoc
// @Summary Delete fee structure
// @Tags Fee Structures
// @Produce json
// @Param id path string true "Structure ID"
// @Success 204
// @Router /fee-structures/{id} [delete]
func (h *FeeStructureHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
