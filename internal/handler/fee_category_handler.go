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

// FeeCategoryHandler exposes fee category CRUD endpoints.
type FeeCategoryHandler struct {
	service *service.FeeCategoryService
}

// NewFeeCategoryHandler constructs a fee category handler.
func NewFeeCategoryHandler(svc *service.FeeCategoryService) *FeeCategoryHandler {
	return &FeeCategoryHandler{service: svc}
}

// List godoc
// @Summary List fee categories
// @Tags Fee Categories
// @Produce json
// @Param active query bool false "Only active categories"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /fee-categories [get]
func (h *FeeCategoryHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	categories, pagination, err := h.service.List(c.Request.Context(), activeOnly, page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, pagination)
}

// Get godoc
// @Summary Get fee category
// @Tags Fee Categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} response.Envelope
// @Router /fee-categories/{id} [get]
func (h *FeeCategoryHandler) Get(c *gin.Context) {
	category, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Create godoc
// @Summary Create fee category
// @Tags Fee Categories
// @Accept json
// @Produce json
// @Param payload body dto.CreateFeeCategoryRequest true "Category payload"
// @Success 201 {object} response.Envelope
// @Router /fee-categories [post]
func (h *FeeCategoryHandler) Create(c *gin.Context) {
	var req dto.CreateFeeCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	category, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// Update godoc
// @Summary Update fee category
// @Tags Fee Categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param payload body dto.UpdateFeeCategoryRequest true "Category payload"
// @Success 200 {object} response.Envelope
// @Router /fee-categories/{id} [put]
func (h *FeeCategoryHandler) Update(c *gin.Context) {
	var req dto.UpdateFeeCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	category, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Delete godoc
// @Summary Delete fee category
// @Tags Fee Categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 204
// @Router /fee-categories/{id} [delete]
func (h *FeeCategoryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
