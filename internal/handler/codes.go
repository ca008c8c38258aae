package handler

import (
	"net/http"

	"github.com/Team-Techentia/veedra-sub001/internal/dto"
	"github.com/Team-Techentia/veedra-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// CodesHandler hands out vendor and category codes to the catalog screens.
type CodesHandler struct{ svc service.CodeService }

func NewCodesHandler(svc service.CodeService) *CodesHandler { return &CodesHandler{svc: svc} }

// Vendor godoc
// @Summary      Next vendor code
// @Tags         codes
// @Produce      json
// @Success      201 {object} dto.CodeResponse
// @Failure      503 {object} apierror.APIError
// @Router       /v1/codes/vendor [post]
func (h *CodesHandler) Vendor(c *gin.Context) {
	resp, err := h.svc.NextVendorCode(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Category godoc
// @Summary      Next category code
// @Tags         codes
// @Accept       json
// @Produce      json
// @Param        body body     dto.CategoryCodeRequest true "Category name"
// @Success      201  {object} dto.CodeResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/codes/category [post]
func (h *CodesHandler) Category(c *gin.Context) {
	var req dto.CategoryCodeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.NextCategoryCode(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
