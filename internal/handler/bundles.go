package handler

import (
	"net/http"

	"github.com/Team-Techentia/veedra-sub001/internal/apierror"
	"github.com/Team-Techentia/veedra-sub001/internal/dto"
	"github.com/Team-Techentia/veedra-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BundlesHandler struct{ svc service.BundleService }

func NewBundlesHandler(svc service.BundleService) *BundlesHandler { return &BundlesHandler{svc: svc} }

// Create godoc
// @Summary      Materialize bundle
// @Description  Allocates the parent code, expands the variants and stores parent and children in one transaction.
// @Tags         bundles
// @Accept       json
// @Produce      json
// @Param        body body     dto.CreateBundleRequest true "Bundle"
// @Success      201  {object} dto.BundleResponse
// @Failure      422  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/bundles [post]
func (h *BundlesHandler) Create(c *gin.Context) {
	var req dto.CreateBundleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Materialize(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Children godoc
// @Summary      List bundle children
// @Tags         bundles
// @Produce      json
// @Param        id  path     string true "Parent product UUID"
// @Success      200 {array}  dto.ProductResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/bundles/{id}/children [get]
func (h *BundlesHandler) Children(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindBadRequest, "invalid ID"))
		return
	}
	resp, err := h.svc.Children(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
