package handler

import (
	"net/http"

	"github.com/Team-Techentia/veedra-sub001/internal/dto"
	"github.com/Team-Techentia/veedra-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type CombosHandler struct{ svc service.ComboService }

func NewCombosHandler(svc service.ComboService) *CombosHandler { return &CombosHandler{svc: svc} }

// Create godoc
// @Summary      Create combo
// @Description  Defines a combo with its price slots, cart rules and discount policy.
// @Tags         combos
// @Accept       json
// @Produce      json
// @Param        body body     dto.CreateComboRequest true "Combo definition"
// @Success      201  {object} dto.ComboResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/combos [post]
func (h *CombosHandler) Create(c *gin.Context) {
	var req dto.CreateComboRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List combos
// @Tags         combos
// @Produce      json
// @Param        active query    bool false "Only active combos"
// @Success      200    {array}  dto.ComboResponse
// @Router       /v1/combos [get]
func (h *CombosHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get combo
// @Tags         combos
// @Produce      json
// @Param        code path     string true "Combo code"
// @Success      200  {object} dto.ComboResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/combos/{code} [get]
func (h *CombosHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deactivate godoc
// @Summary      Deactivate combo
// @Description  Combos referenced by bills are kept; this only stops new sales.
// @Tags         combos
// @Param        code path string true "Combo code"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/combos/{code} [delete]
func (h *CombosHandler) Deactivate(c *gin.Context) {
	if err := h.svc.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Pause godoc
// @Summary      Pause combo
// @Tags         combos
// @Param        code path string true "Combo code"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/combos/{code}/pause [post]
func (h *CombosHandler) Pause(c *gin.Context) { h.setPaused(c, true) }

// Resume godoc
// @Summary      Resume combo
// @Tags         combos
// @Param        code path string true "Combo code"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/combos/{code}/resume [post]
func (h *CombosHandler) Resume(c *gin.Context) { h.setPaused(c, false) }

func (h *CombosHandler) setPaused(c *gin.Context, paused bool) {
	if err := h.svc.SetPaused(c.Request.Context(), c.Param("code"), paused); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Evaluate godoc
// @Summary      Evaluate cart against combo
// @Description  Dry run: assigns items to slots, checks rules and prices the discount without persisting.
// @Tags         combos
// @Accept       json
// @Produce      json
// @Param        code path     string                   true "Combo code"
// @Param        body body     dto.EvaluateComboRequest true "Cart"
// @Success      200  {object} dto.ComboEvaluationResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/combos/{code}/evaluate [post]
func (h *CombosHandler) Evaluate(c *gin.Context) {
	var req dto.EvaluateComboRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Evaluate(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
