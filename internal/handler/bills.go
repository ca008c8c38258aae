package handler

import (
	"net/http"

	"github.com/Team-Techentia/veedra-sub001/internal/dto"
	"github.com/Team-Techentia/veedra-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type BillsHandler struct{ svc service.BillingService }

func NewBillsHandler(svc service.BillingService) *BillsHandler { return &BillsHandler{svc: svc} }

// Close godoc
// @Summary      Close bill
// @Description  Prices the lines, applies the flagged combos, persists the bill and queues the receipt.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Param        body body     dto.CloseBillRequest true "Bill lines"
// @Success      201  {object} dto.BillResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Failure      503  {object} apierror.APIError
// @Router       /v1/bills [post]
func (h *BillsHandler) Close(c *gin.Context) {
	var req dto.CloseBillRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Get bill by number
// @Tags         bills
// @Produce      json
// @Param        number path     string true "Bill number, e.g. BILL2610140007"
// @Success      200    {object} dto.BillResponse
// @Failure      404    {object} apierror.APIError
// @Router       /v1/bills/{number} [get]
func (h *BillsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
