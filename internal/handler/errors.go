package handler

import (
	"errors"
	"net/http"

	"github.com/Team-Techentia/veedra-sub001/internal/apierror"
	"github.com/Team-Techentia/veedra-sub001/internal/bundle"
	"github.com/Team-Techentia/veedra-sub001/internal/infra"
	"github.com/Team-Techentia/veedra-sub001/internal/middleware"
	"github.com/Team-Techentia/veedra-sub001/internal/pricing"
	"github.com/Team-Techentia/veedra-sub001/internal/sequence"
	"github.com/Team-Techentia/veedra-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rejected are the business rule failures reported back verbatim as 422.
var rejected = []error{
	service.ErrInvalidCombo,
	service.ErrInvalidBillLine,
	service.ErrInvalidCategoryName,
	bundle.ErrInvalidBundleSpec,
	pricing.ErrNoSlotMatched,
	pricing.ErrHighValueRejected,
	pricing.ErrQuantityMismatch,
	pricing.ErrInvalidDiscountPolicy,
	pricing.ErrComboInactive,
	pricing.ErrComboExpired,
	pricing.ErrComboUsageExceeded,
	pricing.ErrComboRulesViolated,
	pricing.ErrInvalidBarcode,
}

// respondError maps a service error onto a status code and error kind.
// Unknown errors go to c.Errors so middleware.ErrorHandler logs them and
// replies with a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(apierror.KindNotFound, err.Error()))
		return
	case errors.Is(err, service.ErrDuplicateCode):
		c.JSON(http.StatusConflict, apierror.New(apierror.KindConflict, err.Error()))
		return
	case errors.Is(err, sequence.ErrAllocationUnavailable), errors.Is(err, infra.ErrCircuitOpen):
		// the wrapped store error stays in the logs
		log.Warn().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("allocation unavailable")
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, apierror.New(apierror.KindUnavailable, "code allocation temporarily unavailable"))
		return
	}
	for _, target := range rejected {
		if errors.Is(err, target) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(apierror.KindRejected, err.Error()))
			return
		}
	}
	_ = c.Error(err)
}
