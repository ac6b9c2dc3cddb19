package orderserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	orderapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

var orderResponder = apierrors.NewChainedResponder("", orderProblem)

// orderProblem maps order sentinels onto problem templates.
func orderProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, orderports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, orderapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, orderports.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail("Idempotency-Key was already used with a different order payload"), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	orderResponder.Respond(c, problem)
}

// respondError renders malformed request errors with the given status.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	respondProblem(c, problem)
}

// respondOrderServiceError maps service errors; unknown errors become 500.
func respondOrderServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	orderResponder.RespondError(c, err)
}
