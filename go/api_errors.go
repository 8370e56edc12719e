package dessertserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	ordersapp "github.com/Apurer/dessert-delivery-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
	paymentsapp "github.com/Apurer/dessert-delivery-api/internal/domains/payments/application"
	apierrors "github.com/Apurer/dessert-delivery-api/internal/shared/errors"
)

// errForbidden is returned when the caller does not own the order.
var errForbidden = errors.New("order belongs to another user")

var (
	orderErrors   = apierrors.NewChainedResponder("", mapOrderError)
	paymentErrors = apierrors.NewChainedResponder("", mapPaymentError)
)

// respondError maps a transport-level failure onto the matching problem template.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound
	case http.StatusUnauthorized:
		problem = apierrors.ErrUnauthorized
	case http.StatusForbidden:
		problem = apierrors.ErrForbidden
	case http.StatusConflict:
		problem = apierrors.ErrConflict
	default:
		problem = apierrors.ErrInternal
	}
	apierrors.Respond(c, problem.WithDetail(err.Error()))
}

func respondOrderServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	orderErrors.RespondError(c, err)
}

func respondPaymentServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	paymentErrors.RespondError(c, err)
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, errForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapPaymentError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, paymentsapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(strings.TrimPrefix(err.Error(), paymentsapp.ErrInvalidInput.Error()+": ")), true
	case errors.Is(err, ordersports.ErrAlreadyPaid):
		return apierrors.ErrAlreadyPaid.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
