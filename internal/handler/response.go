package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"farebroker/internal/repository"
	"farebroker/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
// The concrete reason always reaches the caller so the surrounding app can
// decide between a retry and a different payment method.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrPassengerNotFound),
		errors.Is(err, service.ErrDriverNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPassengerID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDestinationLocation),
		errors.Is(err, service.ErrInvalidVehicleClass),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidCancelledBy),
		errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest

	// State errors - Conflict
	case errors.Is(err, service.ErrRideNotPending),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyTerminal),
		errors.Is(err, service.ErrDriverUnavailable),
		errors.Is(err, service.ErrRideLocked),
		errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict

	// Money errors
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrChargeDeclined):
		return http.StatusPaymentRequired

	// External dependency failures
	case errors.Is(err, service.ErrGatewayUnavailable):
		return http.StatusBadGateway

	case errors.Is(err, service.ErrNoActivePolicy):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
