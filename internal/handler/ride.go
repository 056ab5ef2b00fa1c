package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"farebroker/internal/domain"
	"farebroker/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	lifecycle *service.RideLifecycle
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(lifecycle *service.RideLifecycle) *RideHandler {
	return &RideHandler{lifecycle: lifecycle}
}

// LocationPayload is a pickup or destination point in request and response bodies.
type LocationPayload struct {
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// CreateRideRequest is the HTTP request body for requesting a ride.
type CreateRideRequest struct {
	PassengerID   string          `json:"passenger_id"`
	Pickup        LocationPayload `json:"pickup"`
	Destination   LocationPayload `json:"destination"`
	VehicleClass  string          `json:"vehicle_class,omitempty"`  // STANDARD, PREMIUM, LUXURY
	PaymentMethod string          `json:"payment_method,omitempty"` // WALLET, CARD, CASH, MOBILE_MONEY
	Traffic       string          `json:"traffic,omitempty"`        // LIGHT, MODERATE, HEAVY
}

// AssignDriverRequest is the HTTP request body for assigning a driver.
type AssignDriverRequest struct {
	DriverID string `json:"driver_id"`
}

// AdvanceRideRequest is the HTTP request body for advancing a ride's status.
type AdvanceRideRequest struct {
	Status            string  `json:"status"`
	ActualDistanceKm  float64 `json:"actual_distance_km,omitempty"`
	ActualDurationMin float64 `json:"actual_duration_min,omitempty"`
}

// CancelRideRequest is the HTTP request body for cancelling a ride.
type CancelRideRequest struct {
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason,omitempty"`
}

// FarePayload is the pricing breakdown in ride responses.
type FarePayload struct {
	VehicleClass    string  `json:"vehicle_class"`
	DistanceKm      float64 `json:"distance_km"`
	DurationMin     float64 `json:"duration_min"`
	BaseFare        float64 `json:"base_fare"`
	DistanceFare    float64 `json:"distance_fare"`
	TimeFare        float64 `json:"time_fare"`
	SurgeMultiplier float64 `json:"surge_multiplier"`
	TimeMultiplier  float64 `json:"time_multiplier"`
	TotalFare       float64 `json:"total_fare"`
	Currency        string  `json:"currency"`
}

// PaymentPayload is the payment record in ride responses.
type PaymentPayload struct {
	Method     string  `json:"method"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	GatewayRef string  `json:"gateway_ref,omitempty"`
}

// CancellationPayload is the cancellation record in ride responses.
type CancellationPayload struct {
	CancelledBy     string  `json:"cancelled_by"`
	Reason          string  `json:"reason,omitempty"`
	Fee             float64 `json:"fee"`
	RefundAmount    float64 `json:"refund_amount"`
	PenaltyApplied  bool    `json:"penalty_applied"`
	PenaltyAmount   float64 `json:"penalty_amount,omitempty"`
	PolicyVersion   int     `json:"policy_version"`
	RefundProcessed bool    `json:"refund_processed"`
}

// RideResponse is the HTTP response for ride operations.
type RideResponse struct {
	ID           string               `json:"id"`
	PassengerID  string               `json:"passenger_id"`
	DriverID     string               `json:"driver_id,omitempty"`
	Pickup       LocationPayload      `json:"pickup"`
	Destination  LocationPayload      `json:"destination"`
	VehicleClass string               `json:"vehicle_class"`
	Status       string               `json:"status"`
	Fare         FarePayload          `json:"fare"`
	Payment      PaymentPayload       `json:"payment"`
	Cancellation *CancellationPayload `json:"cancellation,omitempty"`
	RequestedAt  string               `json:"requested_at"`
	AcceptedAt   string               `json:"accepted_at,omitempty"`
	EnRouteAt    string               `json:"en_route_at,omitempty"`
	ArrivedAt    string               `json:"arrived_at,omitempty"`
	StartedAt    string               `json:"started_at,omitempty"`
	CompletedAt  string               `json:"completed_at,omitempty"`
	CancelledAt  string               `json:"cancelled_at,omitempty"`
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.lifecycle.RequestRide(c.Request.Context(), service.RequestRideInput{
		PassengerID:   req.PassengerID,
		Pickup:        domain.Location{Address: req.Pickup.Address, Lat: req.Pickup.Lat, Lng: req.Pickup.Lng},
		Destination:   domain.Location{Address: req.Destination.Address, Lat: req.Destination.Lat, Lng: req.Destination.Lng},
		VehicleClass:  domain.VehicleClass(req.VehicleClass),
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Traffic:       service.TrafficCondition(req.Traffic),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.lifecycle.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// AssignDriver handles POST /v1/rides/:id/assign
func (h *RideHandler) AssignDriver(c *gin.Context) {
	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.lifecycle.AssignDriver(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// AdvanceRide handles POST /v1/rides/:id/advance
func (h *RideHandler) AdvanceRide(c *gin.Context) {
	var req AdvanceRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.lifecycle.Advance(c.Request.Context(), service.AdvanceInput{
		RideID:            c.Param("id"),
		NextStatus:        domain.RideStatus(req.Status),
		ActualDistanceKm:  req.ActualDistanceKm,
		ActualDurationMin: req.ActualDurationMin,
	})
	if err != nil {
		// Settlement failures leave the ride completed; surface both the ride
		// and the payment error so the caller can retry with another method.
		if ride != nil {
			c.JSON(mapErrorToHTTPStatus(err), gin.H{
				"error": err.Error(),
				"ride":  toRideResponse(ride),
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.lifecycle.Cancel(c.Request.Context(), service.CancelInput{
		RideID:      c.Param("id"),
		CancelledBy: domain.CancelledBy(req.CancelledBy),
		Reason:      req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// RetryRefund handles POST /v1/rides/:id/refund
func (h *RideHandler) RetryRefund(c *gin.Context) {
	ride, err := h.lifecycle.ProcessPendingRefund(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

func toRideResponse(ride *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:           ride.ID,
		PassengerID:  ride.PassengerID,
		DriverID:     ride.DriverID,
		Pickup:       LocationPayload{Address: ride.Pickup.Address, Lat: ride.Pickup.Lat, Lng: ride.Pickup.Lng},
		Destination:  LocationPayload{Address: ride.Destination.Address, Lat: ride.Destination.Lat, Lng: ride.Destination.Lng},
		VehicleClass: string(ride.VehicleClass),
		Status:       string(ride.Status),
		Fare: FarePayload{
			VehicleClass:    string(ride.Pricing.VehicleClass),
			DistanceKm:      ride.Pricing.DistanceKm,
			DurationMin:     ride.Pricing.DurationMin,
			BaseFare:        ride.Pricing.BaseFare,
			DistanceFare:    ride.Pricing.DistanceFare,
			TimeFare:        ride.Pricing.TimeFare,
			SurgeMultiplier: ride.Pricing.SurgeMultiplier,
			TimeMultiplier:  ride.Pricing.TimeMultiplier,
			TotalFare:       ride.Pricing.TotalFare,
			Currency:        ride.Pricing.Currency,
		},
		Payment: PaymentPayload{
			Method:     string(ride.Payment.Method),
			Status:     string(ride.Payment.Status),
			Amount:     ride.Payment.Amount,
			Currency:   ride.Payment.Currency,
			GatewayRef: ride.Payment.GatewayRef,
		},
		RequestedAt: formatTime(ride.Timestamps.Requested),
		AcceptedAt:  formatTime(ride.Timestamps.Accepted),
		EnRouteAt:   formatTime(ride.Timestamps.EnRoute),
		ArrivedAt:   formatTime(ride.Timestamps.Arrived),
		StartedAt:   formatTime(ride.Timestamps.Started),
		CompletedAt: formatTime(ride.Timestamps.Completed),
		CancelledAt: formatTime(ride.Timestamps.Cancelled),
	}

	if ride.Cancellation != nil {
		resp.Cancellation = &CancellationPayload{
			CancelledBy:     string(ride.Cancellation.CancelledBy),
			Reason:          ride.Cancellation.Reason,
			Fee:             ride.Cancellation.Fee,
			RefundAmount:    ride.Cancellation.RefundAmount,
			PenaltyApplied:  ride.Cancellation.PenaltyApplied,
			PenaltyAmount:   ride.Cancellation.PenaltyAmount,
			PolicyVersion:   ride.Cancellation.PolicyVersion,
			RefundProcessed: ride.Cancellation.RefundProcessed,
		}
	}

	return resp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
