package events

import (
	"context"
	"time"

	"farebroker/internal/domain"
)

// RideStatusChanged is emitted on every lifecycle transition. External
// matching/notification collaborators consume these; the core never delivers
// notifications itself.
type RideStatusChanged struct {
	RideID     string            `json:"ride_id"`
	FromStatus domain.RideStatus `json:"from_status"`
	ToStatus   domain.RideStatus `json:"to_status"`
	At         time.Time         `json:"at"`
}

// MoneyEventType distinguishes settlements from refunds.
type MoneyEventType string

const (
	MoneyEventPayment MoneyEventType = "PAYMENT"
	MoneyEventRefund  MoneyEventType = "REFUND"
)

// MoneyMoved is emitted when a payment settles (or fails) and when a refund
// is issued.
type MoneyMoved struct {
	RideID string               `json:"ride_id"`
	Type   MoneyEventType       `json:"type"`
	Amount float64              `json:"amount"`
	Status domain.PaymentStatus `json:"status"`
	At     time.Time            `json:"at"`
}

// Publisher is the event sink contract. Publishing is best effort from the
// caller's perspective; a failed publish never rolls back ride state.
type Publisher interface {
	PublishRideStatus(ctx context.Context, ev RideStatusChanged) error
	PublishMoney(ctx context.Context, ev MoneyMoved) error
}
