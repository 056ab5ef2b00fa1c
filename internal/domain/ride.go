package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending       RideStatus = "PENDING"
	RideStatusAccepted      RideStatus = "ACCEPTED"
	RideStatusDriverEnRoute RideStatus = "DRIVER_EN_ROUTE"
	RideStatusArrived       RideStatus = "ARRIVED"
	RideStatusInProgress    RideStatus = "IN_PROGRESS"
	RideStatusCompleted     RideStatus = "COMPLETED"
	RideStatusCancelled     RideStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is valid from s.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// VehicleClass represents the service class requested for a ride.
type VehicleClass string

const (
	VehicleClassStandard VehicleClass = "STANDARD"
	VehicleClassPremium  VehicleClass = "PREMIUM"
	VehicleClassLuxury   VehicleClass = "LUXURY"
)

// PaymentMethod represents the payment method for a ride.
type PaymentMethod string

const (
	PaymentMethodWallet      PaymentMethod = "WALLET"
	PaymentMethodCard        PaymentMethod = "CARD"
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodMobileMoney PaymentMethod = "MOBILE_MONEY"
)

// PaymentStatus represents the current status of a ride's payment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// CancelledBy identifies which party cancelled a ride.
type CancelledBy string

const (
	CancelledByPassenger CancelledBy = "PASSENGER"
	CancelledByDriver    CancelledBy = "DRIVER"
	CancelledBySystem    CancelledBy = "SYSTEM"
	CancelledByAdmin     CancelledBy = "ADMIN"
)

// Location is a point with a human-readable address.
type Location struct {
	Address string
	Lat     float64
	Lng     float64
}

// FareBreakdown is the pricing snapshot captured on a ride. The multipliers
// recorded at estimate time are reused when the actual fare is recomputed at
// completion.
type FareBreakdown struct {
	VehicleClass    VehicleClass
	DistanceKm      float64
	DurationMin     float64
	BaseFare        float64
	DistanceFare    float64
	TimeFare        float64
	SurgeMultiplier float64
	TimeMultiplier  float64
	TotalFare       float64
	Currency        string
}

// PaymentRecord is the payment sub-record of a ride.
type PaymentRecord struct {
	Method     PaymentMethod
	Status     PaymentStatus
	Amount     float64
	Currency   string
	GatewayRef string // correlation id from the external gateway, empty for wallet/cash
}

// CancellationRecord is the cancellation sub-record of a ride.
type CancellationRecord struct {
	CancelledBy     CancelledBy
	Reason          string
	Fee             float64
	RefundAmount    float64
	PenaltyApplied  bool
	PenaltyAmount   float64
	PolicyVersion   int
	RefundProcessed bool
}

// RideTimestamps records when each lifecycle transition happened.
type RideTimestamps struct {
	Requested time.Time
	Accepted  time.Time
	EnRoute   time.Time
	Arrived   time.Time
	Started   time.Time
	Completed time.Time
	Cancelled time.Time
}

// Ride represents a ride request in the system. Rides are never hard-deleted;
// terminal rides are retained for history and audit.
type Ride struct {
	ID           string
	PassengerID  string
	DriverID     string // empty until a driver is assigned
	Pickup       Location
	Destination  Location
	VehicleClass VehicleClass
	Status       RideStatus
	Pricing      FareBreakdown
	Payment      PaymentRecord
	Cancellation *CancellationRecord
	Timestamps   RideTimestamps
	Version      int // optimistic concurrency guard, incremented on every update
}
