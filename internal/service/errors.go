package service

import "errors"

// Validation errors are rejected before any mutation.
var (
	// ErrInvalidPassengerID is returned when passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidUserID is returned when a wallet user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDestinationLocation is returned when destination coordinates are invalid.
	ErrInvalidDestinationLocation = errors.New("invalid destination location")

	// ErrInvalidVehicleClass is returned for an unknown vehicle class.
	ErrInvalidVehicleClass = errors.New("invalid vehicle class")

	// ErrInvalidPaymentMethod is returned for an unknown payment method.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidCancelledBy is returned for an unknown cancelling party.
	ErrInvalidCancelledBy = errors.New("invalid cancelled-by party")

	// ErrInvalidAmount is returned when a money amount is zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")
)

// State errors are rejected with no side effects.
var (
	// ErrPassengerNotFound is returned when the directory has no such passenger.
	ErrPassengerNotFound = errors.New("passenger not found")

	// ErrDriverNotFound is returned when the directory has no such driver.
	ErrDriverNotFound = errors.New("driver not found")

	// ErrDriverUnavailable is returned when the driver is not available for assignment.
	ErrDriverUnavailable = errors.New("driver unavailable")

	// ErrRideNotPending is returned when assignment is attempted on a non-pending ride.
	ErrRideNotPending = errors.New("ride not pending")

	// ErrInvalidTransition is returned for any move off the forward edge of the
	// ride state machine.
	ErrInvalidTransition = errors.New("invalid ride status transition")

	// ErrAlreadyTerminal is returned when mutating a completed or cancelled ride.
	ErrAlreadyTerminal = errors.New("ride already in terminal state")

	// ErrRideLocked is returned when another process holds the ride lock.
	ErrRideLocked = errors.New("ride is being modified by another request")
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds the wallet balance.
	// The ride payment is left failed and eligible for another method.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrGatewayUnavailable is returned after bounded gateway retries are exhausted.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrChargeDeclined is returned when the gateway definitively declines a charge.
	ErrChargeDeclined = errors.New("charge declined")

	// ErrNoActivePolicy is returned when no active cancellation policy exists.
	// It aborts the cancellation rather than guessing a default.
	ErrNoActivePolicy = errors.New("no active cancellation policy")
)
