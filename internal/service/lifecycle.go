package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"farebroker/internal/domain"
	"farebroker/internal/events"
	"farebroker/internal/observability"
	"farebroker/internal/repository"
)

// Directory is the external driver/passenger directory: existence and
// availability lookups, plus the earnings/cancellation counters the core
// updates as a side effect.
type Directory interface {
	GetUser(ctx context.Context, id string) (*domain.DirectoryUser, error)
	SetAvailability(ctx context.Context, driverID string, available bool) error
	RecordCompletion(ctx context.Context, driverID string, earnings float64) error
	RecordCancellation(ctx context.Context, driverID string) error
}

// DemandSignal provides pickup-area supply/demand counts for surge pricing.
// The pending-request count is fed back by the lifecycle itself.
type DemandSignal interface {
	GetDemandContext(ctx context.Context, lat, lng float64) (availableDrivers, pendingRequests int, err error)
	AddPendingRequests(ctx context.Context, lat, lng float64, delta int) error
	AddAvailableDrivers(ctx context.Context, lat, lng float64, delta int) error
}

// RideLock is the optional cross-process ride lock (Redis SetNX). The local
// keyed mutex already serializes within one process.
type RideLock interface {
	AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleaseRideLock(ctx context.Context, rideID string) error
}

// forward edge of the state machine; cancel is handled separately
var forwardTransitions = map[domain.RideStatus]domain.RideStatus{
	domain.RideStatusAccepted:      domain.RideStatusDriverEnRoute,
	domain.RideStatusDriverEnRoute: domain.RideStatusArrived,
	domain.RideStatusArrived:       domain.RideStatusInProgress,
	domain.RideStatusInProgress:    domain.RideStatusCompleted,
}

const rideLockTTL = 30 * time.Second

// LifecycleConfig tunes the external-gateway retry behavior.
type LifecycleConfig struct {
	GatewayTimeout time.Duration
	GatewayRetries int
	RetryBackoff   time.Duration
}

// DefaultLifecycleConfig returns the default gateway timeout/retry settings.
func DefaultLifecycleConfig() LifecycleConfig {
	return LifecycleConfig{
		GatewayTimeout: 5 * time.Second,
		GatewayRetries: 3,
		RetryBackoff:   200 * time.Millisecond,
	}
}

// RideLifecycle owns the ride state machine. It prices rides at request time,
// applies the cancellation policy at cancellation time, and drives the wallet
// ledger (or the external gateway) at settlement time. All per-ride mutation
// is serialized on the ride id.
type RideLifecycle struct {
	rideRepo   repository.RideRepository
	policyRepo repository.PolicyRepository
	directory  Directory
	pricing    *PricingEngine
	ledger     *WalletLedger
	gateway    PaymentGateway
	publisher  events.Publisher
	demand     DemandSignal // optional
	rideLock   RideLock     // optional
	cfg        LifecycleConfig
	locks      keyedMutex
	log        *logrus.Logger
}

// NewRideLifecycle creates a RideLifecycle. demand and rideLock may be nil.
func NewRideLifecycle(
	rideRepo repository.RideRepository,
	policyRepo repository.PolicyRepository,
	directory Directory,
	pricing *PricingEngine,
	ledger *WalletLedger,
	gateway PaymentGateway,
	publisher events.Publisher,
	demand DemandSignal,
	rideLock RideLock,
	cfg LifecycleConfig,
	log *logrus.Logger,
) *RideLifecycle {
	if cfg.GatewayTimeout <= 0 {
		cfg = DefaultLifecycleConfig()
	}
	if log == nil {
		log = logrus.New()
	}
	return &RideLifecycle{
		rideRepo:   rideRepo,
		policyRepo: policyRepo,
		directory:  directory,
		pricing:    pricing,
		ledger:     ledger,
		gateway:    gateway,
		publisher:  publisher,
		demand:     demand,
		rideLock:   rideLock,
		cfg:        cfg,
		log:        log,
	}
}

// RequestRideInput contains the parameters for requesting a ride.
type RequestRideInput struct {
	PassengerID   string
	Pickup        domain.Location
	Destination   domain.Location
	VehicleClass  domain.VehicleClass
	PaymentMethod domain.PaymentMethod
	Traffic       TrafficCondition
}

// RequestRide validates the passenger, prices the trip and creates the ride
// in PENDING with a pending payment record.
func (s *RideLifecycle) RequestRide(ctx context.Context, in RequestRideInput) (*domain.Ride, error) {
	if err := s.validateRequest(in); err != nil {
		return nil, err
	}

	passenger, err := s.directory.GetUser(ctx, in.PassengerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPassengerNotFound
		}
		return nil, err
	}
	if passenger.Role != domain.UserRolePassenger {
		return nil, ErrPassengerNotFound
	}

	now := time.Now()
	pctx := PricingContext{RequestedAt: now, Traffic: in.Traffic, Demand: s.demandContext(ctx, in.Pickup)}

	estimate, err := s.pricing.Estimate(in.Pickup, in.Destination, in.VehicleClass, pctx)
	if err != nil {
		return nil, err
	}

	ride := &domain.Ride{
		ID:           uuid.New().String(),
		PassengerID:  in.PassengerID,
		Pickup:       in.Pickup,
		Destination:  in.Destination,
		VehicleClass: in.VehicleClass,
		Status:       domain.RideStatusPending,
		Pricing:      estimate,
		Payment: domain.PaymentRecord{
			Method:   in.PaymentMethod,
			Status:   domain.PaymentStatusPending,
			Amount:   estimate.TotalFare,
			Currency: estimate.Currency,
		},
		Timestamps: domain.RideTimestamps{Requested: now},
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	if s.demand != nil {
		// Feed the demand signal; failure must not fail the request.
		if derr := s.demand.AddPendingRequests(ctx, in.Pickup.Lat, in.Pickup.Lng, 1); derr != nil {
			s.log.WithError(derr).Warn("demand signal update failed")
		}
	}

	observability.RidesRequestedTotal.Inc()
	observability.FareAmount.Observe(estimate.TotalFare)
	s.publishStatus(ctx, ride.ID, "", domain.RideStatusPending, now)

	return ride, nil
}

// AssignDriver transitions a pending ride to ACCEPTED and marks the driver
// busy. Only valid from PENDING; the driver must exist and be available.
func (s *RideLifecycle) AssignDriver(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	unlock, err := s.lockRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}
	if ride.Status != domain.RideStatusPending {
		return nil, ErrRideNotPending
	}

	driver, err := s.directory.GetUser(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}
	if driver.Role != domain.UserRoleDriver || !driver.IsAvailable {
		return nil, ErrDriverUnavailable
	}

	now := time.Now()
	ride.DriverID = driverID
	ride.Status = domain.RideStatusAccepted
	ride.Timestamps.Accepted = now

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	if err := s.directory.SetAvailability(ctx, driverID, false); err != nil {
		s.log.WithError(err).WithField("driver_id", driverID).Warn("availability update failed")
	}
	s.adjustDemand(ctx, ride.Pickup, -1, -1)

	s.publishStatus(ctx, ride.ID, domain.RideStatusPending, domain.RideStatusAccepted, now)

	return ride, nil
}

// AdvanceInput contains the parameters for a forward transition. The actual
// measurements are only read when the target status is COMPLETED; zero values
// fall back to the estimate.
type AdvanceInput struct {
	RideID            string
	NextStatus        domain.RideStatus
	ActualDistanceKm  float64
	ActualDurationMin float64
}

// Advance moves a ride along the forward edge
// accepted -> driver_en_route -> arrived -> in_progress -> completed.
// Any skip or backward move fails with ErrInvalidTransition. Reaching
// COMPLETED recomputes the actual fare and settles payment; settlement
// failure leaves the ride completed with a failed payment, never rolled back.
func (s *RideLifecycle) Advance(ctx context.Context, in AdvanceInput) (*domain.Ride, error) {
	if in.RideID == "" {
		return nil, ErrInvalidRideID
	}

	unlock, err := s.lockRide(ctx, in.RideID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, in.RideID)
	if err != nil {
		return nil, err
	}
	if ride.Status.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}

	next, ok := forwardTransitions[ride.Status]
	if !ok || next != in.NextStatus {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	from := ride.Status
	ride.Status = in.NextStatus

	switch in.NextStatus {
	case domain.RideStatusDriverEnRoute:
		ride.Timestamps.EnRoute = now
	case domain.RideStatusArrived:
		ride.Timestamps.Arrived = now
	case domain.RideStatusInProgress:
		ride.Timestamps.Started = now
	case domain.RideStatusCompleted:
		ride.Timestamps.Completed = now
		if err := s.complete(ctx, ride, in); err != nil {
			return nil, err
		}
	}

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	s.publishStatus(ctx, ride.ID, from, ride.Status, now)

	var settleErr error
	if ride.Status == domain.RideStatusCompleted {
		settleErr = s.settle(ctx, ride)
		observability.RidesCompletedTotal.Inc()
	}

	return ride, settleErr
}

// complete recomputes the fare from actual measurements, reusing the original
// surge/time multipliers captured at request time.
func (s *RideLifecycle) complete(ctx context.Context, ride *domain.Ride, in AdvanceInput) error {
	actualKm := in.ActualDistanceKm
	if actualKm <= 0 {
		actualKm = ride.Pricing.DistanceKm
	}
	actualMin := in.ActualDurationMin
	if actualMin <= 0 {
		actualMin = ride.Pricing.DurationMin
	}

	actual, err := s.pricing.RecomputeActual(ride.Pricing, actualKm, actualMin)
	if err != nil {
		return err
	}

	ride.Pricing = actual
	ride.Payment.Amount = actual.TotalFare
	return nil
}

// settle captures payment for a completed ride: wallet rides debit the ledger
// directly, other methods go through the external gateway with a timeout and
// bounded retries. The ride is already completed and stays completed; on
// failure the payment is marked failed for later reconciliation.
func (s *RideLifecycle) settle(ctx context.Context, ride *domain.Ride) error {
	amount := ride.Payment.Amount
	var settleErr error

	if ride.Payment.Method == domain.PaymentMethodWallet {
		_, err := s.ledger.Debit(ctx, ride.PassengerID, amount, ride.ID, "ride payment")
		if err != nil {
			ride.Payment.Status = domain.PaymentStatusFailed
			settleErr = err
		} else {
			ride.Payment.Status = domain.PaymentStatusPaid
		}
	} else {
		result, err := s.chargeWithRetry(ctx, amount, ride.Payment.Method, ride.ID)
		switch {
		case err != nil:
			ride.Payment.Status = domain.PaymentStatusFailed
			settleErr = err
		case !result.Success:
			ride.Payment.Status = domain.PaymentStatusFailed
			settleErr = ErrChargeDeclined
		default:
			ride.Payment.Status = domain.PaymentStatusPaid
			ride.Payment.GatewayRef = result.TransactionID
		}
	}

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return err
	}

	if ride.Payment.Status == domain.PaymentStatusPaid && ride.DriverID != "" {
		if err := s.directory.RecordCompletion(ctx, ride.DriverID, amount); err != nil {
			s.log.WithError(err).WithField("driver_id", ride.DriverID).Warn("driver earnings update failed")
		}
	}
	if ride.DriverID != "" {
		if err := s.directory.SetAvailability(ctx, ride.DriverID, true); err != nil {
			s.log.WithError(err).WithField("driver_id", ride.DriverID).Warn("availability update failed")
		}
		s.adjustDemand(ctx, ride.Pickup, 1, 0)
	}

	observability.SettlementsTotal.WithLabelValues(string(ride.Payment.Method), string(ride.Payment.Status)).Inc()
	s.publishMoney(ctx, ride.ID, events.MoneyEventPayment, amount, ride.Payment.Status)

	return settleErr
}

// CancelInput contains the parameters for cancelling a ride.
type CancelInput struct {
	RideID      string
	CancelledBy domain.CancelledBy
	Reason      string
}

// Cancel terminates a non-terminal ride under the active cancellation policy.
// Cancelling an already-terminal ride fails with ErrAlreadyTerminal rather
// than double-refunding; the refund itself is additionally guarded by the
// ride's RefundProcessed flag so a crashed cancellation can be retried.
func (s *RideLifecycle) Cancel(ctx context.Context, in CancelInput) (*domain.Ride, error) {
	if in.RideID == "" {
		return nil, ErrInvalidRideID
	}
	switch in.CancelledBy {
	case domain.CancelledByPassenger, domain.CancelledByDriver, domain.CancelledBySystem, domain.CancelledByAdmin:
	default:
		return nil, ErrInvalidCancelledBy
	}

	unlock, err := s.lockRide(ctx, in.RideID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, in.RideID)
	if err != nil {
		return nil, err
	}
	if ride.Status.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}

	policy, err := s.policyRepo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActivePolicy
		}
		return nil, err
	}

	now := time.Now()
	elapsed := s.elapsedMinutes(ride, now)
	charges := CalculateCancellationCharges(policy, ride.Pricing.TotalFare, elapsed, in.CancelledBy)

	from := ride.Status
	ride.Status = domain.RideStatusCancelled
	ride.Timestamps.Cancelled = now
	ride.Cancellation = &domain.CancellationRecord{
		CancelledBy:    in.CancelledBy,
		Reason:         in.Reason,
		Fee:            charges.Fee,
		RefundAmount:   charges.Refund,
		PenaltyApplied: charges.PenaltyApplied,
		PenaltyAmount:  charges.PenaltyAmount,
		PolicyVersion:  policy.Version,
	}

	// Persist the terminal state first so a crash before the refund leaves a
	// retryable cancelled ride with RefundProcessed=false.
	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	if ride.DriverID != "" {
		if err := s.directory.SetAvailability(ctx, ride.DriverID, true); err != nil {
			s.log.WithError(err).WithField("driver_id", ride.DriverID).Warn("availability update failed")
		}
		s.adjustDemand(ctx, ride.Pickup, 1, 0)
		if in.CancelledBy == domain.CancelledByDriver {
			if err := s.directory.RecordCancellation(ctx, ride.DriverID); err != nil {
				s.log.WithError(err).WithField("driver_id", ride.DriverID).Warn("driver cancellation counter update failed")
			}
		}
	} else {
		s.adjustDemand(ctx, ride.Pickup, 0, -1)
	}

	observability.RidesCancelledTotal.WithLabelValues(string(in.CancelledBy)).Inc()
	s.publishStatus(ctx, ride.ID, from, domain.RideStatusCancelled, now)

	if err := s.settleCancellation(ctx, ride, charges); err != nil {
		// The ride is cancelled; money movement is retryable via
		// ProcessPendingRefund.
		return ride, err
	}

	return ride, nil
}

// ProcessPendingRefund retries the refund of a cancelled ride whose money
// movement did not complete, e.g. after a crash or gateway outage. It is a
// no-op for rides whose refund was already processed.
func (s *RideLifecycle) ProcessPendingRefund(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	unlock, err := s.lockRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideStatusCancelled || ride.Cancellation == nil {
		return nil, ErrInvalidTransition
	}
	if ride.Cancellation.RefundProcessed {
		return ride, nil
	}

	charges := domain.CancellationCharges{
		Fee:            ride.Cancellation.Fee,
		Refund:         ride.Cancellation.RefundAmount,
		PenaltyApplied: ride.Cancellation.PenaltyApplied,
		PenaltyAmount:  ride.Cancellation.PenaltyAmount,
	}
	if err := s.settleCancellation(ctx, ride, charges); err != nil {
		return ride, err
	}
	return ride, nil
}

// settleCancellation moves the money for a cancellation: a refund when the
// payment was captured, or a wallet fee debit when it was not. The
// RefundProcessed flag is the idempotency guard.
func (s *RideLifecycle) settleCancellation(ctx context.Context, ride *domain.Ride, charges domain.CancellationCharges) error {
	if ride.Cancellation.RefundProcessed {
		return nil
	}

	captured := ride.Payment.Status == domain.PaymentStatusPaid

	if captured && charges.Refund > 0 {
		if ride.Payment.Method == domain.PaymentMethodWallet {
			if _, err := s.ledger.Refund(ctx, ride.PassengerID, charges.Refund, ride.ID, "ride cancellation refund"); err != nil {
				return err
			}
		} else {
			reference := ride.Payment.GatewayRef
			if reference == "" {
				reference = ride.ID
			}
			result, err := s.refundWithRetry(ctx, charges.Refund, ride.Payment.Method, reference)
			if err != nil {
				return err
			}
			if !result.Success {
				return ErrGatewayUnavailable
			}
		}
		ride.Payment.Status = domain.PaymentStatusRefunded
		observability.RefundsTotal.Inc()
		s.publishMoney(ctx, ride.ID, events.MoneyEventRefund, charges.Refund, domain.PaymentStatusRefunded)
	} else if !captured {
		// Nothing was captured: collect the fee (and penalty) directly when
		// the ride was to be paid from the wallet. Other methods collect the
		// fee out of band; it stays recorded on the cancellation record.
		owed := round2(charges.Fee + charges.PenaltyAmount)
		if owed > 0 && ride.Payment.Method == domain.PaymentMethodWallet {
			if _, err := s.ledger.Debit(ctx, ride.PassengerID, owed, ride.ID, "cancellation fee"); err != nil {
				if !errors.Is(err, ErrInsufficientFunds) {
					return err
				}
				s.log.WithField("ride_id", ride.ID).Warn("cancellation fee not collectable, balance too low")
			}
		}
	}

	ride.Cancellation.RefundProcessed = true
	return s.rideRepo.Update(ctx, ride)
}

// GetRide retrieves a ride by ID.
func (s *RideLifecycle) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetByID(ctx, rideID)
}

func (s *RideLifecycle) elapsedMinutes(ride *domain.Ride, now time.Time) float64 {
	since := ride.Timestamps.Accepted
	if since.IsZero() {
		since = ride.Timestamps.Requested
	}
	if since.IsZero() {
		return 0
	}
	return now.Sub(since).Minutes()
}

func (s *RideLifecycle) validateRequest(in RequestRideInput) error {
	if in.PassengerID == "" {
		return ErrInvalidPassengerID
	}
	if !isValidLatitude(in.Pickup.Lat) || !isValidLongitude(in.Pickup.Lng) {
		return ErrInvalidPickupLocation
	}
	if !isValidLatitude(in.Destination.Lat) || !isValidLongitude(in.Destination.Lng) {
		return ErrInvalidDestinationLocation
	}
	switch in.VehicleClass {
	case domain.VehicleClassStandard, domain.VehicleClassPremium, domain.VehicleClassLuxury:
	default:
		return ErrInvalidVehicleClass
	}
	switch in.PaymentMethod {
	case domain.PaymentMethodWallet, domain.PaymentMethodCard, domain.PaymentMethodCash, domain.PaymentMethodMobileMoney:
	default:
		return ErrInvalidPaymentMethod
	}
	return nil
}

// lockRide serializes ride mutation: always the local keyed mutex, plus the
// shared Redis lock when configured.
func (s *RideLifecycle) lockRide(ctx context.Context, rideID string) (func(), error) {
	unlock := s.locks.Lock("ride:" + rideID)

	if s.rideLock == nil {
		return unlock, nil
	}

	ok, err := s.rideLock.AcquireRideLock(ctx, rideID, rideLockTTL)
	if err != nil {
		// Lock store down: fall back to local serialization only.
		s.log.WithError(err).Warn("ride lock store unavailable")
		return unlock, nil
	}
	if !ok {
		unlock()
		return nil, ErrRideLocked
	}

	return func() {
		_ = s.rideLock.ReleaseRideLock(context.WithoutCancel(ctx), rideID)
		unlock()
	}, nil
}

func (s *RideLifecycle) demandContext(ctx context.Context, pickup domain.Location) *DemandContext {
	if s.demand == nil {
		return nil
	}
	drivers, requests, err := s.demand.GetDemandContext(ctx, pickup.Lat, pickup.Lng)
	if err != nil {
		// No signal: default to no surge rather than failing the request.
		s.log.WithError(err).Warn("demand signal unavailable")
		return nil
	}
	return &DemandContext{AvailableDrivers: drivers, PendingRequests: requests}
}

func (s *RideLifecycle) adjustDemand(ctx context.Context, pickup domain.Location, drivers, requests int) {
	if s.demand == nil {
		return
	}
	if drivers != 0 {
		if err := s.demand.AddAvailableDrivers(ctx, pickup.Lat, pickup.Lng, drivers); err != nil {
			s.log.WithError(err).Warn("demand signal update failed")
		}
	}
	if requests != 0 {
		if err := s.demand.AddPendingRequests(ctx, pickup.Lat, pickup.Lng, requests); err != nil {
			s.log.WithError(err).Warn("demand signal update failed")
		}
	}
}

// chargeWithRetry calls the gateway with a per-attempt timeout and bounded
// exponential backoff. A definitive decline is not retried; only transport
// errors are.
func (s *RideLifecycle) chargeWithRetry(ctx context.Context, amount float64, method domain.PaymentMethod, reference string) (*GatewayResult, error) {
	return s.gatewayWithRetry(ctx, func(attemptCtx context.Context) (*GatewayResult, error) {
		return s.gateway.Charge(attemptCtx, amount, method, reference)
	})
}

func (s *RideLifecycle) refundWithRetry(ctx context.Context, amount float64, method domain.PaymentMethod, reference string) (*GatewayResult, error) {
	return s.gatewayWithRetry(ctx, func(attemptCtx context.Context) (*GatewayResult, error) {
		return s.gateway.Refund(attemptCtx, amount, method, reference)
	})
}

func (s *RideLifecycle) gatewayWithRetry(ctx context.Context, call func(context.Context) (*GatewayResult, error)) (*GatewayResult, error) {
	retries := s.cfg.GatewayRetries
	if retries <= 0 {
		retries = 1
	}
	backoff := s.cfg.RetryBackoff

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
		result, err := call(attemptCtx)
		cancel()

		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	s.log.WithError(lastErr).Warn("gateway retries exhausted")
	return nil, ErrGatewayUnavailable
}

func (s *RideLifecycle) publishStatus(ctx context.Context, rideID string, from, to domain.RideStatus, at time.Time) {
	if s.publisher == nil {
		return
	}
	ev := events.RideStatusChanged{RideID: rideID, FromStatus: from, ToStatus: to, At: at}
	if err := s.publisher.PublishRideStatus(ctx, ev); err != nil {
		s.log.WithError(err).WithField("ride_id", rideID).Warn("event publish failed")
	}
}

func (s *RideLifecycle) publishMoney(ctx context.Context, rideID string, typ events.MoneyEventType, amount float64, status domain.PaymentStatus) {
	if s.publisher == nil {
		return
	}
	ev := events.MoneyMoved{RideID: rideID, Type: typ, Amount: amount, Status: status, At: time.Now()}
	if err := s.publisher.PublishMoney(ctx, ev); err != nil {
		s.log.WithError(err).WithField("ride_id", rideID).Warn("event publish failed")
	}
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
