package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"farebroker/internal/domain"
	"farebroker/internal/service"
)

// ──────────────────────────────────────────────
// LIFECYCLE TEST FIXTURE
// ──────────────────────────────────────────────

type lifecycleFixture struct {
	rides     *MockRideRepository
	policies  *MockPolicyRepository
	directory *MockDirectory
	wallets   *MockWalletRepository
	demand    *MockDemand
	publisher *MockPublisher
	gateway   *service.MockGateway
	ledger    *service.WalletLedger
	svc       *service.RideLifecycle
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		rides:     NewMockRideRepository(),
		policies:  NewMockPolicyRepository(),
		directory: NewMockDirectory(),
		wallets:   NewMockWalletRepository(),
		demand:    NewMockDemand(),
		publisher: NewMockPublisher(),
		gateway:   service.NewMockGateway(),
	}
	f.ledger = service.NewWalletLedger(f.wallets, "USD", nil)
	f.svc = service.NewRideLifecycle(
		f.rides,
		f.policies,
		f.directory,
		service.NewPricingEngine(nil, "USD"),
		f.ledger,
		f.gateway,
		f.publisher,
		f.demand,
		nil,
		service.LifecycleConfig{
			GatewayTimeout: 100 * time.Millisecond,
			GatewayRetries: 3,
			RetryBackoff:   time.Millisecond,
		},
		nil,
	)

	f.directory.AddUser(&domain.DirectoryUser{ID: "passenger-1", Role: domain.UserRolePassenger})
	f.directory.AddUser(&domain.DirectoryUser{ID: "driver-1", Role: domain.UserRoleDriver, IsAvailable: true})
	f.policies.SetActive(&domain.CancellationPolicy{
		ID:                     "policy-1",
		Name:                   "standard",
		Version:                3,
		IsActive:               true,
		FreeCancellationWindow: 2,
		MaxFeePercent:          50,
		Rules: []domain.CancellationRule{
			{ThresholdMinutes: 0, FeeKind: domain.FeeKindPercentage, FeeAmount: 10, AppliesTo: domain.AppliesToBoth},
		},
	})

	return f
}

func validRequest() service.RequestRideInput {
	return service.RequestRideInput{
		PassengerID:   "passenger-1",
		Pickup:        domain.Location{Address: "A", Lat: 0, Lng: 0},
		Destination:   domain.Location{Address: "B", Lat: 0, Lng: 0.1},
		VehicleClass:  domain.VehicleClassStandard,
		PaymentMethod: domain.PaymentMethodWallet,
		Traffic:       service.TrafficModerate,
	}
}

// seedRide installs a ride in the given status with a settled 134 estimate.
func (f *lifecycleFixture) seedRide(status domain.RideStatus) *domain.Ride {
	ride := &domain.Ride{
		ID:           "ride-1",
		PassengerID:  "passenger-1",
		Pickup:       domain.Location{Lat: 0, Lng: 0},
		Destination:  domain.Location{Lat: 0, Lng: 0.1},
		VehicleClass: domain.VehicleClassStandard,
		Status:       status,
		Pricing: domain.FareBreakdown{
			VehicleClass:    domain.VehicleClassStandard,
			DistanceKm:      8,
			DurationMin:     20,
			BaseFare:        20,
			DistanceFare:    80,
			TimeFare:        34,
			SurgeMultiplier: 1.0,
			TimeMultiplier:  1.0,
			TotalFare:       134,
			Currency:        "USD",
		},
		Payment: domain.PaymentRecord{
			Method:   domain.PaymentMethodWallet,
			Status:   domain.PaymentStatusPending,
			Amount:   134,
			Currency: "USD",
		},
		Timestamps: domain.RideTimestamps{Requested: time.Now().Add(-15 * time.Minute)},
	}
	if status != domain.RideStatusPending {
		ride.DriverID = "driver-1"
		ride.Timestamps.Accepted = time.Now().Add(-10 * time.Minute)
		f.directory.SetAvailability(context.Background(), "driver-1", false)
	}
	f.rides.AddRide(ride)
	return ride
}

// ──────────────────────────────────────────────
// RIDE REQUEST
// ──────────────────────────────────────────────

func TestRequestRide_CreatesPendingRide(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()

	ride, err := f.svc.RequestRide(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusPending {
		t.Errorf("expected PENDING, got %s", ride.Status)
	}
	if ride.Payment.Status != domain.PaymentStatusPending {
		t.Errorf("expected pending payment, got %s", ride.Payment.Status)
	}
	if ride.Payment.Amount != ride.Pricing.TotalFare {
		t.Errorf("payment amount %.2f does not match fare %.2f", ride.Payment.Amount, ride.Pricing.TotalFare)
	}
	if ride.Pricing.TotalFare < 35 {
		t.Errorf("fare %.2f below the minimum", ride.Pricing.TotalFare)
	}
	if ride.Timestamps.Requested.IsZero() {
		t.Error("expected requested timestamp")
	}
	if f.rides.CreateCallCount != 1 {
		t.Errorf("expected 1 create call, got %d", f.rides.CreateCallCount)
	}
	if f.demand.PendingRequests != 1 {
		t.Errorf("expected demand signal fed, got %d pending", f.demand.PendingRequests)
	}
	last := f.publisher.LastStatus()
	if last == nil || last.ToStatus != domain.RideStatusPending {
		t.Error("expected a PENDING status event")
	}
}

func TestRequestRide_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*service.RequestRideInput)
		wantErr error
	}{
		{"missing passenger", func(in *service.RequestRideInput) { in.PassengerID = "" }, service.ErrInvalidPassengerID},
		{"bad pickup latitude", func(in *service.RequestRideInput) { in.Pickup.Lat = 95 }, service.ErrInvalidPickupLocation},
		{"bad destination longitude", func(in *service.RequestRideInput) { in.Destination.Lng = -181 }, service.ErrInvalidDestinationLocation},
		{"unknown vehicle class", func(in *service.RequestRideInput) { in.VehicleClass = "SUV" }, service.ErrInvalidVehicleClass},
		{"unknown payment method", func(in *service.RequestRideInput) { in.PaymentMethod = "BARTER" }, service.ErrInvalidPaymentMethod},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newLifecycleFixture()
			in := validRequest()
			tt.mutate(&in)

			_, err := f.svc.RequestRide(context.Background(), in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if f.rides.CreateCallCount != 0 {
				t.Error("expected no ride created")
			}
		})
	}
}

func TestRequestRide_UnknownPassenger(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	in := validRequest()
	in.PassengerID = "ghost"

	_, err := f.svc.RequestRide(context.Background(), in)
	if !errors.Is(err, service.ErrPassengerNotFound) {
		t.Errorf("expected ErrPassengerNotFound, got %v", err)
	}

	// A driver id in the passenger slot is also rejected.
	in.PassengerID = "driver-1"
	_, err = f.svc.RequestRide(context.Background(), in)
	if !errors.Is(err, service.ErrPassengerNotFound) {
		t.Errorf("expected ErrPassengerNotFound for driver id, got %v", err)
	}
}

func TestRequestRide_DemandSignalFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.demand.GetError = errors.New("redis down")

	ride, err := f.svc.RequestRide(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Pricing.SurgeMultiplier != 1.0 {
		t.Errorf("expected no surge without a signal, got %.2f", ride.Pricing.SurgeMultiplier)
	}
}

func TestRequestRide_SurgeFromDemandSignal(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.demand.AvailableDrivers = 1
	f.demand.PendingRequests = 3

	ride, err := f.svc.RequestRide(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Pricing.SurgeMultiplier != 3.0 {
		t.Errorf("expected surge 3.0 at ratio 3, got %.2f", ride.Pricing.SurgeMultiplier)
	}
}

// ──────────────────────────────────────────────
// DRIVER ASSIGNMENT
// ──────────────────────────────────────────────

func TestAssignDriver_Success(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.seedRide(domain.RideStatusPending)

	ride, err := f.svc.AssignDriver(context.Background(), "ride-1", "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusAccepted {
		t.Errorf("expected ACCEPTED, got %s", ride.Status)
	}
	if ride.DriverID != "driver-1" {
		t.Errorf("expected driver-1 assigned, got %q", ride.DriverID)
	}
	if ride.Timestamps.Accepted.IsZero() {
		t.Error("expected accepted timestamp")
	}
	if f.directory.IsAvailable("driver-1") {
		t.Error("expected driver marked busy")
	}
}

func TestAssignDriver_DriverUnavailable(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.seedRide(domain.RideStatusPending)
	f.directory.SetAvailability(context.Background(), "driver-1", false)

	_, err := f.svc.AssignDriver(context.Background(), "ride-1", "driver-1")
	if !errors.Is(err, service.ErrDriverUnavailable) {
		t.Errorf("expected ErrDriverUnavailable, got %v", err)
	}

	// A passenger id in the driver slot is also rejected.
	_, err = f.svc.AssignDriver(context.Background(), "ride-1", "passenger-1")
	if !errors.Is(err, service.ErrDriverUnavailable) {
		t.Errorf("expected ErrDriverUnavailable for passenger id, got %v", err)
	}
}

func TestAssignDriver_UnknownDriver(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.seedRide(domain.RideStatusPending)

	_, err := f.svc.AssignDriver(context.Background(), "ride-1", "ghost")
	if !errors.Is(err, service.ErrDriverNotFound) {
		t.Errorf("expected ErrDriverNotFound, got %v", err)
	}
}

func TestAssignDriver_RideNotPending(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.seedRide(domain.RideStatusAccepted)

	_, err := f.svc.AssignDriver(context.Background(), "ride-1", "driver-1")
	if !errors.Is(err, service.ErrRideNotPending) {
		t.Errorf("expected ErrRideNotPending, got %v", err)
	}
}

func TestAssignDriver_TerminalRide(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.seedRide(domain.RideStatusCancelled)

	_, err := f.svc.AssignDriver(context.Background(), "ride-1", "driver-1")
	if !errors.Is(err, service.ErrAlreadyTerminal) {
		t.Errorf("expected ErrAlreadyTerminal, got %v", err)
	}
}

// ──────────────────────────────────────────────
// FORWARD TRANSITIONS
// ──────────────────────────────────────────────

func TestAdvance_ForwardEdgeOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from domain.RideStatus
		to   domain.RideStatus
		ok   bool
	}{
		{"accepted to en route", domain.RideStatusAccepted, domain.RideStatusDriverEnRoute, true},
		{"en route to arrived", domain.RideStatusDriverEnRoute, domain.RideStatusArrived, true},
		{"arrived to in progress", domain.RideStatusArrived, domain.RideStatusInProgress, true},
		{"skip to in progress", domain.RideStatusAccepted, domain.RideStatusInProgress, false},
		{"skip to completed", domain.RideStatusAccepted, domain.RideStatusCompleted, false},
		{"pending cannot advance", domain.RideStatusPending, domain.RideStatusDriverEnRoute, false},
		{"backward move", domain.RideStatusArrived, domain.RideStatusDriverEnRoute, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newLifecycleFixture()
			f.wallets.SetBalance("passenger-1", 500)
			f.seedRide(tt.from)

			ride, err := f.svc.Advance(context.Background(), service.AdvanceInput{RideID: "ride-1", NextStatus: tt.to})
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if ride.Status != tt.to {
					t.Errorf("expected %s, got %s", tt.to, ride.Status)
				}
			} else if !errors.Is(err, service.ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition, got %v", err)
			}
		})
	}
}

func TestAdvance_TerminalRide(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.seedRide(domain.RideStatusCompleted)

	_, err := f.svc.Advance(context.Background(), service.AdvanceInput{RideID: "ride-1", NextStatus: domain.RideStatusCompleted})
	if !errors.Is(err, service.ErrAlreadyTerminal) {
		t.Errorf("expected ErrAlreadyTerminal, got %v", err)
	}
}

// ──────────────────────────────────────────────
// COMPLETION AND SETTLEMENT
// ──────────────────────────────────────────────

func TestAdvance_CompletionSettlesFromWallet(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.wallets.SetBalance("passenger-1", 500)
	f.seedRide(domain.RideStatusInProgress)

	ride, err := f.svc.Advance(context.Background(), service.AdvanceInput{
		RideID:            "ride-1",
		NextStatus:        domain.RideStatusCompleted,
		ActualDistanceKm:  8,
		ActualDurationMin: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", ride.Status)
	}
	if ride.Pricing.TotalFare != 134 {
		t.Errorf("expected actual fare 134, got %.2f", ride.Pricing.TotalFare)
	}
	if ride.Payment.Status != domain.PaymentStatusPaid {
		t.Errorf("expected PAID, got %s", ride.Payment.Status)
	}

	wallet, _ := f.wallets.GetOrCreate(context.Background(), "passenger-1", "USD")
	if wallet.Balance != 366 {
		t.Errorf("expected balance 366 after debit, got %.2f", wallet.Balance)
	}
	if f.directory.CompletionCallCount != 1 || f.directory.LastEarnings != 134 {
		t.Errorf("expected completion recorded with earnings 134, got count=%d earnings=%.2f",
			f.directory.CompletionCallCount, f.directory.LastEarnings)
	}
	if !f.directory.IsAvailable("driver-1") {
		t.Error("expected driver released after completion")
	}
}

func TestAdvance_CompletionFallsBackToEstimate(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.wallets.SetBalance("passenger-1", 500)
	f.seedRide(domain.RideStatusInProgress)

	// No actual measurements reported: the estimate stands.
	ride, err := f.svc.Advance(context.Background(), service.AdvanceInput{
		RideID:     "ride-1",
		NextStatus: domain.RideStatusCompleted,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.Pricing.TotalFare != 134 {
		t.Errorf("expected estimate reused, got %.2f", ride.Pricing.TotalFare)
	}
}

func TestAdvance_InsufficientFundsLeavesRideCompleted(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.wallets.SetBalance("passenger-1", 50)
	f.seedRide(domain.RideStatusInProgress)

	ride, err := f.svc.Advance(context.Background(), service.AdvanceInput{
		RideID:            "ride-1",
		NextStatus:        domain.RideStatusCompleted,
		ActualDistanceKm:  8,
		ActualDurationMin: 20,
	})
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// The ride stays completed with the payment flagged for reconciliation.
	if ride.Status != domain.RideStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", ride.Status)
	}
	if ride.Payment.Status != domain.PaymentStatusFailed {
		t.Errorf("expected FAILED payment, got %s", ride.Payment.Status)
	}

	wallet, _ := f.wallets.GetOrCreate(context.Background(), "passenger-1", "USD")
	if wallet.Balance != 50 {
		t.Errorf("expected balance untouched, got %.2f", wallet.Balance)
	}
	if f.wallets.CountTransactions("passenger-1") != 0 {
		t.Error("expected no transaction recorded on failed debit")
	}
	if f.directory.CompletionCallCount != 0 {
		t.Error("expected no earnings recorded for an unpaid ride")
	}
}

func TestAdvance_CardChargeThroughGateway(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	ride := f.seedRide(domain.RideStatusInProgress)
	ride.Payment.Method = domain.PaymentMethodCard

	got, err := f.svc.Advance(context.Background(), service.AdvanceInput{
		RideID:            "ride-1",
		NextStatus:        domain.RideStatusCompleted,
		ActualDistanceKm:  8,
		ActualDurationMin: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Payment.Status != domain.PaymentStatusPaid {
		t.Errorf("expected PAID, got %s", got.Payment.Status)
	}
	if got.Payment.GatewayRef == "" {
		t.Error("expected gateway reference recorded")
	}
	if f.gateway.ChargeCalls != 1 {
		t.Errorf("expected 1 charge call, got %d", f.gateway.ChargeCalls)
	}
}

func TestAdvance_GatewayRetriesExhausted(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.gateway.ChargeError = errors.New("connection reset")
	ride := f.seedRide(domain.RideStatusInProgress)
	ride.Payment.Method = domain.PaymentMethodCard

	got, err := f.svc.Advance(context.Background(), service.AdvanceInput{
		RideID:     "ride-1",
		NextStatus: domain.RideStatusCompleted,
	})
	if !errors.Is(err, service.ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	if f.gateway.ChargeCalls != 3 {
		t.Errorf("expected 3 attempts, got %d", f.gateway.ChargeCalls)
	}
	if got.Payment.Status != domain.PaymentStatusFailed {
		t.Errorf("expected FAILED payment, got %s", got.Payment.Status)
	}
}

func TestAdvance_DeclineIsNotRetried(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.gateway.Decline = true
	ride := f.seedRide(domain.RideStatusInProgress)
	ride.Payment.Method = domain.PaymentMethodCard

	_, err := f.svc.Advance(context.Background(), service.AdvanceInput{
		RideID:     "ride-1",
		NextStatus: domain.RideStatusCompleted,
	})
	if !errors.Is(err, service.ErrChargeDeclined) {
		t.Fatalf("expected ErrChargeDeclined, got %v", err)
	}
	if f.gateway.ChargeCalls != 1 {
		t.Errorf("expected a decline not to be retried, got %d calls", f.gateway.ChargeCalls)
	}
}

func TestGetRide(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.seedRide(domain.RideStatusPending)

	ride, err := f.svc.GetRide(context.Background(), "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ride.ID != "ride-1" {
		t.Errorf("expected ride-1, got %s", ride.ID)
	}

	if _, err := f.svc.GetRide(context.Background(), ""); !errors.Is(err, service.ErrInvalidRideID) {
		t.Errorf("expected ErrInvalidRideID, got %v", err)
	}
}
