package tests

import (
	"context"
	"sync"
	"sync/atomic"

	"farebroker/internal/domain"
	"farebroker/internal/events"
	"farebroker/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ride.Version == 0 {
		ride.Version = 1
	}
	m.rides[ride.ID] = ride
}

// GetRide returns the stored ride without copying, for assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride.Version = 1
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rides[ride.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != ride.Version {
		return repository.ErrVersionConflict
	}
	ride.Version++
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK WALLET REPOSITORY
// ──────────────────────────────────────────────

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet
	txns    map[string][]*domain.WalletTransaction

	// Counters for verification
	ApplyCallCount int32

	// Error injection
	ApplyError error
}

// NewMockWalletRepository creates a new mock wallet repository.
func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]*domain.Wallet),
		txns:    make(map[string][]*domain.WalletTransaction),
	}
}

// SetBalance seeds a wallet balance.
func (m *MockWalletRepository) SetBalance(userID string, balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[userID] = &domain.Wallet{UserID: userID, Balance: balance, Currency: "USD"}
}

// CountTransactions returns the number of recorded transactions for a user.
func (m *MockWalletRepository) CountTransactions(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.txns[userID])
}

func (m *MockWalletRepository) GetOrCreate(ctx context.Context, userID, currency string) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wallet, ok := m.wallets[userID]
	if !ok {
		wallet = &domain.Wallet{UserID: userID, Balance: 0, Currency: currency}
		m.wallets[userID] = wallet
	}
	copy := *wallet
	return &copy, nil
}

func (m *MockWalletRepository) Apply(ctx context.Context, wallet *domain.Wallet, txn *domain.WalletTransaction) error {
	atomic.AddInt32(&m.ApplyCallCount, 1)
	if m.ApplyError != nil {
		return m.ApplyError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	walletCopy := *wallet
	txnCopy := *txn
	m.wallets[wallet.UserID] = &walletCopy
	m.txns[wallet.UserID] = append(m.txns[wallet.UserID], &txnCopy)
	return nil
}

func (m *MockWalletRepository) Transactions(ctx context.Context, userID string, limit int) ([]*domain.WalletTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.txns[userID]
	// Newest first.
	out := make([]*domain.WalletTransaction, 0, len(all))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		copy := *all[i]
		out = append(out, &copy)
	}
	return out, nil
}

// ──────────────────────────────────────────────
// MOCK POLICY REPOSITORY
// ──────────────────────────────────────────────

// MockPolicyRepository is a mock implementation of PolicyRepository.
type MockPolicyRepository struct {
	mu     sync.RWMutex
	active *domain.CancellationPolicy

	// Error injection
	GetActiveError error
}

// NewMockPolicyRepository creates a new mock policy repository.
func NewMockPolicyRepository() *MockPolicyRepository {
	return &MockPolicyRepository{}
}

// SetActive installs the active policy.
func (m *MockPolicyRepository) SetActive(policy *domain.CancellationPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = policy
}

func (m *MockPolicyRepository) GetActive(ctx context.Context) (*domain.CancellationPolicy, error) {
	if m.GetActiveError != nil {
		return nil, m.GetActiveError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return nil, repository.ErrNotFound
	}
	return m.active, nil
}

func (m *MockPolicyRepository) Save(ctx context.Context, policy *domain.CancellationPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if policy.IsActive {
		m.active = policy
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK DIRECTORY
// ──────────────────────────────────────────────

// MockDirectory is a mock implementation of the user directory.
type MockDirectory struct {
	mu    sync.RWMutex
	users map[string]*domain.DirectoryUser

	// Counters for verification
	CompletionCallCount   int32
	CancellationCallCount int32

	// Last recorded completion earnings
	LastEarnings float64

	// Error injection
	GetUserError error
}

// NewMockDirectory creates a new mock directory.
func NewMockDirectory() *MockDirectory {
	return &MockDirectory{
		users: make(map[string]*domain.DirectoryUser),
	}
}

// AddUser adds a user to the mock directory.
func (m *MockDirectory) AddUser(user *domain.DirectoryUser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// IsAvailable reports the stored availability flag of a user.
func (m *MockDirectory) IsAvailable(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	return ok && user.IsAvailable
}

func (m *MockDirectory) GetUser(ctx context.Context, id string) (*domain.DirectoryUser, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockDirectory) SetAvailability(ctx context.Context, driverID string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[driverID]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsAvailable = available
	return nil
}

func (m *MockDirectory) RecordCompletion(ctx context.Context, driverID string, earnings float64) error {
	atomic.AddInt32(&m.CompletionCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastEarnings = earnings
	return nil
}

func (m *MockDirectory) RecordCancellation(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.CancellationCallCount, 1)
	return nil
}

// ──────────────────────────────────────────────
// MOCK DEMAND SIGNAL
// ──────────────────────────────────────────────

// MockDemand is a mock implementation of the demand signal.
type MockDemand struct {
	mu sync.RWMutex

	AvailableDrivers int
	PendingRequests  int

	// Error injection
	GetError error
}

// NewMockDemand creates a new mock demand signal.
func NewMockDemand() *MockDemand {
	return &MockDemand{}
}

func (m *MockDemand) GetDemandContext(ctx context.Context, lat, lng float64) (int, int, error) {
	if m.GetError != nil {
		return 0, 0, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.AvailableDrivers, m.PendingRequests, nil
}

func (m *MockDemand) AddAvailableDrivers(ctx context.Context, lat, lng float64, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AvailableDrivers += delta
	return nil
}

func (m *MockDemand) AddPendingRequests(ctx context.Context, lat, lng float64, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PendingRequests += delta
	return nil
}

// ──────────────────────────────────────────────
// MOCK EVENT PUBLISHER
// ──────────────────────────────────────────────

// MockPublisher records published events for verification.
type MockPublisher struct {
	mu           sync.RWMutex
	StatusEvents []events.RideStatusChanged
	MoneyEvents  []events.MoneyMoved
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishRideStatus(ctx context.Context, ev events.RideStatusChanged) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusEvents = append(m.StatusEvents, ev)
	return nil
}

func (m *MockPublisher) PublishMoney(ctx context.Context, ev events.MoneyMoved) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MoneyEvents = append(m.MoneyEvents, ev)
	return nil
}

// LastStatus returns the most recent status event, or nil.
func (m *MockPublisher) LastStatus() *events.RideStatusChanged {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.StatusEvents) == 0 {
		return nil
	}
	ev := m.StatusEvents[len(m.StatusEvents)-1]
	return &ev
}

// CountMoney returns the number of money events of the given type.
func (m *MockPublisher) CountMoney(typ events.MoneyEventType) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, ev := range m.MoneyEvents {
		if ev.Type == typ {
			n++
		}
	}
	return n
}
