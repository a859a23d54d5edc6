package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/geo"
	internalRedis "github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/redis"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/routing"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is an in-memory RideRepository. Every Mark* method
// applies its state condition under the mutex, so concurrent callers
// race exactly the way they do against the conditional UPDATEs in
// Postgres.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount       int32
	MarkAcceptedCallCount int32

	// Error injection
	CreateError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{rides: make(map[string]*domain.Ride)}
}

// AddRide seeds a ride.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

// GetRide returns the stored ride for test assertions.
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
	copied := *ride
	m.rides[ride.ID] = &copied
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *ride
	return &copied, nil
}

func (m *MockRideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	return m.GetByID(ctx, id)
}

func (m *MockRideRepository) GetActiveByPassenger(ctx context.Context, passengerID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ride := range m.rides {
		if ride.PassengerID == passengerID && ride.IsActive() {
			copied := *ride
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRideRepository) GetActiveByDriver(ctx context.Context, driverID string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ride := range m.rides {
		if ride.DriverID == driverID && ride.IsActive() && ride.Status != domain.RideStatusPending {
			copied := *ride
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRideRepository) MarkAccepted(ctx context.Context, rideID, driverID string, at time.Time) error {
	atomic.AddInt32(&m.MarkAcceptedCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusPending || ride.DriverID != "" {
		return repository.ErrConflict
	}
	ride.Status = domain.RideStatusAccepted
	ride.DriverID = driverID
	ride.AcceptedAt = at
	return nil
}

func (m *MockRideRepository) MarkArrived(ctx context.Context, rideID string, at time.Time, pickupDurationSec int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusAccepted {
		return repository.ErrConflict
	}
	ride.Status = domain.RideStatusArrived
	ride.ArrivedAt = at
	ride.PickupDurationSec = pickupDurationSec
	return nil
}

func (m *MockRideRepository) MarkStarted(ctx context.Context, rideID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusArrived {
		return repository.ErrConflict
	}
	ride.Status = domain.RideStatusInProgress
	ride.StartedAt = at
	return nil
}

func (m *MockRideRepository) MarkCompleted(ctx context.Context, rideID string, at time.Time, finalFare float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.Status != domain.RideStatusInProgress && ride.Status != domain.RideStatusArrived {
		return repository.ErrConflict
	}
	ride.Status = domain.RideStatusCompleted
	ride.CompletedAt = at
	ride.FinalFare = finalFare
	return nil
}

func (m *MockRideRepository) MarkCancelled(ctx context.Context, rideID string, by domain.CancelActor, reason, note string, at time.Time, fare float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	if ride.IsTerminal() {
		return repository.ErrConflict
	}
	ride.Status = domain.RideStatusCancelled
	ride.CancelledBy = by
	ride.CancelReason = reason
	ride.CancelNote = note
	ride.CancelledAt = at
	if fare >= 0 {
		ride.FinalFare = fare
	}
	return nil
}

func (m *MockRideRepository) SetSOS(ctx context.Context, rideID string, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	ride.SOS = on
	return nil
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is an in-memory DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	SetAvailabilityCallCount int32
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{drivers: make(map[string]*domain.Driver)}
}

// AddDriver seeds a driver.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

// GetDriver returns the stored driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *driver
	m.drivers[driver.ID] = &copied
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *driver
	if driver.Location != nil {
		loc := *driver.Location
		copied.Location = &loc
	}
	return &copied, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copied := *d
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) UpdateLocation(ctx context.Context, id string, loc domain.LatLng) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Location = &loc
	return nil
}

func (m *MockDriverRepository) SetAvailability(ctx context.Context, id string, available bool, at time.Time) error {
	atomic.AddInt32(&m.SetAvailabilityCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Available = available
	if available {
		driver.ActiveAt = at
	} else {
		driver.InactiveAt = at
	}
	return nil
}

func (m *MockDriverRepository) SetScanningRange(ctx context.Context, id string, radiusKm float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.ScanningRangeKm = radiusKm
	return nil
}

// ──────────────────────────────────────────────
// MOCK SESSION REPOSITORY
// ──────────────────────────────────────────────

// MockSessionRepository is an in-memory SessionRepository.
type MockSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ActiveDuration
}

// NewMockSessionRepository creates a new mock session repository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[string]*domain.ActiveDuration)}
}

// AddSession seeds a session.
func (m *MockSessionRepository) AddSession(session *domain.ActiveDuration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

// GetSession returns the stored session for test assertions.
func (m *MockSessionRepository) GetSession(id string) *domain.ActiveDuration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// OpenSessionCount counts the driver's open sessions.
func (m *MockSessionRepository) OpenSessionCount(driverID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.DriverID == driverID && s.InactiveAt == nil {
			count++
		}
	}
	return count
}

func (m *MockSessionRepository) Open(ctx context.Context, session *domain.ActiveDuration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *MockSessionRepository) GetOpenByDriver(ctx context.Context, driverID string) (*domain.ActiveDuration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.ActiveDuration
	for _, s := range m.sessions {
		if s.DriverID == driverID && s.InactiveAt == nil {
			if latest == nil || s.ActiveAt.After(latest.ActiveAt) {
				latest = s
			}
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (m *MockSessionRepository) Close(ctx context.Context, sessionID string, at time.Time, durationSeconds int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok || session.InactiveAt != nil {
		return repository.ErrNotFound
	}
	closedAt := at
	session.InactiveAt = &closedAt
	session.DurationSeconds = durationSeconds
	return nil
}

func (m *MockSessionRepository) CloseAllOpenForDriver(ctx context.Context, driverID string, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	closed := 0
	for _, s := range m.sessions {
		if s.DriverID == driverID && s.InactiveAt == nil {
			closedAt := at
			s.InactiveAt = &closedAt
			s.DurationSeconds = int64(at.Sub(s.ActiveAt).Seconds())
			closed++
		}
	}
	return closed, nil
}

func (m *MockSessionRepository) FindOpenOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.ActiveDuration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.ActiveDuration
	for _, s := range m.sessions {
		if s.InactiveAt == nil && s.ActiveAt.Before(cutoff) {
			copied := *s
			result = append(result, &copied)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK EXCLUSION REPOSITORIES
// ──────────────────────────────────────────────

// MockDeclineRepository is an in-memory DeclineRepository.
type MockDeclineRepository struct {
	mu       sync.RWMutex
	declines map[string]map[string]bool // driverID -> rideID set

	RecordCallCount int32
}

// NewMockDeclineRepository creates a new mock decline repository.
func NewMockDeclineRepository() *MockDeclineRepository {
	return &MockDeclineRepository{declines: make(map[string]map[string]bool)}
}

func (m *MockDeclineRepository) Record(ctx context.Context, decline *domain.RideDecline) error {
	atomic.AddInt32(&m.RecordCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.declines[decline.DriverID]
	if !ok {
		set = make(map[string]bool)
		m.declines[decline.DriverID] = set
	}
	set[decline.RideID] = true
	return nil
}

func (m *MockDeclineRepository) DeclinedRideIDs(ctx context.Context, driverID string) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]bool, len(m.declines[driverID]))
	for id := range m.declines[driverID] {
		result[id] = true
	}
	return result, nil
}

// MockBlockRepository is an in-memory BlockRepository.
type MockBlockRepository struct {
	mu     sync.RWMutex
	blocks map[string]map[string]bool // driverID -> passengerID set
}

// NewMockBlockRepository creates a new mock block repository.
func NewMockBlockRepository() *MockBlockRepository {
	return &MockBlockRepository{blocks: make(map[string]map[string]bool)}
}

func (m *MockBlockRepository) Create(ctx context.Context, block *domain.BlockedPassenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.blocks[block.DriverID]
	if !ok {
		set = make(map[string]bool)
		m.blocks[block.DriverID] = set
	}
	set[block.PassengerID] = true
	return nil
}

func (m *MockBlockRepository) BlockedPassengerIDs(ctx context.Context, driverID string) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]bool, len(m.blocks[driverID]))
	for id := range m.blocks[driverID] {
		result[id] = true
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK PAYMENT AND NOTIFICATION REPOSITORIES
// ──────────────────────────────────────────────

// MockPaymentRepository is an in-memory PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	captures map[string]*domain.PaymentCapture // by capture ID
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{captures: make(map[string]*domain.PaymentCapture)}
}

func (m *MockPaymentRepository) Create(ctx context.Context, capture *domain.PaymentCapture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *capture
	m.captures[capture.ID] = &copied
	return nil
}

func (m *MockPaymentRepository) GetByRideID(ctx context.Context, rideID string) (*domain.PaymentCapture, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.captures {
		if c.RideID == rideID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.CaptureStatus, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	capture, ok := m.captures[id]
	if !ok {
		return repository.ErrNotFound
	}
	capture.Status = status
	capture.IntentID = intentID
	return nil
}

// MockNotificationRepository is an in-memory NotificationRepository.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification
}

// NewMockNotificationRepository creates a new mock notification repository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *n
	m.notifications = append(m.notifications, &copied)
	return nil
}

func (m *MockNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for i := len(m.notifications) - 1; i >= 0 && len(result) < limit; i-- {
		if m.notifications[i].RecipientID == recipientID {
			copied := *m.notifications[i]
			result = append(result, &copied)
		}
	}
	return result, nil
}

// ForRecipient returns delivered notifications for assertions.
func (m *MockNotificationRepository) ForRecipient(recipientID string) []*domain.Notification {
	result, _ := m.ListByRecipient(context.Background(), recipientID, 100)
	return result
}

// ──────────────────────────────────────────────
// MOCK PASSENGER REPOSITORY
// ──────────────────────────────────────────────

// MockPassengerRepository is an in-memory PassengerRepository.
type MockPassengerRepository struct {
	mu         sync.RWMutex
	passengers map[string]*domain.Passenger
}

// NewMockPassengerRepository creates a new mock passenger repository.
func NewMockPassengerRepository() *MockPassengerRepository {
	return &MockPassengerRepository{passengers: make(map[string]*domain.Passenger)}
}

func (m *MockPassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *passenger
	m.passengers[passenger.ID] = &copied
	return nil
}

func (m *MockPassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	passenger, ok := m.passengers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *passenger
	return &copied, nil
}

func (m *MockPassengerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.passengers {
		if p.Phone == phone {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ──────────────────────────────────────────────
// MOCK TX RUNNER
// ──────────────────────────────────────────────

// MockTxRunner passes the same in-memory repositories into the
// transactional closure. The mocks apply their conditions atomically,
// which preserves the arbitration semantics under concurrency.
type MockTxRunner struct {
	Rides    *MockRideRepository
	Drivers  *MockDriverRepository
	Sessions *MockSessionRepository

	RunCallCount int32
}

func (m *MockTxRunner) RunInTx(ctx context.Context, fn func(r repository.Repos) error) error {
	atomic.AddInt32(&m.RunCallCount, 1)
	return fn(repository.Repos{
		Rides:    m.Rides,
		Drivers:  m.Drivers,
		Sessions: m.Sessions,
	})
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE AND GEO INDEX
// ──────────────────────────────────────────────

// MockLockStore is an in-memory LockStoreInterface with real mutual
// exclusion per ride.
type MockLockStore struct {
	mu    sync.Mutex
	held  map[string]bool

	AcquireCallCount int32
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{held: make(map[string]bool)}
}

func (m *MockLockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[rideID] {
		return false, nil
	}
	m.held[rideID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, rideID)
	return nil
}

// MockGeoIndex is an in-memory PendingRideIndexInterface that answers
// Nearby with real haversine distances.
type MockGeoIndex struct {
	mu      sync.RWMutex
	entries map[string]domain.LatLng

	RemoveCallCount int32
}

// NewMockGeoIndex creates a new mock geo index.
func NewMockGeoIndex() *MockGeoIndex {
	return &MockGeoIndex{entries: make(map[string]domain.LatLng)}
}

// Contains reports whether a ride is indexed.
func (m *MockGeoIndex) Contains(rideID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[rideID]
	return ok
}

func (m *MockGeoIndex) Add(ctx context.Context, rideID string, origin domain.LatLng) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[rideID] = origin
	return nil
}

func (m *MockGeoIndex) Remove(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.RemoveCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, rideID)
	return nil
}

func (m *MockGeoIndex) Nearby(ctx context.Context, point domain.LatLng, radiusKm float64, limit int) ([]internalRedis.RideDistance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []internalRedis.RideDistance
	for rideID, origin := range m.entries {
		dist := geo.HaversineKm(point, origin)
		if dist <= radiusKm {
			result = append(result, internalRedis.RideDistance{
				RideID:     rideID,
				Origin:     origin,
				DistanceKm: dist,
			})
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK ROUTING
// ──────────────────────────────────────────────

// MockRouteService returns a fixed route.
type MockRouteService struct {
	Route *routing.RouteInfo
	Err   error
}

func (m *MockRouteService) GetRouteInfo(ctx context.Context, origin, dest domain.LatLng) (*routing.RouteInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Route != nil {
		return m.Route, nil
	}
	return &routing.RouteInfo{DistanceKm: geo.HaversineKm(origin, dest), DurationMin: 10}, nil
}

// MockGeocoder returns a fixed address.
type MockGeocoder struct {
	Address string
	Err     error
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, point domain.LatLng) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Address, nil
}

// ──────────────────────────────────────────────
// MOCK PUBLISHER AND PAYMENT GATEWAY
// ──────────────────────────────────────────────

// MockPublisher records published events by topic.
type MockPublisher struct {
	mu     sync.Mutex
	events map[string][]any
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{events: make(map[string][]any)}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[topic] = append(m.events[topic], payload)
	return nil
}

// EventCount returns how many events a topic received.
func (m *MockPublisher) EventCount(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events[topic])
}

// MockGateway records capture attempts.
type MockGateway struct {
	mu       sync.Mutex
	captured []float64
	Err      error
}

func (m *MockGateway) Capture(amount float64, currency, rideID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.captured = append(m.captured, amount)
	return "pi_test_" + rideID, nil
}

// CaptureCount returns how many captures succeeded.
func (m *MockGateway) CaptureCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.captured)
}
