package tests

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK ORDER REPOSITORY
// ──────────────────────────────────────────────

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
	GetError    error
}

// NewMockOrderRepository creates a new mock order repository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

// AddOrder adds an order to the mock repository.
func (m *MockOrderRepository) AddOrder(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *order
	return &copy, nil
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	return m.GetByID(ctx, id)
}

func (m *MockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Order
	for _, o := range m.orders {
		if filter.UserID != 0 && o.UserID != filter.UserID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, o.Status) {
			continue
		}
		if len(filter.Types) > 0 && !containsType(filter.Types, o.OrderType) {
			continue
		}
		copy := *o
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[order.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *order
	m.orders[order.ID] = &copy
	return nil
}

// GetOrder returns the stored order for test assertions.
func (m *MockOrderRepository) GetOrder(id string) *domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[id]
}

func containsStatus(statuses []domain.OrderStatus, s domain.OrderStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

func containsType(types []domain.OrderType, t domain.OrderType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32
	DeductCallCount       int32

	// Error injection
	CreateError error
	DeductError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

func (m *MockDriverRepository) DeductAmount(ctx context.Context, id string, amount int64) (int64, error) {
	atomic.AddInt32(&m.DeductCallCount, 1)
	if m.DeductError != nil {
		return 0, m.DeductError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	driver.Amount -= amount
	return driver.Amount, nil
}

// GetDriver returns the stored driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK LEDGER REPOSITORY
// ──────────────────────────────────────────────

// MockLedgerRepository is a mock implementation of
// DriverTransactionRepository.
type MockLedgerRepository struct {
	mu      sync.RWMutex
	entries []*domain.DriverTransaction

	CreateCallCount int32
	CreateError     error
}

// NewMockLedgerRepository creates a new mock ledger repository.
func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{}
}

func (m *MockLedgerRepository) Create(ctx context.Context, tx *domain.DriverTransaction) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *tx
	m.entries = append(m.entries, &copy)
	return nil
}

func (m *MockLedgerRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.DriverTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.DriverTransaction
	for _, e := range m.entries {
		if e.DriverID == driverID {
			copy := *e
			result = append(result, &copy)
		}
	}
	return result, nil
}

// Entries returns all recorded entries for test assertions.
func (m *MockLedgerRepository) Entries() []*domain.DriverTransaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.DriverTransaction, len(m.entries))
	copy(result, m.entries)
	return result
}

// ──────────────────────────────────────────────
// MOCK TRAVEL REQUEST REPOSITORY
// ──────────────────────────────────────────────

// MockTravelRepository is a mock implementation of TravelRequestRepository.
type MockTravelRepository struct {
	mu         sync.RWMutex
	travels    map[string]*domain.Travel
	deliveries map[string]*domain.Delivery
}

// NewMockTravelRepository creates a new mock travel request repository.
func NewMockTravelRepository() *MockTravelRepository {
	return &MockTravelRepository{
		travels:    make(map[string]*domain.Travel),
		deliveries: make(map[string]*domain.Delivery),
	}
}

// AddTravel adds a travel request to the mock repository.
func (m *MockTravelRepository) AddTravel(t *domain.Travel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.travels[t.ID] = t
}

// AddDelivery adds a delivery request to the mock repository.
func (m *MockTravelRepository) AddDelivery(d *domain.Delivery) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[d.ID] = d
}

func (m *MockTravelRepository) CreateTravel(ctx context.Context, t *domain.Travel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.travels[t.ID] = t
	return nil
}

func (m *MockTravelRepository) CreateDelivery(ctx context.Context, d *domain.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[d.ID] = d
	return nil
}

func (m *MockTravelRepository) GetTravel(ctx context.Context, id string) (*domain.Travel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.travels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *t
	return &copy, nil
}

func (m *MockTravelRepository) GetDelivery(ctx context.Context, id string) (*domain.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.deliveries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *d
	return &copy, nil
}

func (m *MockTravelRepository) GetByRef(ctx context.Context, kind domain.TravelRequestKind, id string) (domain.TravelRequest, error) {
	if kind == domain.KindDelivery {
		return m.GetDelivery(ctx, id)
	}
	return m.GetTravel(ctx, id)
}

func (m *MockTravelRepository) UpdateTravel(ctx context.Context, t *domain.Travel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.travels[t.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *t
	m.travels[t.ID] = &copy
	return nil
}

func (m *MockTravelRepository) ListByUser(ctx context.Context, kind domain.TravelRequestKind, userID int64) ([]domain.TravelRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []domain.TravelRequest
	if kind == domain.KindDelivery {
		for _, d := range m.deliveries {
			if d.UserID == userID {
				copy := *d
				result = append(result, &copy)
			}
		}
		return result, nil
	}
	for _, t := range m.travels {
		if t.UserID == userID {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK PASSENGER REPOSITORY
// ──────────────────────────────────────────────

// MockPassengerRepository is a mock implementation of PassengerRepository.
type MockPassengerRepository struct {
	mu         sync.RWMutex
	passengers map[int64]*domain.Passenger
}

// NewMockPassengerRepository creates a new mock passenger repository.
func NewMockPassengerRepository() *MockPassengerRepository {
	return &MockPassengerRepository{
		passengers: make(map[int64]*domain.Passenger),
	}
}

// AddPassenger adds a passenger to the mock repository.
func (m *MockPassengerRepository) AddPassenger(p *domain.Passenger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers[p.TelegramID] = p
}

func (m *MockPassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passengers[p.TelegramID] = p
	return nil
}

func (m *MockPassengerRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Passenger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.passengers[telegramID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK CITY REPOSITORY
// ──────────────────────────────────────────────

// MockCityRepository is a mock implementation of CityRepository.
type MockCityRepository struct {
	mu     sync.RWMutex
	cities map[string]*domain.City
}

// NewMockCityRepository creates a new mock city repository.
func NewMockCityRepository() *MockCityRepository {
	return &MockCityRepository{
		cities: make(map[string]*domain.City),
	}
}

// AddCity adds a city to the mock repository.
func (m *MockCityRepository) AddCity(c *domain.City) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cities[c.Title] = c
}

func (m *MockCityRepository) Create(ctx context.Context, c *domain.City) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cities[c.Title] = c
	return nil
}

func (m *MockCityRepository) GetByTitle(ctx context.Context, title string) (*domain.City, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.cities {
		if strings.EqualFold(c.Title, title) {
			copy := *c
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockCityRepository) ListAllowed(ctx context.Context) ([]*domain.City, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.City
	for _, c := range m.cities {
		if c.IsAllowed {
			copy := *c
			result = append(result, &copy)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION QUEUE
// ──────────────────────────────────────────────

// MockNotificationQueue is an in-memory implementation of the notification
// queue with the same dedup semantics as the Redis one.
type MockNotificationQueue struct {
	mu   sync.Mutex
	jobs []*redis.NotificationJob
	dead []*redis.NotificationJob
	seen map[string]bool
	seq  map[string]int64

	PushErr       error
	PushCallCount int32
}

// NewMockNotificationQueue creates a new mock notification queue.
func NewMockNotificationQueue() *MockNotificationQueue {
	return &MockNotificationQueue{
		seen: make(map[string]bool),
		seq:  make(map[string]int64),
	}
}

func (m *MockNotificationQueue) Push(ctx context.Context, job *redis.NotificationJob) (bool, error) {
	atomic.AddInt32(&m.PushCallCount, 1)
	if m.PushErr != nil {
		return false, m.PushErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := job.IdempotencyKey()
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	m.seq[job.OrderID]++
	job.Seq = m.seq[job.OrderID]
	job.EnqueuedAt = time.Now()
	m.jobs = append(m.jobs, job)
	return true, nil
}

func (m *MockNotificationQueue) Pop(ctx context.Context, timeout time.Duration) (*redis.NotificationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.jobs) == 0 {
		return nil, nil
	}
	job := m.jobs[0]
	m.jobs = m.jobs[1:]
	return job, nil
}

func (m *MockNotificationQueue) DeadLetter(ctx context.Context, job *redis.NotificationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dead = append(m.dead, job)
	return nil
}

// Jobs returns the queued jobs for test assertions.
func (m *MockNotificationQueue) Jobs() []*redis.NotificationJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*redis.NotificationJob, len(m.jobs))
	copy(result, m.jobs)
	return result
}

// Dead returns the dead-lettered jobs for test assertions.
func (m *MockNotificationQueue) Dead() []*redis.NotificationJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*redis.NotificationJob, len(m.dead))
	copy(result, m.dead)
	return result
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of the order delivery lock.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[orderID] {
		return false, nil
	}
	m.locks[orderID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseOrderLock(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, orderID)
	return nil
}
