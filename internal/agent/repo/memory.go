package repo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/wismo-agent/server/internal/agent/model"
	errx "github.com/wismo-agent/server/internal/core/error"
)

// In-memory repository implementations. They back the evaluation harness and
// tests so the pipeline can run hermetically, and they mirror the not-found
// semantics of the Redis implementations.

type MemoryOrders struct {
	mu     sync.RWMutex
	orders map[string]model.Order
}

func NewMemoryOrders() *MemoryOrders {
	return &MemoryOrders{orders: make(map[string]model.Order)}
}

func (m *MemoryOrders) Get(ctx context.Context, orderID string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, errx.NotFound(nil, errx.RedisNotFoundMessage)
	}
	return &o, nil
}

func (m *MemoryOrders) Put(ctx context.Context, order *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.OrderID] = *order
	return nil
}

type MemoryShipments struct {
	mu        sync.RWMutex
	shipments map[string]model.Shipment
}

func NewMemoryShipments() *MemoryShipments {
	return &MemoryShipments{shipments: make(map[string]model.Shipment)}
}

func (m *MemoryShipments) Get(ctx context.Context, trackingID string) (*model.Shipment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shipments[trackingID]
	if !ok {
		return nil, errx.NotFound(nil, errx.RedisNotFoundMessage)
	}
	out := s
	out.Timeline = append([]model.TrackingEvent{}, s.Timeline...)
	return &out, nil
}

func (m *MemoryShipments) Put(ctx context.Context, shipment *model.Shipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *shipment
	s.Timeline = append([]model.TrackingEvent{}, shipment.Timeline...)
	m.shipments[shipment.TrackingID] = s
	return nil
}

type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	messages map[string][]model.SessionMessage
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{
		sessions: make(map[string]model.Session),
		messages: make(map[string][]model.SessionMessage),
	}
}

func (m *MemorySessions) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, errx.NotFound(nil, errx.RedisNotFoundMessage)
	}
	out := s
	out.MissingFields = append([]string{}, s.MissingFields...)
	return &out, nil
}

func (m *MemorySessions) Save(ctx context.Context, session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *session
	s.MissingFields = append([]string{}, session.MissingFields...)
	m.sessions[session.SessionID] = s
	return nil
}

func (m *MemorySessions) AppendMessage(ctx context.Context, sessionID string, msg model.SessionMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[sessionID] = append(m.messages[sessionID], msg)
	return nil
}

func (m *MemorySessions) Messages(ctx context.Context, sessionID string) ([]model.SessionMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.SessionMessage{}, m.messages[sessionID]...), nil
}

type MemoryCases struct {
	mu    sync.RWMutex
	cases map[string]model.Case
}

func NewMemoryCases() *MemoryCases {
	return &MemoryCases{cases: make(map[string]model.Case)}
}

func (m *MemoryCases) Create(ctx context.Context, c *model.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases[c.CaseID] = *c
	return nil
}

func (m *MemoryCases) Get(ctx context.Context, caseID string) (*model.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cases[caseID]
	if !ok {
		return nil, errx.NotFound(nil, errx.RedisNotFoundMessage)
	}
	return &c, nil
}

func (m *MemoryCases) CountRecentByEmail(ctx context.Context, email string, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, c := range m.cases {
		if !strings.EqualFold(c.Email, email) {
			continue
		}
		if c.CreatedAt.Before(since) {
			continue
		}
		count++
	}
	return count, nil
}

type MemoryActionLogs struct {
	mu      sync.RWMutex
	entries map[string][]model.ActionLogEntry
}

func NewMemoryActionLogs() *MemoryActionLogs {
	return &MemoryActionLogs{entries: make(map[string][]model.ActionLogEntry)}
}

func (m *MemoryActionLogs) Append(ctx context.Context, entry model.ActionLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.SessionID] = append(m.entries[entry.SessionID], entry)
	return nil
}

// Entries returns the audit trail recorded for a session.
func (m *MemoryActionLogs) Entries(sessionID string) []model.ActionLogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.ActionLogEntry{}, m.entries[sessionID]...)
}

// MemoryRateLimiter mirrors the Redis fixed-window limiter.
type MemoryRateLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
	now    func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{counts: make(map[string]int64), now: time.Now}
}

func (m *MemoryRateLimiter) Allow(ctx context.Context, apiKey, ip string, limitPerMinute int) (*model.RateLimitResult, error) {
	bucket := m.now().UTC().Format(bucketLayout)
	key := apiKey + ":" + ip + ":" + bucket

	m.mu.Lock()
	m.counts[key]++
	count := m.counts[key]
	m.mu.Unlock()

	return &model.RateLimitResult{
		Allowed: count <= int64(limitPerMinute),
		Count:   count,
		Limit:   limitPerMinute,
		Bucket:  bucket,
	}, nil
}

var (
	_ model.OrderRepository     = (*MemoryOrders)(nil)
	_ model.ShipmentRepository  = (*MemoryShipments)(nil)
	_ model.SessionRepository   = (*MemorySessions)(nil)
	_ model.CaseRepository      = (*MemoryCases)(nil)
	_ model.ActionLogRepository = (*MemoryActionLogs)(nil)
	_ model.RateLimiter         = (*MemoryRateLimiter)(nil)
)
