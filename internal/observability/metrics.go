package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu              sync.Mutex
	requestCount    map[string]int64
	errorCount      map[string]int64
	eventsPublished map[string]int64
	connsDropped    int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:    make(map[string]int64),
		errorCount:      make(map[string]int64),
		eventsPublished: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordEventPublished counts broadcast frames by event type.
func (m *Metrics) RecordEventPublished(eventType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsPublished[eventType]++
}

// RecordConnectionDropped counts connections removed for slow consumption.
func (m *Metrics) RecordConnectionDropped() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connsDropped++
}

// Snapshot returns copies of the counters for the diagnostics endpoint.
func (m *Metrics) Snapshot() (requests, errors, events map[string]int64, dropped int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	requests = copyCounters(m.requestCount)
	errors = copyCounters(m.errorCount)
	events = copyCounters(m.eventsPublished)
	return requests, errors, events, m.connsDropped
}

func copyCounters(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
