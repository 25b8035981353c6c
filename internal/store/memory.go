package store

import (
	"sort"
	"sync"

	"github.com/jpalmerr/scanboard/internal/summary"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Subscribers receive updates via buffered channels. Sends are non-blocking;
// if a subscriber's buffer is full the update is dropped for that subscriber.
type MemoryStore struct {
	mu           sync.RWMutex
	entries      map[string]Entry
	countries    []string
	countriesSet bool

	subMu       sync.RWMutex
	subscribers map[chan Entry]struct{}
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:     make(map[string]Entry),
		subscribers: make(map[chan Entry]struct{}),
	}
}

// Update stores an entry and notifies all subscribers.
func (m *MemoryStore) Update(entry Entry) {
	entry.Country = summary.NormalizeCountry(entry.Country)

	m.mu.Lock()
	m.entries[entry.Country] = entry
	m.mu.Unlock()

	m.notifySubscribers(entry)
}

// Get returns the entry for a country, matched case-insensitively.
func (m *MemoryStore) Get(country string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[summary.NormalizeCountry(country)]
	return entry, ok
}

// GetAll returns a snapshot of all entries sorted by country.
func (m *MemoryStore) GetAll() []Entry {
	m.mu.RLock()
	entries := make([]Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, entry)
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Country < entries[j].Country
	})
	return entries
}

// SetCountries replaces the known country codes. Entries for countries no
// longer listed are dropped.
func (m *MemoryStore) SetCountries(codes []string) {
	normalized := make([]string, 0, len(codes))
	keep := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		c = summary.NormalizeCountry(c)
		if c == "" {
			continue
		}
		if _, dup := keep[c]; dup {
			continue
		}
		keep[c] = struct{}{}
		normalized = append(normalized, c)
	}
	sort.Strings(normalized)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.countries = normalized
	m.countriesSet = true
	for c := range m.entries {
		if _, ok := keep[c]; !ok {
			delete(m.entries, c)
		}
	}
}

// Countries returns a copy of the known country codes.
func (m *MemoryStore) Countries() ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.countries...), m.countriesSet
}

// Subscribe creates a subscription with a buffer of 100 entries.
//
// Callers must call [MemoryStore.Unsubscribe] when done.
func (m *MemoryStore) Subscribe() <-chan Entry {
	ch := make(chan Entry, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Entry) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (m *MemoryStore) notifySubscribers(entry Entry) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- entry:
		default:
			// subscriber is slow, drop the update
		}
	}
}
