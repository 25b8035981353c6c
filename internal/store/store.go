package store

import (
	"time"

	"github.com/jpalmerr/scanboard/internal/summary"
)

// Entry is the latest refresh outcome for one country.
//
// Entry is what the REST API and SSE stream serialize. A failed refresh
// keeps the previous summary and sets Error.
type Entry struct {
	// Country is the upper-case country code.
	Country string `json:"country"`

	// Summary is the last successfully fetched summary.
	Summary summary.Summary `json:"summary"`

	// Error contains the message of the last failed refresh.
	// nil indicates the last refresh succeeded.
	Error *string `json:"error"`

	// RefreshedAt is the time of the last refresh attempt.
	RefreshedAt time.Time `json:"refreshed_at"`

	// LatencyMs is the duration of the last refresh in milliseconds.
	LatencyMs int64 `json:"latency_ms"`
}

// Store defines storage and subscription for country entries.
//
// Implementations must be safe for concurrent access.
type Store interface {
	// Update stores an entry keyed by Country and notifies all subscribers.
	Update(entry Entry)

	// Get returns the entry for a country.
	Get(country string) (Entry, bool)

	// GetAll returns a snapshot of all entries sorted by country.
	GetAll() []Entry

	// SetCountries replaces the list of known country codes.
	SetCountries(codes []string)

	// Countries returns the known country codes. ok is false until the list
	// has been set at least once.
	Countries() (codes []string, ok bool)

	// Subscribe returns a buffered channel that receives updates.
	// Slow consumers may miss updates. Callers must Unsubscribe when done.
	Subscribe() <-chan Entry

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Entry)
}
