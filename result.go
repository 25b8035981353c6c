package scanboard

import (
	"time"

	"github.com/jpalmerr/scanboard/internal/summary"
)

// Source provides the country list and per-country scan summaries.
//
// Implementations are called concurrently from the refresh worker pool and
// must be safe for concurrent use. A panicking source is recovered; the
// refresh is reported as failed with a correlation ID and the full stack
// trace is logged server-side.
type Source = summary.Source

// Summary is the latest scan summary for one country.
type Summary = summary.Summary

// Sample is one day of scan history.
type Sample = summary.Sample

// Category names an "identified" breakdown.
type Category = summary.Category

// ErrUnknownCountry is returned by sources asked for a country they have
// no data for.
var ErrUnknownCountry = summary.ErrUnknownCountry

// RefreshResult holds the outcome of one source call.
//
// A country list refresh has an empty Country and carries Countries. A
// summary refresh carries Country and, when it succeeded, Summary.
type RefreshResult struct {
	// Country is the refreshed country code. Empty for country list refreshes.
	Country string

	// Countries is the refreshed country list.
	Countries []string

	// Summary is the refreshed summary. nil when the refresh failed or for
	// country list refreshes. It shares maps with the dashboard's copy and
	// must not be modified.
	Summary *Summary

	// Latency is the duration of the source call.
	Latency time.Duration

	// RefreshedAt is when the call completed.
	RefreshedAt time.Time

	// Err is the error returned by the source, or a recovered panic.
	Err error
}
