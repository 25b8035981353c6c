// Package poller refreshes scan summaries on a schedule.
//
// [Scheduler] fetches the country list and then every country's summary
// from a summary.Source, immediately on start and then every interval, with
// a bounded worker pool. Results are emitted on a channel for the caller to
// store. Panics raised by a source are recovered and reported with a
// correlation ID.
package poller
