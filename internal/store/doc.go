// Package store keeps the latest summary per country in memory and fans
// updates out to subscribers.
//
// The main components are:
//
//   - [Store]: storage and subscription operations
//   - [MemoryStore]: in-memory implementation with pub/sub
//   - [Entry]: the latest refresh outcome for one country
//
// Subscribers receive updates via channels with non-blocking sends, so a
// slow SSE client misses updates rather than stalling refreshes.
package store
