// Package server serves the dashboard pages, the JSON API, chart images,
// and the SSE stream of refresh results.
//
// Pages are html/template files from the embedded dashboard assets. Chart
// configurations are built per request from the stored summary, so theme
// changes apply on the next page load.
package server
