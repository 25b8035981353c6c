// Package source provides summary.Source implementations.
//
// [Postgres] reads the summary table the scanner writes. [HTTP] reads a JSON
// feed, and [Demo] generates stable random data for local runs.
package source
