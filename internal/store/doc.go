// Package store provides a SQLite-backed cache of decoded series.
//
// Decoding a large event log is the slow part of rendering a figure, and the
// same logs are read on every plot run. The store keeps each decoded series
// keyed by the event log's path, size, modification time and tag, so a log
// that is still being written, or was replaced, is decoded again.
//
// The store is a cache, not a record of anything: event logs remain the only
// source of data. It is optional (enabled by CURVES_CACHE or --cache), a
// failed read or write only costs a decode, and deleting the database file
// changes nothing but load time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Entries are addressed by a SHA-256 key ID with domain separation; see
// KeyID.
package store
