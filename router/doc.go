// Package router fans emitted log records out to console and durable
// destinations per severity.
//
// A Router is a slog.Handler: records arriving at the info, warn, or error
// ordinal follow that severity's configured rule (forward to the upstream
// console handler, append to a durable destination, or both); records at any
// other ordinal fall back to console delivery so unusual numeric severities
// are never silently dropped. Durable destinations are append-only files or
// sqlite databases, each with its own serialized writer. A destination
// failure is recovered locally: it never reaches the caller, never blocks the
// other destination, and is only visible through the Dropped counter.
//
// Configuration loads from TOML with the defaults/normalize/validate split
// used across finelog; see the embedded sample config.
package router
