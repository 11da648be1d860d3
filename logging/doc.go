// Package logging assembles the slog handler stack that finelog emitters and
// routers write into.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and defines the standardized attribute keys (module, group,
// option, session_id) that the verbosity emitter stamps onto every record. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail, a tee handler for mirroring output, and a level-override wrapper for
// tightening a single consumer without rebuilding the stack.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape and routing guarantees.
package logging
