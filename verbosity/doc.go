// Package verbosity lets library authors expose independently tunable logging
// categories without writing a severity check at every call site.
//
// A user aggregate (a Specifier) names groups of options and binds each
// option to a Severity. Emission calls name the group and option; the
// resolver maps the bound severity to an action (skip, emit at a level, or
// run a custom callback) and the emitter realizes the message and forwards it
// to an explicitly passed slog handle. Messages can arrive as zero-argument
// producers, which never run for disabled specifiers or suppressed
// categories.
//
// Resolution and emission are stateless over immutable specifier data, so
// concurrent use needs no locking. Live reconfiguration should replace a Spec
// via WithSeverity rather than mutate one in place under concurrent readers.
package verbosity
