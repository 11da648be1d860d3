package router

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"finelog/logging"
)

// Sink is a durable destination for routed records. Appends must be safe for
// concurrent use; implementations serialize their own writes.
type Sink interface {
	Append(ctx context.Context, record slog.Record) error
	Close() error
}

type rule struct {
	console bool
	sink    Sink
}

// Router fans records out to the upstream console handler and durable
// destinations according to per-severity rules. It implements slog.Handler;
// Handle never returns an error to the caller: destination failures are
// swallowed and surfaced only through Dropped.
type Router struct {
	// console is the upstream handler exactly as given; fallback delivery
	// goes through it directly so no level gate can sit in the way.
	console slog.Handler
	// leveled is console behind the optional console_level override and is
	// what the three severity rules forward to.
	leveled  slog.Handler
	fallback bool
	rules    map[slog.Level]rule
	sinks    []Sink
	attrs    []slog.Attr
	groups   []string
	dropped  *atomic.Uint64
}

// New builds a router from the given configuration. The console handler is
// the upstream logger records are forwarded to; it may be nil to disable
// console delivery entirely. Durable destinations open lazily on first
// append, so construction never fails on an unwritable path.
func New(console slog.Handler, cfg Config) *Router {
	leveled := console
	if cfg.ConsoleLevel != "" && console != nil {
		leveled = logging.LevelOverride(console, logging.ParseLevel(cfg.ConsoleLevel))
	}

	r := &Router{
		console:  console,
		leveled:  leveled,
		fallback: cfg.FallbackConsole,
		rules:    make(map[slog.Level]rule, 3),
		dropped:  new(atomic.Uint64),
	}

	for level, sc := range map[slog.Level]SinkConfig{
		slog.LevelInfo:  cfg.Info,
		slog.LevelWarn:  cfg.Warn,
		slog.LevelError: cfg.Error,
	} {
		target := rule{console: sc.Console}
		if sc.Durable() {
			var sink Sink
			if sc.Driver == DriverSQLite {
				sink = newSQLiteSink(sc.Destination)
			} else {
				sink = newFileSink(sc.Destination)
			}
			target.sink = sink
			r.sinks = append(r.sinks, sink)
		}
		r.rules[level] = target
	}

	return r
}

// Enabled accepts every level: routing, not filtering, is the router's job.
// Per-destination level decisions happen inside Handle.
func (r *Router) Enabled(context.Context, slog.Level) bool { return true }

// Handle routes one record. Records at the info, warn, or error ordinal
// follow that severity's rule; anything else falls back to console delivery
// unless fallback is disabled. Fallback bypasses the console level gate
// entirely, so unusual numeric severities reach the console even when they
// sit below its configured minimum. Each destination is attempted at most
// once, with no ordering guarantee between them; every record that ends up
// nowhere is counted in Dropped.
func (r *Router) Handle(ctx context.Context, record slog.Record) error {
	if len(r.attrs) > 0 {
		record = record.Clone()
		record.AddAttrs(r.attrs...)
	}

	target, ok := r.rules[record.Level]
	if !ok {
		if !r.fallback || r.console == nil {
			r.dropped.Add(1)
			return nil
		}
		if err := r.console.Handle(ctx, record); err != nil {
			r.dropped.Add(1)
		}
		return nil
	}

	if target.console && r.leveled != nil && r.leveled.Enabled(ctx, record.Level) {
		rec := record
		if target.sink != nil {
			rec = record.Clone()
		}
		if err := r.leveled.Handle(ctx, rec); err != nil {
			r.dropped.Add(1)
		}
	}
	if target.sink != nil {
		if err := target.sink.Append(ctx, record); err != nil {
			r.dropped.Add(1)
		}
	}
	return nil
}

// WithAttrs returns a router that stamps the given attributes onto every
// routed record. Sinks and the dropped counter are shared with the receiver.
func (r *Router) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return r
	}
	clone := r.clone()
	for _, attr := range attrs {
		clone.attrs = append(clone.attrs, qualify(r.groups, attr))
	}
	return clone
}

// WithGroup qualifies attributes added by later WithAttrs calls.
func (r *Router) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}
	clone := r.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (r *Router) clone() *Router {
	clone := &Router{
		console:  r.console,
		leveled:  r.leveled,
		fallback: r.fallback,
		rules:    r.rules,
		sinks:    r.sinks,
		dropped:  r.dropped,
	}
	clone.attrs = append([]slog.Attr(nil), r.attrs...)
	clone.groups = append([]string(nil), r.groups...)
	return clone
}

func qualify(groups []string, attr slog.Attr) slog.Attr {
	for i := len(groups) - 1; i >= 0; i-- {
		attr = slog.Attr{Key: groups[i], Value: slog.GroupValue(attr)}
	}
	return attr
}

// Dropped reports how many deliveries have been swallowed so far.
func (r *Router) Dropped() uint64 {
	return r.dropped.Load()
}

// Close releases every durable destination. Safe to call once per router
// family; clones produced by WithAttrs/WithGroup share the same sinks.
func (r *Router) Close() error {
	var errs []error
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
