// Package trace records what the keel pipeline is doing.
//
// Events are grouped into spans. A span has a scope, from the whole driver run
// down to a single binding, and the tracer's Level decides which scopes are
// kept:
//
//   - LevelPhase: driver and pass spans (declare, check, specialize, finalize)
//   - LevelDetail: per-module spans
//   - LevelDebug: per-binding spans
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "check")
//	defer span.End("")
//
// A stream tracer writes every event as it arrives. A ring tracer keeps the
// most recent events in memory so they can be dumped after a failure.
package trace
