// Package devtools exposes a running engine for inspection.
//
// The server publishes Prometheus metrics, JSON engine snapshots, and a
// WebSocket stream of engine lifecycle events (flushes, fatal aborts):
//
//	dt := devtools.New()
//	eng := reactive.New(
//	    reactive.WithMetrics(reactive.NewMetrics()),
//	    reactive.WithEventSink(dt.Sink("main")),
//	)
//	dt.Register("main", eng)
//	go dt.Serve(ctx, ":6900")
//
// Endpoints:
//
//	GET /metrics  - Prometheus metrics
//	GET /engines  - per-engine counter snapshots
//	GET /ws       - JSON event stream
package devtools
