// Package debug serves a read-only view of a running application over HTTP.
//
// Routes:
//
//	GET /health        liveness
//	GET /frames        recent frame reports, oldest first
//	GET /invalidation  dirty layout nodes and invalidation metrics
//	GET /metrics       Prometheus exposition
//	GET /ws            live stream of frame reports as JSON text messages
//
// A Server is an app.FrameSink; pass it to app.WithSink so the driver
// publishes every non-idle frame to it.
package debug
