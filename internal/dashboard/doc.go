// Package dashboard serves the live scores page.
//
// The Sink keeps the latest refresh snapshot and pushes a rendered card
// strip to every connected browser over a websocket. Server exposes the
// page, a JSON API over the same snapshot, process metrics and the
// refresh interval control.
//
// Routes:
//
//	GET  /                      page
//	GET  /ws                    live card strip updates
//	GET  /api/matches           snapshot as JSON (?team=, ?status=, ?live=true, ?result=true)
//	GET  /api/metrics           counters, gauges and timings
//	GET  /api/refresh-interval  current interval
//	PUT  /api/refresh-interval  change interval (form value "seconds")
//	GET  /healthz               liveness
package dashboard
