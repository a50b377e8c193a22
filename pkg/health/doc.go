// Package health aggregates named dependency checks behind an HTTP
// endpoint.
//
// A Checker runs its checks in parallel under a shared timeout and
// reports per-check status as JSON. Any failing check flips the overall
// status to unhealthy and the endpoint to 503, which suits Docker and
// Kubernetes probes as well as plain monitoring.
//
//	checker := health.NewChecker(health.Checks{
//	    "storage": gateway.Ping,
//	})
//	r.Get("/health", checker.Handler())
package health
