// Package api serves the operator endpoints while a command runs:
//   - GET /healthz for liveness probes.
//   - GET /metrics for Prometheus scraping.
package api
