package httptransport

import "expvar"

var (
	metricRoomsQueryTotal     = expvar.NewInt("public_rooms_query_total")
	metricResultsQueryTotal   = expvar.NewInt("public_results_query_total")
	metricResultsQueryErrors  = expvar.NewInt("public_results_query_errors_total")
	metricHealthCheckFailures = expvar.NewInt("healthz_failures_total")
)
