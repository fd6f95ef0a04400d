package common

import (
	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Client Metrics
// --------------------------------------------------------------------------

// Counters for the client connection lifecycle. They are registered in the
// default metrics set and can be exposed with metrics.WritePrometheus.
var (
	// MetricRequestsTotal counts all issued requests, including failed ones.
	MetricRequestsTotal = metrics.NewCounter("squirreldb_client_requests_total")

	// MetricRequestErrorsTotal counts requests that completed with an error.
	MetricRequestErrorsTotal = metrics.NewCounter("squirreldb_client_request_errors_total")

	// MetricNotificationsTotal counts change notifications delivered to
	// registered subscriptions.
	MetricNotificationsTotal = metrics.NewCounter("squirreldb_client_notifications_total")

	// MetricStrayMessagesTotal counts messages that matched no pending
	// request and no subscription and were dropped.
	MetricStrayMessagesTotal = metrics.NewCounter("squirreldb_client_stray_messages_total")

	// MetricFramesReadTotal counts frames read from the wire.
	MetricFramesReadTotal = metrics.NewCounter("squirreldb_client_frames_read_total")

	// MetricFramesWrittenTotal counts frames written to the wire.
	MetricFramesWrittenTotal = metrics.NewCounter("squirreldb_client_frames_written_total")
)
