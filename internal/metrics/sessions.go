// SPDX-License-Identifier: MIT

// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sessiond_sessions_active",
		Help: "Number of sessions currently held in the registry",
	})

	SessionEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiond_session_events_total",
		Help: "Total lifecycle events applied, by event kind",
	}, []string{"event"})

	ReconnectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessiond_reconnect_attempts_total",
		Help: "Total reconnect attempts across all sessions",
	})
)
