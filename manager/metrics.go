package manager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timetracker",
		Name:      "operations_total",
		Help:      "Attendance operations broken down by operation and result.",
	}, []string{"operation", "result"})

	clockEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timetracker",
		Name:      "clock_events_total",
		Help:      "Clock events recorded, by action.",
	}, []string{"action"})

	employeesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "timetracker",
		Name:      "employees",
		Help:      "Number of employees in the store.",
	})
)

func recordOperation(op string, reason Reason) {
	result := string(reason)
	if result == "" {
		result = "ok"
	}
	operationsTotal.WithLabelValues(op, result).Inc()
}
