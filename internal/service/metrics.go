package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orderdesk_active_sessions",
			Help: "Number of live cart sessions",
		},
	)

	cartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderdesk_cart_mutations_total",
			Help: "Total cart mutations by operation",
		},
		[]string{"operation"},
	)

	submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderdesk_submissions_total",
			Help: "Total order submissions by result",
		},
		[]string{"result"},
	)
)
