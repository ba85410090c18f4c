package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "testimony", Name: "submissions_total", Help: "Number of testimony submissions accepted."},
	)
	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "testimony", Name: "status_transitions_total", Help: "Number of status transitions by target status."},
		[]string{"to"},
	)
	LiveUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "testimony", Name: "live_updates_total", Help: "Number of live-slot writes by action (set/clear)."},
		[]string{"action"},
	)
	FeedPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "testimony", Name: "feed_polls_total", Help: "Number of RSS feed polls by outcome (ok/degraded)."},
		[]string{"outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "testimony", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "testimony", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(SubmissionsTotal)
	reg.MustRegister(StatusTransitions)
	reg.MustRegister(LiveUpdates)
	reg.MustRegister(FeedPolls)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
