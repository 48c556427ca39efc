package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	workflowsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "underwriting_workflows_started_total",
		Help: "Number of underwriting workflows started.",
	})
	workflowsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "underwriting_workflows_completed_total",
		Help: "Number of underwriting workflows that completed successfully.",
	})
	workflowsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "underwriting_workflows_failed_total",
		Help: "Number of underwriting workflows that failed.",
	})
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "underwriting_stage_duration_seconds",
		Help:    "Duration of each workflow stage.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	}, []string{"stage"})
)
