package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconciliationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewgate_reconciliations_total",
			Help: "Pull request reconciliations by event and resulting status",
		},
		[]string{"event", "status"},
	)

	commitStatusCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewgate_commit_statuses_total",
			Help: "Commit statuses submitted to GitHub by state and outcome",
		},
		[]string{"state", "outcome"},
	)

	// JobCounter is incremented by the job runtime once a job settles
	JobCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewgate_jobs_total",
			Help: "Webhook jobs by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	enqueuedJobCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reviewgate_jobs_enqueued_total",
			Help: "Webhook jobs enqueued by type",
		},
		[]string{"type"},
	)
)
