package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentNumbersIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_numbers_issued_total",
			Help: "Total number of document numbers issued",
		},
		[]string{"document"},
	)

	documentNumberConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_number_conflicts_total",
			Help: "Total number of unique-constraint conflicts on issued document numbers",
		},
		[]string{"document"},
	)
)
