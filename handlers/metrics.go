package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "procurement_documents_created_total",
		Help: "Documents created by type.",
	}, []string{"type"})

	documentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "procurement_document_transitions_total",
		Help: "Status actions applied by document type, action and resulting status.",
	}, []string{"type", "action", "to"})
)
