package handlers

import (
	"net/http"

	"p9e.in/procurement/config"
	"p9e.in/procurement/pkg/lifecycle"
)

type statusCount struct {
	Status lifecycle.Status `json:"status"`
	Count  int64            `json:"count"`
}

type typeSummary struct {
	DocumentType lifecycle.DocType `json:"documentType"`
	Total        int64             `json:"total"`
	ByStatus     []statusCount     `json:"byStatus"`
}

func summarize(t lifecycle.DocType, rows []statusCount) typeSummary {
	s := typeSummary{DocumentType: t, ByStatus: []statusCount{}}
	for _, r := range rows {
		s.Total += r.Count
		s.ByStatus = append(s.ByStatus, r)
	}
	return s
}

// Summary counts the caller's documents per type and status.
// GET /api/v1/summary
func (e *Engine) Summary(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOf(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	tables := config.DocumentTables()
	out := make([]typeSummary, 0, len(tables))
	for i, table := range tables {
		var rows []statusCount
		q := visibleTo(e.conn(r.Context()).Table(table), actor).
			Select("status, COUNT(*) AS count").
			Where("deleted_at IS NULL").
			Group("status").
			Order("status")
		if err := q.Scan(&rows).Error; err != nil {
			respondError(w, r, err)
			return
		}
		out = append(out, summarize(lifecycle.DocTypes[i], rows))
	}
	writeJSON(w, http.StatusOK, out)
}
