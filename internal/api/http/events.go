package http

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/mind-engage/quizparse/internal/audit"
)

type EventLister interface {
	List(ctx context.Context, limit int) ([]audit.Event, error)
}

// GET /events?limit=N
func ListEventsHandler(ev EventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		events, err := ev.List(r.Context(), limit)
		if err != nil {
			log.Printf("list events: %v", err)
			writeDetail(w, http.StatusInternalServerError, "could not list events")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": events})
	}
}
