package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"noticeboard-engine/internal/classify"
	"noticeboard-engine/internal/domain"
	"noticeboard-engine/internal/events"
)

type ListingsHandler struct {
	List    func(ctx context.Context) ([]domain.Listing, error)
	Delete  func(ctx context.Context, id string) error
	Hub     *events.Hub
	Refresh func()
	Now     func() time.Time
}

type listingsResponse struct {
	Now     time.Time        `json:"now"`
	Targets []string         `json:"targets"`
	Groups  []classify.Group `json:"groups"`
}

// ListClassified serves the board view: the full snapshot filtered,
// ordered and grouped for display against the current instant.
func (h ListingsHandler) ListClassified(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := q.Get("target")
	if target == "" {
		target = classify.TargetAll
	}
	query := q.Get("q")

	listings, err := h.List(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "store_error", err.Error())
		return
	}

	now := h.Now()
	writeJSON(w, listingsResponse{
		Now:     now,
		Targets: classify.UniqueTargets(listings),
		Groups:  classify.Classify(listings, now, target, query),
	})
}

// DeleteByPath handles DELETE /listings/{id}: the user-confirmed
// removal path, same store call the sweeper uses.
func (h ListingsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/listings/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "invalid listing id")
		return
	}

	if err := h.Delete(r.Context(), id); err != nil {
		WriteError(w, r, http.StatusBadGateway, "delete_failed", err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.Make(reqID, events.TypeListingDeleted, map[string]any{"id": id}))
	if h.Refresh != nil {
		h.Refresh()
	}
	writeJSON(w, map[string]any{"ok": true, "id": id})
}
