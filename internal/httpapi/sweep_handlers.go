package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"noticeboard-engine/internal/events"
	"noticeboard-engine/internal/sweep"
)

type SweepHandler struct {
	Status   *atomic.Value // httpapi.SweepStatus
	Hub      *events.Hub
	RunSweep func(ctx context.Context) (sweep.Report, error)
}

func (h SweepHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st, _ := h.Status.Load().(SweepStatus)
	writeJSON(w, st)
}

// Run triggers a sweep outside the scheduled cadence. The marker
// throttle still applies; a not-due run reports ran=false.
func (h SweepHandler) Run(w http.ResponseWriter, r *http.Request) {
	// issued deletes run to completion even if the caller disconnects
	rep, err := h.RunSweep(context.WithoutCancel(r.Context()))

	now := time.Now().Format(time.RFC3339)
	st, _ := h.Status.Load().(SweepStatus)
	st.LastRunAt = now
	if err != nil {
		st.LastError = err.Error()
		h.Status.Store(st)
		WriteError(w, r, http.StatusInternalServerError, "sweep_failed", err.Error())
		return
	}
	st.LastError = ""
	st.LastOkAt = now
	if rep.Ran {
		st.LastPlanned = rep.Planned
		st.LastDeleted = rep.Deleted
		st.LastFailed = rep.Failed
	}
	h.Status.Store(st)

	if rep.Ran && rep.Deleted > 0 {
		reqID := RequestIDFrom(r.Context())
		h.Hub.Publish(events.Make(reqID, events.TypeSweepCompleted, rep))
	}
	writeJSON(w, rep)
}
