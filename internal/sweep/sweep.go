package sweep

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"noticeboard-engine/internal/deadline"
	"noticeboard-engine/internal/domain"
)

// DefaultMinInterval is how long the sweeper waits between runs
// regardless of how often snapshots arrive.
const DefaultMinInterval = 24 * time.Hour

// Marker persists the last-run instant between process restarts.
type Marker interface {
	LastRun(ctx context.Context) (time.Time, error)
	SetLastRun(ctx context.Context, t time.Time) error
}

// DeleteFunc removes one listing from the store.
type DeleteFunc func(ctx context.Context, id string) error

// Plan returns the ids of every listing whose deadline is strictly in
// the past. Listings with no parseable deadline never expire.
func Plan(listings []domain.Listing, now time.Time) []string {
	var ids []string
	for _, l := range listings {
		d, ok := deadline.Parse(l.ApplicationPeriod)
		if ok && d.Before(now) {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// Due reports whether enough time has passed since the last run. A zero
// lastRun means the marker was never set and the sweep is always due.
func Due(lastRun, now time.Time, minInterval time.Duration) bool {
	return lastRun.IsZero() || now.Sub(lastRun) > minInterval
}

// Report describes one sweep run.
type Report struct {
	RunID   string    `json:"run_id"`
	At      time.Time `json:"at"`
	Ran     bool      `json:"ran"`
	Planned int       `json:"planned"`
	Deleted int       `json:"deleted"`
	Failed  int       `json:"failed"`
}

type Sweeper struct {
	Delete      DeleteFunc
	Marker      Marker
	MinInterval time.Duration
}

func New(del DeleteFunc, marker Marker, minInterval time.Duration) *Sweeper {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Sweeper{Delete: del, Marker: marker, MinInterval: minInterval}
}

// Run applies the throttle, deletes every expired listing in the
// snapshot, and advances the marker. Deletes fan out concurrently and
// are fire-and-forget per id: one failure is logged and counted but
// never aborts the rest of the batch. The marker advances whenever a
// run was due, even if some deletes failed, so a bad document cannot
// make the sweeper retry hot.
func (s *Sweeper) Run(ctx context.Context, listings []domain.Listing, now time.Time) (Report, error) {
	rep := Report{RunID: uuid.NewString(), At: now}

	lastRun, err := s.Marker.LastRun(ctx)
	if err != nil {
		return rep, err
	}
	if !Due(lastRun, now, s.MinInterval) {
		return rep, nil
	}
	rep.Ran = true

	ids := Plan(listings, now)
	rep.Planned = len(ids)

	var (
		mu     sync.Mutex
		failed int
	)
	var g errgroup.Group
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := s.Delete(ctx, id); err != nil {
				log.Printf("[sweep] delete failed id=%s err=%v", id, err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	rep.Failed = failed
	rep.Deleted = rep.Planned - failed

	if err := s.Marker.SetLastRun(ctx, now); err != nil {
		return rep, err
	}
	return rep, nil
}
