// Package feed turns the listing collection into a push stream: a
// poller re-reads the store and fans full snapshots out to
// subscribers, so consumers react to the current listing set instead
// of querying the store themselves.
package feed

import (
	"context"
	"log"
	"sync"
	"time"

	"noticeboard-engine/internal/domain"
)

// ListFunc loads the full current listing set from the store.
type ListFunc func(ctx context.Context) ([]domain.Listing, error)

type Feed struct {
	list     ListFunc
	interval time.Duration
	kick     chan struct{}

	mu   sync.Mutex
	subs map[chan []domain.Listing]struct{}
	errs map[chan error]struct{}
	last []domain.Listing
	seen bool
}

func New(list ListFunc, interval time.Duration) *Feed {
	return &Feed{
		list:     list,
		interval: interval,
		kick:     make(chan struct{}, 1),
		subs:     make(map[chan []domain.Listing]struct{}),
		errs:     make(map[chan error]struct{}),
	}
}

// Subscribe registers a consumer. Every published snapshot is the full
// listing set; slow consumers miss snapshots rather than block the
// feed. Always release with Unsubscribe.
func (f *Feed) Subscribe() (snapshots chan []domain.Listing, errs chan error) {
	snapshots = make(chan []domain.Listing, 1)
	errs = make(chan error, 1)
	f.mu.Lock()
	f.subs[snapshots] = struct{}{}
	f.errs[errs] = struct{}{}
	f.mu.Unlock()
	return snapshots, errs
}

func (f *Feed) Unsubscribe(snapshots chan []domain.Listing, errs chan error) {
	f.mu.Lock()
	delete(f.subs, snapshots)
	delete(f.errs, errs)
	f.mu.Unlock()
	close(snapshots)
	close(errs)
}

// Refresh asks the poller to re-read the store now and publish even if
// nothing changed. Called after a create or delete, and by the cleanup
// scheduler so the sweep cadence elapses on quiet boards.
func (f *Feed) Refresh() {
	select {
	case f.kick <- struct{}{}:
	default:
	}
}

// Latest returns the most recent snapshot without waiting for the next
// publish.
func (f *Feed) Latest() []domain.Listing {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Run polls until ctx is cancelled. The first read happens immediately.
func (f *Feed) Run(ctx context.Context) {
	t := time.NewTicker(f.interval)
	defer t.Stop()

	f.poll(ctx, true)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			f.poll(ctx, false)
		case <-f.kick:
			f.poll(ctx, true)
		}
	}
}

func (f *Feed) poll(ctx context.Context, forced bool) {
	listings, err := f.list(ctx)
	if err != nil {
		log.Printf("[feed] list error: %v", err)
		f.publishErr(err)
		return
	}

	f.mu.Lock()
	changed := !f.seen || !sameSet(f.last, listings)
	f.last = listings
	f.seen = true
	if !changed && !forced {
		f.mu.Unlock()
		return
	}
	for ch := range f.subs {
		select {
		case ch <- listings:
		default:
			// drop if slow
		}
	}
	f.mu.Unlock()
}

func (f *Feed) publishErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.errs {
		select {
		case ch <- err:
		default:
		}
	}
}

// sameSet compares snapshots by id sequence. Listings never mutate in
// place (create and delete are the only writes), so matching id order
// means an identical set.
func sameSet(a, b []domain.Listing) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
