package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticeboard-engine/internal/domain"
)

func snapshotOf(ids ...string) []domain.Listing {
	out := make([]domain.Listing, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Listing{ID: id})
	}
	return out
}

func TestPoll_PublishesFirstSnapshot(t *testing.T) {
	f := New(func(context.Context) ([]domain.Listing, error) {
		return snapshotOf("a", "b"), nil
	}, time.Minute)

	snaps, errs := f.Subscribe()
	defer f.Unsubscribe(snaps, errs)

	f.poll(context.Background(), false)

	select {
	case got := <-snaps:
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
	default:
		t.Fatal("expected a snapshot")
	}
	assert.Len(t, f.Latest(), 2)
}

func TestPoll_SkipsUnchangedUnlessForced(t *testing.T) {
	f := New(func(context.Context) ([]domain.Listing, error) {
		return snapshotOf("a"), nil
	}, time.Minute)

	snaps, errs := f.Subscribe()
	defer f.Unsubscribe(snaps, errs)

	f.poll(context.Background(), false)
	<-snaps

	// same set again: no publish
	f.poll(context.Background(), false)
	select {
	case <-snaps:
		t.Fatal("unchanged snapshot should not publish")
	default:
	}

	// forced pass publishes even when unchanged
	f.poll(context.Background(), true)
	select {
	case got := <-snaps:
		assert.Len(t, got, 1)
	default:
		t.Fatal("forced poll should publish")
	}
}

func TestPoll_PublishesOnChange(t *testing.T) {
	current := snapshotOf("a")
	f := New(func(context.Context) ([]domain.Listing, error) {
		return current, nil
	}, time.Minute)

	snaps, errs := f.Subscribe()
	defer f.Unsubscribe(snaps, errs)

	f.poll(context.Background(), false)
	<-snaps

	current = snapshotOf("a", "b")
	f.poll(context.Background(), false)

	select {
	case got := <-snaps:
		assert.Len(t, got, 2)
	default:
		t.Fatal("changed snapshot should publish")
	}
}

func TestPoll_ErrorsGoToErrorChannel(t *testing.T) {
	boom := errors.New("store down")
	f := New(func(context.Context) ([]domain.Listing, error) {
		return nil, boom
	}, time.Minute)

	snaps, errs := f.Subscribe()
	defer f.Unsubscribe(snaps, errs)

	f.poll(context.Background(), false)

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, boom)
	default:
		t.Fatal("expected an error")
	}
	select {
	case <-snaps:
		t.Fatal("a failed poll must not publish a snapshot")
	default:
	}
}

func TestRun_RespondsToRefreshAndCancel(t *testing.T) {
	f := New(func(context.Context) ([]domain.Listing, error) {
		return snapshotOf("a"), nil
	}, time.Hour)

	snaps, errs := f.Subscribe()
	defer f.Unsubscribe(snaps, errs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.Run(ctx)
		close(done)
	}()

	// initial immediate poll
	select {
	case <-snaps:
	case <-time.After(2 * time.Second):
		t.Fatal("expected initial snapshot")
	}

	f.Refresh()
	select {
	case <-snaps:
	case <-time.After(2 * time.Second):
		t.Fatal("expected forced snapshot after Refresh")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestSameSet(t *testing.T) {
	assert.True(t, sameSet(snapshotOf("a", "b"), snapshotOf("a", "b")))
	assert.False(t, sameSet(snapshotOf("a"), snapshotOf("b")))
	assert.False(t, sameSet(snapshotOf("a"), snapshotOf("a", "b")))
	assert.True(t, sameSet(nil, nil))
}
