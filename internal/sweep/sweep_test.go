package sweep

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticeboard-engine/internal/domain"
)

var now = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.Local)

type memMarker struct {
	mu      sync.Mutex
	t       time.Time
	getErr  error
	setErr  error
	setSeen bool
}

func (m *memMarker) LastRun(context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t, m.getErr
}

func (m *memMarker) SetLastRun(_ context.Context, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.t = t
	m.setSeen = true
	return nil
}

type memDeleter struct {
	mu      sync.Mutex
	deleted []string
	failFor map[string]error
}

func (d *memDeleter) delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.failFor[id]; ok {
		return err
	}
	d.deleted = append(d.deleted, id)
	return nil
}

func periodEnding(end time.Time) string {
	return "2024.01.01 ~ " + end.Format("2006.01.02")
}

func mkListing(id string, end time.Time) domain.Listing {
	return domain.Listing{ID: id, ApplicationPeriod: periodEnding(end)}
}

func TestPlan_SelectsOnlyPastDeadlines(t *testing.T) {
	past := mkListing("past", now.AddDate(0, 0, -2))
	future := mkListing("future", now.AddDate(0, 0, +2))
	undated := domain.Listing{ID: "undated", ApplicationPeriod: "상시 모집"}

	got := Plan([]domain.Listing{past, future, undated}, now)
	assert.Equal(t, []string{"past"}, got)
}

func TestPlan_DeadlineTodayIsNotPast(t *testing.T) {
	today := mkListing("today", now)

	// end-of-day semantics: still active through its listed day
	got := Plan([]domain.Listing{today}, now)
	assert.Empty(t, got)
}

func TestDue(t *testing.T) {
	assert.True(t, Due(time.Time{}, now, 24*time.Hour), "never ran")
	assert.False(t, Due(now.Add(-1*time.Hour), now, 24*time.Hour), "ran an hour ago")
	assert.True(t, Due(now.Add(-25*time.Hour), now, 24*time.Hour), "ran yesterday")
	assert.False(t, Due(now.Add(-24*time.Hour), now, 24*time.Hour), "exactly at interval is not due")
}

func TestRun_ThrottledRunDeletesNothing(t *testing.T) {
	del := &memDeleter{}
	m := &memMarker{t: now.Add(-1 * time.Hour)}
	s := New(del.delete, m, 24*time.Hour)

	rep, err := s.Run(context.Background(), []domain.Listing{mkListing("past", now.AddDate(0, 0, -2))}, now)
	require.NoError(t, err)

	assert.False(t, rep.Ran)
	assert.Empty(t, del.deleted)
	assert.False(t, m.setSeen, "marker must not advance on a throttled run")
}

func TestRun_DeletesExpiredAndAdvancesMarker(t *testing.T) {
	del := &memDeleter{}
	m := &memMarker{}
	s := New(del.delete, m, 24*time.Hour)

	listings := []domain.Listing{
		mkListing("p1", now.AddDate(0, 0, -5)),
		mkListing("p2", now.AddDate(0, 0, -1)),
		mkListing("f1", now.AddDate(0, 0, +1)),
	}
	rep, err := s.Run(context.Background(), listings, now)
	require.NoError(t, err)

	assert.True(t, rep.Ran)
	assert.Equal(t, 2, rep.Planned)
	assert.Equal(t, 2, rep.Deleted)
	assert.Equal(t, 0, rep.Failed)
	assert.NotEmpty(t, rep.RunID)

	sort.Strings(del.deleted)
	assert.Equal(t, []string{"p1", "p2"}, del.deleted)
	assert.Equal(t, now, m.t)
}

func TestRun_PartialFailureToleratedAndMarkerStillAdvances(t *testing.T) {
	del := &memDeleter{failFor: map[string]error{"bad": errors.New("boom")}}
	m := &memMarker{}
	s := New(del.delete, m, 24*time.Hour)

	listings := []domain.Listing{
		mkListing("bad", now.AddDate(0, 0, -2)),
		mkListing("ok", now.AddDate(0, 0, -2)),
	}
	rep, err := s.Run(context.Background(), listings, now)
	require.NoError(t, err, "one failed delete must not fail the run")

	assert.Equal(t, 2, rep.Planned)
	assert.Equal(t, 1, rep.Deleted)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, []string{"ok"}, del.deleted)
	assert.True(t, m.setSeen)
}

func TestRun_MarkerReadErrorAborts(t *testing.T) {
	del := &memDeleter{}
	m := &memMarker{getErr: errors.New("disk gone")}
	s := New(del.delete, m, 24*time.Hour)

	_, err := s.Run(context.Background(), []domain.Listing{mkListing("past", now.AddDate(0, 0, -2))}, now)
	require.Error(t, err)
	assert.Empty(t, del.deleted)
}

func TestNew_DefaultsInterval(t *testing.T) {
	s := New(nil, &memMarker{}, 0)
	assert.Equal(t, DefaultMinInterval, s.MinInterval)
}
