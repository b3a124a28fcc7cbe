package httpapi

import (
	"context"
	"sync/atomic"
	"time"

	"noticeboard-engine/internal/config"
	"noticeboard-engine/internal/domain"
	"noticeboard-engine/internal/events"
	"noticeboard-engine/internal/extract"
	"noticeboard-engine/internal/feed"
	"noticeboard-engine/internal/store"
	"noticeboard-engine/internal/sweep"
)

// Deps carries everything the handlers need. Store and collaborator
// calls are injected as funcs so handlers test without a live backend.
type Deps struct {
	Hub  *events.Hub
	Feed *feed.Feed

	// Atomic stores
	CfgVal      *atomic.Value // stores config.Config
	SweepStatus *atomic.Value // stores httpapi.SweepStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Listing store
	ListListings  func(ctx context.Context) ([]domain.Listing, error)
	CreateListing func(ctx context.Context, f store.Fields) (domain.Listing, error)
	DeleteListing func(ctx context.Context, id string) error

	// Collaborators
	Extract  func(ctx context.Context, image []byte, mimeType string) (extract.Fields, error)
	RunSweep func(ctx context.Context) (sweep.Report, error)

	// Clock, overridable in tests
	Now func() time.Time
}
