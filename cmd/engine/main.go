package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"noticeboard-engine/internal/config"
	"noticeboard-engine/internal/domain"
	"noticeboard-engine/internal/events"
	"noticeboard-engine/internal/extract"
	"noticeboard-engine/internal/feed"
	"noticeboard-engine/internal/httpapi"
	"noticeboard-engine/internal/marker"
	"noticeboard-engine/internal/scheduler"
	"noticeboard-engine/internal/secrets"
	"noticeboard-engine/internal/store"
	"noticeboard-engine/internal/sweep"
)

const sweepMarkerKey = "last_sweep"

func main() {
	_ = godotenv.Load()

	dataDir := os.Getenv("NOTICEBOARD_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// Two engines sweeping against the same marker would race; hold a
	// lock on the data dir for the process lifetime.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("data dir lock: %v", err)
	}
	if !locked {
		log.Fatalf("another engine instance is already running in %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	userCfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoURI := cfg.Store.MongoURI
	if env := os.Getenv("MONGODB_URI"); env != "" {
		mongoURI = env
	}
	st, err := store.Open(ctx, mongoURI, cfg.Store.Database, cfg.Store.Collection)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = st.Close(context.Background()) }()

	markerDB, err := marker.Open(filepath.Join(dataDir, "noticeboard.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer markerDB.Close()

	hub := events.NewHub()

	fd := feed.New(st.List, time.Duration(cfg.Feed.PollSeconds)*time.Second)
	go fd.Run(ctx)

	minInterval := time.Duration(cfg.Cleanup.MinIntervalHours) * time.Hour
	sweeper := sweep.New(st.DeleteByID, marker.SweepMarker{DB: markerDB, Key: sweepMarkerKey}, minInterval)

	var sweepStatus atomic.Value
	sweepStatus.Store(httpapi.SweepStatus{})

	runSweep := func(ctx context.Context) (sweep.Report, error) {
		listings := fd.Latest()
		if listings == nil {
			var lerr error
			listings, lerr = st.List(ctx)
			if lerr != nil {
				return sweep.Report{}, lerr
			}
		}
		return sweeper.Run(ctx, listings, time.Now())
	}

	// Every snapshot offers a sweep; the marker throttle decides.
	go func() {
		snaps, errs := fd.Subscribe()
		defer fd.Unsubscribe(snaps, errs)
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-errs:
				if err != nil {
					log.Printf("[feed] %v", err)
				}
			case snap := <-snaps:
				sweepSnapshot(ctx, sweeper, hub, &sweepStatus, fd, snap)
			}
		}
	}()

	// Force a feed pass once per cleanup interval so the sweep cadence
	// elapses even when the board is quiet.
	go scheduler.Every(ctx, minInterval, "cleanup", func(context.Context) error {
		fd.Refresh()
		return nil
	})

	ai := extract.New(
		func() (string, string) {
			c := cfgVal.Load().(config.Config)
			return c.AI.Endpoint, c.AI.Model
		},
		func() (string, error) {
			c := cfgVal.Load().(config.Config)
			return secrets.GetAIKey(secrets.AIKeyringAccount(c.AI.Endpoint, c.AI.Model))
		},
	)

	mux := httpapi.NewMux(httpapi.Deps{
		Hub:           hub,
		Feed:          fd,
		CfgVal:        &cfgVal,
		SweepStatus:   &sweepStatus,
		UserCfgPath:   userCfgPath,
		LoadCfg:       loadCfg,
		ListListings:  st.List,
		CreateListing: st.Create,
		DeleteListing: st.DeleteByID,
		Extract:       ai.Extract,
		RunSweep:      runSweep,
		Now:           time.Now,
	})

	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover,
		httpapi.AccessLog,
		httpapi.Cors,
	)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (data=%s)", addr, dataDir)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("serve: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutCtx)
}

func sweepSnapshot(ctx context.Context, sweeper *sweep.Sweeper, hub *events.Hub, status *atomic.Value, fd *feed.Feed, snap []domain.Listing) {
	rep, err := sweeper.Run(ctx, snap, time.Now())

	now := time.Now().Format(time.RFC3339)
	st, _ := status.Load().(httpapi.SweepStatus)
	st.LastRunAt = now
	if err != nil {
		st.LastError = err.Error()
		status.Store(st)
		log.Printf("[sweep] error: %v", err)
		return
	}
	st.LastError = ""
	st.LastOkAt = now
	if rep.Ran {
		st.LastPlanned = rep.Planned
		st.LastDeleted = rep.Deleted
		st.LastFailed = rep.Failed
	}
	status.Store(st)

	if rep.Ran {
		log.Printf("[sweep] ok planned=%d deleted=%d failed=%d", rep.Planned, rep.Deleted, rep.Failed)
	}
	if rep.Ran && rep.Deleted > 0 {
		hub.Publish(events.Make("", events.TypeSweepCompleted, rep))
		fd.Refresh()
	}
}
