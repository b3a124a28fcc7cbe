package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		errs = append(errs, "app.port must be 1..65535")
	}
	if strings.TrimSpace(cfg.Store.Database) == "" {
		errs = append(errs, "store.database is required")
	}
	if strings.TrimSpace(cfg.Store.Collection) == "" {
		errs = append(errs, "store.collection is required")
	}
	if cfg.Feed.PollSeconds <= 0 {
		errs = append(errs, "feed.poll_seconds must be >= 1")
	}
	if cfg.Cleanup.MinIntervalHours <= 0 {
		errs = append(errs, "cleanup.min_interval_hours must be >= 1")
	}
	if strings.TrimSpace(cfg.AI.Endpoint) == "" {
		errs = append(errs, "ai.endpoint is required")
	}
	if !strings.HasPrefix(cfg.AI.Endpoint, "http://") && !strings.HasPrefix(cfg.AI.Endpoint, "https://") {
		errs = append(errs, "ai.endpoint must be an http(s) URL")
	}
	if strings.TrimSpace(cfg.AI.Model) == "" {
		errs = append(errs, "ai.model is required")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
