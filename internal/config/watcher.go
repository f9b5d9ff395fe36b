package config

import (
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ThresholdWatcher holds a snapshot of per-tenant rule-threshold overrides
// (spec §4.E: "Thresholds are named constants, configurable per tenant").
// In environments that front the tenant_thresholds Postgres table with a
// periodically-exported YAML snapshot, ThresholdWatcher keeps an in-memory
// copy current without a DB round trip on every issue-detection run.
type ThresholdWatcher struct {
	mu     sync.RWMutex
	byTenant map[string]ThresholdsConfig
	log    *logrus.Logger
}

// NewThresholdWatcher loads path once and begins watching it for changes.
// If path does not exist, the watcher starts empty and Get always falls
// back to the process-wide defaults; this is not an error, since per-tenant
// overrides are optional.
func NewThresholdWatcher(log *logrus.Logger, path string) (*ThresholdWatcher, error) {
	w := &ThresholdWatcher{
		byTenant: make(map[string]ThresholdsConfig),
		log:      log,
	}
	if err := w.reload(path); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepathDir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name == path && (event.Op&(fsnotify.Write|fsnotify.Create) != 0) {
					if err := w.reload(path); err != nil {
						w.log.WithError(err).Warn("failed to reload tenant threshold overrides")
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.log.WithError(err).Warn("threshold watcher error")
			}
		}
	}()

	return w, nil
}

func (w *ThresholdWatcher) reload(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var parsed map[string]ThresholdsConfig
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return err
	}
	w.mu.Lock()
	w.byTenant = parsed
	w.mu.Unlock()
	w.log.WithField("tenants", len(parsed)).Info("reloaded tenant threshold overrides")
	return nil
}

// Get returns the effective thresholds for tenant: its override if present,
// otherwise fallback (the process-wide defaults).
func (w *ThresholdWatcher) Get(tenant string, fallback ThresholdsConfig) ThresholdsConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if t, ok := w.byTenant[tenant]; ok {
		return t
	}
	return fallback
}

func filepathDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
