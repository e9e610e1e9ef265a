package config

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ConfigManager owns the live configuration of a long-running process. With hot reload on,
// it watches the config file and swaps in each new version that validates. Listeners
// registered with OnReload see every accepted version.
type ConfigManager struct {
	path   string
	delay  time.Duration
	logger zerolog.Logger

	mu        sync.RWMutex
	current   *GlobalConfig
	digest    [sha256.Size]byte
	listeners []func(*GlobalConfig)

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

// ConfigManagerOptions configures NewConfigManager. ReloadDelay coalesces the burst of events an editor save produces.
type ConfigManagerOptions struct {
	Logger           zerolog.Logger
	HotReloadEnabled bool
	ReloadDelay      time.Duration
}

func DefaultConfigManagerOptions() ConfigManagerOptions {
	return ConfigManagerOptions{
		Logger:      zerolog.Nop(),
		ReloadDelay: time.Second,
	}
}

// NewConfigManager loads and validates path ("" runs on defaults). A watcher that cannot be
// set up only disables hot reload.
func NewConfigManager(path string, opts ConfigManagerOptions) (*ConfigManager, error) {
	cm := &ConfigManager{
		path:   path,
		delay:  opts.ReloadDelay,
		logger: opts.Logger.With().Str("component", "ConfigManager").Logger(),
		done:   make(chan struct{}),
	}

	cfg, digest, err := cm.read()
	if err != nil {
		return nil, fmt.Errorf("failed to load initial configuration: %w", err)
	}
	cm.current, cm.digest = cfg, digest

	if opts.HotReloadEnabled && path != "" {
		if err := cm.watch(); err != nil {
			cm.logger.Warn().Err(err).Msg("Hot reload disabled")
		}
	}
	return cm, nil
}

// GetConfig returns a copy of the active configuration.
func (cm *ConfigManager) GetConfig() *GlobalConfig {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	cfg := *cm.current
	return &cfg
}

func (cm *ConfigManager) OnReload(fn func(*GlobalConfig)) {
	cm.mu.Lock()
	cm.listeners = append(cm.listeners, fn)
	cm.mu.Unlock()
}

// ReloadConfig re-reads the file. An invalid file leaves the active configuration in place
// and an unchanged file notifies nobody.
func (cm *ConfigManager) ReloadConfig() error {
	cfg, digest, err := cm.read()
	if err != nil {
		return err
	}

	cm.mu.Lock()
	if digest == cm.digest {
		cm.mu.Unlock()
		return nil
	}
	cm.current, cm.digest = cfg, digest
	listeners := slices.Clone(cm.listeners)
	cm.mu.Unlock()

	cm.logger.Info().Str("path", cm.path).Msg("Configuration reloaded")
	for _, fn := range listeners {
		snapshot := *cfg
		fn(&snapshot)
	}
	return nil
}

func (cm *ConfigManager) GetConfigPath() string { return cm.path }

func (cm *ConfigManager) IsHotReloadEnabled() bool { return cm.watcher != nil }

// StartHotReload consumes watcher events until ctx ends or Close is called. It returns
// immediately.
func (cm *ConfigManager) StartHotReload(ctx context.Context) {
	if cm.watcher == nil {
		return
	}
	go cm.loop(ctx)
}

func (cm *ConfigManager) Close() error {
	var err error
	cm.closeOnce.Do(func() {
		close(cm.done)
		if cm.watcher != nil {
			err = cm.watcher.Close()
		}
	})
	return err
}

func (cm *ConfigManager) read() (*GlobalConfig, [sha256.Size]byte, error) {
	var digest [sha256.Size]byte
	cfg := NewDefaultGlobalConfig()
	if cm.path == "" {
		return cfg, digest, nil
	}

	data, err := os.ReadFile(cm.path)
	if err != nil {
		return nil, digest, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := decodeConfig(data, cm.path, cfg); err != nil {
		return nil, digest, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, digest, err
	}
	return cfg, sha256.Sum256(data), nil
}

// watch subscribes to the directory: editors often save by replacing the file, which a
// watch on the file itself would lose.
func (cm *ConfigManager) watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(cm.path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch '%s': %w", dir, err)
	}
	cm.watcher = w
	cm.logger.Debug().Str("directory", dir).Msg("Watching configuration")
	return nil
}

func (cm *ConfigManager) loop(ctx context.Context) {
	target := filepath.Clean(cm.path)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cm.done:
			return
		case ev, ok := <-cm.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.AfterFunc(cm.delay, cm.reloadFromWatcher)
			} else {
				debounce.Reset(cm.delay)
			}
		case err, ok := <-cm.watcher.Errors:
			if !ok {
				return
			}
			cm.logger.Error().Err(err).Msg("File watcher error")
		}
	}
}

func (cm *ConfigManager) reloadFromWatcher() {
	select {
	case <-cm.done:
		return
	default:
	}
	if err := cm.ReloadConfig(); err != nil {
		cm.logger.Error().Err(err).Msg("Ignoring invalid configuration change")
	}
}
