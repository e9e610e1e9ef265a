package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, DefaultDiffEngine, cfg.DiffConfig.Engine)
	assert.Equal(t, DefaultStorageMaxSavedComparisons, cfg.StorageConfig.MaxSavedComparisons)
	assert.Equal(t, 0, cfg.TableConfig.LeftHeaderRow)
	assert.Equal(t, "split", cfg.ReporterConfig.Presentation)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_NonExistentFile(t *testing.T) {
	cfg, err := LoadGlobalConfig("/nonexistent/config.json", zerolog.Nop())

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config file does not exist")
}

func TestLoadGlobalConfig_JSONFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.json")
	configData := `{
		"log_config": {"log_level": "debug"},
		"diff_config": {"engine": "myers", "granularity": "character"},
		"storage_config": {"max_saved_comparisons": 5}
	}`
	require.NoError(t, os.WriteFile(configFile, []byte(configData), 0644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	assert.Equal(t, "myers", cfg.DiffConfig.Engine)
	assert.Equal(t, "character", cfg.DiffConfig.Granularity)
	assert.Equal(t, 5, cfg.StorageConfig.MaxSavedComparisons)
	assert.Equal(t, DefaultStorageSQLiteDBPath, cfg.StorageConfig.SQLiteDBPath, "unset fields keep defaults")
}

func TestLoadGlobalConfig_YAMLFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	configData := `
table_config:
  left_header_row: -1
  right_header_row: 2
  strategy: edit_script
reporter_config:
  presentation: unified
`
	require.NoError(t, os.WriteFile(configFile, []byte(configData), 0644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, -1, cfg.TableConfig.LeftHeaderRow)
	assert.Equal(t, 2, cfg.TableConfig.RightHeaderRow)
	assert.Equal(t, "edit_script", cfg.TableConfig.Strategy)
	assert.Equal(t, "unified", cfg.ReporterConfig.Presentation)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("diff_config: [unclosed"), 0644))

	_, err := LoadGlobalConfig(configFile, zerolog.Nop())
	assert.Error(t, err)
}

func TestLoadGlobalConfig_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	yamlFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("diff_config:\n  granularty: word\n"), 0644))
	_, err := LoadGlobalConfig(yamlFile, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "granularty")

	jsonFile := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"storage": {}}`), 0644))
	_, err = LoadGlobalConfig(jsonFile, zerolog.Nop())
	assert.Error(t, err)
}

func TestLoadGlobalConfig_EmptyFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	cfg, err := LoadGlobalConfig(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, NewDefaultGlobalConfig(), cfg)
}

func TestSaveGlobalConfig_RoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := NewDefaultGlobalConfig()
			cfg.DiffConfig.Engine = "myers"
			cfg.ServerConfig.ListenAddress = ":9090"

			require.NoError(t, SaveGlobalConfig(cfg, path, zerolog.Nop()))

			loaded, err := LoadGlobalConfig(path, zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GlobalConfig)
		wantErr string
	}{
		{"valid defaults", func(*GlobalConfig) {}, ""},
		{"bad log level", func(c *GlobalConfig) { c.LogConfig.LogLevel = "verbose" }, "loglevel"},
		{"bad engine", func(c *GlobalConfig) { c.DiffConfig.Engine = "patience" }, "engine"},
		{"bad granularity", func(c *GlobalConfig) { c.DiffConfig.Granularity = "sentence" }, "granularity"},
		{"bad presentation", func(c *GlobalConfig) { c.ReporterConfig.Presentation = "stacked" }, "presentation"},
		{"header below -1", func(c *GlobalConfig) { c.TableConfig.LeftHeaderRow = -2 }, "LeftHeaderRow"},
		{"zero quota", func(c *GlobalConfig) { c.StorageConfig.MaxSavedComparisons = 0 }, "MaxSavedComparisons"},
		{"bad listen address", func(c *GlobalConfig) { c.ServerConfig.ListenAddress = "nowhere" }, "ListenAddress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultGlobalConfig()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetConfigPath_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	t.Setenv(ConfigPathEnv, path)

	assert.Equal(t, path, GetConfigPath(""))
	assert.Equal(t, "", GetConfigPath(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestConfigManager_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diff_config:\n  engine: dmp\n"), 0644))

	cm, err := NewConfigManager(path, DefaultConfigManagerOptions())
	require.NoError(t, err)
	defer cm.Close()
	assert.Equal(t, "dmp", cm.GetConfig().DiffConfig.Engine)
	assert.False(t, cm.IsHotReloadEnabled())

	var seen string
	cm.OnReload(func(cfg *GlobalConfig) { seen = cfg.DiffConfig.Engine })

	require.NoError(t, os.WriteFile(path, []byte("diff_config:\n  engine: myers\n"), 0644))
	require.NoError(t, cm.ReloadConfig())
	assert.Equal(t, "myers", cm.GetConfig().DiffConfig.Engine)
	assert.Equal(t, "myers", seen)

	require.NoError(t, os.WriteFile(path, []byte("diff_config:\n  engine: bogus\n"), 0644))
	assert.Error(t, cm.ReloadConfig())
	assert.Equal(t, "myers", cm.GetConfig().DiffConfig.Engine, "invalid reload keeps the previous config")
}

func TestConfigManager_HotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reporter_config:\n  presentation: split\n"), 0644))

	opts := DefaultConfigManagerOptions()
	opts.HotReloadEnabled = true
	opts.ReloadDelay = 10 * time.Millisecond
	cm, err := NewConfigManager(path, opts)
	require.NoError(t, err)
	defer cm.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cm.StartHotReload(ctx)

	// Replace the file the way editors do on save.
	staged := filepath.Join(t.TempDir(), "staged.yaml")
	require.NoError(t, os.WriteFile(staged, []byte("reporter_config:\n  presentation: unified\n"), 0644))
	require.NoError(t, os.Rename(staged, path))

	assert.Eventually(t, func() bool {
		return cm.GetConfig().ReporterConfig.Presentation == "unified"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestConfigManager_UnchangedReloadIsSilent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diff_config:\n  engine: dmp\n"), 0644))

	cm, err := NewConfigManager(path, DefaultConfigManagerOptions())
	require.NoError(t, err)
	defer cm.Close()

	calls := 0
	cm.OnReload(func(*GlobalConfig) { calls++ })
	require.NoError(t, cm.ReloadConfig())
	assert.Zero(t, calls)
}
