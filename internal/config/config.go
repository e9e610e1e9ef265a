package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/MeiTetsuH/diffchecker/internal/common"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig is the root of config.yaml: one section per subsystem.
type GlobalConfig struct {
	DiffConfig     DiffConfig     `json:"diff_config,omitempty" yaml:"diff_config,omitempty"`
	LogConfig      LogConfig      `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	ReporterConfig ReporterConfig `json:"reporter_config,omitempty" yaml:"reporter_config,omitempty"`
	ServerConfig   ServerConfig   `json:"server_config,omitempty" yaml:"server_config,omitempty"`
	StorageConfig  StorageConfig  `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	TableConfig    TableConfig    `json:"table_config,omitempty" yaml:"table_config,omitempty"`
}

// NewDefaultGlobalConfig fills every section from the Default* constants.
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		DiffConfig:     NewDefaultDiffConfig(),
		LogConfig:      NewDefaultLogConfig(),
		ReporterConfig: NewDefaultReporterConfig(),
		ServerConfig:   NewDefaultServerConfig(),
		StorageConfig:  NewDefaultStorageConfig(),
		TableConfig:    NewDefaultTableConfig(),
	}
}

// LoadGlobalConfig overlays the file found by GetConfigPath onto the defaults. The file is
// decoded as YAML for .yaml/.yml and as JSON otherwise, and unknown keys are rejected so a
// misspelled option is reported instead of silently ignored.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		if providedPath != "" {
			return nil, common.NewValidationError("config_file", providedPath, "config file does not exist")
		}
		return cfg, nil
	}

	data, err := common.NewFileManager(logger).ReadFile(filePath, common.FileReadOptions{MaxSize: maxConfigFileBytes})
	if err != nil {
		return nil, common.WrapError(err, "failed to load config file content")
	}
	if err := decodeConfig(data, filePath, cfg); err != nil {
		return nil, common.WrapError(err, "failed to parse config content")
	}

	logger.Debug().Str("path", filePath).Msg("Loaded config file")
	return cfg, nil
}

const maxConfigFileBytes = 1 << 20

func isYAMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decodeConfig(data []byte, path string, cfg *GlobalConfig) error {
	if isYAMLFile(path) {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("invalid YAML in '%s': %w", path, err)
		}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON in '%s': %w", path, err)
	}
	return nil
}

// SaveGlobalConfig writes cfg to filePath, as YAML or JSON by extension. The CLI uses it to
// dump the effective configuration as a starting point.
func SaveGlobalConfig(cfg *GlobalConfig, filePath string, logger zerolog.Logger) error {
	if cfg == nil {
		return common.NewValidationError("config", cfg, "config cannot be nil")
	}
	if filePath == "" {
		filePath = "config.yaml"
	}

	var (
		data []byte
		err  error
	)
	if isYAMLFile(filePath) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return common.WrapError(err, "failed to encode config")
	}

	if err := common.NewFileManager(logger).WriteFile(filePath, data, common.DefaultFileWriteOptions()); err != nil {
		return common.WrapError(err, "failed to write config file")
	}
	logger.Info().Str("path", filePath).Msg("Config file written")
	return nil
}
