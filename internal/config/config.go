// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// disha.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.disha/config.toml
//   - ~/.disha/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/dishalabs/disha-tui/internal/speech"
	"github.com/dishalabs/disha-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete disha configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Ollama configuration
	Ollama OllamaConfig `toml:"ollama" json:"ollama"`

	// Speech (voice input/output) configuration
	Speech SpeechConfig `toml:"speech" json:"speech"`

	// Storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// OllamaConfig contains the local model server configuration.
type OllamaConfig struct {
	// URL is the Ollama server base URL
	URL string `toml:"url" json:"url"`
	// Model is the model used for guidance responses
	Model string `toml:"model" json:"model"`
	// ProbeTimeoutSecs bounds a single reachability probe
	ProbeTimeoutSecs int `toml:"probe_timeout_secs" json:"probe_timeout_secs"`
	// TimeoutSecs bounds a full generate request
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// SpeechConfig contains voice input/output configuration.
type SpeechConfig struct {
	// Language is the default language tag for voice capture
	Language string `toml:"language" json:"language"`
	// SpeakReplies voices assistant replies to voice-originated messages
	SpeakReplies bool `toml:"speak_replies" json:"speak_replies"`
	// RecognizerPath is the speech-to-text command (empty disables voice input)
	RecognizerPath string `toml:"recognizer_path" json:"recognizer_path"`
	// RecognizerArgs are passed to the recognizer; "{language}" is replaced
	// with the active language tag
	RecognizerArgs []string `toml:"recognizer_args" json:"recognizer_args"`
	// SynthesizerPath is the text-to-speech command (default espeak-ng;
	// empty disables voice output)
	SynthesizerPath string `toml:"synthesizer_path" json:"synthesizer_path"`
}

// StorageConfig contains persistence configuration.
type StorageConfig struct {
	// Path is the SQLite database location (empty = ~/.disha/disha.db)
	Path string `toml:"path" json:"path"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowTimestamps displays message timestamps in the chat view
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// CompactMode uses a more compact chat layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Ollama: OllamaConfig{
			URL:              "http://localhost:11434",
			Model:            "llama3",
			ProbeTimeoutSecs: 5,
			TimeoutSecs:      120,
		},

		Speech: SpeechConfig{
			Language:        "en-US",
			SpeakReplies:    true,
			SynthesizerPath: "espeak-ng",
		},

		Storage: StorageConfig{
			Path: "",
		},

		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: true,
			CompactMode:    false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the disha configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".disha"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Files ending in .json are parsed as JSON, everything else
// as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON config from %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode JSON config from %s: %w", path, err)
		}
	} else {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# disha configuration file\n")
	b.WriteString("# Generated by disha - edit with care\n\n")

	encoder := toml.NewEncoder(&b)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// Atomic write so a crash mid-save never leaves a half-written file.
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Ollama.URL != "" {
		if _, err := url.Parse(c.Ollama.URL); err != nil {
			errs = append(errs, ValidationError{
				Field:   "ollama.url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		}
	}
	if c.Ollama.ProbeTimeoutSecs < 1 || c.Ollama.ProbeTimeoutSecs > 60 {
		errs = append(errs, ValidationError{
			Field:   "ollama.probe_timeout_secs",
			Message: fmt.Sprintf("must be 1-60, got %d", c.Ollama.ProbeTimeoutSecs),
		})
	}
	if c.Ollama.TimeoutSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "ollama.timeout_secs",
			Message: fmt.Sprintf("must be positive, got %d", c.Ollama.TimeoutSecs),
		})
	}

	if !speech.IsSupported(c.Speech.Language) {
		errs = append(errs, ValidationError{
			Field:   "speech.language",
			Message: fmt.Sprintf("unsupported language '%s'", c.Speech.Language),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills in defaults for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Ollama.URL == "" {
		c.Ollama.URL = defaults.Ollama.URL
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = defaults.Ollama.Model
	}
	if c.Ollama.ProbeTimeoutSecs == 0 {
		c.Ollama.ProbeTimeoutSecs = defaults.Ollama.ProbeTimeoutSecs
	}
	if c.Ollama.TimeoutSecs == 0 {
		c.Ollama.TimeoutSecs = defaults.Ollama.TimeoutSecs
	}
	if c.Speech.Language == "" {
		c.Speech.Language = defaults.Speech.Language
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - DISHA_OLLAMA_URL: overrides ollama.url
//   - DISHA_MODEL: overrides ollama.model
//   - DISHA_LANGUAGE: overrides speech.language
//   - DISHA_SPEAK: set to "1"/"true" or "0"/"false" to toggle speak_replies
//   - DISHA_DB_PATH: overrides storage.path
//   - DISHA_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if ollamaURL := os.Getenv("DISHA_OLLAMA_URL"); ollamaURL != "" {
		c.Ollama.URL = ollamaURL
	}
	if model := os.Getenv("DISHA_MODEL"); model != "" {
		c.Ollama.Model = model
	}
	if lang := os.Getenv("DISHA_LANGUAGE"); lang != "" {
		c.Speech.Language = lang
	}
	if speak := os.Getenv("DISHA_SPEAK"); speak != "" {
		c.Speech.SpeakReplies = speak == "1" || strings.ToLower(speak) == "true"
	}
	if path := os.Getenv("DISHA_DB_PATH"); path != "" {
		c.Storage.Path = path
	}
	if theme := os.Getenv("DISHA_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation
// (e.g., "ollama.model").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.fieldByKey(key, false)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
// String values are converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.fieldByKey(key, true)
	if err != nil {
		return err
	}
	return setFieldValue(field, value)
}

func (c *Config) fieldByKey(key string, forWrite bool) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 || key == "" {
		return reflect.Value{}, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if forWrite && !field.CanSet() {
				return reflect.Value{}, fmt.Errorf("cannot set field: %s", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go
// field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type
// conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"ollama.url",
		"ollama.model",
		"ollama.probe_timeout_secs",
		"ollama.timeout_secs",
		"speech.language",
		"speech.speak_replies",
		"speech.recognizer_path",
		"speech.synthesizer_path",
		"storage.path",
		"ui.theme",
		"ui.show_timestamps",
		"ui.compact_mode",
	}
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
