// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared wiring between CLI command handlers.

package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dishalabs/disha-tui/internal/config"
	"github.com/dishalabs/disha-tui/internal/ollama"
	"github.com/dishalabs/disha-tui/internal/session"
	"github.com/dishalabs/disha-tui/internal/speech"
	"github.com/dishalabs/disha-tui/internal/storage"
)

// LoadConfig loads the configuration and applies CLI overrides.
func LoadConfig(args Args) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// A broken config file should not lock the user out of the CLI.
		if args.Verbose {
			fmt.Printf("%s config load failed, using defaults: %v\n",
				WarningStyle.Render("!"), err)
		}
		cfg = config.Default()
	}

	if args.Model != "" {
		cfg.Ollama.Model = args.Model
	}
	if args.Language != "" {
		cfg.Speech.Language = args.Language
	}
	if args.NoSpeak {
		cfg.Speech.SpeakReplies = false
	}
	return cfg
}

// NewOllamaClient builds an Ollama client from the configuration.
func NewOllamaClient(cfg *config.Config) *ollama.Client {
	return ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		Model:        cfg.Ollama.Model,
		Timeout:      time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
		ProbeTimeout: time.Duration(cfg.Ollama.ProbeTimeoutSecs) * time.Second,
	})
}

// NewSpeechEngine builds a speech engine from the configuration.
// Returns nil when neither voice input nor voice output is configured.
func NewSpeechEngine(cfg *config.Config) *speech.Engine {
	var recognizer speech.Recognizer
	if cfg.Speech.RecognizerPath != "" {
		recognizer = &speech.CommandRecognizer{
			Path: cfg.Speech.RecognizerPath,
			Args: cfg.Speech.RecognizerArgs,
		}
	}

	var synthesizer speech.Synthesizer
	switch cfg.Speech.SynthesizerPath {
	case "":
	case "espeak-ng":
		synthesizer = speech.NewEspeakSynthesizer()
	default:
		synthesizer = &speech.CommandSynthesizer{Path: cfg.Speech.SynthesizerPath}
	}

	if recognizer == nil && synthesizer == nil {
		return nil
	}

	engine := speech.NewEngine(recognizer, synthesizer)
	if cfg.Speech.Language != "" {
		// An unsupported configured language falls back to the default.
		_ = engine.SetLanguage(cfg.Speech.Language)
	}
	return engine
}

// ApplyStoredSettings overlays persisted preferences onto the config.
// Explicit CLI flags win over stored preferences, which win over the
// config file defaults.
func ApplyStoredSettings(db *storage.Store, cfg *config.Config, args Args) {
	settings, err := db.LoadSettings()
	if err != nil || settings == nil {
		return
	}
	if args.Language == "" && settings.Language != "" {
		cfg.Speech.Language = settings.Language
	}
	if !args.NoSpeak {
		cfg.Speech.SpeakReplies = settings.SpeakReplies
	}
}

// PersistSpeechSettings writes the current speech preferences so they
// survive restarts.
func PersistSpeechSettings(db *storage.Store, cfg *config.Config) error {
	return db.SaveSettings(&storage.Settings{
		Language:     cfg.Speech.Language,
		SpeakReplies: cfg.Speech.SpeakReplies,
	})
}

// DebugLogger returns a logger writing to debug.log in the config
// directory when DISHA_DEBUG is set, nil otherwise. Swallowed
// background errors (speech playback, persistence retries) land here.
func DebugLogger() *log.Logger {
	if os.Getenv("DISHA_DEBUG") == "" {
		return nil
	}
	if err := config.EnsureConfigDir(); err != nil {
		return nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil
	}
	return log.New(f, "disha ", log.LstdFlags|log.Lmicroseconds)
}

// OpenSessions opens the session store at the configured path.
// Callers must Close the returned storage handle.
func OpenSessions(cfg *config.Config) (*session.Store, *storage.Store, error) {
	path := cfg.Storage.Path
	if path == "" {
		var err error
		path, err = storage.DefaultPath()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve database path: %w", err)
		}
	}

	db, err := storage.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	sessions, err := session.New(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("load sessions: %w", err)
	}
	return sessions, db, nil
}
