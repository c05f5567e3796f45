// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - System status command for the disha CLI.
//
// Shows model server reachability, available models, storage, and the
// effective speech configuration. --json emits the same data for scripts.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dishalabs/disha-tui/internal/speech"
	"github.com/dishalabs/disha-tui/internal/storage"
)

// statusReport is the JSON output shape for --json.
type statusReport struct {
	Online       bool     `json:"online"`
	OllamaURL    string   `json:"ollama_url"`
	Model        string   `json:"model"`
	ModelPresent bool     `json:"model_present"`
	Models       []string `json:"models,omitempty"`
	DatabasePath string   `json:"database_path"`
	Sessions     int      `json:"sessions"`
	Language     string   `json:"language"`
	SpeakReplies bool     `json:"speak_replies"`
	VoiceInput   bool     `json:"voice_input"`
}

// HandleStatus prints the system status.
func HandleStatus(args Args) error {
	report, err := collectStatus(args)
	if err != nil {
		return err
	}

	if args.JSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(TitleStyle.Render("disha status"))

	ollamaStatus := RenderStatus("offline")
	if report.Online {
		ollamaStatus = RenderStatus("ok")
	}
	fmt.Printf("%s %s %s\n", RenderLabel("Ollama"), ollamaStatus,
		DimStyle.Render(report.OllamaURL))

	modelStatus := RenderStatus("warn")
	if report.ModelPresent {
		modelStatus = RenderStatus("ok")
	} else if !report.Online {
		modelStatus = DimStyle.Render("[?]")
	}
	fmt.Printf("%s %s %s\n", RenderLabel("Model"), modelStatus, report.Model)

	if args.Verbose && len(report.Models) > 0 {
		fmt.Println(SectionStyle.Render("Installed models"))
		for _, name := range report.Models {
			fmt.Printf("  %s\n", name)
		}
	}

	fmt.Printf("%s %s %s\n", RenderLabel("Storage"),
		DimStyle.Render(report.DatabasePath),
		ValueStyle.Render(fmt.Sprintf("(%d sessions)", report.Sessions)))

	fmt.Printf("%s %s\n", RenderLabel("Language"),
		ValueStyle.Render(speech.DisplayName(report.Language)))

	voice := "disabled"
	if report.VoiceInput {
		voice = "enabled"
	}
	speak := "off"
	if report.SpeakReplies {
		speak = "on"
	}
	fmt.Printf("%s voice input %s, spoken replies %s\n",
		RenderLabel("Speech"), voice, speak)

	return nil
}

func collectStatus(args Args) (*statusReport, error) {
	cfg := LoadConfig(args)
	client := NewOllamaClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	report := &statusReport{
		OllamaURL:    cfg.Ollama.URL,
		Model:        cfg.Ollama.Model,
		Language:     cfg.Speech.Language,
		SpeakReplies: cfg.Speech.SpeakReplies,
		VoiceInput:   cfg.Speech.RecognizerPath != "",
	}

	report.Online = client.CheckReachable(ctx)
	if report.Online {
		if models, err := client.ListModels(ctx); err == nil {
			for _, info := range models {
				report.Models = append(report.Models, info.Name)
				if info.Name == cfg.Ollama.Model {
					report.ModelPresent = true
				}
			}
		}
	}

	path := cfg.Storage.Path
	if path == "" {
		var err error
		path, err = storage.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	report.DatabasePath = path

	report.Sessions = countSessions(path)

	return report, nil
}

// countSessions reads the persisted session count. It deliberately skips
// the session store, which seeds a first session on an empty database;
// status must stay read-only.
func countSessions(path string) int {
	db, err := storage.Open(path)
	if err != nil {
		return 0
	}
	defer db.Close()

	sessions, err := db.LoadSessions()
	if err != nil {
		return 0
	}
	return len(sessions)
}
