// disha - multilingual career guidance chat in your terminal.
//
// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dishalabs/disha-tui/internal/cli"
	"github.com/dishalabs/disha-tui/internal/config"
	"github.com/dishalabs/disha-tui/internal/guide"
	"github.com/dishalabs/disha-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdAsk:
		err = cli.HandleAskCommand(args)
	case cli.CmdChat:
		err = cli.HandleChatCommand(args)
	case cli.CmdStatus:
		err = cli.HandleStatus(args)
	case cli.CmdConfig:
		err = cli.HandleConfigCommand(args)
	case cli.CmdSession:
		err = cli.HandleSessionCommand(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the full application and runs the Bubble Tea program.
func runTUI(args cli.Args) error {
	if !cli.IsTTY() {
		return fmt.Errorf("the TUI needs a terminal; try \"disha ask\" or \"disha chat\"")
	}

	cfg := cli.LoadConfig(args)

	sessions, db, err := cli.OpenSessions(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	cli.ApplyStoredSettings(db, cfg, args)

	client := cli.NewOllamaClient(cfg)
	advisor := guide.NewAdvisor(client)

	engine := cli.NewSpeechEngine(cfg)
	var opts []guide.Option
	if engine != nil && engine.SynthesisSupported() {
		opts = append(opts, guide.WithSpeaker(engine))
	}
	if logger := cli.DebugLogger(); logger != nil {
		opts = append(opts, guide.WithLogger(logger))
	}
	orch := guide.NewOrchestrator(sessions, advisor, opts...)
	orch.SetSpeakEnabled(cfg.Speech.SpeakReplies)

	// The greeting works without a user record.
	user, _ := db.LoadUser()

	m := chat.New(chat.Options{
		Orchestrator: orch,
		Sessions:     sessions,
		Client:       client,
		Engine:       engine,
		DB:           db,
		User:         user,
		Config:       cfg,
		Version:      Version,
	})

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Config edits are delivered into the event loop, which swaps the
	// live-safe settings without a restart.
	watcher, err := watchConfig(program)
	if err == nil && watcher != nil {
		defer watcher.Close()
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}

	if engine != nil {
		engine.StopListening()
		engine.StopSpeaking()
	}
	return nil
}

// watchConfig hands reloaded configs to the running program. The watcher
// goroutine never touches shared state itself; the chat model applies the
// settings on its own goroutine.
func watchConfig(program *tea.Program) (*config.Watcher, error) {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	return config.WatchFile(path, func(updated *config.Config) {
		program.Send(chat.ConfigReloadedMsg{Config: updated})
	})
}
