// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines the Bubble Tea message types used by the chat view and
// the async commands that produce them. All message types are immutable.

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dishalabs/disha-tui/internal/config"
	"github.com/dishalabs/disha-tui/internal/export"
	"github.com/dishalabs/disha-tui/internal/guide"
	"github.com/dishalabs/disha-tui/internal/model"
	"github.com/dishalabs/disha-tui/internal/ollama"
	"github.com/dishalabs/disha-tui/internal/speech"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// ReplyMsg delivers the advisor's reply for a finished send.
type ReplyMsg struct {
	SessionID string
	Reply     model.Message
	Err       error
}

// TranscriptMsg delivers the result of a voice capture.
type TranscriptMsg struct {
	Text     string
	Language string
	Err      error
}

// ProbeMsg reports whether the model server answered its reachability probe.
type ProbeMsg struct {
	Online bool
}

// ExportedMsg reports the outcome of a session export.
type ExportedMsg struct {
	Path string
	Err  error
}

// ConfigReloadedMsg delivers a freshly loaded config into the event loop,
// so live-safe settings are swapped on the update goroutine rather than
// from the file watcher's.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// StatusExpiredMsg clears a transient status message.
type StatusExpiredMsg struct{}

// probeTickMsg schedules the next periodic reachability probe.
type probeTickMsg struct{}

// =============================================================================
// COMMANDS
// =============================================================================

// probePeriod is how often the status bar's connection indicator refreshes.
// The client caches its verdict, so this does not hammer the server.
const probePeriod = 30 * time.Second

// statusDisplayTime is how long transient status messages stay visible.
const statusDisplayTime = 4 * time.Second

// FinishSendCmd completes a pending send and delivers the reply.
func FinishSendCmd(orch *guide.Orchestrator, pending *guide.Pending, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		reply, err := orch.Finish(ctx, pending)
		return ReplyMsg{
			SessionID: pending.SessionID,
			Reply:     reply,
			Err:       err,
		}
	}
}

// ListenCmd captures one voice utterance and delivers the transcript.
func ListenCmd(engine *speech.Engine) tea.Cmd {
	return func() tea.Msg {
		text, err := engine.Listen(context.Background())
		if err != nil {
			return TranscriptMsg{Err: err}
		}
		return TranscriptMsg{
			Text:     text,
			Language: engine.Language(),
		}
	}
}

// ProbeCmd checks whether the model server is reachable.
func ProbeCmd(client *ollama.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return ProbeMsg{Online: client.CheckReachable(ctx)}
	}
}

// ProbeTickCmd schedules the next periodic probe.
func ProbeTickCmd() tea.Cmd {
	return tea.Tick(probePeriod, func(time.Time) tea.Msg {
		return probeTickMsg{}
	})
}

// ExportCmd writes the session to a Markdown file.
func ExportCmd(session *model.ChatSession, opts *export.Options) tea.Cmd {
	return func() tea.Msg {
		path, err := export.ExportMarkdown(session, opts)
		return ExportedMsg{Path: path, Err: err}
	}
}

// ClearStatusCmd expires a transient status message.
func ClearStatusCmd() tea.Cmd {
	return tea.Tick(statusDisplayTime, func(time.Time) tea.Msg {
		return StatusExpiredMsg{}
	})
}
