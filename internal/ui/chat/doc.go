// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view for the disha TUI application.

The chat package implements a terminal-based career guidance chat using the
Bubble Tea framework. Students ask questions by typing or by voice capture,
and replies come from a local Ollama model with canned offline fallbacks.

# Key Components

## Model (model.go)

The Model struct is the central Bubble Tea model that maintains all chat
state: the active session, input handling, the message viewport, the send
in-flight flag, and the session and language pickers.

## Update Loop (update.go)

Handles all Bubble Tea messages: keyboard input, reply delivery, voice
transcripts, reachability probes, and window resizes.

## View Rendering (view.go)

Renders the complete interface: header, message bubbles with per-sender
styling and reaction markers, the input area with a spinner while a send
is in flight, and a status bar with connection state and active language.

## Commands (messages.go)

Bubble Tea message types and the async commands that produce them:
finishing a send, capturing voice input, probing the model server, and
exporting the session.

# Usage

	m := chat.New(chat.Options{
		Orchestrator: orch,
		Sessions:     sessions,
		Engine:       engine,
		Config:       cfg,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package chat
