// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dishalabs/disha-tui/internal/config"
	"github.com/dishalabs/disha-tui/internal/export"
	"github.com/dishalabs/disha-tui/internal/guide"
	"github.com/dishalabs/disha-tui/internal/model"
	"github.com/dishalabs/disha-tui/internal/speech"
	"github.com/dishalabs/disha-tui/internal/storage"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update handles all Bubble Tea messages for the chat view.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case viewSessions, viewLanguages:
			return m.updatePicker(msg)
		default:
			return m.updateChat(msg)
		}

	case spinner.TickMsg:
		if m.sending || m.listening {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case ReplyMsg:
		m.sending = false
		if msg.Err != nil {
			m.lastErr = msg.Err
			m.status = "Send failed: " + msg.Err.Error()
			m.refreshConversation()
			return m, ClearStatusCmd()
		}
		m.lastErr = nil
		m.refreshConversation()
		return m, nil

	case TranscriptMsg:
		return m.handleTranscript(msg)

	case ProbeMsg:
		m.online = msg.Online
		return m, nil

	case probeTickMsg:
		return m, tea.Batch(ProbeCmd(m.client), ProbeTickCmd())

	case ConfigReloadedMsg:
		m.applyConfig(msg.Config)
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.status = "Export failed: " + msg.Err.Error()
		} else {
			m.status = "Exported to " + msg.Path
		}
		return m, ClearStatusCmd()

	case StatusExpiredMsg:
		m.status = ""
		return m, nil
	}

	return m, nil
}

// =============================================================================
// CHAT VIEW KEYS
// =============================================================================

func (m *Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, keys.Submit):
		return m.submit(m.input.Value(), false)

	case key.Matches(msg, keys.NewChat):
		if _, err := m.sessions.Create(); err != nil {
			m.status = "New chat failed: " + err.Error()
			return m, ClearStatusCmd()
		}
		m.refreshConversation()
		return m, nil

	case key.Matches(msg, keys.Sessions):
		m.openSessionPicker()
		return m, nil

	case key.Matches(msg, keys.Languages):
		m.openLanguagePicker()
		return m, nil

	case key.Matches(msg, keys.Voice):
		if m.listening {
			m.engine.StopListening()
			return m, nil
		}
		return m.startListening()

	case key.Matches(msg, keys.Back):
		if m.listening {
			m.engine.StopListening()
		}
		return m, nil

	case key.Matches(msg, keys.Export):
		current := m.sessions.Current()
		if current == nil || current.IsEmpty() {
			m.status = "Nothing to export yet"
			return m, ClearStatusCmd()
		}
		opts := export.DefaultOptions()
		opts.IncludeTimestamps = m.cfg.UI.ShowTimestamps
		return m, ExportCmd(current, opts)

	case key.Matches(msg, keys.Helpful):
		return m.reactToLastReply(true)

	case key.Matches(msg, keys.NotHelpful):
		return m.reactToLastReply(false)

	case key.Matches(msg, keys.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, keys.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit begins a send for the given text. Voice marks transcripts, whose
// replies are spoken aloud.
func (m *Model) submit(text string, voice bool) (tea.Model, tea.Cmd) {
	current := m.sessions.Current()
	if current == nil {
		return m, nil
	}

	language := speech.DetectLanguage(text)
	pending, err := m.orch.Begin(current.ID, text, language, voice)
	switch {
	case errors.Is(err, guide.ErrEmptyMessage):
		return m, nil
	case errors.Is(err, guide.ErrBusy):
		m.status = "Still thinking, one moment..."
		return m, ClearStatusCmd()
	case err != nil:
		m.status = "Send failed: " + err.Error()
		return m, ClearStatusCmd()
	}

	m.input.Reset()
	m.sending = true
	m.refreshConversation()
	return m, tea.Batch(
		FinishSendCmd(m.orch, pending, m.sendTimeout()),
		m.spinner.Tick,
	)
}

// startListening kicks off a voice capture if the engine supports it.
func (m *Model) startListening() (tea.Model, tea.Cmd) {
	if m.engine == nil || !m.engine.RecognitionSupported() {
		m.status = "Voice input is not configured"
		return m, ClearStatusCmd()
	}
	if m.listening {
		return m, nil
	}
	m.listening = true
	m.status = "Listening (" + speech.DisplayName(m.engine.Language()) + ")..."
	return m, tea.Batch(ListenCmd(m.engine), m.spinner.Tick)
}

// handleTranscript turns a finished voice capture into a voice send.
func (m *Model) handleTranscript(msg TranscriptMsg) (tea.Model, tea.Cmd) {
	m.listening = false
	m.status = ""
	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, context.Canceled):
			m.status = "Voice capture cancelled"
		case errors.Is(msg.Err, speech.ErrNoSpeech):
			m.status = "No speech detected"
		default:
			m.status = "Voice capture failed: " + msg.Err.Error()
		}
		return m, ClearStatusCmd()
	}
	return m.submit(msg.Text, true)
}

// reactToLastReply toggles a reaction on the most recent advisor message.
func (m *Model) reactToLastReply(helpful bool) (tea.Model, tea.Cmd) {
	current := m.sessions.Current()
	if current == nil {
		return m, nil
	}
	reply := current.LastAssistantMessage()
	if reply == nil {
		return m, nil
	}

	kind := modelReactionKind(helpful)
	value := !reactionValue(reply.Reactions, helpful)
	if err := m.orch.React(current.ID, reply.ID, kind, value); err != nil {
		m.status = "Feedback failed: " + err.Error()
		return m, ClearStatusCmd()
	}
	m.refreshConversation()
	return m, nil
}

// =============================================================================
// PICKER KEYS
// =============================================================================

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.mode = viewChat
		return m, nil

	case msg.String() == "enter":
		return m.pickSelected()

	case msg.String() == "ctrl+d" && m.mode == viewSessions:
		return m.deleteSelected()
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// pickSelected applies the highlighted picker item.
func (m *Model) pickSelected() (tea.Model, tea.Cmd) {
	item := m.picker.SelectedItem()
	if item == nil {
		m.mode = viewChat
		return m, nil
	}

	switch it := item.(type) {
	case sessionItem:
		if err := m.sessions.Select(it.id); err != nil {
			m.status = "Switch failed: " + err.Error()
			m.mode = viewChat
			return m, ClearStatusCmd()
		}
	case languageItem:
		m.cfg.Speech.Language = it.lang.Tag
		if m.engine != nil {
			if err := m.engine.SetLanguage(it.lang.Tag); err != nil {
				m.status = "Language change failed: " + err.Error()
				m.mode = viewChat
				return m, ClearStatusCmd()
			}
		}
		m.persistSpeechSettings()
		m.status = "Voice language: " + it.lang.Name
	}

	m.mode = viewChat
	m.refreshConversation()
	if m.status != "" {
		return m, ClearStatusCmd()
	}
	return m, nil
}

// deleteSelected removes the highlighted session and repopulates the picker.
func (m *Model) deleteSelected() (tea.Model, tea.Cmd) {
	item, ok := m.picker.SelectedItem().(sessionItem)
	if !ok {
		return m, nil
	}
	if err := m.sessions.Delete(item.id); err != nil {
		m.status = "Delete failed: " + err.Error()
		return m, ClearStatusCmd()
	}

	m.openSessionPicker()
	m.refreshConversation()
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// modelReactionKind maps the helpful flag to its reaction kind.
func modelReactionKind(helpful bool) model.ReactionKind {
	if helpful {
		return model.ReactionHelpful
	}
	return model.ReactionNotHelpful
}

// reactionValue reads the side of the reaction pair being toggled.
func reactionValue(r model.Reactions, helpful bool) bool {
	if helpful {
		return r.Helpful
	}
	return r.NotHelpful
}

// applyConfig swaps the live-safe settings from a reloaded config. Runs
// on the update goroutine; speaking is gated through the orchestrator's
// atomic so in-flight sends see the flip safely.
func (m *Model) applyConfig(updated *config.Config) {
	m.cfg.Speech.Language = updated.Speech.Language
	m.cfg.Speech.SpeakReplies = updated.Speech.SpeakReplies
	m.cfg.UI.ShowTimestamps = updated.UI.ShowTimestamps
	m.cfg.UI.CompactMode = updated.UI.CompactMode

	if m.engine != nil {
		// An unsupported configured language keeps the current one.
		_ = m.engine.SetLanguage(updated.Speech.Language)
	}
	m.orch.SetSpeakEnabled(updated.Speech.SpeakReplies)
	m.refreshConversation()
}

// persistSpeechSettings writes the current speech preferences so they
// survive restarts. Best effort; a write failure never blocks the UI.
func (m *Model) persistSpeechSettings() {
	if m.db == nil {
		return
	}
	_ = m.db.SaveSettings(&storage.Settings{
		Language:     m.cfg.Speech.Language,
		SpeakReplies: m.cfg.Speech.SpeakReplies,
	})
}

// refreshConversation re-renders the viewport from the current session and
// scrolls to the newest message.
func (m *Model) refreshConversation() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

// resize recomputes component dimensions for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	inputHeight := m.input.Height() + 2
	chromeHeight := headerHeight + statusBarHeight + inputHeight
	viewportHeight := height - chromeHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if !m.ready {
		m.viewport = newViewport(width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewportHeight
	}

	m.input.SetWidth(width - 4)
	m.picker.SetSize(width-4, height-4)
	m.help.Width = width

	m.refreshConversation()
}
