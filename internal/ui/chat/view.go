// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/dishalabs/disha-tui/internal/model"
	"github.com/dishalabs/disha-tui/internal/speech"
	"github.com/dishalabs/disha-tui/internal/ui/styles"
	"github.com/dishalabs/disha-tui/internal/util"
)

// =============================================================================
// LAYOUT CONSTANTS
// =============================================================================

const (
	// headerHeight is the rendered height of the header row.
	headerHeight = 3

	// statusBarHeight is the rendered height of the status bar plus help.
	statusBarHeight = 2

	// bubbleWidthRatio caps message bubbles at a fraction of the terminal
	// width so the eye can track who said what.
	bubbleWidthRatio = 0.72
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// =============================================================================
// TOP-LEVEL VIEW
// =============================================================================

// View renders the chat interface for the current view mode.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case viewSessions, viewLanguages:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.theme.PickerBox.Render(m.picker.View()),
			m.renderStatusBar(),
		)
	default:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.viewport.View(),
			m.renderInput(),
			m.renderStatusBar(),
		)
	}
}

// =============================================================================
// HEADER
// =============================================================================

func (m *Model) renderHeader() string {
	greeting := "career guidance"
	if m.user != nil && m.user.Name != "" {
		greeting = "career guidance for " + m.user.Name
	}

	session := ""
	if current := m.sessions.Current(); current != nil {
		// Session titles can hit 30 runes of a double-width script;
		// clip to the columns the header line has left. The header style
		// spends 6 columns on border and padding.
		avail := m.width - 8 - util.StringWidth("disha "+greeting+" · ")
		if title := util.TruncateWidth(current.Title, avail); title != "" {
			session = m.theme.HeaderSubtitle.Render(" · " + title)
		}
	}

	line := m.theme.HeaderTitle.Render("disha") + " " +
		m.theme.HeaderSubtitle.Render(greeting) + session
	return m.theme.Header.Width(m.width - 2).Render(line)
}

// =============================================================================
// CONVERSATION
// =============================================================================

// renderConversation renders the current session's messages as bubbles.
func (m *Model) renderConversation() string {
	current := m.sessions.Current()
	if current == nil || current.IsEmpty() {
		return m.renderWelcome()
	}

	bubbleWidth := int(float64(m.width) * bubbleWidthRatio)
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	var blocks []string
	for i := range current.Messages {
		blocks = append(blocks, m.renderMessage(&current.Messages[i], bubbleWidth))
	}
	if m.sending {
		blocks = append(blocks, m.spinner.View()+" "+
			m.theme.ThinkingText.Render("Thinking..."))
	}

	separator := "\n\n"
	if m.cfg.UI.CompactMode {
		separator = "\n"
	}
	return strings.Join(blocks, separator)
}

// renderMessage renders one message: sender line, bubble, reaction marker.
func (m *Model) renderMessage(msg *model.Message, bubbleWidth int) string {
	label := m.theme.SenderLabel.Render(msg.Sender.DisplayName())
	if m.cfg.UI.ShowTimestamps {
		label += " " + m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}

	bubble := m.theme.AdvisorBubble
	align := lipgloss.Left
	if msg.Sender == model.SenderUser {
		bubble = m.theme.UserBubble
		align = lipgloss.Right
	}
	body := bubble.MaxWidth(bubbleWidth).Render(msg.Text)

	lines := []string{label, body}
	if marker := reactionMarker(msg.Reactions); marker != "" {
		lines = append(lines, m.theme.Reaction.Render(marker))
	}

	block := lipgloss.JoinVertical(align, lines...)
	return lipgloss.PlaceHorizontal(m.width, align, block)
}

func reactionMarker(r model.Reactions) string {
	switch {
	case r.Helpful:
		return styles.StatusIndicators.Success + " helpful"
	case r.NotHelpful:
		return styles.StatusIndicators.Error + " not helpful"
	default:
		return ""
	}
}

// renderWelcome fills an empty session with a short orientation message.
func (m *Model) renderWelcome() string {
	text := strings.Join([]string{
		"Welcome to disha.",
		"",
		"Ask anything about careers, courses, exams, or skills.",
		"Questions can be typed in any supported language, or spoken",
		"with Ctrl+V when voice input is configured.",
	}, "\n")
	return m.theme.Container.Render(m.theme.ThinkingText.Render(text))
}

// =============================================================================
// INPUT AREA
// =============================================================================

func (m *Model) renderInput() string {
	if m.listening {
		return m.theme.InputContainer.Width(m.width - 2).Render(
			m.spinner.View() + " " + m.theme.ThinkingText.Render(m.status))
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

// =============================================================================
// STATUS BAR
// =============================================================================

func (m *Model) renderStatusBar() string {
	var conn string
	if m.online {
		conn = m.theme.StatusOnline.Render(styles.StatusIndicators.Success + " online")
	} else {
		conn = m.theme.StatusOffline.Render(styles.StatusIndicators.Warning + " offline")
	}

	lang := m.theme.ShortcutDesc.Render(speech.DisplayName(m.activeLanguage()))

	left := conn + "  " + lang
	if m.sending {
		left += "  " + m.theme.StatusBusy.Render(styles.StatusIndicators.Active+" thinking")
	}
	if m.status != "" {
		left += "  " + m.theme.ShortcutDesc.Render(m.status)
	}

	bar := m.theme.StatusBar.Width(m.width).Render(left)
	return bar + "\n" + m.help.View(m.keys)
}

// activeLanguage is the voice language currently in effect.
func (m *Model) activeLanguage() string {
	if m.engine != nil {
		return m.engine.Language()
	}
	return m.cfg.Speech.Language
}

// =============================================================================
// HELPERS
// =============================================================================

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
