// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TitleMaxRunes is the display-title length derived from the first user
// message. Longer messages are cut here and suffixed with an ellipsis.
const TitleMaxRunes = 30

// DefaultTitle is the title of a session with no user messages yet.
const DefaultTitle = "New Chat"

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession holds a titled, ordered, persisted conversation thread.
//
// The title is never edited directly: it is recomputed from the message
// list on every mutation (see DeriveTitle). Message order is insertion
// order, which is also chronological order.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewChatSession creates an empty session with a generated ID.
func NewChatSession() *ChatSession {
	now := time.Now()
	return &ChatSession{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		Messages:  make([]Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// =============================================================================
// MESSAGE ACCESS
// =============================================================================

// SetMessages replaces the message list wholesale and recomputes the
// derived fields (title, updatedAt).
func (s *ChatSession) SetMessages(msgs []Message) {
	s.Messages = msgs
	s.Title = DeriveTitle(msgs)
	s.UpdatedAt = time.Now()
}

// MessageByID returns a pointer to the message with the given ID, or nil.
func (s *ChatSession) MessageByID(id string) *Message {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return &s.Messages[i]
		}
	}
	return nil
}

// LastAssistantMessage returns the most recent assistant message, or nil.
func (s *ChatSession) LastAssistantMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Sender == SenderAssistant {
			return &s.Messages[i]
		}
	}
	return nil
}

// MessageCount returns the number of messages.
func (s *ChatSession) MessageCount() int {
	return len(s.Messages)
}

// IsEmpty returns true if there are no messages.
func (s *ChatSession) IsEmpty() bool {
	return len(s.Messages) == 0
}

// =============================================================================
// REACTIONS
// =============================================================================

// ToggleReaction sets the requested reaction on the message with the given
// ID, enforcing mutual exclusivity between helpful and not-helpful.
// Returns false if no message matches.
func (s *ChatSession) ToggleReaction(messageID string, kind ReactionKind, value bool) bool {
	msg := s.MessageByID(messageID)
	if msg == nil {
		return false
	}
	msg.Reactions.Set(kind, value)
	s.UpdatedAt = time.Now()
	return true
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle computes a session title from the first user message:
// the first TitleMaxRunes runes, with "..." appended when the message is
// longer. Sessions without a user message are titled DefaultTitle.
// Newlines are flattened to spaces so titles stay single-line.
func DeriveTitle(msgs []Message) string {
	for _, msg := range msgs {
		if msg.Sender != SenderUser || msg.Text == "" {
			continue
		}
		title := strings.ReplaceAll(msg.Text, "\n", " ")
		title = strings.ReplaceAll(title, "\r", "")
		runes := []rune(title)
		if len(runes) > TitleMaxRunes {
			return string(runes[:TitleMaxRunes]) + "..."
		}
		return title
	}
	return DefaultTitle
}

// =============================================================================
// LISTING METADATA
// =============================================================================

// SessionMeta holds lightweight metadata for listing sessions.
type SessionMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Meta returns metadata about the session.
func (s *ChatSession) Meta() SessionMeta {
	return SessionMeta{
		ID:           s.ID,
		Title:        s.Title,
		MessageCount: len(s.Messages),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// Clone creates a deep copy of the session.
func (s *ChatSession) Clone() *ChatSession {
	clone := &ChatSession{
		ID:        s.ID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  make([]Message, len(s.Messages)),
	}
	copy(clone.Messages, s.Messages)
	return clone
}
