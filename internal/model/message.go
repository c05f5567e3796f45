// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAssistant:
		return "Advisor"
	default:
		return string(s)
	}
}

// =============================================================================
// REACTIONS TYPE
// =============================================================================

// ReactionKind names one side of the helpful/not-helpful feedback pair.
type ReactionKind string

const (
	ReactionHelpful    ReactionKind = "helpful"
	ReactionNotHelpful ReactionKind = "notHelpful"
)

// Reactions is per-message feedback. The two flags are mutually exclusive:
// setting one to true clears the other. Setting either to false leaves the
// other untouched.
type Reactions struct {
	Helpful    bool `json:"helpful"`
	NotHelpful bool `json:"notHelpful"`
}

// Set applies a reaction toggle, enforcing mutual exclusivity.
func (r *Reactions) Set(kind ReactionKind, value bool) {
	switch kind {
	case ReactionHelpful:
		r.Helpful = value
		if value {
			r.NotHelpful = false
		}
	case ReactionNotHelpful:
		r.NotHelpful = value
		if value {
			r.Helpful = false
		}
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a chat session.
//
// Timestamps are serialized as RFC 3339 strings for compatibility with the
// stored session format. Language carries a BCP-47 tag such as "en-US" or
// "ta-IN", recording the language the message was written (or spoken) in.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Language  string    `json:"language"`

	// Reactions is only meaningful on assistant messages; user messages
	// leave it at the zero value.
	Reactions Reactions `json:"reactions"`
}

// NewMessage creates a message with a generated ID and the current time.
func NewMessage(sender Sender, text, language string) Message {
	return Message{
		ID:        generateID(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
		Language:  language,
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(text, language string) Message {
	return NewMessage(SenderUser, text, language)
}

// NewAssistantMessage creates an assistant message with default reactions.
func NewAssistantMessage(text, language string) Message {
	return NewMessage(SenderAssistant, text, language)
}

// Preview returns a truncated preview of the message text.
// Uses rune-based truncation so multi-byte scripts are never split.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	return uuid.NewString()
}
