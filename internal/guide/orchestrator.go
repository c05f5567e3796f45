// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package guide

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync/atomic"

	"github.com/dishalabs/disha-tui/internal/model"
	"github.com/dishalabs/disha-tui/internal/offline"
	"github.com/dishalabs/disha-tui/internal/session"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBusy is returned when a send is attempted while one is in flight.
	ErrBusy = errors.New("a send is already in progress")

	// ErrEmptyMessage is returned for blank or whitespace-only input.
	ErrEmptyMessage = errors.New("message is empty")
)

// =============================================================================
// CONTEXT WINDOW
// =============================================================================

// contextWindow is the number of trailing messages included as
// conversation context with each model request.
const contextWindow = 6

// BuildContext renders the trailing context window as "sender: text" lines,
// oldest first. The window is taken after the outgoing user message has
// been appended, so it includes that message.
func BuildContext(msgs []model.Message) string {
	start := len(msgs) - contextWindow
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, len(msgs)-start)
	for _, msg := range msgs[start:] {
		lines = append(lines, msg.Sender.String()+": "+msg.Text)
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// SPEAKER INTERFACE
// =============================================================================

// Speaker voices assistant replies. Implemented by the speech engine.
type Speaker interface {
	Speak(ctx context.Context, text, language string) error
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Responder is the Advisor's interface, split out so the UI layers can be
// tested against a fake.
type Responder interface {
	Respond(ctx context.Context, question, convContext string) (string, error)
}

// Orchestrator drives the send flow against the session store.
//
// A send has two phases so a UI can render between them. Begin validates
// the input, takes the busy flag, and appends the user's message; Finish
// obtains the reply, appends it, and releases the busy flag. Send composes
// both for callers without an intermediate render (the CLI).
type Orchestrator struct {
	sessions *session.Store
	advisor  Responder
	speaker  Speaker
	logger   *log.Logger

	busy atomic.Bool

	// speakEnabled gates spoken replies. Atomic because it is flipped by
	// live config reloads while Finish runs on another goroutine.
	speakEnabled atomic.Bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSpeaker voices assistant replies to voice-originated messages.
// Speaking starts enabled; SetSpeakEnabled turns it off and on.
func WithSpeaker(speaker Speaker) Option {
	return func(o *Orchestrator) {
		o.speaker = speaker
		o.speakEnabled.Store(true)
	}
}

// WithLogger routes diagnostics (spoken-reply failures) to the given logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(sessions *session.Store, advisor Responder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sessions: sessions,
		advisor:  advisor,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Busy reports whether a send is in flight.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// SetSpeakEnabled turns spoken replies off or on without rewiring the
// speaker. Safe to call while a send is in flight.
func (o *Orchestrator) SetSpeakEnabled(enabled bool) {
	o.speakEnabled.Store(enabled)
}

// SpeakEnabled reports whether voice replies would currently be spoken.
func (o *Orchestrator) SpeakEnabled() bool {
	return o.speaker != nil && o.speakEnabled.Load()
}

// =============================================================================
// SEND FLOW
// =============================================================================

// Pending describes a send between Begin and Finish.
type Pending struct {
	SessionID string
	UserMsg   model.Message
	Context   string

	// Voice marks messages that arrived via speech input; the reply to a
	// voice message is spoken aloud.
	Voice bool
}

// Begin starts a send: it validates the input, takes the busy flag, and
// appends the user's message to the session so it is visible immediately.
// Every successful Begin must be paired with exactly one Finish.
func (o *Orchestrator) Begin(sessionID, text, language string, voice bool) (*Pending, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	if !o.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	current := o.sessions.Get(sessionID)
	if current == nil {
		o.busy.Store(false)
		return nil, session.ErrSessionNotFound
	}

	userMsg := model.NewUserMessage(text, language)
	msgs := append(append([]model.Message{}, current.Messages...), userMsg)
	if err := o.sessions.AppendMessages(sessionID, msgs); err != nil {
		o.busy.Store(false)
		return nil, err
	}

	return &Pending{
		SessionID: sessionID,
		UserMsg:   userMsg,
		Context:   BuildContext(msgs),
		Voice:     voice,
	}, nil
}

// Finish completes a send: it obtains the reply (canned connection-failure
// text when the Advisor errors), appends it to the session, optionally
// speaks it, and releases the busy flag.
func (o *Orchestrator) Finish(ctx context.Context, pending *Pending) (model.Message, error) {
	defer o.busy.Store(false)

	text, err := o.advisor.Respond(ctx, pending.UserMsg.Text, pending.Context)
	if err != nil {
		text = offline.ConnectionFailureMessage
	}

	reply := model.NewAssistantMessage(text, pending.UserMsg.Language)

	current := o.sessions.Get(pending.SessionID)
	if current == nil {
		return model.Message{}, session.ErrSessionNotFound
	}
	msgs := append(append([]model.Message{}, current.Messages...), reply)
	if err := o.sessions.AppendMessages(pending.SessionID, msgs); err != nil {
		return model.Message{}, err
	}

	if pending.Voice && o.speaker != nil && o.speakEnabled.Load() {
		// A speech failure must never fail the send.
		if err := o.speaker.Speak(ctx, reply.Text, reply.Language); err != nil {
			o.logger.Printf("speak reply: %v", err)
		}
	}

	return reply, nil
}

// Send runs Begin and Finish back to back.
func (o *Orchestrator) Send(ctx context.Context, sessionID, text, language string, voice bool) (model.Message, error) {
	pending, err := o.Begin(sessionID, text, language, voice)
	if err != nil {
		return model.Message{}, err
	}
	return o.Finish(ctx, pending)
}

// =============================================================================
// REACTIONS
// =============================================================================

// React toggles a helpful/not-helpful reaction on a message and persists
// the session. Mutual exclusivity is enforced by the message model.
func (o *Orchestrator) React(sessionID, messageID string, kind model.ReactionKind, value bool) error {
	return o.sessions.ToggleReaction(sessionID, messageID, kind, value)
}
