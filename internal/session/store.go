// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"sync"

	"github.com/dishalabs/disha-tui/internal/model"
	"github.com/dishalabs/disha-tui/internal/storage"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrSessionNotFound is returned when an operation names an unknown session.
// Use errors.Is(err, ErrSessionNotFound) to check for it.
var ErrSessionNotFound = errors.New("session not found")

// =============================================================================
// SESSION STORE
// =============================================================================

// Store holds the session list (most-recent-first) and the current
// session, writing through to durable storage on every mutation.
//
// The chat loop is single-threaded, but the CLI and the TUI's async
// commands may touch the store concurrently, so all operations take the
// lock. Last write wins when callers race on the same session.
type Store struct {
	mu sync.Mutex

	db        *storage.Store
	sessions  []*model.ChatSession
	currentID string
}

// New creates a Store, loading any persisted sessions. If none exist, a
// fresh session is created so there is always a current session.
func New(db *storage.Store) (*Store, error) {
	sessions, err := db.LoadSessions()
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:       db,
		sessions: sessions,
	}

	if len(s.sessions) == 0 {
		if _, err := s.Create(); err != nil {
			return nil, err
		}
	} else {
		s.currentID = s.sessions[0].ID
	}

	return s, nil
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// Create allocates a new empty session, prepends it to the list, persists
// it, and makes it current.
func (s *Store) Create() (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *Store) createLocked() (*model.ChatSession, error) {
	session := model.NewChatSession()
	s.sessions = append([]*model.ChatSession{session}, s.sessions...)
	s.currentID = session.ID

	if err := s.db.SaveSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Select makes the session with the given ID current.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		return ErrSessionNotFound
	}
	s.currentID = id
	return nil
}

// Delete removes a session from the list and from storage. When the
// deleted session was current, the first remaining session becomes
// current; when the list empties, a fresh session is created. The store
// therefore never ends up without a current session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		return ErrSessionNotFound
	}

	// Storage first: a failed delete must leave the list matching what is
	// on disk.
	if err := s.db.DeleteSession(id); err != nil {
		return err
	}

	filtered := s.sessions[:0]
	for _, session := range s.sessions {
		if session.ID != id {
			filtered = append(filtered, session)
		}
	}
	s.sessions = filtered

	if s.currentID == id {
		if len(s.sessions) > 0 {
			s.currentID = s.sessions[0].ID
		} else {
			if _, err := s.createLocked(); err != nil {
				return err
			}
		}
	}
	return nil
}

// =============================================================================
// MESSAGE MUTATION
// =============================================================================

// AppendMessages replaces the session's message list wholesale, recomputes
// the derived title and updatedAt, and persists the session.
func (s *Store) AppendMessages(sessionID string, msgs []model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findLocked(sessionID)
	if session == nil {
		return ErrSessionNotFound
	}

	session.SetMessages(msgs)
	return s.db.SaveSession(session)
}

// ToggleReaction applies a reaction toggle to a message in the given
// session and persists the whole session. Unknown message IDs are a no-op.
func (s *Store) ToggleReaction(sessionID, messageID string, kind model.ReactionKind, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.findLocked(sessionID)
	if session == nil {
		return ErrSessionNotFound
	}

	if !session.ToggleReaction(messageID, kind, value) {
		return nil
	}
	return s.db.SaveSession(session)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Current returns the current session.
func (s *Store) Current() *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(s.currentID)
}

// Get returns the session with the given ID, or nil.
func (s *Store) Get(id string) *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

// List returns metadata for all sessions, most-recent-first.
func (s *Store) List() []model.SessionMeta {
	s.mu.Lock()
	defer s.mu.Unlock()

	metas := make([]model.SessionMeta, 0, len(s.sessions))
	for _, session := range s.sessions {
		metas = append(metas, session.Meta())
	}
	return metas
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) findLocked(id string) *model.ChatSession {
	for _, session := range s.sessions {
		if session.ID == id {
			return session
		}
	}
	return nil
}
