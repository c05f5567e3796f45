// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"

	"github.com/dishalabs/disha-tui/internal/model"
)

// Storage keys. These match the original browser-storage key names so the
// stored blobs remain recognizable across tooling.
const (
	KeyUser     = "career_chat_user"
	KeySessions = "career_chat_sessions"
	KeySettings = "career_chat_settings"
)

// Settings holds user preferences persisted alongside the chat data.
type Settings struct {
	// Language is the preferred spoken/written language tag.
	Language string `json:"language"`
	// SpeakReplies enables speaking assistant replies to voice input.
	SpeakReplies bool `json:"speakReplies"`
}

// =============================================================================
// USER RECORD
// =============================================================================

// LoadUser reads the stored user record. A missing or corrupt record
// returns nil with no error.
func (s *Store) LoadUser() (*model.User, error) {
	data, ok, err := s.Get(KeyUser)
	if err != nil || !ok {
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		// Corrupt record: treat as absent, never fail startup.
		return nil, nil
	}
	return &user, nil
}

// SaveUser writes the user record.
func (s *Store) SaveUser(user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.Put(KeyUser, data)
}

// DeleteUser removes the stored user record.
func (s *Store) DeleteUser() error {
	return s.Delete(KeyUser)
}

// =============================================================================
// SESSION LIST
// =============================================================================

// LoadSessions reads the full session list, most-recent-first. A missing
// or corrupt list returns an empty slice with no error.
func (s *Store) LoadSessions() ([]*model.ChatSession, error) {
	data, ok, err := s.Get(KeySessions)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*model.ChatSession{}, nil
	}

	var sessions []*model.ChatSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return []*model.ChatSession{}, nil
	}
	return sessions, nil
}

// SaveSessions writes the full session list, preserving order.
func (s *Store) SaveSessions(sessions []*model.ChatSession) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	return s.Put(KeySessions, data)
}

// SaveSession upserts a single session into the stored list: new sessions
// are inserted at the front, existing ones are replaced in place.
func (s *Store) SaveSession(session *model.ChatSession) error {
	sessions, err := s.LoadSessions()
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range sessions {
		if existing.ID == session.ID {
			sessions[i] = session
			replaced = true
			break
		}
	}
	if !replaced {
		sessions = append([]*model.ChatSession{session}, sessions...)
	}

	return s.SaveSessions(sessions)
}

// DeleteSession removes a session from the stored list by ID.
// Unknown IDs are a no-op.
func (s *Store) DeleteSession(id string) error {
	sessions, err := s.LoadSessions()
	if err != nil {
		return err
	}

	filtered := sessions[:0]
	for _, session := range sessions {
		if session.ID != id {
			filtered = append(filtered, session)
		}
	}

	return s.SaveSessions(filtered)
}

// =============================================================================
// SETTINGS
// =============================================================================

// LoadSettings reads the stored settings. A missing or corrupt value
// returns nil with no error.
func (s *Store) LoadSettings() (*Settings, error) {
	data, ok, err := s.Get(KeySettings)
	if err != nil || !ok {
		return nil, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, nil
	}
	return &settings, nil
}

// SaveSettings writes the settings record.
func (s *Store) SaveSettings(settings *Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.Put(KeySettings, data)
}
