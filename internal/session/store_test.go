// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/dishalabs/disha-tui/internal/model"
	"github.com/dishalabs/disha-tui/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Store) {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "disha.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := New(db)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store, db
}

func TestNew_CreatesSessionWhenEmpty(t *testing.T) {
	store, db := newTestStore(t)

	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
	current := store.Current()
	if current == nil {
		t.Fatal("Current() = nil, want a fresh session")
	}
	if current.Title != model.DefaultTitle {
		t.Errorf("Title = %q, want %q", current.Title, model.DefaultTitle)
	}

	// The fresh session must already be persisted.
	persisted, err := db.LoadSessions()
	if err != nil {
		t.Fatalf("LoadSessions() error = %v", err)
	}
	if len(persisted) != 1 || persisted[0].ID != current.ID {
		t.Errorf("persisted sessions = %v, want [%s]", persisted, current.ID)
	}
}

func TestNew_LoadsExistingAndSelectsNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disha.db")

	db, err := storage.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	older := model.NewChatSession()
	newer := model.NewChatSession()
	if err := db.SaveSession(older); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if err := db.SaveSession(newer); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	store, err := New(db)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}
	if got := store.Current().ID; got != newer.ID {
		t.Errorf("Current().ID = %s, want newest %s", got, newer.ID)
	}
}

func TestCreate_PrependsAndBecomesCurrent(t *testing.T) {
	store, _ := newTestStore(t)
	first := store.Current()

	second, err := store.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	metas := store.List()
	if len(metas) != 2 {
		t.Fatalf("List() len = %d, want 2", len(metas))
	}
	if metas[0].ID != second.ID || metas[1].ID != first.ID {
		t.Errorf("List() order = [%s %s], want [%s %s]",
			metas[0].ID, metas[1].ID, second.ID, first.ID)
	}
	if store.Current().ID != second.ID {
		t.Errorf("Current().ID = %s, want %s", store.Current().ID, second.ID)
	}
}

func TestSelect(t *testing.T) {
	store, _ := newTestStore(t)
	first := store.Current()
	if _, err := store.Create(); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.Select(first.ID); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if store.Current().ID != first.ID {
		t.Errorf("Current().ID = %s, want %s", store.Current().ID, first.ID)
	}

	err := store.Select("no-such-session")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Select(unknown) error = %v, want ErrSessionNotFound", err)
	}
	if store.Current().ID != first.ID {
		t.Error("failed Select must not change the current session")
	}
}

func TestDelete_PromotesFirstRemaining(t *testing.T) {
	store, db := newTestStore(t)
	first := store.Current()
	second, _ := store.Create()
	third, _ := store.Create()

	// Delete the current (third): the first remaining (second) takes over.
	if err := store.Delete(third.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Current().ID != second.ID {
		t.Errorf("Current().ID = %s, want %s", store.Current().ID, second.ID)
	}

	// Delete a non-current session: current is untouched.
	if err := store.Delete(first.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Current().ID != second.ID {
		t.Errorf("Current().ID = %s, want %s", store.Current().ID, second.ID)
	}

	persisted, err := db.LoadSessions()
	if err != nil {
		t.Fatalf("LoadSessions() error = %v", err)
	}
	if len(persisted) != 1 || persisted[0].ID != second.ID {
		t.Errorf("persisted = %d sessions, want only %s", len(persisted), second.ID)
	}
}

func TestDelete_LastSessionCreatesFresh(t *testing.T) {
	store, _ := newTestStore(t)
	only := store.Current()
	only.SetMessages([]model.Message{model.NewUserMessage("hello", "en-US")})

	if err := store.Delete(only.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	current := store.Current()
	if current == nil {
		t.Fatal("Current() = nil after deleting last session")
	}
	if current.ID == only.ID {
		t.Error("replacement session must have a new identity")
	}
	if len(current.Messages) != 0 || current.Title != model.DefaultTitle {
		t.Errorf("replacement session not fresh: title=%q messages=%d",
			current.Title, len(current.Messages))
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestDelete_Unknown(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Delete("no-such-session"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Delete(unknown) error = %v, want ErrSessionNotFound", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestDelete_StorageFailureKeepsList(t *testing.T) {
	store, db := newTestStore(t)
	if _, err := store.Create(); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	target := store.Current().ID

	// With the database gone, the delete fails and the in-memory list
	// must still match what remains on disk.
	db.Close()
	if err := store.Delete(target); err == nil {
		t.Fatal("Delete() error = nil with a closed database")
	}
	if store.Len() != 2 {
		t.Errorf("Len() = %d after failed delete, want 2", store.Len())
	}
	if store.Get(target) == nil {
		t.Error("failed delete must keep the session in the list")
	}
}

func TestAppendMessages_DerivesTitleAndPersists(t *testing.T) {
	store, db := newTestStore(t)
	current := store.Current()

	msgs := []model.Message{
		model.NewUserMessage("What career fits my interest in art?", "en-US"),
	}
	if err := store.AppendMessages(current.ID, msgs); err != nil {
		t.Fatalf("AppendMessages() error = %v", err)
	}

	want := "What career fits my interest i..."
	if current.Title != want {
		t.Errorf("Title = %q, want %q", current.Title, want)
	}

	persisted, err := db.LoadSessions()
	if err != nil {
		t.Fatalf("LoadSessions() error = %v", err)
	}
	if len(persisted) != 1 || persisted[0].Title != want {
		t.Errorf("persisted title = %q, want %q", persisted[0].Title, want)
	}
	if len(persisted[0].Messages) != 1 {
		t.Errorf("persisted messages = %d, want 1", len(persisted[0].Messages))
	}
}

func TestToggleReaction_Persists(t *testing.T) {
	store, db := newTestStore(t)
	current := store.Current()

	reply := model.NewAssistantMessage("Consider design school.", "en-US")
	if err := store.AppendMessages(current.ID, []model.Message{reply}); err != nil {
		t.Fatalf("AppendMessages() error = %v", err)
	}

	if err := store.ToggleReaction(current.ID, reply.ID, model.ReactionHelpful, true); err != nil {
		t.Fatalf("ToggleReaction() error = %v", err)
	}

	persisted, _ := db.LoadSessions()
	got := persisted[0].Messages[0].Reactions
	if !got.Helpful || got.NotHelpful {
		t.Errorf("persisted reactions = %+v, want helpful only", got)
	}

	// Unknown message is a silent no-op.
	if err := store.ToggleReaction(current.ID, "missing", model.ReactionHelpful, true); err != nil {
		t.Errorf("ToggleReaction(unknown message) error = %v, want nil", err)
	}
}
