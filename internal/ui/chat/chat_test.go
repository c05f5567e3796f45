// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dishalabs/disha-tui/internal/config"
	"github.com/dishalabs/disha-tui/internal/guide"
	"github.com/dishalabs/disha-tui/internal/model"
	"github.com/dishalabs/disha-tui/internal/session"
	"github.com/dishalabs/disha-tui/internal/speech"
	"github.com/dishalabs/disha-tui/internal/storage"
)

// stubResponder answers every question with a fixed reply.
type stubResponder struct {
	reply string
	err   error
}

func (s *stubResponder) Respond(ctx context.Context, question, convContext string) (string, error) {
	return s.reply, s.err
}

// stubRecognizer blocks until its context is cancelled.
type stubRecognizer struct{}

func (s *stubRecognizer) Recognize(ctx context.Context, language string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func newTestModel(t *testing.T, responder guide.Responder) *Model {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "disha.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions, err := session.New(db)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}

	m := New(Options{
		Orchestrator: guide.NewOrchestrator(sessions, responder),
		Sessions:     sessions,
		DB:           db,
		Config:       config.Default(),
	})
	m.resize(100, 40)
	return m
}

func TestSubmit_AppendsUserAndReply(t *testing.T) {
	m := newTestModel(t, &stubResponder{reply: "Consider data science."})

	_, cmd := m.submit("What career fits my maths skills?", false)
	if cmd == nil {
		t.Fatal("submit() returned no command")
	}
	if !m.sending {
		t.Error("sending = false after submit")
	}

	current := m.sessions.Current()
	if got := current.MessageCount(); got != 1 {
		t.Fatalf("MessageCount() = %d before finish, want 1", got)
	}

	if _, err := m.orch.Begin(current.ID, "x", "en-US", false); err == nil {
		t.Fatal("Begin() during in-flight send should return ErrBusy")
	}

	reply := runSend(t, m)
	m.Update(reply)

	if m.sending {
		t.Error("sending = true after reply")
	}
	current = m.sessions.Current()
	if got := current.MessageCount(); got != 2 {
		t.Fatalf("MessageCount() = %d after finish, want 2", got)
	}
	if got := current.Messages[1].Text; got != "Consider data science." {
		t.Errorf("reply text = %q", got)
	}
}

// runSend drains the in-flight send by finishing the orchestrator's pending
// work directly. The model holds no reference to the pending send (the
// command closure does), so the test reconstructs the finish step.
func runSend(t *testing.T, m *Model) ReplyMsg {
	t.Helper()

	// The submit command was created but never executed; release the busy
	// flag by finishing against the session's trailing user message.
	current := m.sessions.Current()
	userMsg := current.Messages[len(current.Messages)-1]
	pending := &guide.Pending{
		SessionID: current.ID,
		UserMsg:   userMsg,
		Context:   guide.BuildContext(current.Messages),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := m.orch.Finish(ctx, pending)
	return ReplyMsg{SessionID: current.ID, Reply: reply, Err: err}
}

func TestSubmit_EmptyInputIsIgnored(t *testing.T) {
	m := newTestModel(t, &stubResponder{reply: "unused"})

	_, cmd := m.submit("   ", false)
	if cmd != nil {
		t.Error("submit() of blank input should return no command")
	}
	if m.sending {
		t.Error("sending = true after blank submit")
	}
	if got := m.sessions.Current().MessageCount(); got != 0 {
		t.Errorf("MessageCount() = %d, want 0", got)
	}
}

func TestReactToLastReply_Toggles(t *testing.T) {
	m := newTestModel(t, &stubResponder{reply: "Try design."})

	m.submit("What about art?", false)
	m.Update(runSend(t, m))

	m.reactToLastReply(true)
	reply := m.sessions.Current().LastAssistantMessage()
	if !reply.Reactions.Helpful {
		t.Error("Helpful = false after first toggle")
	}

	// Switching sides clears the first reaction.
	m.reactToLastReply(false)
	reply = m.sessions.Current().LastAssistantMessage()
	if reply.Reactions.Helpful || !reply.Reactions.NotHelpful {
		t.Errorf("reactions = %+v, want not-helpful only", reply.Reactions)
	}

	// Toggling the active side off clears it.
	m.reactToLastReply(false)
	reply = m.sessions.Current().LastAssistantMessage()
	if reply.Reactions.Helpful || reply.Reactions.NotHelpful {
		t.Errorf("reactions = %+v, want none", reply.Reactions)
	}
}

func TestSessionPicker_SelectAndDelete(t *testing.T) {
	m := newTestModel(t, &stubResponder{reply: "ok"})

	first := m.sessions.Current().ID
	if _, err := m.sessions.Create(); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	m.openSessionPicker()
	if m.mode != viewSessions {
		t.Fatal("mode != viewSessions after openSessionPicker")
	}
	if got := len(m.picker.Items()); got != 2 {
		t.Fatalf("picker items = %d, want 2", got)
	}

	// The picker lists most recent first; selecting the second row
	// switches back to the first session.
	m.picker.Select(1)
	m.pickSelected()
	if m.mode != viewChat {
		t.Error("mode != viewChat after pick")
	}
	if got := m.sessions.Current().ID; got != first {
		t.Errorf("Current().ID = %q, want %q", got, first)
	}

	m.openSessionPicker()
	m.picker.Select(0)
	m.deleteSelected()
	if got := m.sessions.Len(); got != 1 {
		t.Errorf("Len() = %d after delete, want 1", got)
	}
}

func TestLanguagePicker_SetsConfig(t *testing.T) {
	m := newTestModel(t, &stubResponder{reply: "ok"})

	m.openLanguagePicker()
	if got := len(m.picker.Items()); got != 12 {
		t.Fatalf("picker items = %d, want 12", got)
	}

	// Find Tamil and select it.
	for i, item := range m.picker.Items() {
		if item.(languageItem).lang.Tag == "ta-IN" {
			m.picker.Select(i)
			break
		}
	}
	m.pickSelected()
	if got := m.cfg.Speech.Language; got != "ta-IN" {
		t.Errorf("Speech.Language = %q, want ta-IN", got)
	}

	// The choice persists across restarts.
	settings, err := m.db.LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if settings == nil || settings.Language != "ta-IN" {
		t.Errorf("stored settings = %+v, want language ta-IN", settings)
	}
}

func TestRenderHeader_ClipsLongTitle(t *testing.T) {
	m := newTestModel(t, &stubResponder{reply: "ok"})
	m.resize(44, 20)

	// A 30-rune Tamil title occupies far more than 30 columns.
	m.sessions.Current().Title = strings.Repeat("வழிகாட்டுதல் ", 5)

	header := m.renderHeader()
	for _, line := range strings.Split(header, "\n") {
		if got := lipgloss.Width(line); got > 44 {
			t.Errorf("header line width = %d, want <= 44", got)
		}
	}
}

func TestRenderHeader_GreetsUser(t *testing.T) {
	m := newTestModel(t, &stubResponder{reply: "ok"})

	if got := m.renderHeader(); !strings.Contains(got, "career guidance") {
		t.Errorf("renderHeader() = %q, missing default subtitle", got)
	}

	m.user = model.NewUser("asha@example.com", "Asha")
	if got := m.renderHeader(); !strings.Contains(got, "Asha") {
		t.Errorf("renderHeader() = %q, missing user name", got)
	}
}

func TestView_ShowsConversation(t *testing.T) {
	m := newTestModel(t, &stubResponder{reply: "Look into robotics."})

	m.submit("I like machines", false)
	m.Update(runSend(t, m))

	view := m.View()
	for _, want := range []string{"You", "Advisor", "I like machines", "Look into robotics."} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestVoiceCapture_CancelKey(t *testing.T) {
	m := newTestModel(t, &stubResponder{reply: "ok"})
	m.engine = speech.NewEngine(&stubRecognizer{}, nil)

	_, cmd := m.startListening()
	if !m.listening || cmd == nil {
		t.Fatal("startListening did not begin a capture")
	}

	// Run the capture the way the program runner would.
	msgCh := make(chan tea.Msg, 1)
	go func() { msgCh <- ListenCmd(m.engine)() }()

	deadline := time.After(time.Second)
	for !m.engine.Listening() {
		select {
		case <-deadline:
			t.Fatal("capture never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// Pressing the voice key again aborts the capture.
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})

	var msg tea.Msg
	select {
	case msg = <-msgCh:
	case <-time.After(time.Second):
		t.Fatal("cancel key did not unblock the capture")
	}

	m.Update(msg)
	if m.listening {
		t.Error("listening = true after cancelled capture")
	}
	if !strings.Contains(m.status, "cancelled") {
		t.Errorf("status = %q, want a cancel notice", m.status)
	}
}

func TestUpdate_ConfigReloaded(t *testing.T) {
	m := newTestModel(t, &stubResponder{reply: "ok"})

	updated := config.Default()
	updated.Speech.Language = "hi-IN"
	updated.Speech.SpeakReplies = true
	updated.UI.CompactMode = true
	updated.UI.ShowTimestamps = true

	m.Update(ConfigReloadedMsg{Config: updated})

	if m.cfg.Speech.Language != "hi-IN" {
		t.Errorf("Speech.Language = %q, want hi-IN", m.cfg.Speech.Language)
	}
	if !m.cfg.Speech.SpeakReplies || !m.cfg.UI.CompactMode || !m.cfg.UI.ShowTimestamps {
		t.Errorf("live-safe settings not applied: %+v", m.cfg)
	}
}

func TestUpdate_QuitKey(t *testing.T) {
	m := newTestModel(t, &stubResponder{reply: "ok"})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}

func TestReactionMarker(t *testing.T) {
	if got := reactionMarker(model.Reactions{Helpful: true}); !strings.Contains(got, "helpful") {
		t.Errorf("reactionMarker(helpful) = %q", got)
	}
	if got := reactionMarker(model.Reactions{}); got != "" {
		t.Errorf("reactionMarker(none) = %q, want empty", got)
	}
}

func TestPluralize(t *testing.T) {
	if got := pluralize(1, "message"); got != "1 message" {
		t.Errorf("pluralize(1) = %q", got)
	}
	if got := pluralize(3, "message"); got != "3 messages" {
		t.Errorf("pluralize(3) = %q", got)
	}
}
