// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package guide

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dishalabs/disha-tui/internal/model"
	"github.com/dishalabs/disha-tui/internal/offline"
	"github.com/dishalabs/disha-tui/internal/session"
	"github.com/dishalabs/disha-tui/internal/storage"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeModelClient struct {
	reachable bool
	response  string
	err       error
	prompts   []string
}

func (f *fakeModelClient) CheckReachable(ctx context.Context) bool { return f.reachable }

func (f *fakeModelClient) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeResponder struct {
	response string
	err      error
	contexts []string
}

func (f *fakeResponder) Respond(ctx context.Context, question, convContext string) (string, error) {
	f.contexts = append(f.contexts, convContext)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeSpeaker struct {
	spoken    []string
	languages []string
	err       error
}

func (f *fakeSpeaker) Speak(ctx context.Context, text, language string) error {
	f.spoken = append(f.spoken, text)
	f.languages = append(f.languages, language)
	return f.err
}

func newTestSessions(t *testing.T) *session.Store {
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
	return sessions
}

func isOfflineResponse(text string) bool {
	for _, response := range offline.Responses {
		if text == response {
			return true
		}
	}
	return false
}

// =============================================================================
// ADVISOR TESTS
// =============================================================================

func TestAdvisor_OnlineUsesModelResponse(t *testing.T) {
	client := &fakeModelClient{reachable: true, response: "Try animation studios."}
	advisor := NewAdvisor(client)

	text, err := advisor.Respond(context.Background(), "I love drawing", "")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if text != "Try animation studios." {
		t.Errorf("Respond() = %q, want model response", text)
	}

	if len(client.prompts) != 1 {
		t.Fatalf("Generate called %d times, want 1", len(client.prompts))
	}
	prompt := client.prompts[0]
	if !strings.Contains(prompt, "career guidance counselor") {
		t.Error("prompt missing counselor persona")
	}
	if !strings.Contains(prompt, "Student's question: I love drawing") {
		t.Error("prompt missing student's question")
	}
	if strings.Contains(prompt, "Previous conversation context:") {
		t.Error("prompt has context section despite empty context")
	}
}

func TestAdvisor_PromptIncludesContext(t *testing.T) {
	client := &fakeModelClient{reachable: true, response: "ok"}
	advisor := NewAdvisor(client)

	_, err := advisor.Respond(context.Background(), "and next?", "user: hi\nassistant: hello")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.Contains(client.prompts[0], "Previous conversation context: user: hi\nassistant: hello") {
		t.Error("prompt missing conversation context")
	}
}

func TestAdvisor_UnreachableFallsBackWithoutRequest(t *testing.T) {
	client := &fakeModelClient{reachable: false}
	advisor := NewAdvisor(client)

	text, err := advisor.Respond(context.Background(), "hi", "")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !isOfflineResponse(text) {
		t.Errorf("Respond() = %q, want an offline response", text)
	}
	if len(client.prompts) != 0 {
		t.Error("Generate must not be called when the probe fails")
	}
}

func TestAdvisor_GenerateErrorFallsBack(t *testing.T) {
	client := &fakeModelClient{reachable: true, err: errors.New("boom")}
	advisor := NewAdvisor(client)

	text, err := advisor.Respond(context.Background(), "hi", "")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !isOfflineResponse(text) {
		t.Errorf("Respond() = %q, want an offline response", text)
	}
}

func TestAdvisor_CancelledContextReturnsError(t *testing.T) {
	client := &fakeModelClient{reachable: true, err: errors.New("request aborted")}
	advisor := NewAdvisor(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := advisor.Respond(ctx, "hi", "")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Respond() error = %v, want context.Canceled", err)
	}
}

// =============================================================================
// CONTEXT WINDOW TESTS
// =============================================================================

func TestBuildContext(t *testing.T) {
	var msgs []model.Message
	for i := 0; i < 8; i++ {
		sender := model.SenderUser
		if i%2 == 1 {
			sender = model.SenderAssistant
		}
		msgs = append(msgs, model.NewMessage(sender, fmt.Sprintf("m%d", i), "en-US"))
	}

	got := BuildContext(msgs)
	want := "user: m2\nassistant: m3\nuser: m4\nassistant: m5\nuser: m6\nassistant: m7"
	if got != want {
		t.Errorf("BuildContext() =\n%q\nwant\n%q", got, want)
	}
}

func TestBuildContext_ShortConversation(t *testing.T) {
	msgs := []model.Message{
		model.NewUserMessage("hi", "en-US"),
		model.NewAssistantMessage("hello", "en-US"),
	}
	if got := BuildContext(msgs); got != "user: hi\nassistant: hello" {
		t.Errorf("BuildContext() = %q", got)
	}
}

func TestBuildContext_Empty(t *testing.T) {
	if got := BuildContext(nil); got != "" {
		t.Errorf("BuildContext(nil) = %q, want empty", got)
	}
}

// =============================================================================
// ORCHESTRATOR TESTS
// =============================================================================

func TestOrchestrator_Send(t *testing.T) {
	sessions := newTestSessions(t)
	responder := &fakeResponder{response: "Look into UX design."}
	orch := NewOrchestrator(sessions, responder)

	current := sessions.Current()
	reply, err := orch.Send(context.Background(), current.ID, "I like art and computers", "en-US", false)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if reply.Text != "Look into UX design." {
		t.Errorf("reply = %q", reply.Text)
	}
	if reply.Sender != model.SenderAssistant {
		t.Errorf("reply sender = %q, want assistant", reply.Sender)
	}

	msgs := sessions.Current().Messages
	if len(msgs) != 2 {
		t.Fatalf("session has %d messages, want 2", len(msgs))
	}
	if msgs[0].Sender != model.SenderUser || msgs[0].Text != "I like art and computers" {
		t.Errorf("first message = %+v, want the user message", msgs[0])
	}
	if msgs[1].ID != reply.ID {
		t.Error("second message is not the returned reply")
	}
	if orch.Busy() {
		t.Error("Busy() = true after Send completed")
	}

	// The context handed to the advisor includes the just-sent message.
	if len(responder.contexts) != 1 || !strings.Contains(responder.contexts[0], "user: I like art and computers") {
		t.Errorf("advisor context = %q, want it to include the outgoing message", responder.contexts)
	}
}

func TestOrchestrator_EmptyMessageRejected(t *testing.T) {
	sessions := newTestSessions(t)
	orch := NewOrchestrator(sessions, &fakeResponder{response: "x"})

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := orch.Send(context.Background(), sessions.Current().ID, text, "en-US", false)
		if !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Send(%q) error = %v, want ErrEmptyMessage", text, err)
		}
	}
	if len(sessions.Current().Messages) != 0 {
		t.Error("rejected sends must not append messages")
	}
	if orch.Busy() {
		t.Error("Busy() = true after rejected send")
	}
}

func TestOrchestrator_BusyGuard(t *testing.T) {
	sessions := newTestSessions(t)
	orch := NewOrchestrator(sessions, &fakeResponder{response: "x"})
	current := sessions.Current()

	pending, err := orch.Begin(current.ID, "first", "en-US", false)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if !orch.Busy() {
		t.Error("Busy() = false between Begin and Finish")
	}

	if _, err := orch.Begin(current.ID, "second", "en-US", false); !errors.Is(err, ErrBusy) {
		t.Errorf("second Begin() error = %v, want ErrBusy", err)
	}

	if _, err := orch.Finish(context.Background(), pending); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if orch.Busy() {
		t.Error("Busy() = true after Finish")
	}

	// The rejected send left no trace.
	msgs := sessions.Current().Messages
	if len(msgs) != 2 {
		t.Fatalf("session has %d messages, want 2", len(msgs))
	}
	if msgs[0].Text != "first" {
		t.Errorf("first message = %q, want %q", msgs[0].Text, "first")
	}
}

func TestOrchestrator_AdvisorErrorYieldsFailureMessage(t *testing.T) {
	sessions := newTestSessions(t)
	orch := NewOrchestrator(sessions, &fakeResponder{err: context.Canceled})

	reply, err := orch.Send(context.Background(), sessions.Current().ID, "hi", "en-US", false)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if reply.Text != offline.ConnectionFailureMessage {
		t.Errorf("reply = %q, want the connection failure message", reply.Text)
	}
	if len(sessions.Current().Messages) != 2 {
		t.Error("failure reply must still be appended and persisted")
	}
	if orch.Busy() {
		t.Error("Busy() = true after failed send")
	}
}

func TestOrchestrator_VoiceSendSpeaksReply(t *testing.T) {
	sessions := newTestSessions(t)
	speaker := &fakeSpeaker{}
	orch := NewOrchestrator(sessions, &fakeResponder{response: "வணக்கம், கலை நல்லது."}, WithSpeaker(speaker))

	_, err := orch.Send(context.Background(), sessions.Current().ID, "கலை பிடிக்கும்", "ta-IN", true)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(speaker.spoken) != 1 {
		t.Fatalf("Speak called %d times, want 1", len(speaker.spoken))
	}
	if speaker.spoken[0] != "வணக்கம், கலை நல்லது." {
		t.Errorf("spoke %q, want the reply text", speaker.spoken[0])
	}
	if speaker.languages[0] != "ta-IN" {
		t.Errorf("spoke in %q, want ta-IN", speaker.languages[0])
	}
}

func TestOrchestrator_TypedSendDoesNotSpeak(t *testing.T) {
	sessions := newTestSessions(t)
	speaker := &fakeSpeaker{}
	orch := NewOrchestrator(sessions, &fakeResponder{response: "x"}, WithSpeaker(speaker))

	if _, err := orch.Send(context.Background(), sessions.Current().ID, "hi", "en-US", false); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(speaker.spoken) != 0 {
		t.Error("typed sends must not be spoken")
	}
}

func TestOrchestrator_SetSpeakEnabled(t *testing.T) {
	sessions := newTestSessions(t)
	speaker := &fakeSpeaker{}
	orch := NewOrchestrator(sessions, &fakeResponder{response: "x"}, WithSpeaker(speaker))

	if !orch.SpeakEnabled() {
		t.Fatal("SpeakEnabled() = false, want true after WithSpeaker")
	}

	orch.SetSpeakEnabled(false)
	if _, err := orch.Send(context.Background(), sessions.Current().ID, "hi", "en-US", true); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(speaker.spoken) != 0 {
		t.Error("disabled speaking must silence voice replies")
	}

	orch.SetSpeakEnabled(true)
	if _, err := orch.Send(context.Background(), sessions.Current().ID, "again", "en-US", true); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(speaker.spoken) != 1 {
		t.Errorf("Speak called %d times after re-enable, want 1", len(speaker.spoken))
	}
}

func TestOrchestrator_SpeakFailureDoesNotFailSend(t *testing.T) {
	sessions := newTestSessions(t)
	speaker := &fakeSpeaker{err: errors.New("no tts binary")}
	orch := NewOrchestrator(sessions, &fakeResponder{response: "x"}, WithSpeaker(speaker))

	reply, err := orch.Send(context.Background(), sessions.Current().ID, "hi", "en-US", true)
	if err != nil {
		t.Fatalf("Send() error = %v, speak failures must be swallowed", err)
	}
	if reply.Text != "x" {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestOrchestrator_React(t *testing.T) {
	sessions := newTestSessions(t)
	orch := NewOrchestrator(sessions, &fakeResponder{response: "advice"})

	current := sessions.Current()
	reply, err := orch.Send(context.Background(), current.ID, "hi", "en-US", false)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if err := orch.React(current.ID, reply.ID, model.ReactionNotHelpful, true); err != nil {
		t.Fatalf("React() error = %v", err)
	}
	got := sessions.Current().MessageByID(reply.ID).Reactions
	if !got.NotHelpful || got.Helpful {
		t.Errorf("reactions = %+v, want not-helpful only", got)
	}

	// Flipping to helpful clears not-helpful.
	if err := orch.React(current.ID, reply.ID, model.ReactionHelpful, true); err != nil {
		t.Fatalf("React() error = %v", err)
	}
	got = sessions.Current().MessageByID(reply.ID).Reactions
	if !got.Helpful || got.NotHelpful {
		t.Errorf("reactions = %+v, want helpful only", got)
	}
}
