// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// DETECTION TESTS
// =============================================================================

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "What career should I choose?", "en-US"},
		{"empty", "", "en-US"},
		{"digits and punctuation", "12345 ?!", "en-US"},
		{"hindi", "मुझे विज्ञान पसंद है", "hi-IN"},
		{"tamil", "எனக்கு கலை பிடிக்கும்", "ta-IN"},
		{"telugu", "నాకు గణితం ఇష్టం", "te-IN"},
		{"bengali", "আমি ইতিহাস ভালোবাসি", "bn-IN"},
		{"gujarati", "મને સંગીત ગમે છે", "gu-IN"},
		{"kannada", "ನನಗೆ ಕಲೆ ಇಷ್ಟ", "kn-IN"},
		{"malayalam", "എനിക്ക് കല ഇഷ്ടമാണ്", "ml-IN"},
		{"punjabi", "ਮੈਨੂੰ ਕਲਾ ਪਸੰਦ ਹੈ", "pa-IN"},
		{"urdu", "مجھے فن پسند ہے", "ur-IN"},
		{"single devanagari char in english", "I like क a lot", "hi-IN"},
		// Devanagari outranks Tamil when scripts are mixed.
		{"mixed hindi and tamil", "கலை और विज्ञान", "hi-IN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.text); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSupportedLanguages(t *testing.T) {
	if len(SupportedLanguages) != 12 {
		t.Fatalf("len(SupportedLanguages) = %d, want 12", len(SupportedLanguages))
	}
	if !IsSupported("ta-IN") {
		t.Error("IsSupported(ta-IN) = false")
	}
	if IsSupported("fr-FR") {
		t.Error("IsSupported(fr-FR) = true")
	}
	if got := DisplayName("ta-IN"); got != "Tamil" {
		t.Errorf("DisplayName(ta-IN) = %q", got)
	}
	if got := DisplayName("xx-XX"); got != "xx-XX" {
		t.Errorf("DisplayName(unknown) = %q, want the tag back", got)
	}
}

// =============================================================================
// VOICE MATCHING TESTS
// =============================================================================

func TestMatchVoice(t *testing.T) {
	voices := []Voice{
		{Name: "en-us", Tag: "en-US"},
		{Name: "hi", Tag: "hi"},
		{Name: "ta-in-f", Tag: "ta-IN"},
	}

	tests := []struct {
		name     string
		tag      string
		want     string
		wantBool bool
	}{
		{"exact match", "ta-IN", "ta-in-f", true},
		{"family fallback", "hi-IN", "hi", true},
		{"case insensitive exact", "en-us", "en-us", true},
		{"no match", "ml-IN", "", false},
		{"invalid tag", "???", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voice, ok := MatchVoice(voices, tt.tag)
			if ok != tt.wantBool || voice.Name != tt.want {
				t.Errorf("MatchVoice(%q) = (%q, %v), want (%q, %v)",
					tt.tag, voice.Name, ok, tt.want, tt.wantBool)
			}
		})
	}
}

func TestMatchVoice_PrefersExactOverFamily(t *testing.T) {
	voices := []Voice{
		{Name: "hi", Tag: "hi"},
		{Name: "hi-in", Tag: "hi-IN"},
	}
	voice, ok := MatchVoice(voices, "hi-IN")
	if !ok || voice.Name != "hi-in" {
		t.Errorf("MatchVoice(hi-IN) = (%q, %v), want the exact voice", voice.Name, ok)
	}
}

// =============================================================================
// ENGINE FAKES
// =============================================================================

type fakeRecognizer struct {
	mu         sync.Mutex
	transcript string
	err        error
	block      chan struct{} // When set, Recognize waits for close or ctx
	languages  []string
}

func (f *fakeRecognizer) Recognize(ctx context.Context, language string) (string, error) {
	f.mu.Lock()
	f.languages = append(f.languages, language)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.transcript, nil
}

type fakeSynthesizer struct {
	mu     sync.Mutex
	voices []Voice
	spoken []Voice
	block  bool // When set, Speak waits for ctx cancellation
}

func (f *fakeSynthesizer) Voices() []Voice { return f.voices }

func (f *fakeSynthesizer) Speak(ctx context.Context, text string, voice Voice, rate float64) error {
	f.mu.Lock()
	f.spoken = append(f.spoken, voice)
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

// =============================================================================
// ENGINE TESTS
// =============================================================================

func TestEngine_Listen(t *testing.T) {
	recognizer := &fakeRecognizer{transcript: "what career suits me"}
	engine := NewEngine(recognizer, nil)

	if err := engine.SetLanguage("ta-IN"); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}

	transcript, err := engine.Listen(context.Background())
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	if transcript != "what career suits me" {
		t.Errorf("Listen() = %q", transcript)
	}
	if len(recognizer.languages) != 1 || recognizer.languages[0] != "ta-IN" {
		t.Errorf("recognizer saw languages %v, want [ta-IN]", recognizer.languages)
	}
	if engine.Listening() {
		t.Error("Listening() = true after capture finished")
	}
}

func TestEngine_ListenErrorClearsFlag(t *testing.T) {
	recognizer := &fakeRecognizer{err: errors.New("mic busy")}
	engine := NewEngine(recognizer, nil)

	if _, err := engine.Listen(context.Background()); err == nil {
		t.Fatal("Listen() error = nil, want backend error")
	}
	if engine.Listening() {
		t.Error("Listening() = true after failed capture")
	}

	// The engine accepts a new capture after the failure.
	recognizer.err = nil
	recognizer.transcript = "ok"
	if _, err := engine.Listen(context.Background()); err != nil {
		t.Errorf("Listen() after failure error = %v", err)
	}
}

func TestEngine_ConcurrentListenRejected(t *testing.T) {
	block := make(chan struct{})
	recognizer := &fakeRecognizer{transcript: "hello", block: block}
	engine := NewEngine(recognizer, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.Listen(context.Background())
	}()

	// Wait for the first capture to take the flag.
	deadline := time.After(time.Second)
	for !engine.Listening() {
		select {
		case <-deadline:
			t.Fatal("first capture never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := engine.Listen(context.Background()); !errors.Is(err, ErrAlreadyListening) {
		t.Errorf("second Listen() error = %v, want ErrAlreadyListening", err)
	}

	close(block)
	<-done
	if engine.Listening() {
		t.Error("Listening() = true after capture finished")
	}
}

func TestEngine_StopListening(t *testing.T) {
	recognizer := &fakeRecognizer{transcript: "unused", block: make(chan struct{})}
	engine := NewEngine(recognizer, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := engine.Listen(context.Background())
		errCh <- err
	}()

	deadline := time.After(time.Second)
	for !engine.Listening() {
		select {
		case <-deadline:
			t.Fatal("capture never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	engine.StopListening()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Listen() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("StopListening did not cancel the capture")
	}
	if engine.Listening() {
		t.Error("Listening() = true after cancelled capture")
	}

	// Idle stop is a no-op; the engine accepts a new capture afterwards.
	engine.StopListening()
	recognizer.mu.Lock()
	recognizer.block = nil
	recognizer.transcript = "ok"
	recognizer.mu.Unlock()
	if _, err := engine.Listen(context.Background()); err != nil {
		t.Errorf("Listen() after stop error = %v", err)
	}
}

func TestEngine_NoBackends(t *testing.T) {
	engine := NewEngine(nil, nil)

	if engine.RecognitionSupported() || engine.SynthesisSupported() {
		t.Error("capabilities reported without backends")
	}
	if _, err := engine.Listen(context.Background()); !errors.Is(err, ErrNoRecognizer) {
		t.Errorf("Listen() error = %v, want ErrNoRecognizer", err)
	}
	if err := engine.Speak(context.Background(), "hi", ""); !errors.Is(err, ErrNoSynthesizer) {
		t.Errorf("Speak() error = %v, want ErrNoSynthesizer", err)
	}
}

func TestEngine_SetLanguageRejectsUnsupported(t *testing.T) {
	engine := NewEngine(nil, nil)
	if err := engine.SetLanguage("fr-FR"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("SetLanguage(fr-FR) error = %v, want ErrUnsupportedLanguage", err)
	}
	if engine.Language() != "en-US" {
		t.Error("failed SetLanguage must not change the language")
	}
}

func TestEngine_SpeakPicksMatchingVoice(t *testing.T) {
	synthesizer := &fakeSynthesizer{voices: []Voice{
		{Name: "en-us", Tag: "en-US"},
		{Name: "hi", Tag: "hi"},
	}}
	engine := NewEngine(nil, synthesizer)

	if err := engine.Speak(context.Background(), "नमस्ते", "hi-IN"); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if len(synthesizer.spoken) != 1 || synthesizer.spoken[0].Name != "hi" {
		t.Errorf("spoke with %v, want the hi family voice", synthesizer.spoken)
	}

	// No matching voice: speak anyway with the backend default.
	if err := engine.Speak(context.Background(), "வணக்கம்", "ta-IN"); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if synthesizer.spoken[1].Name != "" {
		t.Errorf("spoke with %q, want the default voice", synthesizer.spoken[1].Name)
	}
}

func TestEngine_SpeakPreemptsPrevious(t *testing.T) {
	synthesizer := &fakeSynthesizer{block: true}
	engine := NewEngine(nil, synthesizer)

	errCh := make(chan error, 1)
	go func() {
		errCh <- engine.Speak(context.Background(), "first", "en-US")
	}()

	// Wait for the first utterance to start.
	deadline := time.After(time.Second)
	for {
		synthesizer.mu.Lock()
		started := len(synthesizer.spoken) > 0
		synthesizer.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first utterance never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// The second Speak cancels the first.
	go engine.Speak(context.Background(), "second", "en-US")

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("first Speak() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("first Speak() was not preempted")
	}

	engine.StopSpeaking()
}

func TestEngine_StopSpeaking(t *testing.T) {
	synthesizer := &fakeSynthesizer{block: true}
	engine := NewEngine(nil, synthesizer)

	errCh := make(chan error, 1)
	go func() {
		errCh <- engine.Speak(context.Background(), "long reply", "en-US")
	}()

	deadline := time.After(time.Second)
	for {
		synthesizer.mu.Lock()
		started := len(synthesizer.spoken) > 0
		synthesizer.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("utterance never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	engine.StopSpeaking()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Speak() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("StopSpeaking did not cancel the utterance")
	}
}
