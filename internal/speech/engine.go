// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"errors"
	"sync"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoRecognizer is returned when voice input is used without a
	// recognition backend.
	ErrNoRecognizer = errors.New("speech recognition not available")

	// ErrNoSynthesizer is returned when speaking without a synthesis
	// backend.
	ErrNoSynthesizer = errors.New("speech synthesis not available")

	// ErrAlreadyListening is returned when a capture starts while another
	// is running.
	ErrAlreadyListening = errors.New("already listening")

	// ErrUnsupportedLanguage is returned for language tags outside
	// SupportedLanguages.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// defaultRate is the speaking rate, slightly slower than the synthesizer
// default for clarity.
const defaultRate = 0.9

// =============================================================================
// ENGINE
// =============================================================================

// Engine coordinates voice input and output.
//
// At most one capture runs at a time; a second Listen while one is active
// fails with ErrAlreadyListening, the listening flag is cleared on every
// exit path, and StopListening aborts the active capture. Speaking is
// preemptive: a new Speak cancels whatever
// is still being voiced, matching how a chat reads replies aloud.
type Engine struct {
	recognizer  Recognizer
	synthesizer Synthesizer

	mu           sync.Mutex
	language     string
	listening    bool
	listenCancel context.CancelFunc
	speakCancel  context.CancelFunc
	speakGen     int
}

// NewEngine creates an Engine. Either backend may be nil, which disables
// the corresponding capability.
func NewEngine(recognizer Recognizer, synthesizer Synthesizer) *Engine {
	return &Engine{
		recognizer:  recognizer,
		synthesizer: synthesizer,
		language:    "en-US",
	}
}

// RecognitionSupported reports whether voice input is available.
func (e *Engine) RecognitionSupported() bool {
	return e.recognizer != nil
}

// SynthesisSupported reports whether voice output is available.
func (e *Engine) SynthesisSupported() bool {
	return e.synthesizer != nil
}

// SetLanguage sets the language used for capture and as the speaking
// default.
func (e *Engine) SetLanguage(tag string) error {
	if !IsSupported(tag) {
		return ErrUnsupportedLanguage
	}
	e.mu.Lock()
	e.language = tag
	e.mu.Unlock()
	return nil
}

// Language returns the current language tag.
func (e *Engine) Language() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.language
}

// =============================================================================
// LISTENING
// =============================================================================

// Listen captures one utterance in the current language and returns its
// transcript.
func (e *Engine) Listen(ctx context.Context) (string, error) {
	if e.recognizer == nil {
		return "", ErrNoRecognizer
	}

	e.mu.Lock()
	if e.listening {
		e.mu.Unlock()
		return "", ErrAlreadyListening
	}
	e.listening = true
	language := e.language
	listenCtx, cancel := context.WithCancel(ctx)
	e.listenCancel = cancel
	e.mu.Unlock()

	defer func() {
		cancel()
		e.mu.Lock()
		e.listening = false
		e.listenCancel = nil
		e.mu.Unlock()
	}()

	return e.recognizer.Recognize(listenCtx, language)
}

// StopListening cancels a capture in progress. No-op when idle.
func (e *Engine) StopListening() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listenCancel != nil {
		e.listenCancel()
		e.listenCancel = nil
	}
}

// Listening reports whether a capture is in progress.
func (e *Engine) Listening() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listening
}

// =============================================================================
// SPEAKING
// =============================================================================

// Speak voices text in the given language, or the current language when
// the tag is empty. Any utterance still playing is cancelled first.
func (e *Engine) Speak(ctx context.Context, text, tag string) error {
	if e.synthesizer == nil {
		return ErrNoSynthesizer
	}

	e.mu.Lock()
	if tag == "" {
		tag = e.language
	}
	if e.speakCancel != nil {
		e.speakCancel()
	}
	speakCtx, cancel := context.WithCancel(ctx)
	e.speakCancel = cancel
	e.speakGen++
	gen := e.speakGen
	e.mu.Unlock()

	defer func() {
		cancel()
		e.mu.Lock()
		// Only clear our own cancel; a preempting Speak may have already
		// installed its own.
		if e.speakGen == gen {
			e.speakCancel = nil
		}
		e.mu.Unlock()
	}()

	voice, _ := MatchVoice(e.synthesizer.Voices(), tag)
	return e.synthesizer.Speak(speakCtx, text, voice, defaultRate)
}

// StopSpeaking cancels any utterance in progress.
func (e *Engine) StopSpeaking() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speakCancel != nil {
		e.speakCancel()
		e.speakCancel = nil
	}
}
