// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
)

// =============================================================================
// BACKEND INTERFACES
// =============================================================================

// Recognizer turns microphone audio into a transcript.
type Recognizer interface {
	// Recognize captures one utterance in the given language and returns
	// its transcript. It blocks until the utterance ends, the backend
	// gives up, or ctx is cancelled.
	Recognize(ctx context.Context, language string) (string, error)
}

// Synthesizer voices text aloud.
type Synthesizer interface {
	// Voices lists the voices the backend offers.
	Voices() []Voice
	// Speak voices text, blocking until playback finishes or ctx is
	// cancelled. A zero Voice means the backend default.
	Speak(ctx context.Context, text string, voice Voice, rate float64) error
}

// ErrNoSpeech is returned when recognition completes without a transcript.
var ErrNoSpeech = errors.New("no speech detected")

// =============================================================================
// COMMAND RECOGNIZER
// =============================================================================

// CommandRecognizer shells out to a speech-to-text tool that prints the
// transcript on stdout. The argument placeholder "{language}" is replaced
// with the requested language tag.
type CommandRecognizer struct {
	Path string
	Args []string
}

func (r *CommandRecognizer) Recognize(ctx context.Context, language string) (string, error) {
	args := make([]string, len(r.Args))
	for i, arg := range r.Args {
		args[i] = strings.ReplaceAll(arg, "{language}", language)
	}

	out, err := exec.CommandContext(ctx, r.Path, args...).Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}

	transcript := strings.TrimSpace(string(out))
	if transcript == "" {
		return "", ErrNoSpeech
	}
	return transcript, nil
}

// =============================================================================
// COMMAND SYNTHESIZER
// =============================================================================

// espeak-ng speaks at 175 words per minute by default; the rate knob
// scales that.
const espeakBaseWPM = 175

// CommandSynthesizer shells out to espeak-ng (or a compatible tool).
type CommandSynthesizer struct {
	Path      string
	VoiceList []Voice
}

// NewEspeakSynthesizer returns a synthesizer configured for espeak-ng
// with voices covering the supported languages.
func NewEspeakSynthesizer() *CommandSynthesizer {
	return &CommandSynthesizer{
		Path: "espeak-ng",
		// espeak-ng ships family-level voices for the Indian languages,
		// which the exact-then-family matcher resolves against.
		VoiceList: []Voice{
			{Name: "en-us", Tag: "en-US"},
			{Name: "en-in", Tag: "en-IN"},
			{Name: "hi", Tag: "hi"},
			{Name: "ta", Tag: "ta"},
			{Name: "te", Tag: "te"},
			{Name: "bn", Tag: "bn"},
			{Name: "mr", Tag: "mr"},
			{Name: "gu", Tag: "gu"},
			{Name: "kn", Tag: "kn"},
			{Name: "ml", Tag: "ml"},
			{Name: "pa", Tag: "pa"},
			{Name: "ur", Tag: "ur"},
		},
	}
}

func (s *CommandSynthesizer) Voices() []Voice {
	return s.VoiceList
}

func (s *CommandSynthesizer) Speak(ctx context.Context, text string, voice Voice, rate float64) error {
	var args []string
	if voice.Name != "" {
		args = append(args, "-v", voice.Name)
	}
	if rate > 0 {
		args = append(args, "-s", strconv.Itoa(int(rate*espeakBaseWPM)))
	}
	args = append(args, "--", text)

	if err := exec.CommandContext(ctx, s.Path, args...).Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
