// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import "golang.org/x/text/language"

// Voice describes one synthesizer voice.
type Voice struct {
	// Name is the backend's identifier for the voice.
	Name string
	// Tag is the BCP-47 language tag the voice speaks.
	Tag string
}

// MatchVoice picks the best voice for a language tag:
//
//  1. A voice with the exact tag.
//  2. A voice in the same language family (base language), so "hi-IN"
//     can fall back to a plain "hi" voice.
//  3. No voice (ok=false); the caller speaks with the backend default.
//
// Tags are compared through x/text parsing so case and formatting
// differences ("en-us" vs "en-US") do not break the match.
func MatchVoice(voices []Voice, tag string) (Voice, bool) {
	want, err := language.Parse(tag)
	if err != nil {
		return Voice{}, false
	}

	for _, voice := range voices {
		got, err := language.Parse(voice.Tag)
		if err != nil {
			continue
		}
		if got == want {
			return voice, true
		}
	}

	wantBase, _ := want.Base()
	for _, voice := range voices {
		got, err := language.Parse(voice.Tag)
		if err != nil {
			continue
		}
		if gotBase, _ := got.Base(); gotBase == wantBase {
			return voice, true
		}
	}

	return Voice{}, false
}
