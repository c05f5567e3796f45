// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech provides voice input and output for the chat.
//
// The Engine fronts two pluggable backends: a Recognizer that turns
// microphone audio into a transcript, and a Synthesizer that voices text.
// Both default to external command-line tools so the application has no
// audio stack of its own; fakes stand in for them in tests.
//
// The Engine also hosts script-based language detection, which assigns a
// BCP-47 tag to typed text so replies can be spoken in a matching voice.
package speech
