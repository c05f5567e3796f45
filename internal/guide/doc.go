// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package guide implements the career-guidance conversation flow.
//
// The Advisor turns a student's question into a model prompt (persona,
// trailing conversation context, question) and always produces an answer:
// when the model server is unreachable or errors out, it degrades to a
// canned offline response rather than surfacing a transport error.
//
// The Orchestrator drives a send end to end: it guards against concurrent
// sends, appends the user's message immediately so the conversation shows
// it before the reply arrives, asks the Advisor for a response, persists
// the assistant reply, and optionally speaks it aloud.
package guide
