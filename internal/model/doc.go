// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// The types here are deliberately plain: a Message is a single utterance
// with a sender, a language tag, and an optional reaction pair; a
// ChatSession is an ordered list of messages with a derived title. All
// derived values (session title, updated timestamps) are pure functions of
// the message list so that persistence and display can recompute them
// safely at any time.
package model
