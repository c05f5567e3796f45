// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the in-memory chat session list.
//
// The Store is the single owner of session state: every mutation goes
// through it and is written through to durable storage immediately, so the
// persisted mirror never has an independent lifecycle. The list is kept
// most-recent-first, and there is always a current session whenever the
// list is non-empty.
package session
