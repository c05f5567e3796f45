// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable key-value persistence for disha.
//
// It mirrors the browser-local storage model the session data originally
// lived in: a handful of string keys, each mapping to a whole JSON blob
// that is read and written in full. The backing store is a single SQLite
// database so writes survive crashes without hand-rolled atomic-rename
// dances.
//
// A corrupt stored value is treated as absent rather than an error:
// startup must never fail because of a bad blob.
package storage
