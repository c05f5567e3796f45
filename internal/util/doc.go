// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across disha: UTF-8 safe
// string truncation (important for the Indic scripts the chat handles)
// and crash-safe file writing.
package util
