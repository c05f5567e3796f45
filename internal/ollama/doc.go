// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with a local
// Ollama server.
//
// The client exposes two operations the rest of the application builds on:
// a reachability probe against GET /api/tags and a non-streaming
// POST /api/generate completion call. Probes are rate limited so that a
// burst of sends does not hammer the server with health checks; between
// allowed probes the last verdict is reused.
package ollama
