// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Options holds model sampling parameters sent with a generate request.
type Options struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
}

// GenerateRequest is the body for POST /api/generate.
type GenerateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *Options `json:"options,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// GenerateResponse is the body returned by a non-streaming generate call.
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// ModelInfo describes one locally installed model, as reported by /api/tags.
type ModelInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	Digest     string `json:"digest"`
	ModifiedAt string `json:"modified_at"`
}

// ListModelsResponse is the body returned by GET /api/tags.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// APIError is the error body Ollama returns on non-200 responses.
type APIError struct {
	Error string `json:"error"`
}
