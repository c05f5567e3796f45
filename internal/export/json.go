// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"

	"github.com/dishalabs/disha-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports sessions to JSON format.
// JSON exports always include the complete session data structure so the
// output is a faithful copy of the stored session and can be re-imported.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export converts a session to indented JSON.
func (e *JSONExporter) Export(session *model.ChatSession) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}
	return json.MarshalIndent(session, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
