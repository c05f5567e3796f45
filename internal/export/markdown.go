// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/dishalabs/disha-tui/internal/model"
	"github.com/dishalabs/disha-tui/internal/speech"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports sessions to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a session to Markdown format.
func (e *MarkdownExporter) Export(session *model.ChatSession) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if len(session.Messages) == 0 {
		return nil, fmt.Errorf("session has no messages")
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(session.Title)))
		sb.WriteString(fmt.Sprintf("date: %s\n", session.CreatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("updated: %s\n", session.UpdatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(session.Messages)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("generator: disha\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# %s\n\n", session.Title))

	if e.options.IncludeMetadata {
		sb.WriteString("## Session Information\n\n")
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", formatTimestamp(session.CreatedAt)))
		sb.WriteString(fmt.Sprintf("- **Last Updated**: %s\n", formatTimestamp(session.UpdatedAt)))
		sb.WriteString(fmt.Sprintf("- **Messages**: %d\n", len(session.Messages)))
		if langs := sessionLanguages(session); len(langs) > 0 {
			sb.WriteString(fmt.Sprintf("- **Languages**: %s\n", strings.Join(langs, ", ")))
		}
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString("## Conversation\n\n")

	for i, msg := range session.Messages {
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
				msg.Sender.DisplayName(),
				formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", msg.Sender.DisplayName()))
		}

		sb.WriteString(msg.Text)
		sb.WriteString("\n\n")

		if feedback := formatReactions(msg.Reactions); feedback != "" {
			sb.WriteString(feedback)
			sb.WriteString("\n\n")
		}

		if i < len(session.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n*Exported from disha career guidance*\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// HELPERS
// =============================================================================

func formatReactions(r model.Reactions) string {
	switch {
	case r.Helpful:
		return "> Marked helpful"
	case r.NotHelpful:
		return "> Marked not helpful"
	default:
		return ""
	}
}

// sessionLanguages returns the display names of the languages used in the
// session, in order of first appearance.
func sessionLanguages(session *model.ChatSession) []string {
	seen := map[string]bool{}
	var langs []string
	for _, msg := range session.Messages {
		if msg.Language == "" || seen[msg.Language] {
			continue
		}
		seen[msg.Language] = true
		langs = append(langs, speech.DisplayName(msg.Language))
	}
	return langs
}

// escapeYAML quotes a string for a YAML frontmatter value when needed.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#{}[]&*!|>'\"%@`") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
