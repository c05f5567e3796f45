// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for the disha CLI.
//
// Handles "disha ask", which sends one question to the advisor and prints
// the response. No session is created; one-shot questions stay out of the
// chat history.
//
// Examples:
//
//	disha ask "What careers suit biology?"
//	disha ask --model llama3 "इंजीनियरिंग के बाद क्या करें?"
//	disha ask "Career options?" --json

package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/glamour"

	"github.com/dishalabs/disha-tui/internal/guide"
	"github.com/dishalabs/disha-tui/internal/speech"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer renders advisor responses for terminal display.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fall back to plain text if the renderer cannot initialize.
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayResponse prints a response, Markdown-rendered only on a TTY so
// piped output stays plain.
func displayResponse(response string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(response))
	} else {
		fmt.Println(response)
	}
}

// =============================================================================
// ASK COMMAND
// =============================================================================

// askResult is the JSON output shape for --json.
type askResult struct {
	Question string `json:"question"`
	Response string `json:"response"`
	Language string `json:"language"`
	Model    string `json:"model"`
	Online   bool   `json:"online"`
}

// HandleAskCommand answers a single question and exits.
func HandleAskCommand(args Args) error {
	if args.Query == "" {
		return fmt.Errorf("usage: disha ask \"your question\"")
	}

	cfg := LoadConfig(args)
	client := NewOllamaClient(cfg)
	advisor := guide.NewAdvisor(client)

	ctx := context.Background()
	online := client.CheckReachable(ctx)
	if !online && !args.Quiet && !args.JSON {
		fmt.Println(WarningStyle.Render("Ollama is not reachable; answering offline."))
	}

	response, err := advisor.Respond(ctx, args.Query, "")
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if args.JSON {
		out, err := json.MarshalIndent(askResult{
			Question: args.Query,
			Response: response,
			Language: speech.DetectLanguage(args.Query),
			Model:    client.Model(),
			Online:   online,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	displayResponse(response)
	return nil
}
