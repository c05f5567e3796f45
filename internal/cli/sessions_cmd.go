// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions_cmd.go - Session management commands for the disha CLI.
//
// Sessions are addressed by 1-based position in the most-recent-first
// listing, matching what "disha session list" prints.

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dishalabs/disha-tui/internal/export"
	"github.com/dishalabs/disha-tui/internal/model"
	"github.com/dishalabs/disha-tui/internal/session"
)

// HandleSessionCommand dispatches "disha session <subcommand>".
func HandleSessionCommand(args Args) error {
	parser := NewArgParser(args.Raw)

	cfg := LoadConfig(args)
	sessions, db, err := OpenSessions(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	switch parser.Subcommand() {
	case "", "list", "ls", "l":
		return sessionList(sessions, args)
	case "show":
		return sessionShow(sessions, parser, cfg.UI.ShowTimestamps)
	case "export":
		return sessionExport(sessions, parser, cfg.UI.ShowTimestamps)
	case "delete":
		return sessionDelete(sessions, parser)
	default:
		return fmt.Errorf("unknown session subcommand %q (try list, show, export, delete)", parser.Subcommand())
	}
}

func sessionList(sessions *session.Store, args Args) error {
	metas := sessions.List()

	if args.JSON {
		out, err := json.MarshalIndent(metas, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(metas) == 0 {
		fmt.Println(DimStyle.Render("No sessions yet."))
		return nil
	}
	printSessionList(sessions)
	return nil
}

func sessionShow(sessions *session.Store, parser *ArgParser, timestamps bool) error {
	target, err := sessionByNumber(sessions, parser.Positional(1))
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render(target.Title))
	printTranscript(target, timestamps)
	return nil
}

func sessionExport(sessions *session.Store, parser *ArgParser, timestamps bool) error {
	target, err := sessionByNumber(sessions, parser.Positional(1))
	if err != nil {
		return err
	}

	format := parser.FlagOrDefault("format", "md")
	outputDir := parser.FlagOrDefault("output", ".")

	path, err := exportSession(target, format, outputDir, timestamps)
	if err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Exported to " + path))
	return nil
}

func sessionDelete(sessions *session.Store, parser *ArgParser) error {
	target, err := sessionByNumber(sessions, parser.Positional(1))
	if err != nil {
		return err
	}
	if !parser.BoolFlag("confirm") {
		return fmt.Errorf("deleting %q requires --confirm", target.Title)
	}
	if err := sessions.Delete(target.ID); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Deleted: " + target.Title))
	return nil
}

// sessionByNumber resolves a 1-based session number to a session.
func sessionByNumber(sessions *session.Store, arg string) (*model.ChatSession, error) {
	if arg == "" {
		return nil, fmt.Errorf("session number required (see disha session list)")
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > sessions.Len() {
		return nil, fmt.Errorf("invalid session number %q", arg)
	}
	meta := sessions.List()[n-1]
	target := sessions.Get(meta.ID)
	if target == nil {
		return nil, session.ErrSessionNotFound
	}
	return target, nil
}

// exportSession writes the session in the given format and returns the
// output path. Shared with the chat REPL's /export command.
func exportSession(target *model.ChatSession, format, outputDir string, timestamps bool) (string, error) {
	if target == nil {
		return "", session.ErrSessionNotFound
	}

	opts := export.DefaultOptions()
	opts.OutputDir = outputDir
	opts.IncludeTimestamps = timestamps

	switch format {
	case "md", "markdown":
		return export.ExportMarkdown(target, opts)
	case "json":
		return export.ExportJSON(target, opts)
	default:
		return "", fmt.Errorf("unsupported export format %q (md or json)", format)
	}
}
