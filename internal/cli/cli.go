// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for disha.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdStatus
	CmdConfig
	CmdSession
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet    bool
	Verbose  bool
	JSON     bool
	Model    string
	Language string
	NoSpeak  bool

	// Command-specific
	Query      string
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `disha - multilingual career guidance in your terminal

Disha is a career guidance assistant for students. It answers questions
about careers, courses, exams, and skills using a local Ollama model,
with canned fallbacks when the model server is offline.

It provides:
  - Chat sessions persisted locally in SQLite
  - Twelve supported languages with script-based detection
  - Optional voice input and spoken replies
  - Markdown and JSON session export

Usage:
  disha                      Start the TUI (default)
  disha ask "question"       Ask a single question
  disha chat                 Interactive chat REPL
  disha status, s            Show system status
  disha config [subcommand]  Configuration management
  disha session [subcommand] Session management
  disha version              Show version information
  disha help                 Show this help

Config Commands:
  disha config show                 Show current configuration
  disha config get <key>            Read one key (e.g. ollama.model)
  disha config set <key> <value>    Write one key
  disha config keys                 List all configuration keys
  disha config path                 Show the config file location

Session Commands:
  disha session list                List all saved sessions
  disha session show <n>            Show session transcript (1 = most recent)
  disha session export <n>          Export a session
    --format md|json                Export format (default: md)
    --output DIR                    Output directory (default: .)
  disha session delete <n>          Delete a session
    --confirm                       Required confirmation flag

Global Flags:
  -q, --quiet       Minimal output
  -v, --verbose     Debug output
  --json            Output in JSON format where supported
  --model NAME      Override the configured model
  --language TAG    Voice language tag (e.g. hi-IN, ta-IN)
  --no-speak        Never speak replies aloud

Examples:
  disha                               Start the TUI
  disha ask "What after 12th science?"
  disha ask --model llama3 "Career in design?"
  disha chat                          Interactive REPL
  disha status                        Check Ollama and storage
  disha config set speech.language ta-IN
  disha session export 1 --format json

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("disha version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments. Split from Parse for testing.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := remaining[0]
	rest := remaining[1:]
	args.Raw = rest

	switch cmd {
	case "ask":
		args.Query = strings.Join(rest, " ")
		return CmdAsk, args
	case "chat":
		return CmdChat, args
	case "status", "s":
		return CmdStatus, args
	case "config":
		parseConfigArgs(&args, rest)
		return CmdConfig, args
	case "session", "sessions":
		if len(rest) > 0 {
			args.Subcommand = rest[0]
		}
		return CmdSession, args
	case "version", "--version", "-V":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	default:
		// Unrecognized words are treated as an ask, so
		// "disha what should I study" just works.
		args.Query = strings.Join(remaining, " ")
		return CmdAsk, args
	}
}

// parseGlobalFlags extracts global flags, returning the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var remaining []string

	i := 0
	for i < len(argv) {
		switch argv[i] {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		case "--no-speak":
			args.NoSpeak = true
		case "--model":
			if i+1 < len(argv) {
				args.Model = argv[i+1]
				i++
			}
		case "--language":
			if i+1 < len(argv) {
				args.Language = argv[i+1]
				i++
			}
		default:
			remaining = append(remaining, argv[i])
		}
		i++
	}

	return remaining, args
}

// parseConfigArgs fills the config key/value fields from the remaining args.
func parseConfigArgs(args *Args, rest []string) {
	if len(rest) == 0 {
		args.Subcommand = "show"
		return
	}
	args.Subcommand = rest[0]
	if len(rest) > 1 {
		args.ConfigKey = rest[1]
	}
	if len(rest) > 2 {
		args.ConfigVal = strings.Join(rest[2:], " ")
	}
}
