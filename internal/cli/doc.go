// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli provides command-line parsing and command handlers for disha.

The CLI covers everything the TUI does that makes sense non-interactively:

  - ask: one-shot career question with Markdown-rendered output
  - chat: an interactive REPL with input history
  - status: model server reachability and configuration summary
  - config: read and write configuration keys
  - session: list, show, export, and delete saved sessions

Parsing is two-stage: Parse handles global flags and command selection,
and ArgParser handles per-command subcommands and flags.
*/
package cli
