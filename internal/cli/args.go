// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Unified argument parsing for disha's subcommands.

package cli

import (
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser provides unified argument parsing for CLI subcommands.
// It handles multiple flag formats consistently:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: arguments without flags
//   - Subcommands: first positional argument
type ArgParser struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
	raw        []string
}

// NewArgParser creates a new argument parser from raw arguments.
//
// Example:
//
//	args := NewArgParser([]string{"export", "2", "--format=json", "--confirm"})
//	args.Subcommand()      // "export"
//	args.Positional(1)     // "2"
//	args.Flag("format")    // "json"
//	args.BoolFlag("confirm") // true
func NewArgParser(raw []string) *ArgParser {
	parser := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0),
		raw:        raw,
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]

		if strings.HasPrefix(arg, "-") {
			// Handle --flag=value format
			if strings.Contains(arg, "=") {
				parts := strings.SplitN(arg, "=", 2)
				flagName := strings.TrimLeft(parts[0], "-")
				flagValue := parts[1]

				// Boolean flags can be explicit: --json=true
				if flagValue == "true" || flagValue == "false" {
					parser.boolFlags[flagName] = flagValue == "true"
				} else {
					parser.flags[flagName] = flagValue
				}
				i++
				continue
			}

			flagName := strings.TrimLeft(arg, "-")

			// Next arg is the value unless it is itself a flag.
			if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
				parser.flags[flagName] = raw[i+1]
				i += 2
			} else {
				parser.boolFlags[flagName] = true
				i++
			}
		} else {
			parser.positional = append(parser.positional, arg)
			i++
		}
	}

	if len(parser.positional) > 0 {
		parser.subcommand = parser.positional[0]
	}

	return parser
}

// Subcommand returns the first positional argument, or "" when absent.
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the value of a string flag, or "" when unset.
func (p *ArgParser) Flag(name string) string {
	return p.flags[name]
}

// FlagOrDefault returns the value of a string flag, or the default.
func (p *ArgParser) FlagOrDefault(name, defaultValue string) string {
	if value, ok := p.flags[name]; ok {
		return value
	}
	return defaultValue
}

// FlagIntOrDefault returns an integer flag value, or the default when
// unset or unparseable.
func (p *ArgParser) FlagIntOrDefault(name string, defaultValue int) int {
	value, ok := p.flags[name]
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// BoolFlag returns true when the named boolean flag was given. A string
// flag with the same name also counts when its value parses as true.
func (p *ArgParser) BoolFlag(name string) bool {
	if v, ok := p.boolFlags[name]; ok {
		return v
	}
	if v, ok := p.flags[name]; ok {
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return false
}

// HasFlag reports whether the flag was given in any form.
func (p *ArgParser) HasFlag(name string) bool {
	if _, ok := p.boolFlags[name]; ok {
		return true
	}
	_, ok := p.flags[name]
	return ok
}

// Positional returns the positional argument at index, or "" when absent.
// Index 0 is the subcommand.
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns all positional arguments from index onward.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return nil
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// Raw returns the original unparsed arguments.
func (p *ArgParser) Raw() []string {
	return p.raw
}
