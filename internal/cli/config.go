// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration command handlers for the disha CLI.

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dishalabs/disha-tui/internal/config"
)

// HandleConfigCommand dispatches "disha config <subcommand>".
func HandleConfigCommand(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return configShow(args)
	case "get":
		return configGet(args)
	case "set":
		return configSet(args)
	case "keys", "list":
		return configKeys()
	case "path":
		return configPath()
	default:
		return fmt.Errorf("unknown config subcommand %q (try show, get, set, keys, path)", args.Subcommand)
	}
}

func configShow(args Args) error {
	cfg := LoadConfig(args)

	if args.JSON {
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(TitleStyle.Render("disha configuration"))
	for _, key := range config.GetAllKeys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		fmt.Printf("%s %v\n", RenderLabel(key, 28), value)
	}
	return nil
}

func configGet(args Args) error {
	if args.ConfigKey == "" {
		return fmt.Errorf("usage: disha config get <key>")
	}

	cfg := LoadConfig(args)
	value, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", value)
	return nil
}

func configSet(args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return fmt.Errorf("usage: disha config set <key> <value>")
	}

	// Set validates before saving so a bad value never reaches disk.
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println(SuccessStyle.Render(
		fmt.Sprintf("Set %s = %s", args.ConfigKey, args.ConfigVal)))
	return nil
}

func configKeys() error {
	for _, key := range config.GetAllKeys() {
		fmt.Println(key)
	}
	return nil
}

func configPath() error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
