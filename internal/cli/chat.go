// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for the disha CLI.
//
// Handles "disha chat", a line-based alternative to the TUI for
// environments where a full-screen interface is unwanted (SSH sessions,
// screen readers). Messages are persisted to the same session store the
// TUI uses.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/dishalabs/disha-tui/internal/config"
	"github.com/dishalabs/disha-tui/internal/guide"
	"github.com/dishalabs/disha-tui/internal/model"
	"github.com/dishalabs/disha-tui/internal/session"
	"github.com/dishalabs/disha-tui/internal/speech"
	"github.com/dishalabs/disha-tui/internal/storage"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// chatState bundles everything the REPL loop needs.
type chatState struct {
	cfg      *config.Config
	orch     *guide.Orchestrator
	sessions *session.Store
	engine   *speech.Engine
	db       *storage.Store
	args     Args
}

// HandleChatCommand runs the interactive chat REPL.
func HandleChatCommand(args Args) error {
	cfg := LoadConfig(args)

	sessions, db, err := OpenSessions(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	ApplyStoredSettings(db, cfg, args)

	client := NewOllamaClient(cfg)
	advisor := guide.NewAdvisor(client)

	engine := NewSpeechEngine(cfg)
	var opts []guide.Option
	if engine != nil && engine.SynthesisSupported() {
		opts = append(opts, guide.WithSpeaker(engine))
	}
	if logger := DebugLogger(); logger != nil {
		opts = append(opts, guide.WithLogger(logger))
	}
	orch := guide.NewOrchestrator(sessions, advisor, opts...)
	orch.SetSpeakEnabled(cfg.Speech.SpeakReplies)

	state := &chatState{
		cfg:      cfg,
		orch:     orch,
		sessions: sessions,
		engine:   engine,
		db:       db,
		args:     args,
	}

	input := NewChatCLI()
	defer input.Close()

	printChatWelcome(state, client.CheckReachable(context.Background()))

	for {
		line, err := input.ReadInput("you> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println(DimStyle.Render("Goodbye."))
				return nil
			}
			// EOF on a pipe or closed terminal ends the session.
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := handleSlashCommand(state, line)
			if err != nil {
				fmt.Println(ErrorStyle.Render("Error: " + err.Error()))
			}
			if done {
				return nil
			}
			continue
		}

		if err := sendAndPrint(state, line, false); err != nil {
			fmt.Println(ErrorStyle.Render("Error: " + err.Error()))
		}
	}
}

// sendAndPrint runs one send through the orchestrator and prints the reply.
func sendAndPrint(state *chatState, text string, voice bool) error {
	current := state.sessions.Current()
	if current == nil {
		return session.ErrSessionNotFound
	}

	language := speech.DetectLanguage(text)
	reply, err := state.orch.Send(context.Background(), current.ID, text, language, voice)
	if err != nil {
		return err
	}

	fmt.Println()
	displayResponse(reply.Text)
	fmt.Println()
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand dispatches a /command. Returns true when the REPL
// should exit.
func handleSlashCommand(state *chatState, line string) (bool, error) {
	fields := strings.Fields(line)
	cmd := fields[0]
	rest := fields[1:]

	switch cmd {
	case "/quit", "/exit", "/q":
		fmt.Println(DimStyle.Render("Goodbye."))
		return true, nil

	case "/help", "/?":
		printChatHelp()
		return false, nil

	case "/new":
		created, err := state.sessions.Create()
		if err != nil {
			return false, err
		}
		fmt.Println(SuccessStyle.Render("Started: " + created.Title))
		return false, nil

	case "/sessions", "/list":
		printSessionList(state.sessions)
		return false, nil

	case "/switch":
		return false, switchSession(state, rest)

	case "/delete":
		return false, deleteSession(state, rest)

	case "/history":
		printTranscript(state.sessions.Current(), state.cfg.UI.ShowTimestamps)
		return false, nil

	case "/export":
		return false, exportCurrent(state, rest)

	case "/helpful":
		return false, reactLast(state, model.ReactionHelpful)

	case "/nothelpful":
		return false, reactLast(state, model.ReactionNotHelpful)

	case "/language":
		return false, setLanguage(state, rest)

	case "/name":
		return false, setName(state, rest)

	case "/voice":
		return false, captureVoice(state)

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
}

func switchSession(state *chatState, rest []string) error {
	index, err := sessionIndex(state.sessions, rest)
	if err != nil {
		return err
	}
	meta := state.sessions.List()[index]
	if err := state.sessions.Select(meta.ID); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Switched to: " + meta.Title))
	return nil
}

func deleteSession(state *chatState, rest []string) error {
	index, err := sessionIndex(state.sessions, rest)
	if err != nil {
		return err
	}
	meta := state.sessions.List()[index]
	if err := state.sessions.Delete(meta.ID); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Deleted: " + meta.Title))
	return nil
}

// sessionIndex resolves a 1-based session number argument.
func sessionIndex(sessions *session.Store, rest []string) (int, error) {
	if len(rest) == 0 {
		return 0, fmt.Errorf("session number required (see /sessions)")
	}
	n, err := strconv.Atoi(rest[0])
	if err != nil || n < 1 || n > sessions.Len() {
		return 0, fmt.Errorf("invalid session number %q", rest[0])
	}
	return n - 1, nil
}

func exportCurrent(state *chatState, rest []string) error {
	format := "md"
	if len(rest) > 0 {
		format = rest[0]
	}
	path, err := exportSession(state.sessions.Current(), format, ".", state.cfg.UI.ShowTimestamps)
	if err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Exported to " + path))
	return nil
}

func reactLast(state *chatState, kind model.ReactionKind) error {
	current := state.sessions.Current()
	if current == nil {
		return session.ErrSessionNotFound
	}
	reply := current.LastAssistantMessage()
	if reply == nil {
		return fmt.Errorf("no reply to react to yet")
	}
	if err := state.orch.React(current.ID, reply.ID, kind, true); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Feedback recorded."))
	return nil
}

func setLanguage(state *chatState, rest []string) error {
	if len(rest) == 0 {
		for _, lang := range speech.SupportedLanguages {
			fmt.Printf("  %-7s %s\n", lang.Tag, lang.Name)
		}
		return nil
	}
	tag := rest[0]
	if !speech.IsSupported(tag) {
		return fmt.Errorf("unsupported language %q", tag)
	}
	state.cfg.Speech.Language = tag
	if state.engine != nil {
		if err := state.engine.SetLanguage(tag); err != nil {
			return err
		}
	}
	if err := PersistSpeechSettings(state.db, state.cfg); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Voice language: " + speech.DisplayName(tag)))
	return nil
}

// setName records or shows the display name used in greetings.
func setName(state *chatState, rest []string) error {
	if len(rest) == 0 {
		user, err := state.db.LoadUser()
		if err != nil {
			return err
		}
		if user == nil || user.Name == "" {
			fmt.Println(DimStyle.Render("No name set. Use /name <your name>."))
			return nil
		}
		fmt.Println(DimStyle.Render("Name: " + user.Name))
		return nil
	}

	name := strings.Join(rest, " ")
	user, err := state.db.LoadUser()
	if err != nil {
		return err
	}
	if user == nil {
		user = model.NewUser("", name)
	} else {
		user.Name = name
	}
	if err := state.db.SaveUser(user); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Hello, " + name + "!"))
	return nil
}

func captureVoice(state *chatState) error {
	if state.engine == nil || !state.engine.RecognitionSupported() {
		return fmt.Errorf("voice input is not configured")
	}

	fmt.Println(DimStyle.Render("Listening (" +
		speech.DisplayName(state.engine.Language()) + "), Ctrl+C to cancel..."))

	// Ctrl+C aborts the capture, not the REPL.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	text, err := state.engine.Listen(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println(DimStyle.Render("Cancelled."))
			return nil
		}
		if errors.Is(err, speech.ErrNoSpeech) {
			return fmt.Errorf("no speech detected")
		}
		return err
	}

	fmt.Println(DimStyle.Render("Heard: " + text))
	return sendAndPrint(state, text, true)
}

// =============================================================================
// OUTPUT
// =============================================================================

func printChatWelcome(state *chatState, online bool) {
	fmt.Println(TitleStyle.Render("disha chat"))

	if user, err := state.db.LoadUser(); err == nil && user != nil && user.Name != "" {
		fmt.Println(DimStyle.Render("Welcome back, " + user.Name + "."))
	}

	status := RenderStatus("offline") + " answering with canned guidance"
	if online {
		status = RenderStatus("ok") + " connected to " + state.cfg.Ollama.Model
	}
	fmt.Println(status)

	if current := state.sessions.Current(); current != nil {
		fmt.Println(DimStyle.Render("Session: " + current.Title))
	}
	fmt.Println(DimStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Println()
}

func printChatHelp() {
	fmt.Println(SectionStyle.Render("Commands"))
	for _, row := range [][2]string{
		{"/new", "start a new session"},
		{"/sessions", "list saved sessions"},
		{"/switch <n>", "switch to session n"},
		{"/delete <n>", "delete session n"},
		{"/history", "show the current transcript"},
		{"/export [md|json]", "export the current session"},
		{"/helpful", "mark the last reply helpful"},
		{"/nothelpful", "mark the last reply not helpful"},
		{"/language [tag]", "list or set the voice language"},
		{"/name [name]", "show or set your display name"},
		{"/voice", "ask by voice"},
		{"/quit", "exit"},
	} {
		fmt.Printf("  %s %s\n", RenderLabel(row[0]), DimStyle.Render(row[1]))
	}
}

func printSessionList(sessions *session.Store) {
	for i, meta := range sessions.List() {
		marker := "  "
		if current := sessions.Current(); current != nil && current.ID == meta.ID {
			marker = SuccessStyle.Render("* ")
		}
		fmt.Printf("%s%2d. %s %s\n", marker, i+1, meta.Title,
			DimStyle.Render(fmt.Sprintf("(%d messages, %s)",
				meta.MessageCount, meta.UpdatedAt.Format("2006-01-02 15:04"))))
	}
}

func printTranscript(current *model.ChatSession, timestamps bool) {
	if current == nil || current.IsEmpty() {
		fmt.Println(DimStyle.Render("No messages yet."))
		return
	}
	for _, msg := range current.Messages {
		label := msg.Sender.DisplayName()
		if timestamps {
			label += " " + msg.Timestamp.Format("15:04")
		}
		fmt.Println(SectionStyle.Render(label))
		fmt.Println(msg.Text)
		switch {
		case msg.Reactions.Helpful:
			fmt.Println(DimStyle.Render("(marked helpful)"))
		case msg.Reactions.NotHelpful:
			fmt.Println(DimStyle.Render("(marked not helpful)"))
		}
		fmt.Println()
	}
}
