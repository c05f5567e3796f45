// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dishalabs/disha-tui/internal/config"
	"github.com/dishalabs/disha-tui/internal/guide"
	"github.com/dishalabs/disha-tui/internal/model"
	"github.com/dishalabs/disha-tui/internal/ollama"
	"github.com/dishalabs/disha-tui/internal/session"
	"github.com/dishalabs/disha-tui/internal/speech"
	"github.com/dishalabs/disha-tui/internal/storage"
	"github.com/dishalabs/disha-tui/internal/ui/styles"
)

// =============================================================================
// VIEW MODE
// =============================================================================

// viewMode selects which screen the chat model renders.
type viewMode int

const (
	viewChat      viewMode = iota // Conversation view
	viewSessions                  // Session picker
	viewLanguages                 // Language picker
)

// =============================================================================
// PICKER ITEMS
// =============================================================================

// sessionItem adapts a session listing entry to the bubbles list.
type sessionItem struct {
	id       string
	title    string
	messages int
	updated  time.Time
}

func (i sessionItem) Title() string { return i.title }
func (i sessionItem) Description() string {
	return i.updated.Format("2006-01-02 15:04") + " · " +
		pluralize(i.messages, "message")
}
func (i sessionItem) FilterValue() string { return i.title }

// languageItem adapts a supported language to the bubbles list.
type languageItem struct {
	lang speech.Language
}

func (i languageItem) Title() string       { return i.lang.Name }
func (i languageItem) Description() string { return i.lang.Tag }
func (i languageItem) FilterValue() string { return i.lang.Name }

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configures a chat Model.
type Options struct {
	Orchestrator *guide.Orchestrator
	Sessions     *session.Store
	Client       *ollama.Client

	// Engine is the speech engine; nil disables voice features.
	Engine *speech.Engine

	// DB persists preference changes made from the TUI; nil disables
	// persistence.
	DB *storage.Store

	// User, when set, personalizes the header greeting.
	User *model.User

	Config  *config.Config
	Version string
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Collaborators
	orch     *guide.Orchestrator
	sessions *session.Store
	client   *ollama.Client
	engine   *speech.Engine
	db       *storage.Store
	user     *model.User
	cfg      *config.Config
	version  string

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// View state
	mode      viewMode
	sending   bool
	listening bool
	online    bool
	status    string
	lastErr   error

	// UI components
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	picker   list.Model
	help     help.Model

	// Key bindings
	keys KeyMap
}

// New creates a chat model wired to the given collaborators.
func New(opts Options) *Model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}

	theme := styles.NewTheme(opts.Config.UI.Theme)

	input := textarea.New()
	input.Placeholder = "Ask about careers, courses, or skills..."
	input.ShowLineNumbers = false
	input.SetHeight(2)
	input.CharLimit = 2000
	input.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.Spinner),
	)

	picker := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	picker.SetShowStatusBar(false)
	picker.SetShowHelp(false)

	return &Model{
		orch:     opts.Orchestrator,
		sessions: opts.Sessions,
		client:   opts.Client,
		engine:   opts.Engine,
		db:       opts.DB,
		user:     opts.User,
		cfg:      opts.Config,
		version:  opts.Version,
		theme:    theme,
		input:    input,
		spinner:  sp,
		picker:   picker,
		help:     help.New(),
		keys:     DefaultKeyMap(),
	}
}

// Init starts the initial reachability probe and the input cursor blink.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		ProbeCmd(m.client),
		ProbeTickCmd(),
	)
}

// sendTimeout bounds a full send, from config.
func (m *Model) sendTimeout() time.Duration {
	secs := m.cfg.Ollama.TimeoutSecs
	if secs <= 0 {
		secs = 120
	}
	return time.Duration(secs) * time.Second
}

// =============================================================================
// PICKER POPULATION
// =============================================================================

// openSessionPicker fills the picker with the store's sessions,
// most recent first.
func (m *Model) openSessionPicker() {
	metas := m.sessions.List()
	items := make([]list.Item, 0, len(metas))
	for _, meta := range metas {
		items = append(items, sessionItem{
			id:       meta.ID,
			title:    meta.Title,
			messages: meta.MessageCount,
			updated:  meta.UpdatedAt,
		})
	}
	m.picker.Title = "Sessions"
	m.picker.SetItems(items)
	m.picker.ResetSelected()
	m.mode = viewSessions
}

// openLanguagePicker fills the picker with the supported languages.
func (m *Model) openLanguagePicker() {
	items := make([]list.Item, 0, len(speech.SupportedLanguages))
	for _, lang := range speech.SupportedLanguages {
		items = append(items, languageItem{lang: lang})
	}
	m.picker.Title = "Voice Language"
	m.picker.SetItems(items)
	m.picker.ResetSelected()
	m.mode = viewLanguages
}
