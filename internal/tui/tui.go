// Package tui provides a Bubble Tea terminal user interface for reviewing a
// takeout reconciliation before the library is touched.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/handiism/takeout-to-plex/internal/config"
	"github.com/handiism/takeout-to-plex/internal/organize"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E5A00D")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateReconciling
	StateReview
	StatePlacing
	StateComplete
	StateError
)

// maxLogs is the number of progress lines kept on screen.
const maxLogs = 10

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   organize.ProgressLevel
}

// eventBuffer collects progress events from the pipeline goroutine until the
// next tick drains them.
type eventBuffer struct {
	mu      sync.Mutex
	pending []LogEntry
}

func (b *eventBuffer) add(e organize.ProgressEvent) {
	b.mu.Lock()
	b.pending = append(b.pending, LogEntry{Message: e.Message, Level: e.Level})
	b.mu.Unlock()
}

func (b *eventBuffer) drain() []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logger    *log.Logger
	library   string
	logs      []LogEntry
	events    *eventBuffer
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *organize.Manager
	summary organize.Summary

	placed int32
	total  int32

	// Options
	copyFiles bool
	playlist  bool
	coverArt  bool
	dryRun    bool
	verbose   bool

	width  int
	height int
}

// NewModel creates a new TUI model. An empty library places files in
// <tracks>/../library.
func NewModel(settings *config.Settings, library string, logger *log.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "Takeout/Google Play Music/Tracks"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5A00D"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logger:    logger,
		library:   library,
		events:    &eventBuffer{},
		ctx:       ctx,
		cancel:    cancel,
		copyFiles: settings.CopyFiles,
		playlist:  settings.CreatePlaylist,
		coverArt:  settings.SaveCoverArt,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// InitDoneMsg is sent when reconciliation completes.
	InitDoneMsg struct {
		Manager *organize.Manager
		Err     error
	}

	// PlaceDoneMsg is sent when the layout has been executed.
	PlaceDoneMsg struct {
		Summary organize.Summary
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			switch m.state {
			case StateInput:
				return m, tea.Quit
			case StateReview:
				m.state = StateComplete
				m.summary = m.manager.Summary()
				m.logs = append(m.logs, LogEntry{Message: "Layout skipped, nothing was moved", Level: organize.LevelWarning})
				return m, nil
			case StateReconciling, StatePlacing:
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			switch m.state {
			case StateInput:
				if dir := strings.TrimSpace(m.textInput.Value()); dir != "" {
					if err := checkTracksDir(dir); err != nil {
						m.err = err
						return m, nil
					}
					m.err = nil
					m.state = StateReconciling
					return m, tea.Batch(m.reconcile(dir), m.spinner.Tick, m.tickProgress())
				}
			case StateReview:
				m.state = StatePlacing
				return m, tea.Batch(m.place(), m.tickProgress())
			}
			return m, nil

		case "c", "p", "a", "n", "v":
			if m.state == StateInput && m.textInput.Value() == "" {
				m.toggle(msg.String())
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.placed = 0
				m.total = 0
				m.manager = nil
				m.summary = organize.Summary{}
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case InitDoneMsg:
		m.appendLogs(m.events.drain())
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.manager = msg.Manager
			m.summary = msg.Manager.Summary()
			m.state = StateReview
		}

	case PlaceDoneMsg:
		m.appendLogs(m.events.drain())
		m.summary = msg.Summary
		m.placed, m.total = int32(msg.Summary.Placed), int32(msg.Summary.Links)
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		m.appendLogs(m.events.drain())
		if m.state == StatePlacing && m.manager != nil {
			m.placed, m.total = m.manager.GetProgress()
			var percent float64
			if m.total > 0 {
				percent = float64(m.placed) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent))
		}
		if m.state == StateReconciling || m.state == StatePlacing {
			cmds = append(cmds, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) toggle(key string) {
	switch key {
	case "c":
		m.copyFiles = !m.copyFiles
	case "p":
		m.playlist = !m.playlist
	case "a":
		m.coverArt = !m.coverArt
	case "n":
		m.dryRun = !m.dryRun
	case "v":
		m.verbose = !m.verbose
	}
}

func (m *Model) appendLogs(entries []LogEntry) {
	for _, e := range entries {
		if e.Level == organize.LevelVerbose && !m.verbose {
			continue
		}
		m.logs = append(m.logs, e)
	}
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func checkTracksDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("tracks directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♪ Takeout to Plex"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Reconcile a music takeout with its audio files"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateReconciling:
		b.WriteString(m.viewReconciling())
	case StateReview:
		b.WriteString(m.viewReview())
	case StatePlacing:
		b.WriteString(m.viewPlacing())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Takeout tracks directory:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(infoStyle.Render("Options (toggle while the path is empty):"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Copy instead of move (c)\n", check(m.copyFiles)))
	b.WriteString(fmt.Sprintf("  %s Create most played playlist (p)\n", check(m.playlist)))
	b.WriteString(fmt.Sprintf("  %s Save folder art (a)\n", check(m.coverArt)))
	b.WriteString(fmt.Sprintf("  %s Dry run (n)\n", check(m.dryRun)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n", check(m.verbose)))
	b.WriteString("\n")
	if m.library != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Library: %s", m.library)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewReconciling() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Matching takeout records with audio files..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewReview() string {
	var b strings.Builder

	b.WriteString(boxStyle.Render(m.renderSummary()))
	b.WriteString("\n\n")

	if m.summary.Links == 0 {
		b.WriteString(warningStyle.Render("Nothing to place."))
	} else {
		action := "Move"
		if m.copyFiles {
			action = "Copy"
		}
		if m.dryRun {
			action = "Check"
		}
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("%s %d files into %s?", action, m.summary.Links, m.summary.Library)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewPlacing() string {
	var b strings.Builder

	var percent float64
	if m.total > 0 {
		percent = float64(m.placed) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Files: %d/%d", m.placed, m.total)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	title := "Library updated"
	switch {
	case m.summary.Aborted:
		title = "Layout aborted, several files share a destination"
	case m.summary.DryRun:
		title = "Dry run complete"
	}
	b.WriteString(boxStyle.Render(title + "\n\n" + m.renderSummary()))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderSummary() string {
	s := m.summary
	lines := []string{
		fmt.Sprintf("Records:          %d", s.Records),
		fmt.Sprintf("Linked:           %d (%s)", s.Links, s.LinkedSize()),
		fmt.Sprintf("Lost records:     %d", s.LostRecords),
		fmt.Sprintf("Lost audio files: %d", s.LostAudiofiles),
		fmt.Sprintf("Unmatched files:  %d", s.UnmatchedAudiofiles),
		fmt.Sprintf("Unreadable files: %d", s.Unreadable),
	}
	if s.Unsaved > 0 {
		lines = append(lines, fmt.Sprintf("Tags not written: %d", s.Unsaved))
	}
	if s.Placed > 0 {
		lines = append(lines, fmt.Sprintf("Placed:           %d", s.Placed))
	}
	if s.Playlist != "" {
		lines = append(lines, fmt.Sprintf("Playlist:         %s", filepath.Base(s.Playlist)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, entry := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch entry.Level {
		case organize.LevelError:
			style = errorStyle
			prefix = "✗"
		case organize.LevelWarning:
			style = warningStyle
			prefix = "!"
		case organize.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case organize.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + entry.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • c: copy • p: playlist • a: folder art • n: dry run • v: verbose • esc: quit"
	case StateReconciling, StatePlacing:
		return "esc: cancel"
	case StateReview:
		return "enter: place files • esc: skip"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// reconcile fuses the takeout CSVs in dir and matches them with its audio
// files.
func (m *Model) reconcile(dir string) tea.Cmd {
	settings := *m.settings
	settings.CopyFiles = m.copyFiles
	settings.CreatePlaylist = m.playlist
	settings.SaveCoverArt = m.coverArt

	opts := organize.Options{
		TracksDir:  dir,
		OutputDir:  filepath.Dir(filepath.Clean(dir)),
		LibraryDir: m.library,
		DryRun:     m.dryRun,
	}
	ctx, events, logger := m.ctx, m.events, m.logger

	return func() tea.Msg {
		manager := organize.NewManager(&settings, opts, logger, events.add)
		if err := manager.Initialize(ctx); err != nil {
			return InitDoneMsg{Err: err}
		}
		return InitDoneMsg{Manager: manager}
	}
}

// place executes the reviewed layout in the background.
func (m *Model) place() tea.Cmd {
	manager, ctx := m.manager, m.ctx
	return func() tea.Msg {
		if manager == nil {
			return PlaceDoneMsg{Err: fmt.Errorf("no reconciliation to execute")}
		}
		err := manager.Execute(ctx)
		return PlaceDoneMsg{Summary: manager.Summary(), Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, library string, logger *log.Logger) error {
	p := tea.NewProgram(NewModel(settings, library, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
