// Package tui provides a Bubble Tea terminal user interface for loading asset
// documents.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SpringRoll/SpringRoll-sub000/internal/config"
	"github.com/SpringRoll/SpringRoll-sub000/internal/download"
	"github.com/SpringRoll/SpringRoll-sub000/internal/logger"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	accent = lipgloss.Color("#4ECDC4")
	alert  = lipgloss.Color("#FF6B6B")
	muted  = lipgloss.Color("#6C757D")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(alert)
	labelStyle  = lipgloss.NewStyle().Foreground(accent)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	statsStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2)
)

// levelMarks maps log levels, highest first, to the marker and style used in
// the log pane.
var levelMarks = []struct {
	min   slog.Level
	mark  string
	style lipgloss.Style
}{
	{slog.LevelError, "✗", lipgloss.NewStyle().Foreground(alert)},
	{slog.LevelWarn, "!", lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))},
	{slog.LevelInfo, "›", statsStyle},
}

// maxLogs is the number of log lines kept for the log pane.
const maxLogs = 10

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateLoading
	StateComplete
	StateError
)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	fetcher   transfer.Fetcher
	logs      []logger.Event
	err       error

	// Log records are forwarded from the download manager through events.
	events chan logger.Event
	level  *slog.LevelVar

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	entries int
	current download.Progress
	summary *download.Summary

	// Options
	sequential bool
	jpeg       bool
	verbose    bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil fetcher selects the HTTP client.
func NewModel(settings *config.Settings, fetcher transfer.Fetcher) Model {
	ti := textinput.New()
	ti.Placeholder = "assets.yaml"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(alert)

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	return Model{
		state:      StateInput,
		textInput:  ti,
		spinner:    sp,
		progress:   prog,
		settings:   settings,
		fetcher:    fetcher,
		events:     make(chan logger.Event, 64),
		level:      level,
		ctx:        ctx,
		cancel:     cancel,
		sequential: !settings.Parallel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForLog())
}

// Message types
type (
	// LogMsg carries one log record from the download manager.
	LogMsg struct {
		Event logger.Event
	}

	// InitDoneMsg is sent when the asset document has been loaded.
	InitDoneMsg struct {
		Manager *download.Manager
		Entries int
		Err     error
	}

	// DownloadDoneMsg is sent when every asset has been loaded and written.
	DownloadDoneMsg struct {
		Summary *download.Summary
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
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateLoading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeDownload(), m.spinner.Tick)
			}

		case "ctrl+s":
			if m.state == StateInput {
				m.sequential = !m.sequential
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.jpeg = !m.jpeg
			}

		case "ctrl+l":
			if m.state == StateInput {
				m.verbose = !m.verbose
				if m.verbose {
					m.level.Set(slog.LevelDebug)
				} else {
					m.level.Set(slog.LevelInfo)
				}
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case LogMsg:
		m.logs = append(m.logs, msg.Event)
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}
		cmds = append(cmds, m.waitForLog())

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.manager = msg.Manager
			m.entries = msg.Entries
			m.state = StateLoading
			cmds = append(cmds, m.startDownload(), m.tickProgress())
		}

	case DownloadDoneMsg:
		m.summary = msg.Summary
		if m.manager != nil {
			m.current = m.manager.GetProgress()
			m.manager.Destroy()
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Summary == nil:
			m.state = StateError
			m.err = msg.Err
		default:
			// Per-entry failures are already in the log pane.
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateLoading {
			m.current = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.current.Loaded), m.tickProgress())
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

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.manager = nil
	m.entries = 0
	m.current = download.Progress{}
	m.summary = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.progress.SetPercent(0)
	m.textInput.SetValue("")
	m.textInput.Focus()
}

// waitForLog returns a command that delivers the next forwarded log record.
func (m Model) waitForLog() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return LogMsg{Event: <-events}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var body string
	switch m.state {
	case StateInput:
		body = m.inputView()
	case StateInitializing:
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.spinner.View()+" "+labelStyle.Render("Reading asset document..."),
			"",
			m.logPane(),
		)
	case StateLoading:
		body = m.loadingView()
	case StateComplete:
		body = m.summaryView()
	case StateError:
		body = lipgloss.JoinVertical(lipgloss.Left,
			levelMarks[0].style.Render("Error occurred:"),
			"",
			logger.FormatError(m.err),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Asset Loader"),
		mutedStyle.Render("Load, cache and export game assets"),
		"",
		body,
		"",
		mutedStyle.Render(keyHelp[m.state]),
	)
}

func (m Model) inputView() string {
	option := func(on bool, label, key string) string {
		box := "[ ]"
		if on {
			box = "[x]"
		}
		return fmt.Sprintf("  %s %s (%s)", box, label, key)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("Asset document:"),
		"",
		m.textInput.View(),
		"",
		statsStyle.Render("Options:"),
		option(m.sequential, "Load sequentially", "ctrl+s"),
		option(m.jpeg, "Write images as JPEG", "ctrl+o"),
		option(m.verbose, "Verbose/debug output", "ctrl+l"),
		"",
		mutedStyle.Render("Output path: "+m.settings.OutputPath),
	)
}

func (m Model) loadingView() string {
	p := m.current
	return lipgloss.JoinVertical(lipgloss.Left,
		doneStyle.Render(fmt.Sprintf("Loading %d entries", m.entries)),
		"",
		m.progress.ViewAs(p.Loaded),
		statsStyle.Render(fmt.Sprintf("Written: %d | Failed: %d | %s", p.Files, p.Failed, megabytes(p.Bytes))),
		"",
		m.logPane(),
	)
}

func (m Model) summaryView() string {
	var s download.Summary
	if m.summary != nil {
		s = *m.summary
	}
	rows := []string{
		doneStyle.Render("Load Complete!"),
		"",
		fmt.Sprintf("Entries: %d", s.Entries),
		fmt.Sprintf("Files:   %d", s.Files),
		fmt.Sprintf("Failed:  %d", s.Failed),
		"Size:    " + megabytes(s.Bytes),
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func megabytes(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
}

// logPane renders the most recent log records, one per line.
func (m Model) logPane() string {
	lines := make([]string, 0, len(m.logs))
	for _, event := range m.logs {
		line := mutedStyle.Render("• " + event.Message)
		for _, lm := range levelMarks {
			if event.Level >= lm.min {
				line = lm.style.Render(lm.mark + " " + event.Message)
				break
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

var keyHelp = map[State]string{
	StateInput:        "enter: start • ctrl+s: sequential • ctrl+o: jpeg • ctrl+l: verbose • esc: quit",
	StateInitializing: "esc: cancel",
	StateLoading:      "esc: cancel",
	StateComplete:     "r: new load • q: quit",
	StateError:        "r: new load • q: quit",
}

// newLogger returns a logger forwarding records to the log pane. Records are
// dropped while the pane is not keeping up.
func (m Model) newLogger() *slog.Logger {
	events := m.events
	return slog.New(logger.NewFuncHandler(func(e logger.Event) {
		select {
		case events <- e:
		default:
		}
	}, m.level))
}

// initializeDownload creates the manager and reads the asset document.
func (m Model) initializeDownload() tea.Cmd {
	path := strings.TrimSpace(m.textInput.Value())
	settings := *m.settings
	settings.Parallel = !m.sequential
	opts := download.Options{JPEG: m.jpeg}
	fetcher := m.fetcher
	log := m.newLogger()
	ctx := m.ctx

	return func() tea.Msg {
		manager, err := download.NewManager(&settings, fetcher, opts, log)
		if err != nil {
			return InitDoneMsg{Err: err}
		}
		if err := manager.Initialize(ctx, path); err != nil {
			manager.Destroy()
			return InitDoneMsg{Err: err}
		}
		return InitDoneMsg{Manager: manager, Entries: manager.Entries()}
	}
}

// startDownload loads and writes every asset in the background.
func (m Model) startDownload() tea.Cmd {
	manager := m.manager
	ctx := m.ctx
	return func() tea.Msg {
		summary, err := manager.StartDownloads(ctx)
		return DownloadDoneMsg{Summary: summary, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings, nil), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
