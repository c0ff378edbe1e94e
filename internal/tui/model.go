package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/leonardotrapani/hyprscribe/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

const blinkInterval = 700 * time.Millisecond

// Controller is the part of the session the UI drives.
type Controller interface {
	Start(ctx context.Context) error
	Stop() error
	Cancel()
	ProcessYouTube(ctx context.Context, url string) error
	Ask(ctx context.Context, question string) (string, error)
	HideYouTubePanels()
	Snapshot() session.Snapshot
}

// inputFocus is which text field, if any, receives keystrokes.
type inputFocus int

const (
	focusNone inputFocus = iota
	focusURL
	focusQuestion
)

// Model is the root bubbletea model for the session screen.
type Model struct {
	ctx  context.Context
	ctrl Controller

	snap    session.Snapshot
	input   textinput.Model
	focus   inputFocus
	spinner spinner.Model

	// Recording indicator
	blinking bool
	blinkOn  bool

	width  int
	height int

	errorMessage string
}

func NewModel(ctx context.Context, ctrl Controller) Model {
	in := textinput.New()
	in.CharLimit = 2000
	in.Prompt = "› "

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(StyleHighlight),
	)

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		snap:    ctrl.Snapshot(),
		input:   in,
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-12)
		return m, nil

	case SnapshotMsg:
		return m, m.applySnapshot(msg.Snapshot)

	case ActionDoneMsg:
		return m, m.applySnapshot(m.ctrl.Snapshot())

	case ActionErrMsg:
		m.handleActionErr(msg)
		return m, m.applySnapshot(m.ctrl.Snapshot())

	case blinkMsg:
		if m.snap.Mode != session.Recording {
			m.blinking = false
			m.blinkOn = false
			return m, nil
		}
		m.blinkOn = !m.blinkOn
		return m, blinkCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus != focusNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applySnapshot keeps the newest snapshot; deliveries can arrive out of order.
func (m *Model) applySnapshot(s session.Snapshot) tea.Cmd {
	if s.Version < m.snap.Version {
		return nil
	}
	m.snap = s

	if s.Mode == session.Recording && !m.blinking {
		m.blinking = true
		m.blinkOn = true
		return blinkCmd()
	}
	return nil
}

func (m *Model) handleActionErr(msg ActionErrMsg) {
	switch {
	case errors.Is(msg.Err, session.ErrStale),
		errors.Is(msg.Err, session.ErrEmptyURL),
		errors.Is(msg.Err, session.ErrEmptyQuestion),
		errors.Is(msg.Err, session.ErrNoTranscript):
		// already shown in the panels, or superseded
		m.errorMessage = ""
	case errors.Is(msg.Err, session.ErrBusy):
		m.errorMessage = "Another operation is in progress"
	case msg.Op == "youtube" || msg.Op == "ask":
		m.errorMessage = ""
	default:
		m.errorMessage = fmt.Sprintf("%s: %v", msg.Op, msg.Err)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == KeyCtrlC {
		return m.quit()
	}

	if m.focus != focusNone {
		switch key {
		case KeyEscape:
			m.blurInput()
			return m, nil
		case KeyEnter:
			return m.submit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	m.errorMessage = ""
	c := m.snap.Controls

	switch key {
	case KeyQuit:
		return m.quit()
	case KeyRecord:
		if c.Record {
			return m, startCmd(m.ctx, m.ctrl)
		}
	case KeyStop:
		if c.Stop {
			return m, stopCmd(m.ctrl)
		}
	case KeyToggleRec:
		switch {
		case c.Record:
			return m, startCmd(m.ctx, m.ctrl)
		case c.Stop:
			return m, stopCmd(m.ctrl)
		}
	case KeyYouTube:
		if c.YouTube {
			return m, m.focusInput(focusURL, "https://www.youtube.com/watch?v=...")
		}
	case KeyAsk:
		if c.Ask {
			return m, m.focusInput(focusQuestion, "Ask about the transcript...")
		}
	case KeyMic:
		return m, hidePanelsCmd(m.ctrl)
	case KeyCancel:
		return m, cancelCmd(m.ctrl)
	}
	return m, nil
}

func (m *Model) focusInput(f inputFocus, placeholder string) tea.Cmd {
	m.focus = f
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

func (m *Model) blurInput() {
	m.focus = focusNone
	m.input.Blur()
	m.input.Reset()
}

// submit sends the focused field. Enter does nothing while the matching
// action is disabled.
func (m Model) submit() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	switch m.focus {
	case focusURL:
		if !m.snap.Controls.YouTube {
			return m, nil
		}
		m.blurInput()
		return m, youtubeCmd(m.ctx, m.ctrl, value)
	case focusQuestion:
		if !m.snap.Controls.Ask {
			return m, nil
		}
		m.blurInput()
		return m, askCmd(m.ctx, m.ctrl, value)
	}
	return m, nil
}

// quit cancels work in progress before exiting. Controller calls never run
// inside Update: they publish snapshots back into the program.
func (m Model) quit() (tea.Model, tea.Cmd) {
	ctrl := m.ctrl
	return m, func() tea.Msg {
		ctrl.Cancel()
		return tea.QuitMsg{}
	}
}

func blinkCmd() tea.Cmd {
	return tea.Tick(blinkInterval, func(time.Time) tea.Msg {
		return blinkMsg{}
	})
}

func startCmd(ctx context.Context, ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.Start(ctx); err != nil {
			return ActionErrMsg{Op: "record", Err: err}
		}
		return ActionDoneMsg{Op: "record"}
	}
}

func stopCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.Stop(); err != nil {
			return ActionErrMsg{Op: "stop", Err: err}
		}
		return ActionDoneMsg{Op: "stop"}
	}
}

func cancelCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.Cancel()
		return ActionDoneMsg{Op: "cancel"}
	}
}

func hidePanelsCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.HideYouTubePanels()
		return ActionDoneMsg{Op: "mic"}
	}
}

func youtubeCmd(ctx context.Context, ctrl Controller, url string) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.ProcessYouTube(ctx, url); err != nil {
			return ActionErrMsg{Op: "youtube", Err: err}
		}
		return ActionDoneMsg{Op: "youtube"}
	}
}

func askCmd(ctx context.Context, ctrl Controller, question string) tea.Cmd {
	return func() tea.Msg {
		if _, err := ctrl.Ask(ctx, question); err != nil {
			return ActionErrMsg{Op: "ask", Err: err}
		}
		return ActionDoneMsg{Op: "ask"}
	}
}
