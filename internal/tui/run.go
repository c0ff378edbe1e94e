package tui

import (
	"context"
	"sync/atomic"

	"github.com/leonardotrapani/hyprscribe/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the session screen until the user quits. build receives the
// change hook to register on the controller it creates.
func Run(ctx context.Context, build func(onChange func(session.Snapshot)) Controller) error {
	return run(ctx, build, tea.WithAltScreen())
}

func run(ctx context.Context, build func(onChange func(session.Snapshot)) Controller, opts ...tea.ProgramOption) error {
	var program atomic.Pointer[tea.Program]
	ctrl := build(func(s session.Snapshot) {
		// Send blocks until the event loop reads it, and the controller may
		// publish from inside a command or a typewriter step. Older
		// snapshots that arrive late are dropped by Version.
		if p := program.Load(); p != nil {
			go p.Send(SnapshotMsg{Snapshot: s})
		}
	})

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewModel(ctx, ctrl), opts...)
	program.Store(p)

	_, err := p.Run()
	return err
}
