package tui

import "github.com/leonardotrapani/hyprscribe/internal/session"

// SnapshotMsg carries a session change into the UI.
type SnapshotMsg struct {
	Snapshot session.Snapshot
}

// ActionErrMsg reports a session operation that failed outright.
type ActionErrMsg struct {
	Op  string
	Err error
}

// ActionDoneMsg is sent when a blocking session operation returns.
type ActionDoneMsg struct {
	Op string
}

// blinkMsg flips the recording indicator.
type blinkMsg struct{}
