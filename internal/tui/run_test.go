package tui

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprscribe/internal/backend"
	"github.com/leonardotrapani/hyprscribe/internal/recording"
	"github.com/leonardotrapani/hyprscribe/internal/session"
	"github.com/leonardotrapani/hyprscribe/internal/testutil"

	tea "github.com/charmbracelet/bubbletea"
)

const runTimeout = 5 * time.Second

// runHarness drives the session screen over a pipe against a real
// controller, which publishes every change back into the program.
type runHarness struct {
	t    *testing.T
	ctrl *session.Controller
	keys *io.PipeWriter
	done chan error
}

func startRun(t *testing.T) *runHarness {
	t.Helper()

	fb := testutil.NewFakeBackend(t)
	client := backend.NewClient(backend.Config{BaseURL: fb.URL, Timeout: runTimeout})
	opts := session.Options{
		TranscriptLimit: 500,
		TypewriterDelay: time.Millisecond,
		FrameInterval:   5 * time.Millisecond,
	}

	pr, pw := io.Pipe()
	h := &runHarness{t: t, keys: pw, done: make(chan error, 1)}

	ctx, cancel := context.WithTimeout(context.Background(), 2*runTimeout)
	built := make(chan struct{})
	go func() {
		h.done <- run(ctx, func(onChange func(session.Snapshot)) Controller {
			h.ctrl = session.New(func() (recording.Capturer, session.AudioFormat) {
				return testutil.NewMockCapturer(testutil.TonePCM(320, 440, 16000, 0.5)), session.DefaultAudioFormat()
			}, client, opts, session.WithOnChange(onChange))
			close(built)
			return h.ctrl
		},
			tea.WithInput(pr),
			tea.WithOutput(io.Discard),
			tea.WithoutRenderer(),
			tea.WithoutSignalHandler(),
		)
	}()
	<-built

	t.Cleanup(func() {
		pw.Close()
		cancel()
		h.ctrl.Close()
	})
	return h
}

// key types k and fails if the program stops reading input.
func (h *runHarness) key(k string) {
	h.t.Helper()
	written := make(chan error, 1)
	go func() {
		_, err := h.keys.Write([]byte(k))
		written <- err
	}()
	select {
	case err := <-written:
		if err != nil {
			h.t.Fatalf("write key %q: %v", k, err)
		}
	case <-time.After(2 * time.Second):
		h.t.Fatalf("key %q was never read: the event loop is stuck", k)
	}
}

func (h *runHarness) waitFor(what string, cond func(session.Snapshot) bool) {
	h.t.Helper()
	deadline := time.Now().Add(runTimeout)
	for !cond(h.ctrl.Snapshot()) {
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out waiting for %s; snapshot %+v", what, h.ctrl.Snapshot())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// press repeats k until cond holds. The screen acts on its own copy of the
// controls, which can trail the controller by a few messages.
func (h *runHarness) press(k, what string, cond func(session.Snapshot) bool) {
	h.t.Helper()
	deadline := time.Now().Add(runTimeout)
	for {
		h.key(k)
		if cond(h.ctrl.Snapshot()) {
			return
		}
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out waiting for %s after %q", what, k)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func (h *runHarness) waitExit() {
	h.t.Helper()
	select {
	case err := <-h.done:
		if err != nil {
			h.t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(runTimeout):
		h.t.Fatal("Run() did not return after quit")
	}
}

func recordingMode(s session.Snapshot) bool { return s.Mode == session.Recording }

func TestRun_MicKeyThenQuit(t *testing.T) {
	h := startRun(t)

	before := h.ctrl.Snapshot().Version
	h.key(KeyMic)
	h.waitFor("panels hidden", func(s session.Snapshot) bool { return s.Version > before })

	h.key(KeyQuit)
	h.waitExit()
}

func TestRun_RecordStopAndAsk(t *testing.T) {
	h := startRun(t)

	h.press(KeyRecord, "recording", recordingMode)
	h.press(KeyStop, "stop", func(s session.Snapshot) bool { return s.Mode != session.Recording })
	h.waitFor("transcript", func(s session.Snapshot) bool {
		return s.Phase == session.PhaseDone && s.Transcript == "mock transcript"
	})

	// The answer is revealed by timer steps that publish while the
	// program keeps handling keys.
	if _, err := h.ctrl.Ask(context.Background(), "what was said?"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	h.key(KeyMic)
	h.waitFor("answer", func(s session.Snapshot) bool { return s.Answer == "mock answer" })

	h.key(KeyQuit)
	h.waitExit()
}

func TestRun_CancelWhileRecording(t *testing.T) {
	h := startRun(t)

	h.press(KeyRecord, "recording", recordingMode)
	h.key(KeyCancel)
	h.waitFor("cancelled", func(s session.Snapshot) bool {
		return s.Mode == session.Idle && s.Status == session.StatusCancelled
	})

	// Still responsive after the cancel.
	h.press(KeyRecord, "recording again", recordingMode)
	h.key("\x03") // ctrl+c
	h.waitExit()

	if s := h.ctrl.Snapshot(); s.Mode != session.Idle || s.Status != session.StatusCancelled {
		t.Errorf("quit while recording left %s/%q", s.Mode, s.Status)
	}
}
