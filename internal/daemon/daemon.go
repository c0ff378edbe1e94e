// Package daemon runs the background service that owns the microphone and
// the session, driven over the control socket.
package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/leonardotrapani/hyprscribe/internal/backend"
	"github.com/leonardotrapani/hyprscribe/internal/bus"
	"github.com/leonardotrapani/hyprscribe/internal/config"
	"github.com/leonardotrapani/hyprscribe/internal/history"
	"github.com/leonardotrapani/hyprscribe/internal/notify"
	"github.com/leonardotrapani/hyprscribe/internal/recording"
	"github.com/leonardotrapani/hyprscribe/internal/session"
)

// Result is the reply body of the result command.
type Result struct {
	Mode          session.Mode  `json:"mode"`
	Phase         session.Phase `json:"phase"`
	Status        string        `json:"status"`
	Transcript    string        `json:"transcript"`
	Summary       string        `json:"summary"`
	Title         string        `json:"title,omitempty"`
	URL           string        `json:"url,omitempty"`
	KeyPoints     []string      `json:"key_points,omitempty"`
	Answer        string        `json:"answer,omitempty"`
	RecordedBytes int           `json:"recorded_bytes,omitempty"`
}

type Daemon struct {
	config   *config.Manager
	notifier notify.Notifier
	session  *session.Controller
	archive  *history.Store

	ctx    context.Context
	cancel context.CancelFunc
	conns  sync.WaitGroup
}

// New loads the configuration and wires the session to PipeWire capture
// and the configured backend.
func New() (*Daemon, error) {
	cfgMgr, err := config.NewManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	ctrl, n, store := NewSession(cfgMgr)
	d := newDaemon(ctrl, n)
	d.config = cfgMgr
	d.archive = store
	return d, nil
}

// NewSession builds a controller from the managed config. The history store
// is nil when history is disabled or cannot be opened; the caller closes it.
// Reloaded config is applied to the controller.
func NewSession(cfgMgr *config.Manager, extra ...session.Option) (*session.Controller, notify.Notifier, *history.Store) {
	cfg := cfgMgr.GetConfig()

	n := notify.New(cfg.Notifications.Enabled, cfg.Notifications.Type)
	options := []session.Option{session.WithNotifier(n)}

	var store *history.Store
	if cfg.History.Enabled {
		path := cfg.History.Path
		if path == "" {
			path = history.DefaultDBPath()
		}
		var err error
		store, err = history.Open(path)
		if err != nil {
			log.Printf("Daemon: history disabled: %v", err)
			store = nil
		} else {
			options = append(options, session.WithArchive(store))
		}
	}
	options = append(options, extra...)

	ctrl := session.New(pipeWireCapture(cfgMgr), &liveBackend{config: cfgMgr}, cfg.ToSessionOptions(), options...)

	cfgMgr.OnReload(func(c *config.Config) {
		ctrl.SetOptions(c.ToSessionOptions())
		log.Printf("Daemon: applied reloaded configuration")
	})
	return ctrl, n, store
}

func newDaemon(ctrl *session.Controller, n notify.Notifier) *Daemon {
	if n == nil {
		n = notify.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		notifier: n,
		session:  ctrl,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// pipeWireCapture builds each session's recorder from the config current
// at the time recording starts.
func pipeWireCapture(m *config.Manager) session.CaptureFactory {
	return func() (recording.Capturer, session.AudioFormat) {
		cfg := m.GetConfig()
		return recording.NewRecorder(cfg.ToRecordingConfig()), cfg.ToAudioFormat()
	}
}

// liveBackend resolves the backend address on every call so edits to
// backend.base_url apply without a restart.
type liveBackend struct {
	config *config.Manager
}

func (b *liveBackend) client() *backend.Client {
	return backend.NewClient(b.config.GetConfig().ToBackendConfig())
}

func (b *liveBackend) Transcribe(ctx context.Context, rec backend.Recording) (*backend.TranscribeResponse, error) {
	return b.client().Transcribe(ctx, rec)
}

func (b *liveBackend) ProcessYouTube(ctx context.Context, url string) (*backend.YouTubeResponse, error) {
	return b.client().ProcessYouTube(ctx, url)
}

func (b *liveBackend) Ask(ctx context.Context, question, transcript string) (*backend.AskResponse, error) {
	return b.client().Ask(ctx, question, transcript)
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	if d.config != nil {
		if err := d.config.StartWatching(d.ctx); err != nil {
			log.Printf("Daemon: config hot-reload unavailable: %v", err)
		}
		defer d.config.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal %v, shutting down gracefully", sig)
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	log.Printf("Daemon started, listening on socket")

	err = d.serve(ln)
	d.shutdown()
	return err
}

func (d *Daemon) serve(ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("Shutdown requested")
				return nil
			}
			log.Printf("Accept error: %v", err)
			return fmt.Errorf("accept failed: %w", err)
		}
		d.conns.Add(1)
		go func() {
			defer d.conns.Done()
			d.handle(c)
		}()
	}
}

func (d *Daemon) shutdown() {
	d.session.Close()
	d.conns.Wait()
	if d.archive != nil {
		if err := d.archive.Close(); err != nil {
			log.Printf("Daemon: closing history: %v", err)
		}
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("Client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	cmd, arg, err := bus.ParseRequest(line)
	if err != nil {
		fmt.Fprint(c, "ERR empty\n")
		return
	}

	switch cmd {
	case 't':
		fmt.Fprint(c, d.toggle())
	case 's':
		s := d.session.Snapshot()
		fmt.Fprintf(c, "STATUS status=%s phase=%s\n", s.Mode, s.Phase)
	case 'r':
		data, err := json.Marshal(d.result())
		if err != nil {
			fmt.Fprintf(c, "ERR %v\n", err)
			return
		}
		fmt.Fprintf(c, "RESULT %s\n", data)
	case 'y':
		fmt.Fprint(c, d.youtube(arg))
	case 'a':
		fmt.Fprint(c, d.ask(arg))
	case 'c':
		d.session.Cancel()
		fmt.Fprint(c, "OK cancelled\n")
	case 'v':
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case 'q':
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		log.Printf("Unknown command: %c", cmd)
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

// toggle starts a recording when idle and stops it when recording.
func (d *Daemon) toggle() string {
	switch d.session.Snapshot().Mode {
	case session.Idle:
		if err := d.session.Start(d.ctx); err != nil {
			return fmt.Sprintf("ERR %s\n", oneLine(err.Error()))
		}
		return "STATUS recording=true\n"
	case session.Recording:
		d.session.Stop()
		return "STATUS recording=false\n"
	default:
		return "ERR busy\n"
	}
}

func (d *Daemon) youtube(url string) string {
	err := d.session.ProcessYouTube(d.ctx, url)
	switch {
	case err == nil:
		s := d.session.Snapshot()
		title := ""
		if s.Video != nil {
			title = s.Video.Title
		}
		return fmt.Sprintf("OK %s\n", strconv.Quote(title))
	case errors.Is(err, session.ErrEmptyURL):
		return fmt.Sprintf("ERR %s\n", session.YouTubeEmptyURL)
	case errors.Is(err, session.ErrBusy):
		return "ERR busy\n"
	default:
		return fmt.Sprintf("ERR %s\n", oneLine(err.Error()))
	}
}

func (d *Daemon) ask(question string) string {
	answer, err := d.session.Ask(d.ctx, question)
	switch {
	case err == nil:
		return fmt.Sprintf("ANSWER %s\n", strconv.Quote(answer))
	case errors.Is(err, session.ErrEmptyQuestion):
		return fmt.Sprintf("ERR %s\n", session.AnswerEmpty)
	case errors.Is(err, session.ErrNoTranscript):
		return fmt.Sprintf("ERR %s\n", session.AnswerNoTranscript)
	default:
		return fmt.Sprintf("ERR %s\n", oneLine(err.Error()))
	}
}

func (d *Daemon) result() Result {
	s := d.session.Snapshot()
	r := Result{
		Mode:          s.Mode,
		Phase:         s.Phase,
		Status:        s.Status,
		Transcript:    d.session.Transcript(),
		Summary:       s.Summary,
		KeyPoints:     s.KeyPoints,
		Answer:        s.Answer,
		RecordedBytes: s.RecordingBytes,
	}
	if r.Transcript == "" {
		r.Transcript = s.Transcript
	}
	if s.Video != nil {
		r.Title = s.Video.Title
		r.URL = s.Video.URL
	}
	return r
}

// oneLine keeps error text from breaking the line protocol.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
