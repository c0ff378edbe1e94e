// Package session owns the record → upload → display cycle and the YouTube
// and question flows that share its result panels.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/leonardotrapani/hyprscribe/internal/backend"
	"github.com/leonardotrapani/hyprscribe/internal/history"
	"github.com/leonardotrapani/hyprscribe/internal/notify"
	"github.com/leonardotrapani/hyprscribe/internal/recording"
	"github.com/leonardotrapani/hyprscribe/internal/typewriter"
	"github.com/leonardotrapani/hyprscribe/internal/visualizer"
)

// Backend is the remote service doing the actual transcription work.
type Backend interface {
	Transcribe(ctx context.Context, rec backend.Recording) (*backend.TranscribeResponse, error)
	ProcessYouTube(ctx context.Context, url string) (*backend.YouTubeResponse, error)
	Ask(ctx context.Context, question, transcript string) (*backend.AskResponse, error)
}

// Archive receives every successful result.
type Archive interface {
	Add(ctx context.Context, e history.Entry) error
}

// CaptureFactory builds a fresh capturer for each recording session.
type CaptureFactory func() (recording.Capturer, AudioFormat)

type Options struct {
	TranscriptLimit int
	TypewriterDelay time.Duration
	FrameInterval   time.Duration
	SaveDir         string
}

func DefaultOptions() Options {
	return Options{
		TranscriptLimit: 500,
		TypewriterDelay: 15 * time.Millisecond,
		FrameInterval:   time.Second / 60,
	}
}

// Controller is the single owner of transcript, summary and answer state.
// Every result-producing operation is tagged with an epoch; results that
// come back after a newer operation started are dropped.
type Controller struct {
	newCapture CaptureFactory
	backend    Backend
	opts       Options
	notifier   notify.Notifier
	archive    Archive
	onChange   func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	mode       Mode
	epoch      uint64
	askEpoch   uint64
	version    uint64
	view       Snapshot // display fields; Mode/Controls/Version are filled on read
	transcript string   // full transcript used for questions
	active     *capture
	last       *Audio

	analyser *visualizer.Analyser
	answer   *typewriter.Writer

	workers  sync.WaitGroup // collectors and visual loops
	inflight sync.WaitGroup // uploads and backend lookups
}

// capture is the per-session state of one recording.
type capture struct {
	epoch     uint64
	capturer  recording.Capturer
	format    AudioFormat
	fragments [][]byte
	started   time.Time

	stopping   bool
	released   bool
	captureErr error
	collected  chan struct{}
}

type Option func(*Controller)

func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithArchive(a Archive) Option {
	return func(c *Controller) { c.archive = a }
}

// WithOnChange registers a callback receiving a snapshot after every change.
// It runs outside the controller's lock and must not block for long.
func WithOnChange(f func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = f }
}

func New(newCapture CaptureFactory, b Backend, opts Options, options ...Option) *Controller {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultOptions().FrameInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		newCapture: newCapture,
		backend:    b,
		opts:       opts,
		notifier:   notify.Nop{},
		ctx:        ctx,
		cancel:     cancel,
		mode:       Idle,
		analyser:   visualizer.NewAnalyser(visualizer.DefaultFFTSize),
		view: Snapshot{
			Phase:      PhaseIdle,
			Status:     StatusReady,
			Transcript: TextPlaceholder,
			Summary:    TextPlaceholder,
			Glow:       visualizer.Resting(),
		},
	}
	for _, o := range options {
		o(c)
	}
	c.answer = typewriter.New(typewriter.TargetFunc(c.setAnswer), opts.TypewriterDelay)
	return c
}

// SetOptions applies new display options. A recording in progress keeps
// its frame rate.
func (c *Controller) SetOptions(opts Options) {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultOptions().FrameInterval
	}
	c.mu.Lock()
	c.opts = opts
	c.mu.Unlock()
	c.answer.SetDelay(opts.TypewriterDelay)
}

// Snapshot returns the current display state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := c.view
	s.Version = c.version
	s.Mode = c.mode
	s.Controls = Controls{
		Record:  c.mode == Idle,
		Stop:    c.mode == Recording,
		YouTube: c.mode == Idle,
		Ask:     c.transcript != "",
	}
	if c.last != nil {
		s.RecordingBytes = c.last.Size()
	}
	if s.KeyPoints != nil {
		s.KeyPoints = append([]string(nil), s.KeyPoints...)
	}
	if s.Video != nil {
		v := *s.Video
		s.Video = &v
	}
	return s
}

// changedLocked bumps the version and returns the snapshot to publish.
func (c *Controller) changedLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) publish(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

// Transcript returns the full stored transcript (not truncated).
func (c *Controller) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// LastRecording returns the most recently assembled recording, if any.
func (c *Controller) LastRecording() *Audio {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Start acquires the microphone and begins a recording session. Capture
// runs until Stop, Cancel, ctx cancellation or the capturer's own timeout.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.mode != Idle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.epoch++
	epoch := c.epoch
	c.mode = Recording
	c.mu.Unlock()

	capturer, format := c.newCapture()
	fragCh, errCh, err := capturer.Start(ctx)
	if err != nil {
		log.Printf("Session: microphone unavailable: %v", err)
		c.mu.Lock()
		if c.epoch != epoch {
			// Cancelled while the device was being opened; a newer
			// session may already own the mode.
			c.mu.Unlock()
			return fmt.Errorf("start capture: %w", err)
		}
		c.mode = Idle
		c.view.Phase = PhaseError
		c.view.Status = StatusMicDenied
		snap := c.changedLocked()
		c.mu.Unlock()
		c.publish(snap)
		c.notifier.Error(StatusMicDenied)
		return fmt.Errorf("start capture: %w", err)
	}

	s := &capture{
		epoch:     epoch,
		capturer:  capturer,
		format:    format,
		started:   time.Now(),
		collected: make(chan struct{}),
	}

	c.analyser.Reset()

	c.mu.Lock()
	if c.epoch != epoch {
		// Cancelled while the device was being opened.
		c.mu.Unlock()
		capturer.Stop()
		capturer.Wait()
		return ErrStale
	}
	c.active = s
	frameInterval := c.opts.FrameInterval
	c.view.Phase = PhaseRecording
	c.view.Status = StatusRecording
	c.view.Transcript = TextListening
	c.view.Summary = TextPlaceholder
	snap := c.changedLocked()
	c.mu.Unlock()

	c.workers.Add(2)
	go c.collect(s, fragCh, errCh)
	go c.visualize(s, frameInterval)

	log.Printf("Session: recording started (epoch %d)", epoch)
	c.publish(snap)
	c.notifier.RecordingStarted()
	return nil
}

// collect appends every fragment in order until the capturer closes its
// channels, then finishes the session if nobody stopped it explicitly.
func (c *Controller) collect(s *capture, fragCh <-chan recording.Fragment, errCh <-chan error) {
	defer c.workers.Done()

	for fragCh != nil || errCh != nil {
		select {
		case frag, ok := <-fragCh:
			if !ok {
				fragCh = nil
				continue
			}
			c.mu.Lock()
			s.fragments = append(s.fragments, frag.Data)
			c.mu.Unlock()
			c.analyser.Write(frag.Data)

		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				c.mu.Lock()
				s.captureErr = err
				c.mu.Unlock()
			}
		}
	}
	close(s.collected)

	c.mu.Lock()
	stopping := s.stopping
	captureErr := s.captureErr
	if !stopping {
		s.stopping = true
	}
	c.mu.Unlock()

	if stopping {
		return
	}

	// The capturer ended on its own: timeout or device failure.
	c.release(s)
	if captureErr != nil {
		c.fail(s, captureErr)
		return
	}
	log.Printf("Session: capture ended without stop, finishing session")
	c.finish(s)
}

// visualize samples the analyser once per frame while this session is
// recording. It does not reschedule once that stops being true.
func (c *Controller) visualize(s *capture, interval time.Duration) {
	defer c.workers.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	bins := make([]uint8, c.analyser.FrequencyBinCount())

	for {
		select {
		case <-ticker.C:
		case <-c.ctx.Done():
			return
		}

		c.mu.Lock()
		if c.mode != Recording || c.active != s || s.stopping {
			c.mu.Unlock()
			return
		}
		bins = c.analyser.ByteFrequencyData(bins)
		c.view.Glow = visualizer.GlowFor(visualizer.Average(bins))
		snap := c.changedLocked()
		c.mu.Unlock()

		c.publish(snap)
	}
}

// Stop ends the active recording and hands it to the backend in the
// background. Without an active recording it does nothing.
func (c *Controller) Stop() error {
	c.mu.Lock()
	s := c.active
	if c.mode != Recording || s == nil || s.stopping {
		c.mu.Unlock()
		return nil
	}
	s.stopping = true
	c.mu.Unlock()

	c.release(s)
	<-s.collected
	c.finish(s)
	return nil
}

// release stops the capture device. It runs at most once per session.
func (c *Controller) release(s *capture) {
	c.mu.Lock()
	if s.released {
		c.mu.Unlock()
		return
	}
	s.released = true
	c.mu.Unlock()

	if err := s.capturer.Stop(); err != nil {
		log.Printf("Session: error stopping capture: %v", err)
	}
	s.capturer.Wait()
	c.analyser.Reset()
}

// finish assembles the recording and starts the upload.
func (c *Controller) finish(s *capture) {
	c.mu.Lock()
	if c.active != s {
		c.mu.Unlock()
		return
	}
	c.active = nil
	saveDir := c.opts.SaveDir
	audio := assemble(s.fragments, s.format)
	s.fragments = nil
	c.last = audio
	c.mode = Uploading
	c.view.Glow = visualizer.Resting()
	c.view.Phase = PhaseProcessing
	c.view.Status = StatusProcessing
	c.view.Transcript = TextProcessing
	c.view.Summary = TextSummarizing
	snap := c.changedLocked()
	c.mu.Unlock()

	log.Printf("Session: recording stopped after %v, %d bytes", time.Since(s.started).Round(time.Millisecond), audio.Size())
	c.publish(snap)
	c.notifier.Processing()

	if saveDir != "" {
		if path, err := audio.SaveTo(saveDir); err != nil {
			log.Printf("Session: failed to save recording: %v", err)
		} else {
			log.Printf("Session: recording saved to %s", path)
		}
	}

	c.inflight.Add(1)
	go c.upload(s.epoch, audio)
}

// fail ends a session whose capture broke before it could be stopped.
func (c *Controller) fail(s *capture, err error) {
	c.mu.Lock()
	if c.active != s {
		c.mu.Unlock()
		return
	}
	c.active = nil
	c.mode = Idle
	c.view.Glow = visualizer.Resting()
	c.view.Phase = PhaseError
	c.view.Status = StatusError
	c.view.Transcript = err.Error()
	snap := c.changedLocked()
	c.mu.Unlock()

	log.Printf("Session: capture failed: %v", err)
	c.publish(snap)
	c.notifier.Error(err.Error())
}

func (c *Controller) upload(epoch uint64, audio *Audio) {
	defer c.inflight.Done()

	resp, err := c.backend.Transcribe(c.ctx, audio)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		log.Printf("Session: dropping stale transcription (epoch %d)", epoch)
		return
	}
	c.mode = Idle
	if err != nil {
		c.view.Phase = PhaseError
		c.view.Status = StatusError
		c.view.Transcript = err.Error()
		snap := c.changedLocked()
		c.mu.Unlock()

		log.Printf("Session: transcription failed: %v", err)
		c.publish(snap)
		c.notifier.Error(err.Error())
		return
	}

	c.transcript = resp.Transcript
	c.view.Phase = PhaseDone
	c.view.Status = StatusDone
	c.view.Transcript = resp.Transcript
	c.view.Summary = resp.Summary
	c.view.ShowKeyPoints = false
	c.view.KeyPoints = nil
	c.view.Video = nil
	snap := c.changedLocked()
	c.mu.Unlock()

	c.publish(snap)
	c.notifier.Done("Transcript ready")
	c.store(history.Entry{
		Source:     history.SourceMicrophone,
		Transcript: resp.Transcript,
		Summary:    resp.Summary,
		AudioBytes: audio.Size(),
	})
}

// ProcessYouTube submits a video URL and fills the panels with the result.
// It blocks until the backend answers.
func (c *Controller) ProcessYouTube(ctx context.Context, rawURL string) error {
	url := strings.TrimSpace(rawURL)

	c.mu.Lock()
	if url == "" {
		c.view.YouTubeStatus = YouTubeEmptyURL
		snap := c.changedLocked()
		c.mu.Unlock()
		c.publish(snap)
		return ErrEmptyURL
	}
	if c.mode != Idle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.epoch++
	epoch := c.epoch
	c.mode = YouTube
	c.view.YouTubeStatus = YouTubeProcessing
	c.view.Transcript = TextFetching
	c.view.Summary = TextSummarizing
	c.view.Video = nil
	c.view.ShowKeyPoints = false
	snap := c.changedLocked()
	c.mu.Unlock()

	c.publish(snap)
	c.inflight.Add(1)
	defer c.inflight.Done()

	resp, err := c.backend.ProcessYouTube(ctx, url)

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		log.Printf("Session: dropping stale YouTube result for %s", url)
		return ErrStale
	}
	c.mode = Idle
	if err != nil {
		c.view.YouTubeStatus = "Error: " + err.Error()
		c.view.Transcript = TextVideoError
		c.view.Summary = TextPlaceholder
		snap := c.changedLocked()
		c.mu.Unlock()

		log.Printf("Session: YouTube processing failed: %v", err)
		c.publish(snap)
		c.notifier.Error(err.Error())
		return err
	}

	c.transcript = resp.Transcript
	c.view.Video = &VideoInfo{
		Title:    resp.Title,
		Language: resp.Language,
		Source:   resp.Source,
		URL:      url,
	}
	c.view.Transcript = TruncateTranscript(resp.Transcript, c.opts.TranscriptLimit)
	c.view.Summary = resp.Summary
	c.view.KeyPoints = append([]string(nil), resp.KeyPoints...)
	c.view.ShowKeyPoints = len(resp.KeyPoints) > 0
	c.view.YouTubeStatus = YouTubeDone
	snap = c.changedLocked()
	c.mu.Unlock()

	c.publish(snap)
	c.notifier.Done(resp.Title)
	c.store(history.Entry{
		Source:     history.SourceYouTube,
		Title:      resp.Title,
		URL:        url,
		Transcript: resp.Transcript,
		Summary:    resp.Summary,
		KeyPoints:  resp.KeyPoints,
	})
	return nil
}

// Ask sends a question about the stored transcript. The answer is revealed
// progressively; the full answer is returned once the backend replies.
func (c *Controller) Ask(ctx context.Context, rawQuestion string) (string, error) {
	question := strings.TrimSpace(rawQuestion)

	c.mu.Lock()
	var rejected error
	switch {
	case question == "":
		rejected = ErrEmptyQuestion
	case c.transcript == "":
		rejected = ErrNoTranscript
	}
	c.askEpoch++
	epoch := c.askEpoch
	transcript := c.transcript
	c.mu.Unlock()

	// The writer may be mid-step; it must never be driven under c.mu.
	c.answer.Cancel()

	switch rejected {
	case ErrEmptyQuestion:
		c.setAnswer(AnswerEmpty)
		return "", rejected
	case ErrNoTranscript:
		c.setAnswer(AnswerNoTranscript)
		return "", rejected
	}

	c.setAnswer(AnswerThinking)
	c.inflight.Add(1)
	defer c.inflight.Done()

	resp, err := c.backend.Ask(ctx, question, transcript)

	c.mu.Lock()
	stale := c.askEpoch != epoch
	c.mu.Unlock()
	if stale {
		return "", ErrStale
	}

	if err != nil {
		log.Printf("Session: ask failed: %v", err)
		c.setAnswer("Error: " + err.Error())
		return "", err
	}

	c.answer.Start(resp.Answer)
	return resp.Answer, nil
}

func (c *Controller) store(e history.Entry) {
	if c.archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.archive.Add(ctx, e); err != nil {
		log.Printf("Session: failed to save history entry: %v", err)
	}
}

func (c *Controller) setAnswer(text string) {
	c.mu.Lock()
	c.view.Answer = text
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(snap)
}

// HideYouTubePanels clears the video-only panels, as when switching back
// to the microphone view.
func (c *Controller) HideYouTubePanels() {
	c.mu.Lock()
	c.view.Video = nil
	c.view.ShowKeyPoints = false
	snap := c.changedLocked()
	c.mu.Unlock()
	c.publish(snap)
}

// Cancel abandons whatever is in progress. A recording is discarded without
// upload; an in-flight upload or lookup is left to finish but its result
// will be ignored.
func (c *Controller) Cancel() {
	c.mu.Lock()
	mode := c.mode
	if mode == Idle {
		c.mu.Unlock()
		return
	}
	c.epoch++
	s := c.active
	if s != nil {
		s.stopping = true
	}
	c.active = nil
	c.mode = Idle
	c.view.Glow = visualizer.Resting()
	c.view.Phase = PhaseIdle
	c.view.Status = StatusCancelled
	if mode == YouTube {
		c.view.YouTubeStatus = StatusCancelled
	}
	snap := c.changedLocked()
	c.mu.Unlock()

	if s != nil {
		c.release(s)
	}
	log.Printf("Session: %s cancelled", mode)
	c.publish(snap)
	c.notifier.Aborted()
}

// Wait blocks until in-flight uploads and backend lookups have returned.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close releases the microphone if recording, stops background work and
// waits for it to exit.
func (c *Controller) Close() {
	c.Cancel()
	c.answer.Cancel()
	c.cancel()
	c.workers.Wait()
	c.inflight.Wait()
}
