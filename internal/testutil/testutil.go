package testutil

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprscribe/internal/backend"
	"github.com/leonardotrapani/hyprscribe/internal/recording"
)

// CreateTempConfigFile creates a temporary config file for testing
func CreateTempConfigFile(t *testing.T, configContent string) string {
	t.Helper()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// MockFragment creates a test audio fragment
func MockFragment(data []byte) recording.Fragment {
	if data == nil {
		data = make([]byte, 1024)
		for i := range data {
			data[i] = byte(i % 256)
		}
	}

	return recording.Fragment{
		Data:      data,
		Timestamp: time.Now(),
	}
}

// TonePCM returns n s16le mono samples of a sine wave.
func TonePCM(n int, freq, sampleRate, amplitude float64) []byte {
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v*32767)))
	}
	return out
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// CaptureOutput captures stdout for testing
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	out, _ := io.ReadAll(r)
	return string(out)
}

// MockCapturer implements recording.Capturer. It delivers Fragments and
// then keeps the device open until stopped, unless EndAfterFragments is
// set, in which case it closes on its own as a capture timeout would.
type MockCapturer struct {
	Fragments         []recording.Fragment
	StartError        error
	CaptureError      error
	EndAfterFragments bool

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}

	starts atomic.Int32
	stops  atomic.Int32
	active atomic.Bool
}

func NewMockCapturer(fragments ...[]byte) *MockCapturer {
	m := &MockCapturer{}
	for _, f := range fragments {
		m.Fragments = append(m.Fragments, MockFragment(f))
	}
	return m
}

func (m *MockCapturer) Start(ctx context.Context) (<-chan recording.Fragment, <-chan error, error) {
	m.starts.Add(1)
	if m.StartError != nil {
		return nil, nil, m.StartError
	}

	m.mu.Lock()
	if m.stopCh != nil {
		m.mu.Unlock()
		return nil, nil, recording.ErrAlreadyRecording
	}
	stopCh := make(chan struct{})
	done := make(chan struct{})
	m.stopCh = stopCh
	m.done = done
	m.mu.Unlock()

	m.active.Store(true)

	fragCh := make(chan recording.Fragment, len(m.Fragments)+1)
	errCh := make(chan error, 1)

	go func() {
		defer close(done)
		defer m.active.Store(false)
		defer close(fragCh)
		defer close(errCh)

		for _, frag := range m.Fragments {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case fragCh <- frag:
			}
		}

		if m.CaptureError != nil {
			errCh <- m.CaptureError
			return
		}
		if m.EndAfterFragments {
			return
		}

		select {
		case <-ctx.Done():
		case <-stopCh:
		}
	}()

	return fragCh, errCh, nil
}

func (m *MockCapturer) Stop() error {
	m.stops.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopCh != nil {
		select {
		case <-m.stopCh:
		default:
			close(m.stopCh)
		}
	}
	return nil
}

func (m *MockCapturer) Wait() {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Active reports whether the fake device is still held.
func (m *MockCapturer) Active() bool { return m.active.Load() }

func (m *MockCapturer) Starts() int { return int(m.starts.Load()) }

func (m *MockCapturer) Stops() int { return int(m.stops.Load()) }

// FakeBackend is an httptest server speaking the transcription API.
type FakeBackend struct {
	*httptest.Server

	Transcribe func(audio []byte, contentType string) (int, any)
	YouTube    func(req backend.YouTubeRequest) (int, any)
	Ask        func(req backend.AskRequest) (int, any)

	mu    sync.Mutex
	calls map[string]int
}

// NewFakeBackend starts a server answering every endpoint successfully.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	f := &FakeBackend{calls: make(map[string]int)}
	f.Transcribe = func([]byte, string) (int, any) {
		return http.StatusOK, backend.TranscribeResponse{Success: true, Transcript: "mock transcript", Summary: "mock summary"}
	}
	f.YouTube = func(backend.YouTubeRequest) (int, any) {
		return http.StatusOK, backend.YouTubeResponse{
			Success:    true,
			Title:      "Mock Video",
			Language:   "en",
			Source:     "captions",
			Transcript: "mock video transcript",
			Summary:    "mock video summary",
			KeyPoints:  []string{"first", "second"},
		}
	}
	f.Ask = func(backend.AskRequest) (int, any) {
		return http.StatusOK, backend.AskResponse{Success: true, Answer: "mock answer"}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+backend.TranscribePath, f.handleTranscribe)
	mux.HandleFunc("POST "+backend.YouTubePath, f.handleYouTube)
	mux.HandleFunc("POST "+backend.AskPath, f.handleAsk)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// Calls returns how many requests hit path.
func (f *FakeBackend) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *FakeBackend) record(path string) {
	f.mu.Lock()
	f.calls[path]++
	f.mu.Unlock()
}

func (f *FakeBackend) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	f.record(backend.TranscribePath)
	file, header, err := r.FormFile(backend.AudioField)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing audio"})
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)
	status, body := f.Transcribe(data, header.Header.Get("Content-Type"))
	writeJSON(w, status, body)
}

func (f *FakeBackend) handleYouTube(w http.ResponseWriter, r *http.Request) {
	f.record(backend.YouTubePath)
	var req backend.YouTubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	status, body := f.YouTube(req)
	writeJSON(w, status, body)
}

func (f *FakeBackend) handleAsk(w http.ResponseWriter, r *http.Request) {
	f.record(backend.AskPath)
	var req backend.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
		return
	}
	status, body := f.Ask(req)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
