package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeRecording struct {
	data []byte
	err  error
}

func (f fakeRecording) Filename() string        { return "audio.wav" }
func (f fakeRecording) ContentType() string     { return "audio/wav" }
func (f fakeRecording) Encode() ([]byte, error) { return f.data, f.err }

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
}

func TestClient_Transcribe(t *testing.T) {
	var gotCalls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotCalls++
		if r.Method != http.MethodPost || r.URL.Path != TranscribePath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile(AudioField)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "RIFFdata" {
			t.Errorf("uploaded %q", data)
		}
		if header.Filename != "audio.wav" {
			t.Errorf("filename = %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "audio/wav" {
			t.Errorf("part content type = %q", ct)
		}
		json.NewEncoder(w).Encode(TranscribeResponse{Success: true, Transcript: "hello", Summary: "hi"})
	})

	resp, err := c.Transcribe(context.Background(), fakeRecording{data: []byte("RIFFdata")})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if resp.Transcript != "hello" || resp.Summary != "hi" {
		t.Errorf("resp = %+v", resp)
	}
	if gotCalls != 1 {
		t.Errorf("calls = %d, want 1", gotCalls)
	}
}

func TestClient_TranscribeFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"success false with message", 200, `{"success":false,"error":"No speech detected"}`, "No speech detected"},
		{"success false without message", 200, `{"success":false}`, "Processing failed"},
		{"server error with message", 500, `{"success":false,"error":"model crashed"}`, "model crashed"},
		{"server error non json", 502, `bad gateway`, "Processing failed"},
		{"non 2xx with success flag", 400, `{"success":true,"transcript":"x"}`, "Processing failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.Transcribe(context.Background(), fakeRecording{data: []byte("x")})
			if err == nil {
				t.Fatal("expected error")
			}
			var be *Error
			if !errors.As(err, &be) {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if be.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", be.Message, tt.wantMsg)
			}
			if be.Status != tt.status {
				t.Errorf("status = %d, want %d", be.Status, tt.status)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want exactly 1 (no retry)", calls)
			}
		})
	}
}

func TestClient_TranscribeEncodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.Transcribe(context.Background(), fakeRecording{err: errors.New("boom")})
	if err == nil || IsBackendError(err) {
		t.Errorf("expected local encode error, got %v", err)
	}
}

func TestClient_ProcessYouTube(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != YouTubePath {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var req YouTubeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.URL != "https://youtu.be/abc" {
			t.Errorf("url = %q", req.URL)
		}
		io.WriteString(w, `{"success":true,"title":"T","language":"en","source":"captions","transcript":"tx","summary":"s","key_points":["a","b"]}`)
	})

	resp, err := c.ProcessYouTube(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("ProcessYouTube() error = %v", err)
	}
	if resp.Title != "T" || resp.Source != "captions" || len(resp.KeyPoints) != 2 {
		t.Errorf("resp = %+v", resp)
	}

	failing := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false}`)
	})
	_, err = failing.ProcessYouTube(context.Background(), "u")
	if err == nil || err.Error() != "Failed to process YouTube video" {
		t.Errorf("err = %v", err)
	}
}

func TestClient_Ask(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req AskRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Question != "why?" || req.Context != "because" {
			t.Errorf("req = %+v", req)
		}
		io.WriteString(w, `{"success":true,"answer":"because"}`)
	})

	resp, err := c.Ask(context.Background(), "why?", "because")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp.Answer != "because" {
		t.Errorf("answer = %q", resp.Answer)
	}

	failing := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err = failing.Ask(context.Background(), "q", "c")
	if err == nil || err.Error() != "Failed to get answer" {
		t.Errorf("err = %v", err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	_, err := c.Ask(context.Background(), "q", "c")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsBackendError(err) {
		t.Error("transport failure should not be a backend error")
	}
}
