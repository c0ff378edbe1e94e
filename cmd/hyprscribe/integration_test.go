//go:build integration

package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/leonardotrapani/hyprscribe/internal/backend"
	"github.com/leonardotrapani/hyprscribe/internal/session"
	"github.com/leonardotrapani/hyprscribe/internal/testutil"
)

// These tests talk to a running backend:
//
//	HYPRSCRIBE_BACKEND_URL=http://localhost:8000 go test -tags integration ./cmd/hyprscribe
//
// HYPRSCRIBE_YOUTUBE_URL additionally enables the YouTube test.

const testTimeout = 2 * time.Minute

func liveClient(t *testing.T) *backend.Client {
	t.Helper()
	baseURL := os.Getenv("HYPRSCRIBE_BACKEND_URL")
	if baseURL == "" {
		t.Skip("HYPRSCRIBE_BACKEND_URL not set")
	}
	return backend.NewClient(backend.Config{BaseURL: baseURL, Timeout: testTimeout})
}

func TestLiveTranscribe(t *testing.T) {
	client := liveClient(t)

	audio := &session.Audio{
		Data:      testutil.TonePCM(16000, 440, 16000, 0.3),
		Format:    session.DefaultAudioFormat(),
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	resp, err := client.Transcribe(ctx, audio)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	t.Logf("transcript=%q summary=%q", resp.Transcript, resp.Summary)
}

func TestLiveYouTubeAndAsk(t *testing.T) {
	client := liveClient(t)
	url := os.Getenv("HYPRSCRIBE_YOUTUBE_URL")
	if url == "" {
		t.Skip("HYPRSCRIBE_YOUTUBE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	video, err := client.ProcessYouTube(ctx, url)
	if err != nil {
		t.Fatalf("process youtube: %v", err)
	}
	if video.Transcript == "" {
		t.Fatal("empty transcript")
	}

	answer, err := client.Ask(ctx, "What is this video about?", video.Transcript)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if answer.Answer == "" {
		t.Error("empty answer")
	}
}
