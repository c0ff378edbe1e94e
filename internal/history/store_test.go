package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AddAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	if err := s.Add(ctx, Entry{Source: SourceMicrophone, Transcript: "first", Summary: "s1", AudioBytes: 320, CreatedAt: base}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(ctx, Entry{
		Source:     SourceYouTube,
		Title:      "Talk",
		URL:        "https://youtu.be/x",
		Transcript: "second",
		KeyPoints:  []string{"one", "two"},
		CreatedAt:  base.Add(time.Minute),
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Transcript != "second" {
		t.Errorf("newest first: got %q", entries[0].Transcript)
	}
	if entries[0].ID == "" {
		t.Error("ID should be generated")
	}
	if len(entries[0].KeyPoints) != 2 || entries[0].KeyPoints[1] != "two" {
		t.Errorf("key points = %v", entries[0].KeyPoints)
	}
	if entries[1].AudioBytes != 320 {
		t.Errorf("audio bytes = %d", entries[1].AudioBytes)
	}
	if len(entries[1].KeyPoints) != 0 {
		t.Errorf("microphone entry key points = %v, want empty", entries[1].KeyPoints)
	}
	if d := entries[1].CreatedAt.Sub(base); d > time.Millisecond || d < -time.Millisecond {
		t.Errorf("createdAt drift = %v", d)
	}

	limited, err := s.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited = %d, want 1", len(limited))
	}
}

func TestStore_Get(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, Entry{ID: "abcd-1234", Source: SourceMicrophone, Transcript: "t"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	e, err := s.Get(ctx, "abcd")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.ID != "abcd-1234" {
		t.Fatalf("get by prefix = %+v", e)
	}

	missing, err := s.Get(ctx, "ffff")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("missing = %+v, want nil", missing)
	}

	if _, err := s.Get(ctx, "ab"); err == nil {
		t.Error("short id should error")
	}
}

func TestStore_GetWildcardsAreLiteral(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, Entry{ID: "abcd-1234", Source: SourceMicrophone, Transcript: "t"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	for _, id := range []string{"%%%%", "____", "ab%d", "a_cd"} {
		e, err := s.Get(ctx, id)
		if err != nil {
			t.Fatalf("get %q: %v", id, err)
		}
		if e != nil {
			t.Errorf("get %q matched %s, want nothing", id, e.ID)
		}
	}
}

func TestStore_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.sqlite")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Add(context.Background(), Entry{Source: SourceMicrophone, Transcript: "persisted"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	s.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	entries, err := reopened.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 || entries[0].Transcript != "persisted" {
		t.Errorf("entries = %+v", entries)
	}
}
