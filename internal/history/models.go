// Package history keeps a local SQLite log of finished transcripts.
package history

import "time"

const (
	SourceMicrophone = "microphone"
	SourceYouTube    = "youtube"
)

// Entry is one successful recording or YouTube result.
type Entry struct {
	ID         string
	Source     string
	Title      string
	URL        string
	Transcript string
	Summary    string
	KeyPoints  []string
	AudioBytes int
	CreatedAt  time.Time
}
