package session

import (
	"errors"

	"github.com/leonardotrapani/hyprscribe/internal/visualizer"
)

var (
	ErrBusy          = errors.New("another operation is in progress")
	ErrEmptyURL      = errors.New("empty YouTube URL")
	ErrEmptyQuestion = errors.New("empty question")
	ErrNoTranscript  = errors.New("no transcript to ask about")
	ErrStale         = errors.New("result superseded by a newer operation")
)

// Mode is which flow currently owns the result panels.
type Mode string

const (
	Idle      Mode = "idle"
	Recording Mode = "recording"
	Uploading Mode = "uploading"
	YouTube   Mode = "youtube"
)

// Phase is the short status label shown to the user.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseRecording  Phase = "recording"
	PhaseProcessing Phase = "processing"
	PhaseDone       Phase = "done"
	PhaseError      Phase = "error"
)

// User-facing texts.
const (
	StatusReady        = "Ready"
	StatusRecording    = "Recording..."
	StatusProcessing   = "Transcribing & summarizing..."
	StatusDone         = "Done"
	StatusError        = "Error"
	StatusMicDenied    = "Microphone access denied"
	StatusCancelled    = "Cancelled"
	TextListening      = "Listening..."
	TextProcessing     = "Processing audio..."
	TextSummarizing    = "Generating summary..."
	TextFetching       = "Fetching transcript..."
	TextPlaceholder    = "—"
	TextVideoError     = "Error processing video"
	YouTubeEmptyURL    = "Please enter a YouTube URL"
	YouTubeProcessing  = "Processing YouTube video..."
	YouTubeDone        = "YouTube video processed successfully!"
	AnswerEmpty        = "Please enter a question."
	AnswerNoTranscript = "No content to ask about. Record or process a video first."
	AnswerThinking     = "Thinking..."
	Ellipsis           = "..."
)

// VideoInfo is shown only for YouTube results.
type VideoInfo struct {
	Title    string
	Language string
	Source   string
	URL      string
}

// Controls mirrors which actions are currently allowed.
type Controls struct {
	Record  bool
	Stop    bool
	YouTube bool
	Ask     bool
}

// Snapshot is an immutable view of the session for displays. Version grows
// with every change so displays can drop out-of-order deliveries.
type Snapshot struct {
	Version        uint64
	Mode           Mode
	Phase          Phase
	Status         string
	YouTubeStatus  string
	Transcript     string
	Summary        string
	Video          *VideoInfo
	KeyPoints      []string
	ShowKeyPoints  bool
	Answer         string
	Controls       Controls
	Glow           visualizer.Glow
	RecordingBytes int
}

// TruncateTranscript shortens text to limit runes plus an ellipsis. A limit
// of zero or less disables truncation.
func TruncateTranscript(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + Ellipsis
}
