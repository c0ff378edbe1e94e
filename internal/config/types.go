package config

import "time"

type Config struct {
	Backend       BackendConfig       `toml:"backend"`
	Recording     RecordingConfig     `toml:"recording"`
	Display       DisplayConfig       `toml:"display"`
	Notifications NotificationsConfig `toml:"notifications"`
	History       HistoryConfig       `toml:"history"`
}

// BackendConfig points at the transcription service.
type BackendConfig struct {
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
}

type RecordingConfig struct {
	SampleRate        int           `toml:"sample_rate"`
	Channels          int           `toml:"channels"`
	Format            string        `toml:"format"`
	BufferSize        int           `toml:"buffer_size"`
	Device            string        `toml:"device"`
	ChannelBufferSize int           `toml:"channel_buffer_size"`
	Timeout           time.Duration `toml:"timeout"`
	SaveDir           string        `toml:"save_dir"` // keep a WAV copy of each recording here (empty = off)
}

// DisplayConfig controls how results are revealed.
type DisplayConfig struct {
	TranscriptLimit int           `toml:"transcript_limit"` // characters of a YouTube transcript shown
	TypewriterDelay time.Duration `toml:"typewriter_delay"`
	FrameRate       int           `toml:"frame_rate"` // glow updates per second while recording
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // empty = default cache location
}
