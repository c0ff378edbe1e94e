package config

import (
	"time"

	"github.com/leonardotrapani/hyprscribe/internal/backend"
	"github.com/leonardotrapani/hyprscribe/internal/recording"
	"github.com/leonardotrapani/hyprscribe/internal/session"
)

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		SampleRate:        c.Recording.SampleRate,
		Channels:          c.Recording.Channels,
		Format:            c.Recording.Format,
		BufferSize:        c.Recording.BufferSize,
		Device:            c.Recording.Device,
		ChannelBufferSize: c.Recording.ChannelBufferSize,
		Timeout:           c.Recording.Timeout,
	}
}

func (c *Config) ToBackendConfig() backend.Config {
	return backend.Config{
		BaseURL: c.Backend.BaseURL,
		Timeout: c.Backend.Timeout,
	}
}

func (c *Config) ToAudioFormat() session.AudioFormat {
	return session.AudioFormat{
		SampleRate:    c.Recording.SampleRate,
		Channels:      c.Recording.Channels,
		BitsPerSample: 16,
	}
}

func (c *Config) ToSessionOptions() session.Options {
	opts := session.Options{
		TranscriptLimit: c.Display.TranscriptLimit,
		TypewriterDelay: c.Display.TypewriterDelay,
		SaveDir:         c.Recording.SaveDir,
	}
	if c.Display.FrameRate > 0 {
		opts.FrameInterval = time.Second / time.Duration(c.Display.FrameRate)
	}
	return opts
}
