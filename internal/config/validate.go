package config

import (
	"fmt"
	"net/url"
)

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("invalid backend.base_url: empty")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend.base_url: %s (must be an http or https URL)", c.Backend.BaseURL)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("invalid backend.timeout: %v", c.Backend.Timeout)
	}

	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}
	if c.Recording.BufferSize <= 0 {
		return fmt.Errorf("invalid recording.buffer_size: %d", c.Recording.BufferSize)
	}
	if c.Recording.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid recording.channel_buffer_size: %d", c.Recording.ChannelBufferSize)
	}
	if c.Recording.Format != "s16" {
		return fmt.Errorf("invalid recording.format: %q (only s16 is supported)", c.Recording.Format)
	}
	if c.Recording.Timeout <= 0 {
		return fmt.Errorf("invalid recording.timeout: %v", c.Recording.Timeout)
	}

	if c.Display.TranscriptLimit < 0 {
		return fmt.Errorf("invalid display.transcript_limit: %d", c.Display.TranscriptLimit)
	}
	if c.Display.TypewriterDelay < 0 {
		return fmt.Errorf("invalid display.typewriter_delay: %v", c.Display.TypewriterDelay)
	}
	if c.Display.FrameRate <= 0 || c.Display.FrameRate > 240 {
		return fmt.Errorf("invalid display.frame_rate: %d (must be 1-240)", c.Display.FrameRate)
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}
