package recording

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.SampleRate != 16000 {
		t.Errorf("default sample rate should be 16000, got %d", config.SampleRate)
	}
	if config.Channels != 1 {
		t.Errorf("default channels should be 1, got %d", config.Channels)
	}
	if config.Format != "s16" {
		t.Errorf("default format should be s16, got %s", config.Format)
	}
	if config.BufferSize != 8192 {
		t.Errorf("default buffer size should be 8192, got %d", config.BufferSize)
	}
	if config.ChannelBufferSize != 30 {
		t.Errorf("default channel buffer size should be 30, got %d", config.ChannelBufferSize)
	}
	if config.Timeout != 5*time.Minute {
		t.Errorf("default timeout should be 5m, got %v", config.Timeout)
	}
}

func TestRecorderValidateConfig(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid default config", func(*Config) {}, false},
		{"invalid sample rate", func(c *Config) { c.SampleRate = 0 }, true},
		{"negative sample rate", func(c *Config) { c.SampleRate = -1 }, true},
		{"invalid channels", func(c *Config) { c.Channels = 0 }, true},
		{"invalid buffer size", func(c *Config) { c.BufferSize = 0 }, true},
		{"invalid channel buffer size", func(c *Config) { c.ChannelBufferSize = 0 }, true},
		{"empty format", func(c *Config) { c.Format = "" }, true},
		{"unaligned buffer size only warns", func(c *Config) { c.BufferSize = 8193 }, false},
		{"stereo", func(c *Config) { c.Channels = 2; c.SampleRate = 48000 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			err := NewRecorder(config).validateConfig()

			if tt.expectError && err == nil {
				t.Errorf("expected error for config %+v", config)
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error for config %+v: %v", config, err)
			}
		})
	}
}

func TestRecorderBuildPwRecordArgs(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected []string
	}{
		{
			name:     "default config",
			config:   DefaultConfig(),
			expected: []string{"--format", "s16", "--rate", "16000", "--channels", "1", "-"},
		},
		{
			name: "with device",
			config: Config{
				SampleRate: 48000,
				Channels:   2,
				Format:     "s16",
				Device:     "alsa_input.usb-mic",
			},
			expected: []string{
				"--format", "s16",
				"--rate", "48000",
				"--channels", "2",
				"-",
				"--target", "alsa_input.usb-mic",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := NewRecorder(tt.config).buildPwRecordArgs()
			if len(args) != len(tt.expected) {
				t.Fatalf("args = %v, expected %v", args, tt.expected)
			}
			for i, arg := range args {
				if arg != tt.expected[i] {
					t.Errorf("arg[%d] = %q, expected %q", i, arg, tt.expected[i])
				}
			}
		})
	}
}

func TestRecorderLifecycle(t *testing.T) {
	recorder := NewDefaultRecorder()

	if recorder.IsRecording() {
		t.Error("recorder should not be recording initially")
	}
	if err := recorder.Stop(); err != nil {
		t.Errorf("stop should not error when not recording: %v", err)
	}
	// Wait with no capture in flight must not block.
	done := make(chan struct{})
	go func() {
		recorder.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked without an active capture")
	}
}

func TestRecorderErrorConditions(t *testing.T) {
	t.Run("double start without stop", func(t *testing.T) {
		recorder := NewDefaultRecorder()
		recorder.recording.Store(true)
		defer recorder.recording.Store(false)

		_, _, err := recorder.Start(context.Background())
		if !errors.Is(err, ErrAlreadyRecording) {
			t.Errorf("Start error = %v, want ErrAlreadyRecording", err)
		}
	})

	t.Run("invalid config start", func(t *testing.T) {
		recorder := NewRecorder(Config{SampleRate: -1})
		if _, _, err := recorder.Start(context.Background()); err == nil {
			t.Error("Start should return error with invalid config")
		}
	})
}

func TestRecorderImplementsCapturer(t *testing.T) {
	var _ Capturer = NewDefaultRecorder()
}
