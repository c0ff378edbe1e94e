package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func createTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Notifications.Type = "log"
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid config", modify: func(c *Config) {}},
		{name: "https backend", modify: func(c *Config) { c.Backend.BaseURL = "https://scribe.example.com/api" }},
		{name: "empty base url", modify: func(c *Config) { c.Backend.BaseURL = "" }, wantErr: "backend.base_url"},
		{name: "base url without scheme", modify: func(c *Config) { c.Backend.BaseURL = "localhost:8000" }, wantErr: "backend.base_url"},
		{name: "ftp base url", modify: func(c *Config) { c.Backend.BaseURL = "ftp://example.com" }, wantErr: "backend.base_url"},
		{name: "zero backend timeout", modify: func(c *Config) { c.Backend.Timeout = 0 }, wantErr: "backend.timeout"},
		{name: "zero sample rate", modify: func(c *Config) { c.Recording.SampleRate = 0 }, wantErr: "recording.sample_rate"},
		{name: "zero channels", modify: func(c *Config) { c.Recording.Channels = 0 }, wantErr: "recording.channels"},
		{name: "zero buffer size", modify: func(c *Config) { c.Recording.BufferSize = 0 }, wantErr: "recording.buffer_size"},
		{name: "zero channel buffer", modify: func(c *Config) { c.Recording.ChannelBufferSize = 0 }, wantErr: "recording.channel_buffer_size"},
		{name: "float format", modify: func(c *Config) { c.Recording.Format = "f32" }, wantErr: "recording.format"},
		{name: "zero recording timeout", modify: func(c *Config) { c.Recording.Timeout = 0 }, wantErr: "recording.timeout"},
		{name: "negative transcript limit", modify: func(c *Config) { c.Display.TranscriptLimit = -1 }, wantErr: "display.transcript_limit"},
		{name: "zero transcript limit disables truncation", modify: func(c *Config) { c.Display.TranscriptLimit = 0 }},
		{name: "negative typewriter delay", modify: func(c *Config) { c.Display.TypewriterDelay = -time.Millisecond }, wantErr: "display.typewriter_delay"},
		{name: "zero frame rate", modify: func(c *Config) { c.Display.FrameRate = 0 }, wantErr: "display.frame_rate"},
		{name: "huge frame rate", modify: func(c *Config) { c.Display.FrameRate = 1000 }, wantErr: "display.frame_rate"},
		{name: "unknown notification type", modify: func(c *Config) { c.Notifications.Type = "invalid" }, wantErr: "notifications.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Load(t *testing.T) {
	t.Run("creates default config when none exists", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", tempDir)

		config, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("Loaded config is invalid: %v", err)
		}

		configPath := filepath.Join(tempDir, "hyprscribe", "config.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			t.Errorf("Load() did not create config file")
		}

		want := DefaultConfig()
		if *config != *want {
			t.Errorf("Load() = %+v, want defaults %+v", config, want)
		}
	})

	t.Run("loads existing config", func(t *testing.T) {
		tempDir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", tempDir)
		configPath := filepath.Join(tempDir, "hyprscribe", "config.toml")
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			t.Fatalf("Failed to create config directory: %v", err)
		}

		content := `[backend]
base_url = "http://10.0.0.2:9000"
timeout = "30s"

[recording]
sample_rate = 48000
channels = 2
format = "s16"
buffer_size = 4096
channel_buffer_size = 10
timeout = "1m"
save_dir = "/tmp/recordings"

[display]
transcript_limit = 200
typewriter_delay = "5ms"
frame_rate = 30

[notifications]
enabled = false
type = "none"

[history]
enabled = false
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		config, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if config.Backend.BaseURL != "http://10.0.0.2:9000" || config.Backend.Timeout != 30*time.Second {
			t.Errorf("Backend = %+v", config.Backend)
		}
		if config.Recording.SampleRate != 48000 || config.Recording.Channels != 2 || config.Recording.SaveDir != "/tmp/recordings" {
			t.Errorf("Recording = %+v", config.Recording)
		}
		if config.Display.TranscriptLimit != 200 || config.Display.TypewriterDelay != 5*time.Millisecond || config.Display.FrameRate != 30 {
			t.Errorf("Display = %+v", config.Display)
		}
		if config.Notifications.Enabled || config.History.Enabled {
			t.Errorf("expected notifications and history disabled")
		}
	})

	t.Run("missing keys keep defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[backend]\nbase_url = \"https://api.example.com\"\n"), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		config, err := LoadFile(configPath)
		if err != nil {
			t.Fatalf("LoadFile() error = %v", err)
		}
		if config.Backend.BaseURL != "https://api.example.com" {
			t.Errorf("BaseURL = %q", config.Backend.BaseURL)
		}
		if config.Display.TranscriptLimit != 500 {
			t.Errorf("TranscriptLimit = %d, want default 500", config.Display.TranscriptLimit)
		}
		if config.Recording.Timeout != 5*time.Minute {
			t.Errorf("Recording.Timeout = %v, want default 5m", config.Recording.Timeout)
		}
	})

	t.Run("invalid toml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[backend\nbase_url = "), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}
		if _, err := LoadFile(configPath); err == nil {
			t.Errorf("LoadFile() expected parse error")
		}
	})
}

func TestConfig_SaveDefaultConfig(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	if err := SaveDefaultConfig(); err != nil {
		t.Fatalf("SaveDefaultConfig() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tempDir, "hyprscribe", "config.toml"))
	if err != nil {
		t.Fatalf("Failed to read created config file: %v", err)
	}
	if len(content) == 0 {
		t.Fatalf("SaveDefaultConfig() created empty config file")
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("SaveDefaultConfig() created invalid config: %v", err)
	}
	if *config != *DefaultConfig() {
		t.Errorf("default file does not match DefaultConfig(): %+v", config)
	}
}

func TestConfig_Save(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	cfg := createTestConfig()
	cfg.Backend.BaseURL = "https://scribe.internal:8443"
	cfg.Display.TypewriterDelay = 40 * time.Millisecond
	cfg.Recording.Device = "alsa_input.usb-mic"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Load() after Save() = %+v, want %+v", loaded, cfg)
	}

	entries, err := os.ReadDir(filepath.Join(tempDir, "hyprscribe"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only config.toml after save, found %d entries", len(entries))
	}
}

func TestConfig_ConversionMethods(t *testing.T) {
	cfg := createTestConfig()

	rc := cfg.ToRecordingConfig()
	if rc.SampleRate != cfg.Recording.SampleRate || rc.Timeout != cfg.Recording.Timeout || rc.ChannelBufferSize != cfg.Recording.ChannelBufferSize {
		t.Errorf("ToRecordingConfig() = %+v", rc)
	}

	bc := cfg.ToBackendConfig()
	if bc.BaseURL != cfg.Backend.BaseURL || bc.Timeout != cfg.Backend.Timeout {
		t.Errorf("ToBackendConfig() = %+v", bc)
	}

	af := cfg.ToAudioFormat()
	if af.SampleRate != 16000 || af.Channels != 1 || af.BitsPerSample != 16 {
		t.Errorf("ToAudioFormat() = %+v", af)
	}

	opts := cfg.ToSessionOptions()
	if opts.TranscriptLimit != 500 {
		t.Errorf("TranscriptLimit = %d", opts.TranscriptLimit)
	}
	if opts.TypewriterDelay != 15*time.Millisecond {
		t.Errorf("TypewriterDelay = %v", opts.TypewriterDelay)
	}
	if opts.FrameInterval != time.Second/60 {
		t.Errorf("FrameInterval = %v", opts.FrameInterval)
	}
}

func TestGetConfigPath(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tempDir)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	expectedPath := filepath.Join(tempDir, "hyprscribe", "config.toml")
	if path != expectedPath {
		t.Errorf("GetConfigPath() = %s, want %s", path, expectedPath)
	}
	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		t.Errorf("GetConfigPath() did not create config directory")
	}
}
