package tui

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/leonardotrapani/hyprscribe/internal/config"
	"github.com/muesli/termenv"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionBackend       ConfigSection = "backend"
	SectionRecording     ConfigSection = "recording"
	SectionDisplay       ConfigSection = "display"
	SectionNotifications ConfigSection = "notifications"
	SectionHistory       ConfigSection = "history"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Configure runs the menu-based configuration editor on a copy of cfg.
func Configure(existing *config.Config) (*ConfigureResult, error) {
	cfg := config.DefaultConfig()
	if existing != nil {
		c := *existing
		cfg = &c
	}

	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(cfg)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case SectionSaveExit:
			if err := cfg.Validate(); err != nil {
				fmt.Println(StyleError.Render("Invalid configuration: " + err.Error()))
				waitForEnter()
				continue
			}
			confirmed, err := showSummary(cfg)
			if err != nil {
				return &ConfigureResult{Cancelled: true}, nil
			}
			if confirmed {
				return &ConfigureResult{Config: cfg}, nil
			}
		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil
		case SectionBackend:
			_ = editBackend(cfg)
		case SectionRecording:
			_ = editRecording(cfg)
		case SectionDisplay:
			_ = editDisplay(cfg)
		case SectionNotifications:
			_ = editNotifications(cfg)
		case SectionHistory:
			_ = editHistory(cfg)
		}
	}
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	options := []huh.Option[ConfigSection]{
		huh.NewOption(sectionLabel(cfg, SectionBackend), SectionBackend),
		huh.NewOption(sectionLabel(cfg, SectionRecording), SectionRecording),
		huh.NewOption(sectionLabel(cfg, SectionDisplay), SectionDisplay),
		huh.NewOption(sectionLabel(cfg, SectionNotifications), SectionNotifications),
		huh.NewOption(sectionLabel(cfg, SectionHistory), SectionHistory),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

// sectionLabel shows the current value next to each menu entry.
func sectionLabel(cfg *config.Config, s ConfigSection) string {
	switch s {
	case SectionBackend:
		return fmt.Sprintf("Backend (%s)", cfg.Backend.BaseURL)
	case SectionRecording:
		if cfg.Recording.SaveDir != "" {
			return fmt.Sprintf("Recording (%d Hz, saving to %s)", cfg.Recording.SampleRate, cfg.Recording.SaveDir)
		}
		return fmt.Sprintf("Recording (%d Hz)", cfg.Recording.SampleRate)
	case SectionDisplay:
		return fmt.Sprintf("Display (%d chars, %s per char)", cfg.Display.TranscriptLimit, cfg.Display.TypewriterDelay)
	case SectionNotifications:
		if !cfg.Notifications.Enabled {
			return "Notifications (off)"
		}
		return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
	case SectionHistory:
		if !cfg.History.Enabled {
			return "History (off)"
		}
		return "History (on)"
	}
	return string(s)
}

func editBackend(cfg *config.Config) error {
	baseURL := cfg.Backend.BaseURL
	timeout := cfg.Backend.Timeout.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Base URL of the transcription service").
				Value(&baseURL).
				Validate(validateBaseURL),
			huh.NewInput().
				Title("Request timeout").
				Description("e.g. 2m, 90s").
				Value(&timeout).
				Validate(validatePositiveDuration),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	cfg.Backend.Timeout, _ = time.ParseDuration(timeout)
	return nil
}

func editRecording(cfg *config.Config) error {
	sampleRate := strconv.Itoa(cfg.Recording.SampleRate)
	device := cfg.Recording.Device
	timeout := cfg.Recording.Timeout.String()
	saveDir := cfg.Recording.SaveDir

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sample rate").
				Options(
					huh.NewOption("16000 Hz (speech)", "16000"),
					huh.NewOption("44100 Hz", "44100"),
					huh.NewOption("48000 Hz", "48000"),
				).
				Value(&sampleRate),
			huh.NewInput().
				Title("Device").
				Description("PipeWire target, empty for the default source").
				Value(&device),
			huh.NewInput().
				Title("Maximum recording length").
				Value(&timeout).
				Validate(validatePositiveDuration),
			huh.NewInput().
				Title("Save directory").
				Description("Keep a WAV copy of each recording here (empty = off)").
				Value(&saveDir),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recording.SampleRate, _ = strconv.Atoi(sampleRate)
	cfg.Recording.Device = strings.TrimSpace(device)
	cfg.Recording.Timeout, _ = time.ParseDuration(timeout)
	cfg.Recording.SaveDir = strings.TrimSpace(saveDir)
	return nil
}

func editDisplay(cfg *config.Config) error {
	limit := strconv.Itoa(cfg.Display.TranscriptLimit)
	delay := cfg.Display.TypewriterDelay.String()
	frameRate := strconv.Itoa(cfg.Display.FrameRate)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("YouTube transcript limit").
				Description("Characters shown before the ellipsis, 0 shows everything").
				Value(&limit).
				Validate(validateIntRange(0, 1<<20)),
			huh.NewInput().
				Title("Typewriter delay").
				Description("Time between answer characters, e.g. 15ms").
				Value(&delay).
				Validate(validateNonNegativeDuration),
			huh.NewInput().
				Title("Glow frame rate").
				Description("Updates per second while recording").
				Value(&frameRate).
				Validate(validateIntRange(1, 240)),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Display.TranscriptLimit, _ = strconv.Atoi(limit)
	cfg.Display.TypewriterDelay, _ = time.ParseDuration(delay)
	cfg.Display.FrameRate, _ = strconv.Atoi(frameRate)
	return nil
}

func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	notifType := cfg.Notifications.Type
	if notifType == "" {
		notifType = "desktop"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable notifications?").
				Description("Announce when recording starts, stops and finishes").
				Value(&enabled),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notification Type").
				Options(
					huh.NewOption("Desktop notifications (notify-send)", "desktop"),
					huh.NewOption("Log to console only", "log"),
					huh.NewOption("None (silent)", "none"),
				).
				Value(&notifType),
		).WithHideFunc(func() bool { return !enabled }),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	cfg.Notifications.Type = notifType
	return nil
}

func editHistory(cfg *config.Config) error {
	enabled := cfg.History.Enabled
	path := cfg.History.Path

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Keep a history of results?").
				Description("Transcripts, summaries and answers are stored in a local SQLite file").
				Value(&enabled),
			huh.NewInput().
				Title("Database path").
				Description("Empty uses the cache directory").
				Value(&path),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.History.Enabled = enabled
	cfg.History.Path = strings.TrimSpace(path)
	return nil
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	fmt.Println()
	for _, line := range summaryLines(cfg) {
		fmt.Println("  " + line)
	}
	fmt.Println()

	confirmed := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Back").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

func summaryLines(cfg *config.Config) []string {
	label := func(s string) string { return StyleLabel.Render(s) }
	lines := []string{
		fmt.Sprintf("%s %s (timeout %s)", label("Backend:"), cfg.Backend.BaseURL, cfg.Backend.Timeout),
		fmt.Sprintf("%s %d Hz, %d ch", label("Recording:"), cfg.Recording.SampleRate, cfg.Recording.Channels),
		fmt.Sprintf("%s %d chars, %s per char, %d fps", label("Display:"),
			cfg.Display.TranscriptLimit, cfg.Display.TypewriterDelay, cfg.Display.FrameRate),
	}
	if cfg.Recording.SaveDir != "" {
		lines = append(lines, fmt.Sprintf("%s %s", label("Save dir:"), cfg.Recording.SaveDir))
	}
	if cfg.Notifications.Enabled {
		lines = append(lines, fmt.Sprintf("%s %s", label("Notifications:"), cfg.Notifications.Type))
	} else {
		lines = append(lines, label("Notifications:")+" off")
	}
	if cfg.History.Enabled {
		lines = append(lines, label("History:")+" on")
	} else {
		lines = append(lines, label("History:")+" off")
	}
	return lines
}

func validateBaseURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("enter an http(s) URL such as http://localhost:8000")
	}
	return nil
}

func validatePositiveDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateNonNegativeDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration")
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateIntRange(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func waitForEnter() {
	fmt.Print(StyleMuted.Render("Press enter to continue"))
	_, _ = fmt.Scanln()
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}
