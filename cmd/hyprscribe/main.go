package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/leonardotrapani/hyprscribe/internal/bus"
	"github.com/leonardotrapani/hyprscribe/internal/clipboard"
	"github.com/leonardotrapani/hyprscribe/internal/config"
	"github.com/leonardotrapani/hyprscribe/internal/daemon"
	"github.com/leonardotrapani/hyprscribe/internal/deps"
	"github.com/leonardotrapani/hyprscribe/internal/history"
	"github.com/leonardotrapani/hyprscribe/internal/session"
	"github.com/leonardotrapani/hyprscribe/internal/tui"
	"github.com/leonardotrapani/hyprscribe/internal/typewriter"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hyprscribe",
	Short: "Record, transcribe and ask questions about audio and YouTube videos",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		toggleCmd(),
		statusCmd(),
		resultCmd(),
		youtubeCmd(),
		askCmd(),
		cancelCmd(),
		versionCmd(),
		stopCmd(),
		tuiCmd(),
		configureCmd(),
		historyCmd(),
		doctorCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := daemon.New()
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run()
		},
	}
}

// simpleCmd sends one bus command and prints the reply.
func simpleCmd(use, short string, code byte) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(code, "")
			if err != nil {
				return fmt.Errorf("failed to %s: %w", use, err)
			}
			fmt.Print(resp)
			return replyError(resp)
		},
	}
}

func toggleCmd() *cobra.Command  { return simpleCmd("toggle", "Toggle recording on/off", 't') }
func statusCmd() *cobra.Command  { return simpleCmd("status", "Get current session status", 's') }
func cancelCmd() *cobra.Command  { return simpleCmd("cancel", "Cancel the current operation", 'c') }
func versionCmd() *cobra.Command { return simpleCmd("version", "Get protocol version", 'v') }
func stopCmd() *cobra.Command    { return simpleCmd("stop", "Stop the daemon", 'q') }

func resultCmd() *cobra.Command {
	var asJSON, copyText bool

	cmd := &cobra.Command{
		Use:   "result",
		Short: "Show the latest transcript, summary and answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand('r', "")
			if err != nil {
				return fmt.Errorf("failed to get result: %w", err)
			}
			if err := replyError(resp); err != nil {
				return err
			}
			body := strings.TrimSpace(strings.TrimPrefix(resp, "RESULT "))
			if asJSON {
				fmt.Println(body)
				return nil
			}
			var r daemon.Result
			if err := json.Unmarshal([]byte(body), &r); err != nil {
				return fmt.Errorf("invalid result: %w", err)
			}
			if copyText {
				if err := clipboard.Copy(cmd.Context(), copyableText(r)); err != nil {
					return err
				}
				fmt.Println("Copied to clipboard.")
				return nil
			}
			printResult(r)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON reply")
	cmd.Flags().BoolVar(&copyText, "copy", false, "Copy the answer, or else the transcript, to the clipboard")
	return cmd
}

// copyableText prefers the answer to the transcript.
func copyableText(r daemon.Result) string {
	if r.Answer != "" {
		return r.Answer
	}
	return r.Transcript
}

func printResult(r daemon.Result) {
	fmt.Printf("%s %s\n", tui.StyleLabel.Render("Status:"), r.Status)
	if r.Title != "" {
		fmt.Printf("%s %s\n", tui.StyleLabel.Render("Video:"), r.Title)
	}
	if r.RecordedBytes > 0 {
		fmt.Printf("%s %s\n", tui.StyleLabel.Render("Recording:"), humanize.Bytes(uint64(r.RecordedBytes)))
	}
	if r.Transcript != "" {
		fmt.Printf("\n%s\n%s\n", tui.StyleLabel.Render("Transcript"), r.Transcript)
	}
	if r.Summary != "" {
		fmt.Printf("\n%s\n%s\n", tui.StyleLabel.Render("Summary"), r.Summary)
	}
	if len(r.KeyPoints) > 0 {
		fmt.Printf("\n%s\n", tui.StyleLabel.Render("Key Points"))
		for _, p := range r.KeyPoints {
			fmt.Printf("• %s\n", p)
		}
	}
	if r.Answer != "" {
		fmt.Printf("\n%s\n%s\n", tui.StyleLabel.Render("Answer"), r.Answer)
	}
}

func youtubeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "youtube <url>",
		Short: "Transcribe and summarize a YouTube video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand('y', args[0])
			if err != nil {
				return fmt.Errorf("failed to process video: %w", err)
			}
			fmt.Print(resp)
			return replyError(resp)
		},
	}
}

func askCmd() *cobra.Command {
	var instant bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the current transcript",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand('a', strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to ask: %w", err)
			}
			if err := replyError(resp); err != nil {
				fmt.Print(resp)
				return err
			}
			answer, err := strconv.Unquote(strings.TrimSpace(strings.TrimPrefix(resp, "ANSWER ")))
			if err != nil {
				return fmt.Errorf("invalid answer reply: %w", err)
			}
			if instant {
				fmt.Println(answer)
				return nil
			}
			typeOut(answer, 15*time.Millisecond)
			return nil
		},
	}

	cmd.Flags().BoolVar(&instant, "instant", false, "Print the answer at once instead of typing it out")
	return cmd
}

// typeOut reveals text on stdout one character at a time.
func typeOut(text string, delay time.Duration) {
	shown := 0
	w := typewriter.New(typewriter.TargetFunc(func(s string) {
		fmt.Print(s[shown:])
		shown = len(s)
	}), delay)
	<-w.Start(text)
	fmt.Println()
}

// replyError turns an ERR reply into an error so the exit code reflects it.
func replyError(resp string) error {
	if msg, ok := strings.CutPrefix(strings.TrimSpace(resp), "ERR "); ok {
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Record and browse results in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}
}

func runTUI() error {
	logPath, err := tuiLogPath()
	if err != nil {
		return err
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	cfgMgr, err := config.NewManager()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfgMgr.StartWatching(ctx); err != nil {
		log.Printf("TUI: config hot-reload unavailable: %v", err)
	}
	defer cfgMgr.Stop()

	var (
		ctrl  *session.Controller
		store *history.Store
	)
	err = tui.Run(ctx, func(onChange func(session.Snapshot)) tui.Controller {
		ctrl, _, store = daemon.NewSession(cfgMgr, session.WithOnChange(onChange))
		return ctrl
	})
	if ctrl != nil {
		ctrl.Close()
	}
	if store != nil {
		store.Close()
	}
	return err
}

func tuiLogPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get cache dir: %w", err)
	}
	dir = filepath.Join(dir, "hyprscribe")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}
	return filepath.Join(dir, "tui.log"), nil
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration editor for hyprscribe.
Covers the backend address, recording, display timing,
notifications and the local history database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Configure(cfg)
	if err != nil {
		return fmt.Errorf("configuration editor error: %w", err)
	}
	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}
	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Println()
	showNextSteps()
	return nil
}

func showNextSteps() {
	serviceRunning := false
	if _, err := exec.Command("systemctl", "--user", "is-active", "--quiet", "hyprscribe.service").CombinedOutput(); err == nil {
		serviceRunning = true
	}

	fmt.Println("Next Steps:")
	if !serviceRunning {
		fmt.Println("1. Start the daemon: hyprscribe serve (or systemctl --user start hyprscribe.service)")
	} else {
		fmt.Println("1. The running daemon picks up changes automatically")
	}
	fmt.Println("2. Record something: hyprscribe toggle")
	fmt.Println()

	configPath, _ := config.GetConfigPath()
	fmt.Printf("Config file location: %s\n", configPath)
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List saved transcripts, or show one in full",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path := cfg.History.Path
			if path == "" {
				path = history.DefaultDBPath()
			}
			store, err := history.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				e, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printEntry(e)
				return nil
			}

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No history yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Println(entryLine(e))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to list")
	return cmd
}

func entryLine(e history.Entry) string {
	title := e.Title
	if title == "" {
		title = session.TruncateTranscript(strings.Join(strings.Fields(e.Transcript), " "), 50)
	}
	id := e.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s  %-10s  %-14s  %s",
		tui.StyleMuted.Render(id),
		e.Source,
		humanize.Time(e.CreatedAt),
		title)
}

func printEntry(e *history.Entry) {
	fmt.Printf("%s %s\n", tui.StyleLabel.Render("ID:"), e.ID)
	fmt.Printf("%s %s (%s)\n", tui.StyleLabel.Render("Source:"), e.Source, humanize.Time(e.CreatedAt))
	if e.Title != "" {
		fmt.Printf("%s %s\n", tui.StyleLabel.Render("Title:"), e.Title)
	}
	if e.URL != "" {
		fmt.Printf("%s %s\n", tui.StyleLabel.Render("URL:"), e.URL)
	}
	if e.AudioBytes > 0 {
		fmt.Printf("%s %s\n", tui.StyleLabel.Render("Audio:"), humanize.Bytes(uint64(e.AudioBytes)))
	}
	fmt.Printf("\n%s\n%s\n", tui.StyleLabel.Render("Transcript"), e.Transcript)
	if e.Summary != "" {
		fmt.Printf("\n%s\n%s\n", tui.StyleLabel.Render("Summary"), e.Summary)
	}
	for _, p := range e.KeyPoints {
		fmt.Printf("• %s\n", p)
	}
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			missing := false
			for _, s := range deps.CheckAll() {
				switch {
				case s.Installed:
					fmt.Printf("%s %-12s %s\n", tui.StyleSuccess.Render("✓"), s.Name, tui.StyleMuted.Render(s.Version))
				case s.Required:
					missing = true
					fmt.Printf("%s %-12s missing (%s)\n", tui.StyleError.Render("✗"), s.Name, s.Purpose)
				default:
					fmt.Printf("%s %-12s missing, optional (%s)\n", tui.StyleWarning.Render("!"), s.Name, s.Purpose)
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := deps.CheckBackend(cmd.Context(), cfg.Backend.BaseURL); err != nil {
				missing = true
				fmt.Printf("%s %-12s %v\n", tui.StyleError.Render("✗"), "backend", err)
			} else {
				fmt.Printf("%s %-12s %s\n", tui.StyleSuccess.Render("✓"), "backend", cfg.Backend.BaseURL)
			}

			if missing {
				return fmt.Errorf("some requirements are missing")
			}
			return nil
		},
	}
}
