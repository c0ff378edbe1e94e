package notify

import (
	"fmt"
	"log"
	"os/exec"
)

const appName = "Hyprscribe"

type Notifier interface {
	RecordingStarted()
	Processing()
	Done(what string)
	Aborted()
	Error(msg string)
}

// New picks a notifier for the configured type ("desktop", "log", "none").
func New(enabled bool, kind string) Notifier {
	if !enabled {
		return Nop{}
	}
	switch kind {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{}
	default:
		return Nop{}
	}
}

type Desktop struct{}

func (d Desktop) RecordingStarted() { d.send("Recording Started", "Speak now", false) }
func (d Desktop) Processing()       { d.send("Transcribing", "Uploading recording...", false) }
func (d Desktop) Done(what string)  { d.send("Done", what, false) }
func (d Desktop) Aborted()          { d.send("Aborted", "Operation cancelled", false) }
func (d Desktop) Error(msg string)  { d.send("Error", msg, true) }

func (Desktop) send(title, body string, critical bool) {
	args := []string{"-a", appName}
	if critical {
		args = append(args, "-u", "critical")
	}
	args = append(args, fmt.Sprintf("%s: %s", appName, title), body)
	if err := exec.Command("notify-send", args...).Run(); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

// Log writes notifications to the standard logger.
type Log struct{}

func (Log) RecordingStarted() { log.Printf("%s: Recording Started", appName) }
func (Log) Processing()       { log.Printf("%s: Transcribing", appName) }
func (Log) Done(what string)  { log.Printf("%s: Done - %s", appName, what) }
func (Log) Aborted()          { log.Printf("%s: Aborted", appName) }
func (Log) Error(msg string)  { log.Printf("%s: Error - %s", appName, msg) }

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) RecordingStarted() {}
func (Nop) Processing()       {}
func (Nop) Done(string)       {}
func (Nop) Aborted()          {}
func (Nop) Error(string)      {}
