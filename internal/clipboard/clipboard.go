// Package clipboard copies results to the Wayland clipboard.
package clipboard

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const defaultTimeout = 3 * time.Second

// Command is the program that receives the text on stdin.
var Command = "wl-copy"

// Available reports whether Command can be found.
func Available() error {
	if _, err := exec.LookPath(Command); err != nil {
		return fmt.Errorf("%s not found: %w (install wl-clipboard)", Command, err)
	}
	return nil
}

// Copy replaces the clipboard contents with text.
func Copy(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to copy")
	}
	if err := Available(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, Command)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", Command, err)
	}
	return nil
}
