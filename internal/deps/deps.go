// Package deps reports on the external programs and services hyprscribe
// relies on.
package deps

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"
)

// Status represents the installation status of a dependency
type Status struct {
	Name      string
	Installed bool
	Path      string
	Version   string
	Required  bool
	Purpose   string
}

// Tool describes an external program.
type Tool struct {
	Name        string
	VersionArgs []string
	Required    bool
	Purpose     string
}

// Tools are the programs used at runtime.
var Tools = []Tool{
	{Name: "pw-record", VersionArgs: []string{"--version"}, Required: true, Purpose: "microphone capture"},
	{Name: "pw-cli", VersionArgs: []string{"--version"}, Required: true, Purpose: "PipeWire availability check"},
	{Name: "notify-send", VersionArgs: []string{"--version"}, Purpose: "desktop notifications"},
	{Name: "wl-copy", VersionArgs: []string{"--version"}, Purpose: "copying results to the clipboard"},
}

// Check looks tool up in PATH and reads the first line of its version output.
func Check(tool Tool) Status {
	status := Status{Name: tool.Name, Required: tool.Required, Purpose: tool.Purpose}

	path, err := exec.LookPath(tool.Name)
	if err != nil {
		return status
	}
	status.Installed = true
	status.Path = path

	if len(tool.VersionArgs) == 0 {
		return status
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	output, err := exec.CommandContext(ctx, path, tool.VersionArgs...).Output()
	if err == nil {
		lines := strings.Split(string(output), "\n")
		if len(lines) > 0 {
			status.Version = strings.TrimSpace(lines[0])
		}
	}

	return status
}

// CheckAll checks every entry of Tools.
func CheckAll() []Status {
	out := make([]Status, 0, len(Tools))
	for _, t := range Tools {
		out = append(out, Check(t))
	}
	return out
}

// CheckBackend reports whether anything answers HTTP at baseURL. Any
// response, even an error status, counts as reachable.
func CheckBackend(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/", nil)
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}
