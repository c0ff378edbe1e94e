package deps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
)

func TestCheck(t *testing.T) {
	for _, tool := range Tools {
		t.Run(tool.Name, func(t *testing.T) {
			status := Check(tool)

			// behavior depends on system - just verify structure
			if status.Name != tool.Name || status.Required != tool.Required {
				t.Errorf("status = %+v", status)
			}
			if status.Installed && status.Path == "" {
				t.Error("installed but path empty")
			}
			if !status.Installed && status.Path != "" {
				t.Error("not installed but path non-empty")
			}
		})
	}
}

func TestCheck_NotInstalled(t *testing.T) {
	status := Check(Tool{Name: "hyprscribe-no-such-tool"})
	if status.Installed {
		t.Error("expected Installed=false for missing tool")
	}
	if status.Path != "" || status.Version != "" {
		t.Errorf("expected empty path and version, got %+v", status)
	}
}

func TestCheck_Installed(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not installed")
	}
	status := Check(Tool{Name: "sh"})
	if !status.Installed || status.Path == "" {
		t.Errorf("sh in PATH but status = %+v", status)
	}
}

func TestCheckAll(t *testing.T) {
	if got := CheckAll(); len(got) != len(Tools) {
		t.Errorf("CheckAll() returned %d statuses, want %d", len(got), len(Tools))
	}
}

func TestCheckBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if err := CheckBackend(context.Background(), srv.URL); err != nil {
		t.Errorf("CheckBackend() error = %v, 404 still means reachable", err)
	}

	srv.Close()
	if err := CheckBackend(context.Background(), srv.URL); err == nil {
		t.Error("CheckBackend() should fail once the server is gone")
	}
}
