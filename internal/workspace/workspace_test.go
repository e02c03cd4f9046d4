package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspaceLifecycle(t *testing.T) {
	ws, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	inside := ws.Path("artifact.png")
	if err := os.WriteFile(inside, []byte("x"), 0644); err != nil {
		t.Fatalf("writing artifact: %v", err)
	}

	sub, err := ws.MkdirAll("frames")
	if err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "frame_000001.png"), []byte("x"), 0644); err != nil {
		t.Fatalf("writing frame: %v", err)
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(ws.Dir()); !os.IsNotExist(err) {
		t.Errorf("workspace directory still exists after Close")
	}
}

func TestWorkspaceLeavesInputAlone(t *testing.T) {
	// Cleanup is scoped to the workspace directory; the original input
	// sitting next to it must survive.
	base := t.TempDir()
	ws, err := New(base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	input := filepath.Join(base, "input.mp4")
	if err := os.WriteFile(input, []byte("x"), 0644); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(input); err != nil {
		t.Errorf("input was deleted: %v", err)
	}
}

func TestWorkspaceCloseIsIdempotent(t *testing.T) {
	ws, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

