package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return l
}

func TestRecordAndRecentRuns(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	runs := []Run{
		{InputPath: "a.png", OutputPath: "a_out.png", Kind: "image", Frames: 1, Duration: 120 * time.Millisecond, Status: "ok"},
		{InputPath: "b.mp4", OutputPath: "b_out.mp4", Kind: "video", Frames: 300, Duration: 42 * time.Second, Status: "ok"},
		{InputPath: "c.txt", OutputPath: "", Kind: "other", Status: "error", Error: "unsupported input"},
	}
	for _, r := range runs {
		if err := l.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun(%s): %v", r.InputPath, err)
		}
	}

	got, err := l.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d runs, want 3", len(got))
	}

	// Newest first
	if got[0].InputPath != "c.txt" || got[2].InputPath != "a.png" {
		t.Errorf("unexpected order: %s, %s, %s", got[0].InputPath, got[1].InputPath, got[2].InputPath)
	}
	if got[1].Frames != 300 {
		t.Errorf("frames = %d, want 300", got[1].Frames)
	}
	if got[1].Duration != 42*time.Second {
		t.Errorf("duration = %v, want 42s", got[1].Duration)
	}
	if got[0].Status != "error" || got[0].Error != "unsupported input" {
		t.Errorf("error run not round-tripped: %+v", got[0])
	}
}

func TestRecentRunsLimit(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := l.RecordRun(ctx, Run{InputPath: "x.png", OutputPath: "y.png", Kind: "image", Status: "ok"}); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	got, err := l.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d runs, want 2", len(got))
	}
}

func TestRecentRunsEmpty(t *testing.T) {
	l := openTestLedger(t)

	got, err := l.RecentRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d runs from empty ledger", len(got))
	}
}
