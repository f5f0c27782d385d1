package trace

import (
	"path/filepath"
	"testing"
	"time"
)

func TestTraceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "run.1.jsonl")

	writer, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	entries := []Entry{
		{Run: 1, Step: 0, Cost: 2.5, Filter: []float64{0.1, 0.2}, Timestamp: time.Now()},
		{Run: 1, Step: 1, Cost: 1.25, Timestamp: time.Now()},
	}
	for _, e := range entries {
		if err := writer.Write(e); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(got))
	}
	if got[0].Cost != 2.5 || got[0].Filter[1] != 0.2 {
		t.Errorf("First entry corrupted: %+v", got[0])
	}
	if got[1].Step != 1 || got[1].Filter != nil {
		t.Errorf("Second entry corrupted: %+v", got[1])
	}
}

func TestReadAllMissingFile(t *testing.T) {
	if _, err := ReadAll(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Fatal("Expected error for missing trace file")
	}
}
