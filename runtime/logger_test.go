package runtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestJSONLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, false)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	l.Info("stage started", map[string]any{"stage": "cluster", "err": errors.New("boom")})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["level"] != "info" || entry["msg"] != "stage started" {
		t.Errorf("entry = %v", entry)
	}
	if entry["stage"] != "cluster" {
		t.Errorf("stage = %v", entry["stage"])
	}
	if entry["err"] != "boom" {
		t.Errorf("err = %v, want error string", entry["err"])
	}
	if entry["time"] != "2026-01-02T03:04:05Z" {
		t.Errorf("time = %v", entry["time"])
	}
}

func TestJSONLogger_DebugOnlyWhenVerbose(t *testing.T) {
	var quiet, loud bytes.Buffer
	NewJSONLogger(&quiet, false).Debug("hidden", nil)
	NewJSONLogger(&loud, true).Debug("shown", nil)

	if quiet.Len() != 0 {
		t.Errorf("debug written when not verbose: %q", quiet.String())
	}
	if !strings.Contains(loud.String(), `"shown"`) {
		t.Errorf("debug missing when verbose: %q", loud.String())
	}
}
