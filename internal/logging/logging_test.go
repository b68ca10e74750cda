package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		verbose   bool
		wantDebug bool
	}{
		{verbose: false, wantDebug: false},
		{verbose: true, wantDebug: true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		l := New(&buf, tt.verbose)
		l.Debug("details")
		l.Info("summary")

		out := buf.String()
		if got := strings.Contains(out, "details"); got != tt.wantDebug {
			t.Errorf("verbose=%v: debug logged = %v, want %v", tt.verbose, got, tt.wantDebug)
		}
		if !strings.Contains(out, "summary") {
			t.Errorf("verbose=%v: info message missing from %q", tt.verbose, out)
		}
	}
}

func TestForRun(t *testing.T) {
	var buf bytes.Buffer
	l, id := ForRun(New(&buf, false))

	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("run ID %q is not a UUID: %v", id, err)
	}

	With(l, "component", "fuse").Info("started")
	out := buf.String()
	if !strings.Contains(out, "run="+id) || !strings.Contains(out, "component=fuse") {
		t.Errorf("log output %q missing run or component", out)
	}
}
