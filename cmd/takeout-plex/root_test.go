package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/takeout-to-plex/internal/testsupport"
)

func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.toml")))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTakeout(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Tracks")
	testsupport.WriteAudioFiles(t, dir, testsupport.Tracks())
	testsupport.WriteFragments(t, dir, testsupport.Records())
	return dir
}

func TestRootCommand_InvalidArguments(t *testing.T) {
	tracks := writeTakeout(t)
	notCSV := filepath.Join(t.TempDir(), "records.txt")
	testsupport.WriteText(t, notCSV, "x")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing tracks", args: nil, wantErr: `required flag(s) "tracks" not set`},
		{name: "tracks does not exist", args: []string{"--tracks", filepath.Join(tracks, "nope")}, wantErr: "--tracks"},
		{name: "tracks is a file", args: []string{"--tracks", notCSV}, wantErr: "is not a directory"},
		{name: "main csv extension", args: []string{"--tracks", tracks, "--main-csv", notCSV}, wantErr: "must be a .csv file"},
		{name: "main csv missing", args: []string{"--tracks", tracks, "--main-csv", filepath.Join(tracks, "main.csv")}, wantErr: "--main-csv"},
		{name: "positional argument", args: []string{"--tracks", tracks, "extra"}, wantErr: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeRoot(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRootCommand_DryRun(t *testing.T) {
	tracks := writeTakeout(t)
	output := t.TempDir()

	out, err := executeRoot(t, "--tracks", tracks, "--output", output, "--dry-run")
	if err != nil {
		t.Fatalf("execute error = %v", err)
	}

	for _, want := range []string{"Takeout summary", "Linked", "dry run"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(output, "main_csv.csv")); err != nil {
		t.Errorf("fused csv not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(output, "library")); !os.IsNotExist(err) {
		t.Error("dry run created the library")
	}
}

func TestRootCommand_Run(t *testing.T) {
	tracks := writeTakeout(t)
	output := t.TempDir()
	library := filepath.Join(output, "plex")

	if _, err := executeRoot(t, "--tracks", tracks, "--output", output, "--library", library, "--copy"); err != nil {
		t.Fatalf("execute error = %v", err)
	}

	// Placeholder files carry no tags, so they are matched by file name.
	want := filepath.Join(library, "Porcupine Tree", "Deadwing", "Open Car.mp3")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected %s: %v", want, err)
	}
	if _, err := os.Stat(filepath.Join(tracks, "Porcupine Tree - Deadwing - Open Car.mp3")); err != nil {
		t.Errorf("--copy removed the source: %v", err)
	}
}
