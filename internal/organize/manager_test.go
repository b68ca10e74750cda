package organize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/takeout-to-plex/internal/audio"
	"github.com/handiism/takeout-to-plex/internal/config"
	"github.com/handiism/takeout-to-plex/internal/logging"
	"github.com/handiism/takeout-to-plex/internal/model"
	"github.com/handiism/takeout-to-plex/internal/testsupport"
)

type fixture struct {
	tracksDir string
	outputDir string
	library   string
	store     *testsupport.MemoryStore
	events    []ProgressEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		tracksDir: filepath.Join(root, "Takeout", "Tracks"),
		outputDir: filepath.Join(root, "out"),
		library:   filepath.Join(root, "out", "library"),
	}
	f.store = testsupport.WriteAudioFiles(t, f.tracksDir, testsupport.Tracks())
	testsupport.WriteFragments(t, f.tracksDir, testsupport.Records())
	return f
}

func (f *fixture) manager(settings *config.Settings, opts Options) *Manager {
	logger := logging.Discard()
	opts.TracksDir = f.tracksDir
	opts.OutputDir = f.outputDir
	opts.LibraryDir = f.library
	opts.Tagger = audio.NewTaggerWithStore(f.store, logger)
	return NewManager(settings, opts, logger, func(e ProgressEvent) {
		f.events = append(f.events, e)
	})
}

func TestManager_Run(t *testing.T) {
	f := newFixture(t)
	settings := config.DefaultSettings()
	settings.CreatePlaylist = true
	m := f.manager(settings, Options{})
	ctx := context.Background()

	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := m.Execute(ctx); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	s := m.Summary()
	if s.Records != 10 || s.Links != 10 || s.Placed != 10 || s.LostRecords != 0 || s.Aborted {
		t.Fatalf("Summary() = %+v", s)
	}
	if s.FusedCSV != filepath.Join(f.outputDir, "main_csv.csv") {
		t.Errorf("FusedCSV = %q", s.FusedCSV)
	}
	if _, err := os.Stat(s.FusedCSV); err != nil {
		t.Errorf("fused csv missing: %v", err)
	}
	if placed, total := m.GetProgress(); placed != 10 || total != 10 {
		t.Errorf("GetProgress() = %d/%d, want 10/10", placed, total)
	}
	if !hasEvent(f.events, "Fusing takeout CSV fragments into main_csv.csv") {
		t.Error("no progress event for the fused CSV name")
	}

	want := filepath.Join(f.library, "Porcupine Tree", "Deadwing", "07 - Open Car.mp3")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected %s: %v", want, err)
	}
	if _, err := os.Stat(filepath.Join(f.tracksDir, "Porcupine Tree - Deadwing - Open Car.mp3")); !os.IsNotExist(err) {
		t.Error("source file still exists after move")
	}

	data, err := os.ReadFile(filepath.Join(f.library, "Most Played.m3u"))
	if err != nil {
		t.Fatalf("playlist missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "#EXTM3U" {
		t.Errorf("playlist header = %q", lines[0])
	}
	if lines[2] != "OK Go/OK Go/09 - C-C-C-Cinnamon Lips.mp3" {
		t.Errorf("most played entry = %q", lines[2])
	}
	if strings.Contains(string(data), "White & Nerdy") {
		t.Error("playlist contains a track with no plays")
	}
}

func TestManager_DryRun(t *testing.T) {
	f := newFixture(t)
	m := f.manager(config.DefaultSettings(), Options{DryRun: true})
	ctx := context.Background()

	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := m.Execute(ctx); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if s := m.Summary(); s.Placed != 10 || !s.DryRun {
		t.Errorf("Summary() = %+v", s)
	}
	if _, err := os.Stat(f.library); !os.IsNotExist(err) {
		t.Error("dry run created the library")
	}
	if _, err := os.Stat(filepath.Join(f.tracksDir, "Porcupine Tree - Deadwing - Open Car.mp3")); err != nil {
		t.Errorf("dry run touched the source: %v", err)
	}
	if len(f.store.Saves) != 0 {
		t.Errorf("dry run saved tags %d times", len(f.store.Saves))
	}
}

func TestManager_CopyFiles(t *testing.T) {
	f := newFixture(t)
	settings := config.DefaultSettings()
	settings.CopyFiles = true
	m := f.manager(settings, Options{})
	ctx := context.Background()

	if err := m.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Execute(ctx); err != nil {
		t.Fatal(err)
	}

	src := filepath.Join(f.tracksDir, "OK Go - OK Go - C-C-C-Cinnamon Lips.mp3")
	dst := filepath.Join(f.library, "OK Go", "OK Go", "09 - C-C-C-Cinnamon Lips.mp3")
	for _, p := range []string{src, dst} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s: %v", p, err)
		}
	}
}

func TestManager_MainCSV(t *testing.T) {
	f := newFixture(t)
	records := testsupport.Records()[:3]
	mainCSV := filepath.Join(t.TempDir(), "main_csv.csv")
	testsupport.WriteText(t, mainCSV, model.Header+"\n"+records[0].String()+"\n"+records[1].String()+"\n"+records[2].String())

	m := f.manager(config.DefaultSettings(), Options{MainCSV: mainCSV, DryRun: true})
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	s := m.Summary()
	if s.Records != 3 || s.Links != 3 || s.UnmatchedAudiofiles != 7 {
		t.Errorf("Summary() = %+v", s)
	}
	if s.FusedCSV != "" {
		t.Errorf("FusedCSV = %q, want no fused output", s.FusedCSV)
	}
}

func TestManager_UnsavedTags(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(f.tracksDir, "Porcupine Tree - Deadwing - Open Car.mp3")
	f.store.Put(model.TagSet{Path: path, Track: 7, Title: "Open Car", Album: "Deadwing"})
	f.store.ReadOnly(path)

	m := f.manager(config.DefaultSettings(), Options{})
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if s := m.Summary(); s.Links != 10 || s.Unsaved != 1 || s.LostAudiofiles != 0 || s.LostRecords != 0 {
		t.Errorf("Summary() = %+v", s)
	}
	var warned bool
	for _, e := range f.events {
		if e.Level == LevelWarning && strings.Contains(e.Message, "Could not write tags") {
			warned = true
		}
	}
	if !warned {
		t.Error("no warning for the unwritten tags")
	}
}

func hasEvent(events []ProgressEvent, message string) bool {
	for _, e := range events {
		if e.Message == message {
			return true
		}
	}
	return false
}

func TestManager_FusionError(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteText(t, filepath.Join(f.tracksDir, "zzz.csv"), "")

	m := f.manager(config.DefaultSettings(), Options{})
	err := m.Initialize(context.Background())
	if !errors.Is(err, model.ErrMissingHeader) {
		t.Fatalf("Initialize() error = %v, want ErrMissingHeader", err)
	}

	var sawError bool
	for _, e := range f.events {
		if e.Level == LevelError {
			sawError = true
		}
	}
	if !sawError {
		t.Error("no error progress event")
	}
	if err := m.Execute(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Execute() error = %v, want ErrNotInitialized", err)
	}
}

func TestManager_Collision(t *testing.T) {
	f := newFixture(t)

	// A second copy of Open Car with the same tags lands on the same path.
	dup := filepath.Join(f.tracksDir, "copy", "Open Car.mp3")
	testsupport.WriteText(t, dup, "audio")
	f.store.Put(model.TagSet{Path: dup, Track: 7, Title: "Open Car", Album: "Deadwing", Artist: "Porcupine Tree"})
	testsupport.WriteText(t, filepath.Join(f.tracksDir, "zzz.csv"),
		model.Header+"\n"+testsupport.Records()[8].String())

	m := f.manager(config.DefaultSettings(), Options{})
	ctx := context.Background()
	if err := m.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Execute(ctx); err != nil {
		t.Fatalf("Execute() error = %v, want soft abort", err)
	}

	s := m.Summary()
	if !s.Aborted || s.Placed != 0 || s.Links != 11 {
		t.Errorf("Summary() = %+v", s)
	}
	if _, err := os.Stat(f.library); !os.IsNotExist(err) {
		t.Error("aborted run created the library")
	}
}

func TestManager_ExecuteCancelled(t *testing.T) {
	f := newFixture(t)
	m := f.manager(config.DefaultSettings(), Options{})
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestSummary_LinkedSize(t *testing.T) {
	if got := (Summary{LinkedBytes: 12_000_000}).LinkedSize(); got != "12 MB" {
		t.Errorf("LinkedSize() = %q, want 12 MB", got)
	}
}
