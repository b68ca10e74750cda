package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/handiism/takeout-to-plex/internal/audio"
	"github.com/handiism/takeout-to-plex/internal/config"
	ioutils "github.com/handiism/takeout-to-plex/internal/io"
	"github.com/handiism/takeout-to-plex/internal/layout"
	"github.com/handiism/takeout-to-plex/internal/logging"
	"github.com/handiism/takeout-to-plex/internal/model"
	"github.com/handiism/takeout-to-plex/internal/reconcile"
	"github.com/handiism/takeout-to-plex/internal/takeout"
)

// ErrNotInitialized is returned by Execute before a successful Initialize.
var ErrNotInitialized = errors.New("manager is not initialized")

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a pipeline progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Options holds the per-run inputs. Settings hold the persistent defaults.
type Options struct {
	// TracksDir is the takeout directory holding the audio files and, unless
	// MainCSV is set, the CSV fragments.
	TracksDir string

	// MainCSV is an already fused CSV to use instead of fusing TracksDir.
	MainCSV string

	// OutputDir receives the fused CSV.
	OutputDir string

	// LibraryDir is the root of the artist/album/title layout.
	LibraryDir string

	DryRun bool

	// Tagger and Mover replace the defaults when set.
	Tagger *audio.Tagger
	Mover  layout.Mover
}

// Manager runs the takeout pipeline: fuse, reconcile, then lay out.
type Manager struct {
	settings *config.Settings
	opts     Options
	logger   *log.Logger

	fuser    *takeout.Fuser
	tagger   *audio.Tagger
	engine   *reconcile.Engine
	planner  *layout.Planner
	playlist *audio.PlaylistCreator

	records     []model.Record
	fusedPath   string
	result      *reconcile.Result
	linkedBytes int64
	moves       []layout.Move
	aborted     bool
	playlistOut string

	totalFiles  int32
	placedFiles int32

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewManager creates a new Manager.
func NewManager(settings *config.Settings, opts Options, logger *log.Logger, onProgress func(ProgressEvent)) *Manager {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.LibraryDir == "" {
		opts.LibraryDir = filepath.Join(opts.OutputDir, "library")
	}

	tagger := opts.Tagger
	if tagger == nil {
		tagger = audio.NewTagger(logger)
	}
	mover := opts.Mover
	if mover == nil {
		mover = ioutils.NewFileMover()
	}

	m := &Manager{
		settings:   settings,
		opts:       opts,
		logger:     logger,
		fuser:      takeout.NewFuser(settings.CSVPattern, settings.FusedCSVName, logging.With(logger, "component", "takeout")),
		tagger:     tagger,
		playlist:   audio.NewPlaylistCreator(audio.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		onProgress: onProgress,
	}

	m.engine = reconcile.NewEngine(tagger, reconcile.Options{
		Prefix:     settings.ToPrefixConfig(),
		Extensions: settings.AudioExtensions,
	}, logging.With(logger, "component", "reconcile"))

	m.planner = layout.NewPlanner(mover, tagger, layout.Options{
		DefaultExtension: settings.DefaultExtension,
		LockFileName:     settings.LockFileName,
		CoverArt:         settings.SaveCoverArt,
		CoverArtMaxSize:  settings.CoverArtMaxSize,
		OnPlaced: func(done, total int) {
			atomic.StoreInt32(&m.placedFiles, int32(done))
		},
	}, logging.With(logger, "component", "layout"))

	return m
}

// Initialize loads the takeout records and matches them against the audio
// files. Tags are backfilled unless the run is a dry run.
func (m *Manager) Initialize(ctx context.Context) error {
	records, err := m.loadRecords()
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error reading takeout CSV: %v", err), Level: LevelError})
		return err
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Loaded %d takeout records", len(records)), Level: LevelInfo})

	if m.opts.MainCSV == "" {
		path, err := m.fuser.Write(records, m.opts.OutputDir)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error writing fused CSV: %v", err), Level: LevelError})
			return err
		}
		m.mu.Lock()
		m.fusedPath = path
		m.mu.Unlock()
		m.progress(ProgressEvent{Message: fmt.Sprintf("Wrote %s", path), Level: LevelVerbose})
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := m.engine.Merge(m.opts.TracksDir, records, m.opts.DryRun)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error scanning %s: %v", m.opts.TracksDir, err), Level: LevelError})
		return err
	}

	for _, rec := range result.LostRecords {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Lost record: %s - %s - %s", rec.DecodedArtist(), rec.DecodedAlbum(), rec.DecodedTitle()), Level: LevelVerbose})
	}
	for _, ts := range result.LostAudiofiles {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Lost audio file: %s", ts.Path), Level: LevelVerbose})
	}
	for _, ts := range result.UnmatchedAudiofiles {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Unmatched audio file: %s", ts.Path), Level: LevelVerbose})
	}
	for _, u := range result.Unreadable {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Unreadable audio file: %s", u.Path), Level: LevelWarning})
	}
	for _, u := range result.Unsaved {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Could not write tags: %s: %v", u.Path, u.Err), Level: LevelWarning})
	}

	var size int64
	for _, l := range result.Links {
		if info, err := os.Stat(l.SourcePath()); err == nil {
			size += info.Size()
		}
	}

	m.mu.Lock()
	m.records = records
	m.result = result
	m.linkedBytes = size
	m.mu.Unlock()
	atomic.StoreInt32(&m.totalFiles, int32(len(result.Links)))

	m.progress(ProgressEvent{Message: fmt.Sprintf("Matched %d of %d records (%s)", len(result.Links), len(records), humanize.Bytes(uint64(size))), Level: LevelSuccess})
	return nil
}

func (m *Manager) loadRecords() ([]model.Record, error) {
	if m.opts.MainCSV != "" {
		return m.fuser.Load(m.opts.MainCSV)
	}
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Fusing takeout CSV fragments into %s", m.fuser.FusedName()),
		Level:   LevelVerbose,
	})
	return m.fuser.Fuse(m.opts.TracksDir)
}

// Execute places the linked files into the library and writes the optional
// playlist and folder art. Destination collisions abort the layout without
// error; Summary reports it.
func (m *Manager) Execute(ctx context.Context) error {
	m.mu.RLock()
	result := m.result
	m.mu.RUnlock()
	if result == nil {
		return ErrNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	copyFiles := m.settings.CopyFiles
	moves, err := m.planner.PlanAndExecute(m.opts.LibraryDir, result.Links, copyFiles, m.opts.DryRun)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error placing files: %v", err), Level: LevelError})
		return err
	}

	if moves == nil && len(result.Links) > 0 {
		m.mu.Lock()
		m.aborted = true
		m.mu.Unlock()
		m.progress(ProgressEvent{Message: "Several files map to the same destination, nothing was moved", Level: LevelWarning})
		return nil
	}

	m.mu.Lock()
	m.moves = moves
	m.mu.Unlock()

	if m.opts.DryRun {
		for _, mv := range moves {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Would place %s", mv.Destination), Level: LevelVerbose})
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Dry run: %d files would be placed in %s", len(moves), m.opts.LibraryDir), Level: LevelSuccess})
		return nil
	}

	if m.settings.CreatePlaylist {
		if err := m.writePlaylist(moves); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		}
	}

	verb := "Moved"
	if copyFiles {
		verb = "Copied"
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("%s %d files into %s", verb, len(moves), m.opts.LibraryDir), Level: LevelSuccess})
	return nil
}

func (m *Manager) writePlaylist(moves []layout.Move) error {
	entries := make([]audio.PlaylistEntry, 0, len(moves))
	for _, mv := range moves {
		rel, err := filepath.Rel(m.opts.LibraryDir, mv.Destination)
		if err != nil {
			rel = mv.Destination
		}
		rec := mv.Link.Record
		entries = append(entries, audio.PlaylistEntry{
			Path:       filepath.ToSlash(rel),
			Artist:     rec.DecodedArtist(),
			Title:      mv.Link.Tags.Title,
			DurationMs: rec.DurationMs,
			PlayCount:  rec.PlayCount,
			Removed:    rec.Removed,
		})
	}

	played := audio.MostPlayed(entries, 0)
	if len(played) == 0 {
		m.progress(ProgressEvent{Message: "No played tracks, skipping playlist", Level: LevelVerbose})
		return nil
	}

	path := filepath.Join(m.opts.LibraryDir, ioutils.SanitizeFileName(m.settings.PlaylistName)+m.playlist.Format().Extension())
	if err := ioutils.WriteFile(path, []byte(m.playlist.CreatePlaylist(played))); err != nil {
		return err
	}

	m.mu.Lock()
	m.playlistOut = path
	m.mu.Unlock()
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s with %d tracks", filepath.Base(path), len(played)), Level: LevelSuccess})
	return nil
}

// GetProgress returns how many linked files have been placed.
func (m *Manager) GetProgress() (placed, total int32) {
	return atomic.LoadInt32(&m.placedFiles), atomic.LoadInt32(&m.totalFiles)
}

// Result returns the reconciliation result, or nil before Initialize.
func (m *Manager) Result() *reconcile.Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.result
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
