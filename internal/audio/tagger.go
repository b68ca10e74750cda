package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/handiism/takeout-to-plex/internal/model"
)

// artworkReader is implemented by stores that can extract embedded pictures.
type artworkReader interface {
	Artwork(path string) ([]byte, error)
}

// Tagger loads, backfills and saves embedded tags, choosing a Store by file
// extension.
//
// Example:
//
//	tagger := audio.NewTagger(logger)
//	tags, err := tagger.Load("Tracks/Porcupine Tree - Deadwing - Open Car.mp3")
//	changed, err := tagger.Backfill(&tags, record, false)
type Tagger struct {
	stores   map[string]Store
	fallback Store
	logger   *log.Logger
}

// NewTagger creates a Tagger with the default stores: ID3 for .mp3, Vorbis
// comments for .flac, and a read-only reader for everything else.
func NewTagger(logger *log.Logger) *Tagger {
	t := &Tagger{
		stores:   make(map[string]Store),
		fallback: NewGenericStore(),
		logger:   logger,
	}
	t.Register(".mp3", NewID3Store())
	t.Register(".flac", NewFLACStore())
	return t
}

// NewTaggerWithStore creates a Tagger that uses store for every file.
func NewTaggerWithStore(store Store, logger *log.Logger) *Tagger {
	return &Tagger{stores: make(map[string]Store), fallback: store, logger: logger}
}

// Register sets the store used for files with the given extension.
func (t *Tagger) Register(ext string, store Store) {
	t.stores[strings.ToLower(ext)] = store
}

func (t *Tagger) storeFor(path string) Store {
	if s, ok := t.stores[strings.ToLower(filepath.Ext(path))]; ok {
		return s
	}
	return t.fallback
}

// Load reads the tags of one file. Any parse failure is reported as
// ErrUnreadableAudioFile.
func (t *Tagger) Load(path string) (model.TagSet, error) {
	store := t.storeFor(path)
	if store == nil {
		return model.TagSet{}, fmt.Errorf("%w: %s: %w", ErrUnreadableAudioFile, path, ErrUnsupportedFormat)
	}
	tags, err := store.Load(path)
	if err != nil {
		return model.TagSet{}, fmt.Errorf("%w: %s: %w", ErrUnreadableAudioFile, path, err)
	}
	tags.Path = path
	return tags, nil
}

// Fill copies missing fields of tags from rec without touching the file.
//
// The track number is inferred from the file name first, independently of
// the record. Title, album and artist are copied HTML-decoded when the tag
// is empty and the record is not. When anything changed tags.Dirty is set.
func (t *Tagger) Fill(tags *model.TagSet, rec model.Record) bool {
	changed := false

	if !tags.HasTrack() {
		if n, ok := model.InferTrackNumber(tags.FileName()); ok && n > 0 {
			tags.Track = n
			changed = true
		}
	}
	if tags.Title == "" && rec.Title != "" {
		tags.Title = rec.DecodedTitle()
		changed = true
	}
	if tags.Album == "" && rec.Album != "" {
		tags.Album = rec.DecodedAlbum()
		changed = true
	}
	if tags.Artist == "" && rec.Artist != "" {
		tags.Artist = rec.DecodedArtist()
		changed = true
	}

	if changed {
		tags.Dirty = true
	}
	return changed
}

// Backfill fills empty tag fields of tags from rec, see Fill, and unless
// simulate is true rewrites the file when anything changed.
func (t *Tagger) Backfill(tags *model.TagSet, rec model.Record, simulate bool) (bool, error) {
	if !t.Fill(tags, rec) {
		return false, nil
	}

	if simulate {
		t.logger.Debug("would update tags", "path", tags.Path, "title", tags.Title, "album", tags.Album)
		return true, nil
	}
	if err := t.Save(*tags); err != nil {
		return true, err
	}
	tags.Dirty = false
	return true, nil
}

// Save writes tags back to tags.Path.
func (t *Tagger) Save(tags model.TagSet) error {
	store := t.storeFor(tags.Path)
	if store == nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, tags.Path)
	}
	if err := store.Save(tags); err != nil {
		return fmt.Errorf("save tags for %s: %w", tags.Path, err)
	}
	t.logger.Debug("updated tags", "path", tags.Path, "title", tags.Title, "album", tags.Album)
	return nil
}

// Artwork returns the embedded cover image of a file, or nil when there is
// none or the store cannot read pictures.
func (t *Tagger) Artwork(path string) ([]byte, error) {
	if r, ok := t.storeFor(path).(artworkReader); ok {
		return r.Artwork(path)
	}
	if r, ok := t.fallback.(artworkReader); ok {
		return r.Artwork(path)
	}
	return nil, nil
}
