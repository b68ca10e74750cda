// Package testsupport provides shared fixtures for pipeline tests.
package testsupport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/takeout-to-plex/internal/model"
)

// Track pairs a takeout record with the file that should match it.
type Track struct {
	Record   model.Record
	FileName string
	Tags     model.TagSet
}

// Tracks returns the ten-song fixture: five "I Shot The Sheriff" variants by
// Bob Marley, one OK Go track, two Weird Al tracks and one Porcupine Tree
// track. Tags match the records one to one.
func Tracks() []Track {
	type row struct {
		title, album, artist string
		duration, plays      int
		track                int
		file                 string
	}
	rows := []row{
		{"03 - I Shot The Sheriff.mp3", "Live From London", "Bob Marley", 314000, 1, 3, "Bob Marley - Live From London - 03 - I Shot The Sheriff.mp3"},
		{"05 - I Shot The Sheriff", "Burnin'", "Bob Marley", 282000, 0, 5, "Bob Marley - Burnin_ - 05 - I Shot The Sheriff.mp3"},
		{"05 - I Shot The Sheriff.mp3", "Live at Rockpalast", "Bob Marley", 277000, 1, 5, "Bob Marley - Live at Rockpalast - 05 - I Shot The Sheriff.mp3"},
		{"06 - I Shot The Sheriff", "Live!", "Bob Marley", 315000, 1, 6, "Bob Marley - Live_ - 06 - I Shot The Sheriff.mp3"},
		{"06 - I Shot The Sheriff", "Live at the Lyceum", "Bob Marley", 315000, 0, 6, "Bob Marley - Live at the Lyceum(744)06 - I Shot The Sheriff.mp3"},
		{"07 - I Shot The Sheriff.mp3", "Legend", "Bob Marley", 283000, 2, 7, "Bob Marley - Legend - 07 - I Shot The Sheriff.mp3"},
		{"C-C-C-Cinnamon Lips", "OK Go", "OK Go", 207000, 26, 9, "OK Go - OK Go - C-C-C-Cinnamon Lips.mp3"},
		{"Couch Potato", "Poodle Hat", "Weird Al Yankovic", 258136, 8, 1, "Weird Al Yankovic - Poodle Hat - Couch Potato.mp3"},
		{"Open Car", "Deadwing", "Porcupine Tree", 228414, 9, 7, "Porcupine Tree - Deadwing - Open Car.mp3"},
		{"White & Nerdy", "Straight Outta Lynwood", "Weird Al Yankovic", 170271, 0, 1, "Weird Al Yankovic - Straight Outta Lynwood(481)White _ Nerdy.mp3"},
	}

	tracks := make([]Track, len(rows))
	for i, r := range rows {
		tracks[i] = Track{
			Record: model.Record{
				Title:      r.title,
				Album:      r.album,
				Artist:     r.artist,
				DurationMs: r.duration,
				PlayCount:  r.plays,
			},
			FileName: r.file,
			Tags: model.TagSet{
				Track:  r.track,
				Title:  r.title,
				Album:  r.album,
				Artist: r.artist,
			},
		}
	}
	return tracks
}

// Records returns the fixture records in order.
func Records() []model.Record {
	tracks := Tracks()
	records := make([]model.Record, len(tracks))
	for i, tr := range tracks {
		records[i] = tr.Record
	}
	return records
}

// WriteFragments writes one CSV fragment per record into dir, named so that
// lexical order equals record order. It returns the fragment paths.
func WriteFragments(t testing.TB, dir string, records []model.Record) []string {
	t.Helper()

	paths := make([]string, len(records))
	for i, rec := range records {
		name := filepath.Join(dir, fmt.Sprintf("%03d.csv", i))
		WriteText(t, name, model.Header+"\n"+rec.String())
		paths[i] = name
	}
	return paths
}

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteAudioFiles creates a placeholder file for every track inside dir and
// returns a MemoryStore that serves the fixture tags for those paths.
func WriteAudioFiles(t testing.TB, dir string, tracks []Track) *MemoryStore {
	t.Helper()

	store := NewMemoryStore()
	for _, tr := range tracks {
		path := filepath.Join(dir, tr.FileName)
		WriteText(t, path, "audio:"+tr.FileName)
		tags := tr.Tags
		tags.Path = path
		store.Put(tags)
	}
	return store
}

// MemoryStore is an in-memory audio.Store keyed by path.
type MemoryStore struct {
	tags     map[string]model.TagSet
	broken   map[string]bool
	readOnly map[string]bool
	Saves    []model.TagSet
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tags:     make(map[string]model.TagSet),
		broken:   make(map[string]bool),
		readOnly: make(map[string]bool),
	}
}

// Put stores tags under tags.Path.
func (s *MemoryStore) Put(tags model.TagSet) {
	s.tags[tags.Path] = tags
}

// Break makes Load fail for path.
func (s *MemoryStore) Break(path string) {
	s.broken[path] = true
}

// ReadOnly makes Save fail for path.
func (s *MemoryStore) ReadOnly(path string) {
	s.readOnly[path] = true
}

// Load returns the stored tags, or an empty TagSet for unknown paths.
func (s *MemoryStore) Load(path string) (model.TagSet, error) {
	if s.broken[path] {
		return model.TagSet{}, errors.New("corrupt header")
	}
	tags, ok := s.tags[path]
	if !ok {
		return model.TagSet{Path: path}, nil
	}
	return tags, nil
}

// Save records the call and updates the stored tags.
func (s *MemoryStore) Save(tags model.TagSet) error {
	if s.readOnly[tags.Path] {
		return errors.New("read-only file")
	}
	s.Saves = append(s.Saves, tags)
	tags.Dirty = false
	s.tags[tags.Path] = tags
	return nil
}
