package audio

import (
	"errors"
	"strconv"
	"strings"

	"github.com/handiism/takeout-to-plex/internal/model"
)

var (
	// ErrUnreadableAudioFile is returned when embedded metadata cannot be
	// parsed. The file is excluded from matching.
	ErrUnreadableAudioFile = errors.New("unreadable audio file")

	// ErrUnsupportedFormat is returned when a store cannot handle a file.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Store reads and writes the embedded metadata of one container format.
//
// Implementations only deal with the track number, title, album and artist
// fields of a model.TagSet.
type Store interface {
	// Load reads the tags of the file at path.
	Load(path string) (model.TagSet, error)

	// Save writes the tags back to tags.Path.
	Save(tags model.TagSet) error
}

// parseTrackNumber reads "7" or "7/12" style track values. Zero means the
// value is absent or invalid.
func parseTrackNumber(value string) int {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, '/'); i >= 0 {
		value = value[:i]
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
