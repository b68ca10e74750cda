package audio

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"
	"github.com/handiism/takeout-to-plex/internal/model"
)

// GenericStore reads tags of any container supported by dhowden/tag (MP4,
// OGG, and the formats above). It cannot write.
type GenericStore struct{}

// NewGenericStore creates a new GenericStore.
func NewGenericStore() *GenericStore {
	return &GenericStore{}
}

// Load reads title, album, artist and track number.
func (s *GenericStore) Load(path string) (model.TagSet, error) {
	m, err := readMetadata(path)
	if err != nil {
		return model.TagSet{}, err
	}

	track, _ := m.Track()
	return model.TagSet{
		Path:   path,
		Track:  track,
		Title:  m.Title(),
		Album:  m.Album(),
		Artist: m.Artist(),
	}, nil
}

// Save always fails with ErrUnsupportedFormat.
func (s *GenericStore) Save(tags model.TagSet) error {
	return fmt.Errorf("%w: cannot write tags to %s", ErrUnsupportedFormat, tags.Path)
}

// Artwork returns the embedded picture, if any.
func (s *GenericStore) Artwork(path string) ([]byte, error) {
	m, err := readMetadata(path)
	if err != nil {
		return nil, err
	}
	if pic := m.Picture(); pic != nil {
		return pic.Data, nil
	}
	return nil, nil
}

func readMetadata(path string) (tag.Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return tag.ReadFrom(file)
}
