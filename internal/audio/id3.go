package audio

import (
	"fmt"
	"strconv"

	"github.com/bogem/id3v2"
	"github.com/handiism/takeout-to-plex/internal/model"
)

// ID3Store reads and writes ID3v2 tags of MP3 files.
//
// Files without an ID3 header load as an empty TagSet, which is the usual
// state of takeout downloads that need backfilling.
type ID3Store struct{}

// NewID3Store creates a new ID3Store.
func NewID3Store() *ID3Store {
	return &ID3Store{}
}

// Load reads TIT2, TALB, TPE1 and TRCK from the file.
func (s *ID3Store) Load(path string) (model.TagSet, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return model.TagSet{}, err
	}
	defer tag.Close()

	return model.TagSet{
		Path:   path,
		Track:  parseTrackNumber(tag.GetTextFrame(tag.CommonID("Track number/Position in set")).Text),
		Title:  tag.Title(),
		Album:  tag.Album(),
		Artist: tag.Artist(),
	}, nil
}

// Save writes the four string frames back. Empty values leave the existing
// frame untouched.
func (s *ID3Store) Save(tags model.TagSet) error {
	tag, err := id3v2.Open(tags.Path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open %s: %w", tags.Path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	if tags.Album != "" {
		tag.SetAlbum(tags.Album)
	}
	if tags.Artist != "" {
		tag.SetArtist(tags.Artist)
	}
	if tags.Track > 0 {
		trck := tag.CommonID("Track number/Position in set")
		tag.DeleteFrames(trck)
		tag.AddTextFrame(trck, id3v2.EncodingUTF8, strconv.Itoa(tags.Track))
	}

	return tag.Save()
}

// Artwork returns the first attached front cover, or the first picture of
// any type when no front cover exists.
func (s *ID3Store) Artwork(path string) ([]byte, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true, ParseFrames: []string{"Attached picture"}})
	if err != nil {
		return nil, err
	}
	defer tag.Close()

	var fallback []byte
	for _, f := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := f.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		if pic.PictureType == id3v2.PTFrontCover {
			return pic.Picture, nil
		}
		if fallback == nil {
			fallback = pic.Picture
		}
	}
	return fallback, nil
}
