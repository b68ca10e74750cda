package audio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/handiism/takeout-to-plex/internal/model"
)

// FLACStore reads and writes the Vorbis comment block of FLAC files.
type FLACStore struct{}

// NewFLACStore creates a new FLACStore.
func NewFLACStore() *FLACStore {
	return &FLACStore{}
}

// Load reads TITLE, ALBUM, ARTIST and TRACKNUMBER. A file without a comment
// block loads as an empty TagSet.
func (s *FLACStore) Load(path string) (model.TagSet, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return model.TagSet{}, err
	}

	tags := model.TagSet{Path: path}
	cmts, _, err := findComments(f)
	if err != nil {
		return model.TagSet{}, err
	}
	if cmts == nil {
		return tags, nil
	}

	tags.Title = firstComment(cmts, flacvorbis.FIELD_TITLE)
	tags.Album = firstComment(cmts, flacvorbis.FIELD_ALBUM)
	tags.Artist = firstComment(cmts, flacvorbis.FIELD_ARTIST)
	tags.Track = parseTrackNumber(firstComment(cmts, flacvorbis.FIELD_TRACKNUMBER))
	return tags, nil
}

// Save replaces the four fields in the comment block, creating the block
// when the file has none.
func (s *FLACStore) Save(tags model.TagSet) error {
	f, err := flac.ParseFile(tags.Path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", tags.Path, err)
	}

	cmts, idx, err := findComments(f)
	if err != nil {
		return err
	}
	if cmts == nil {
		cmts = flacvorbis.New()
	}

	fields := map[string]string{
		flacvorbis.FIELD_TITLE:  tags.Title,
		flacvorbis.FIELD_ALBUM:  tags.Album,
		flacvorbis.FIELD_ARTIST: tags.Artist,
	}
	if tags.Track > 0 {
		fields[flacvorbis.FIELD_TRACKNUMBER] = strconv.Itoa(tags.Track)
	}
	if err := setComments(cmts, fields); err != nil {
		return err
	}

	block := cmts.Marshal()
	if idx >= 0 {
		f.Meta[idx] = &block
	} else {
		f.Meta = append(f.Meta, &block)
	}

	if err := f.Save(tags.Path); err != nil {
		return fmt.Errorf("save %s: %w", tags.Path, err)
	}
	return nil
}

func findComments(f *flac.File) (*flacvorbis.MetaDataBlockVorbisComment, int, error) {
	for idx, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}
		cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return nil, -1, fmt.Errorf("parse vorbis comment: %w", err)
		}
		return cmts, idx, nil
	}
	return nil, -1, nil
}

func firstComment(cmts *flacvorbis.MetaDataBlockVorbisComment, field string) string {
	values, err := cmts.Get(field)
	if err != nil || len(values) == 0 {
		return ""
	}
	return values[0]
}

// setComments replaces every non-empty field, dropping older values of the
// same key so readers never see two titles.
func setComments(cmts *flacvorbis.MetaDataBlockVorbisComment, fields map[string]string) error {
	kept := cmts.Comments[:0]
	for _, c := range cmts.Comments {
		key, _, _ := strings.Cut(c, "=")
		if v, ok := fields[strings.ToUpper(key)]; ok && v != "" {
			continue
		}
		kept = append(kept, c)
	}
	cmts.Comments = kept

	for _, field := range []string{flacvorbis.FIELD_TITLE, flacvorbis.FIELD_ALBUM, flacvorbis.FIELD_ARTIST, flacvorbis.FIELD_TRACKNUMBER} {
		v := fields[field]
		if v == "" {
			continue
		}
		if err := cmts.Add(field, v); err != nil {
			return fmt.Errorf("add %s: %w", field, err)
		}
	}
	return nil
}
