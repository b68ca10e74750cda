package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultExtension is used for target filenames when the source file has no
// extension of its own.
const DefaultExtension = ".mp3"

// AudioExtensions lists the extensions recognized as audio containers when
// a title carries one.
var AudioExtensions = []string{".mp3", ".flac", ".m4a", ".ogg", ".opus", ".wav", ".aac", ".wma"}

// Link is a validated pairing of one Record with the TagSet of the file it
// describes.
type Link struct {
	Record Record
	Tags   *TagSet
}

// NewLink pairs a record with a tag set. The tag set should already have been
// backfilled from the record; album and title must then agree.
func NewLink(rec Record, tags *TagSet) (*Link, error) {
	if tags == nil {
		return nil, fmt.Errorf("%w: no tags for %q", ErrLinkMismatch, rec.Title)
	}
	if rec.Key() != tags.Key() {
		return nil, fmt.Errorf("%w: record %q/%q, tags %q/%q in %s",
			ErrLinkMismatch, rec.Album, rec.Title, tags.Album, tags.Title, tags.Path)
	}
	return &Link{Record: rec, Tags: tags}, nil
}

// SourcePath returns the path of the linked audio file.
func (l *Link) SourcePath() string {
	return l.Tags.Path
}

// TrackNumber returns the track number of the tags. Backfill has already
// inferred it from the file name when the file had no track tag.
func (l *Link) TrackNumber() (int, bool) {
	if l.Tags.HasTrack() {
		return l.Tags.Track, true
	}
	return 0, false
}

// numberedTitle matches titles that already start with a track number,
// "08 - Open Car" or "8 - Open Car.mp3".
var numberedTitle = regexp.MustCompile(`^(\d{1,2})\s*-\s+(.+)$`)

// extensionToken matches a plausible file extension such as ".mp3".
var extensionToken = regexp.MustCompile(`^\.[A-Za-z0-9]{1,5}$`)

// TargetFilename returns the file name the audio file should have in the
// library. See TargetFilenameWithDefault.
func (l *Link) TargetFilename() string {
	return l.TargetFilenameWithDefault(DefaultExtension)
}

// TargetFilenameWithDefault builds "NN - Title" from the tag title.
//
// A title that is already numbered keeps its own number, zero padded, even
// when it disagrees with the track tag. Otherwise the track number is
// prepended. When the title ends in an audio extension it is replaced with
// the source file's extension, or defaultExt if the source has none. Any
// other dotted suffix is part of the title and kept.
//
//	"08 - Open Car",     track 7 -> "08 - Open Car"
//	"Open Car",          track 7 -> "07 - Open Car"
//	"8 - Open Car.mp3",  track 7 -> "08 - Open Car.mp3"
//	"Open Car.mp3",      track 7 -> "07 - Open Car.mp3"
//	"Symphony No.5",     track 3 -> "03 - Symphony No.5"
func (l *Link) TargetFilenameWithDefault(defaultExt string) string {
	title := l.Tags.Title

	var name string
	if m := numberedTitle.FindStringSubmatch(title); m != nil {
		n, _ := strconv.Atoi(m[1])
		name = fmt.Sprintf("%02d - %s", n, m[2])
	} else if track, ok := l.TrackNumber(); ok && track > 0 {
		name = fmt.Sprintf("%02d - %s", track, title)
	} else {
		name = title
	}

	if !l.Tags.HasTitleExtension() {
		return name
	}
	ext := l.AudioExtension(name)
	if ext == "" {
		return name
	}
	sourceExt := ExtensionToken(l.Tags.Path)
	if sourceExt == "" {
		sourceExt = defaultExt
	}
	return name[:len(name)-len(ext)] + sourceExt
}

// ExtensionToken returns the extension of name if it looks like a real file
// extension, or an empty string.
func ExtensionToken(name string) string {
	ext := filepath.Ext(name)
	if extensionToken.MatchString(ext) {
		return ext
	}
	return ""
}

// AudioExtension returns the extension of name when it is a known audio
// extension or the source file's own extension, compared case-insensitively.
// Anything else, such as ".5" in "No.5", yields an empty string.
func (l *Link) AudioExtension(name string) string {
	ext := ExtensionToken(name)
	if ext == "" {
		return ""
	}
	if IsAudioExtension(ext) {
		return ext
	}
	if l.Tags != nil && strings.EqualFold(ext, ExtensionToken(l.Tags.Path)) {
		return ext
	}
	return ""
}

// IsAudioExtension reports whether ext is one of AudioExtensions.
func IsAudioExtension(ext string) bool {
	for _, known := range AudioExtensions {
		if strings.EqualFold(ext, known) {
			return true
		}
	}
	return false
}
