package reconcile

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/handiism/takeout-to-plex/internal/audio"
	"github.com/handiism/takeout-to-plex/internal/model"
)

// DefaultExtensions lists the audio file extensions discovered by default.
var DefaultExtensions = []string{".mp3", ".flac", ".m4a", ".ogg"}

// Options configures an Engine. Zero values use the defaults.
type Options struct {
	Prefix     model.PrefixConfig
	Extensions []string
}

// FileError is an audio file that failed a read or write of its tags.
type FileError struct {
	Path string
	Err  error
}

// Result is the outcome of a merge.
type Result struct {
	// Links are the matched pairs in file discovery order.
	Links []*model.Link

	// LostRecords are records no file was linked to, in record order.
	LostRecords []model.Record

	// LostAudiofiles are files that could not be verified against a record,
	// either because they lack album or title tags or because linking
	// failed.
	LostAudiofiles []model.TagSet

	// UnmatchedAudiofiles are fully tagged files with no record at all.
	UnmatchedAudiofiles []model.TagSet

	// Unreadable files could not be parsed and take no part in matching.
	Unreadable []FileError

	// Unsaved are linked files whose backfilled tags could not be written.
	// Their links are in Links with Dirty still set.
	Unsaved []FileError
}

// Engine matches records against audio files.
type Engine struct {
	tagger     *audio.Tagger
	prefix     model.PrefixConfig
	extensions map[string]bool
	logger     *log.Logger
}

// NewEngine creates an Engine that reads and writes tags with tagger.
func NewEngine(tagger *audio.Tagger, opts Options, logger *log.Logger) *Engine {
	if opts.Prefix.MaxFilenameLen == 0 {
		opts.Prefix = model.DefaultPrefixConfig()
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}

	exts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}

	return &Engine{tagger: tagger, prefix: opts.Prefix, extensions: exts, logger: logger}
}

// Discover lists the audio files under dir recursively, in lexical order.
func (e *Engine) Discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if e.extensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover audio files in %s: %w", dir, err)
	}
	return files, nil
}

// Merge links records to the audio files found under audioDir. Tags are
// backfilled from the linked record; with simulate set nothing is written.
//
// Per-file problems are classified in the Result. An error is returned only
// when audioDir cannot be walked.
func (e *Engine) Merge(audioDir string, records []model.Record, simulate bool) (*Result, error) {
	files, err := e.Discover(audioDir)
	if err != nil {
		return nil, err
	}

	p := newPool(records)
	result := &Result{}

	for _, path := range files {
		tags, err := e.tagger.Load(path)
		if err != nil {
			e.logger.Warn("skipping unreadable audio file", "path", path, "err", err)
			result.Unreadable = append(result.Unreadable, FileError{Path: path, Err: err})
			continue
		}
		e.match(p, &tags, simulate, result)
	}

	result.LostRecords = p.remaining()

	e.logger.Info("merged records with audio files",
		"files", len(files),
		"links", len(result.Links),
		"lost_records", len(result.LostRecords),
		"lost_audiofiles", len(result.LostAudiofiles),
		"unmatched", len(result.UnmatchedAudiofiles),
		"unreadable", len(result.Unreadable))

	return result, nil
}

func (e *Engine) match(p *pool, tags *model.TagSet, simulate bool, result *Result) {
	original := *tags

	if tags.Album != "" || tags.Title != "" {
		if i, ok := p.exact(tags.Key()); ok {
			e.link(p, i, tags, original, simulate, result)
			return
		}
	}

	if i, ok := e.prefixCandidate(p, tags); ok {
		e.link(p, i, tags, original, simulate, result)
		return
	}

	if tags.Album == "" || tags.Title == "" {
		e.logger.Debug("lost audio file", "path", tags.Path)
		result.LostAudiofiles = append(result.LostAudiofiles, original)
		return
	}

	e.logger.Debug("unmatched audio file", "path", tags.Path, "album", tags.Album, "title", tags.Title)
	result.UnmatchedAudiofiles = append(result.UnmatchedAudiofiles, original)
}

func (e *Engine) link(p *pool, i int, tags *model.TagSet, original model.TagSet, simulate bool, result *Result) {
	p.consume(i)
	rec := p.records[i]

	link, err := Link(e.tagger, rec, tags, simulate)
	if err != nil && link != nil {
		e.logger.Warn("could not write tags, keeping link", "path", tags.Path, "err", err)
		result.Links = append(result.Links, link)
		result.Unsaved = append(result.Unsaved, FileError{Path: tags.Path, Err: err})
		return
	}
	if err != nil {
		p.release(i)
		e.logger.Debug("record does not match tags", "path", tags.Path, "err", err)
		result.LostAudiofiles = append(result.LostAudiofiles, original)
		return
	}

	if simulate && link.Tags.Dirty {
		e.logger.Debug("would update tags", "path", tags.Path, "title", tags.Title, "album", tags.Album)
	}
	result.Links = append(result.Links, link)
}

// prefixCandidate picks the record whose expected file name prefix fits the
// file. A candidate whose title also appears in the file name, or equals the
// title tag, wins over the first candidate in record order.
func (e *Engine) prefixCandidate(p *pool, tags *model.TagSet) (int, bool) {
	base := tags.FileName()
	var tagText string
	if tags.Artist != "" && tags.Album != "" {
		tagText = tags.Artist + " - " + model.Sanitize(tags.Album)
	}

	first, found := -1, false
	best := -1
	p.each(func(i int, rec model.Record) bool {
		if !e.prefixMatches(rec.ExpectedPrefix(e.prefix), base, tagText) {
			return true
		}
		if !found {
			first, found = i, true
		}
		if titleMatches(rec, base, tags.Title) {
			best = i
			return false
		}
		return true
	})

	if best >= 0 {
		return best, true
	}
	return first, found
}

func (e *Engine) prefixMatches(prefix, base, tagText string) bool {
	if strings.HasPrefix(base, prefix) {
		return true
	}
	if tagText == "" {
		return false
	}
	if e.prefix.IsTruncated(prefix) {
		return strings.HasPrefix(tagText, strings.TrimSuffix(prefix, e.prefix.Marker))
	}
	return tagText == prefix
}

func titleMatches(rec model.Record, base, tagTitle string) bool {
	if tagTitle != "" && tagTitle == rec.DecodedTitle() {
		return true
	}
	title := model.Sanitize(rec.Title)
	if ext := model.ExtensionToken(title); model.IsAudioExtension(ext) {
		title = strings.TrimSuffix(title, ext)
	}
	return title != "" && strings.Contains(base, title)
}
