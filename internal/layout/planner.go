package layout

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	ioutils "github.com/handiism/takeout-to-plex/internal/io"
	"github.com/handiism/takeout-to-plex/internal/model"
)

// DefaultLockFileName is created in the library root while files are moved.
const DefaultLockFileName = ".takeout-plex.lock"

// CoverFileName is the folder art written into album directories.
const CoverFileName = "cover.jpg"

// Mover performs the file operations of a plan. Both methods create the
// destination directory.
type Mover interface {
	Move(src, dst string) error
	Copy(src, dst string) error
}

// ArtworkSource returns the embedded cover of an audio file, or nil.
type ArtworkSource interface {
	Artwork(path string) ([]byte, error)
}

// Move is one planned file operation.
type Move struct {
	Source      string
	Destination string
	Link        *model.Link
}

// Options configures a Planner. Zero values use the defaults.
type Options struct {
	DefaultExtension string
	LockFileName     string

	// CoverArt enables writing cover.jpg into album directories that lack
	// one, from the first embedded picture found.
	CoverArt        bool
	CoverArtMaxSize int

	// OnPlaced is called after each executed move with the number of files
	// placed so far.
	OnPlaced func(done, total int)
}

// Planner computes and executes the artist/album/title library layout.
type Planner struct {
	mover   Mover
	artwork ArtworkSource
	images  *ioutils.ImageService
	opts    Options
	logger  *log.Logger
}

// NewPlanner creates a Planner. artwork may be nil when cover art is
// disabled.
func NewPlanner(mover Mover, artwork ArtworkSource, opts Options, logger *log.Logger) *Planner {
	if opts.DefaultExtension == "" {
		opts.DefaultExtension = model.DefaultExtension
	}
	if opts.LockFileName == "" {
		opts.LockFileName = DefaultLockFileName
	}
	return &Planner{
		mover:   mover,
		artwork: artwork,
		images:  ioutils.NewImageService(),
		opts:    opts,
		logger:  logger,
	}
}

// Destination returns where the linked file belongs below root:
// root/Artist/Album/NN - Title.ext.
func (p *Planner) Destination(root string, link *model.Link) string {
	artist := link.Tags.Artist
	if artist == "" {
		artist = link.Record.DecodedArtist()
	}
	album := link.Tags.Album
	if album == "" {
		album = link.Record.DecodedAlbum()
	}

	name := link.TargetFilenameWithDefault(p.opts.DefaultExtension)
	if link.AudioExtension(name) == "" {
		ext := model.ExtensionToken(link.SourcePath())
		if ext == "" {
			ext = p.opts.DefaultExtension
		}
		name += ext
	}

	return filepath.Join(root,
		ioutils.SanitizeFileName(artist),
		ioutils.SanitizeFileName(album),
		ioutils.SanitizeFileName(name))
}

// Plan maps every link to its destination and validates the whole batch.
//
// It fails with ErrDuplicateSource when a file is linked twice, and with a
// *CollisionError (ErrDuplicateDestination) listing every destination
// shared by more than one file.
func (p *Planner) Plan(root string, links []*model.Link) ([]Move, error) {
	moves := make([]Move, 0, len(links))
	sources := make(map[string]bool, len(links))
	bySource := make(map[string][]string, len(links))
	var order []string

	for _, link := range links {
		src := link.SourcePath()
		if sources[src] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSource, src)
		}
		sources[src] = true

		dst := p.Destination(root, link)
		if _, ok := bySource[dst]; !ok {
			order = append(order, dst)
		}
		bySource[dst] = append(bySource[dst], src)
		moves = append(moves, Move{Source: src, Destination: dst, Link: link})
	}

	var collisions []Collision
	for _, dst := range order {
		if srcs := bySource[dst]; len(srcs) > 1 {
			collisions = append(collisions, Collision{Destination: dst, Sources: srcs})
		}
	}
	if len(collisions) > 0 {
		return nil, &CollisionError{Collisions: collisions}
	}

	return moves, nil
}

// PlanAndExecute plans the layout and then moves, or copies, every file.
//
// A duplicate source is returned as an error. Destination collisions are
// logged and abort the run without error: the result is nil, nil and no
// file is touched. With simulate set only validation runs. Otherwise the
// library root is locked for the duration of the run.
func (p *Planner) PlanAndExecute(root string, links []*model.Link, copyFiles, simulate bool) ([]Move, error) {
	moves, err := p.Plan(root, links)
	if err != nil {
		var collisions *CollisionError
		if errors.As(err, &collisions) {
			for _, c := range collisions.Collisions {
				p.logger.Error("destination collision", "destination", c.Destination, "sources", c.Sources)
			}
			p.logger.Warn("layout aborted, nothing was moved", "collisions", len(collisions.Collisions))
			return nil, nil
		}
		return nil, err
	}

	if simulate {
		for _, m := range moves {
			p.logger.Info("would place file", "from", m.Source, "to", m.Destination)
		}
		return moves, nil
	}

	if err := ioutils.EnsureDir(root); err != nil {
		return nil, fmt.Errorf("create library root: %w", err)
	}
	lock := flock.New(filepath.Join(root, p.opts.LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release library lock", "err", err)
		}
	}()

	for i, m := range moves {
		if err := p.place(m, copyFiles); err != nil {
			return moves[:i], err
		}
		p.logger.Debug("placed file", "from", m.Source, "to", m.Destination, "copy", copyFiles)
		if p.opts.OnPlaced != nil {
			p.opts.OnPlaced(i+1, len(moves))
		}
	}

	if p.opts.CoverArt {
		p.writeFolderArt(moves)
	}

	return moves, nil
}

func (p *Planner) place(m Move, copyFiles bool) error {
	if copyFiles {
		return p.mover.Copy(m.Source, m.Destination)
	}
	return p.mover.Move(m.Source, m.Destination)
}

// writeFolderArt gives every album directory without a cover the first
// embedded picture found among its files. Failures are logged only.
func (p *Planner) writeFolderArt(moves []Move) {
	if p.artwork == nil {
		return
	}

	done := make(map[string]bool)
	for _, m := range moves {
		dir := filepath.Dir(m.Destination)
		if done[dir] {
			continue
		}
		cover := filepath.Join(dir, CoverFileName)
		if ioutils.Exists(cover) {
			done[dir] = true
			continue
		}

		picture, err := p.artwork.Artwork(m.Destination)
		if err != nil {
			p.logger.Debug("no readable artwork", "path", m.Destination, "err", err)
			continue
		}
		if len(picture) == 0 {
			continue
		}

		data, err := p.images.FolderArt(picture, p.opts.CoverArtMaxSize)
		if err != nil {
			p.logger.Warn("could not convert artwork", "path", m.Destination, "err", err)
			continue
		}
		if err := ioutils.WriteFile(cover, data); err != nil {
			p.logger.Warn("could not save folder art", "path", cover, "err", err)
			continue
		}
		done[dir] = true
		p.logger.Info("saved folder art", "path", cover)
	}
}
