package reconcile

import (
	"github.com/handiism/takeout-to-plex/internal/audio"
	"github.com/handiism/takeout-to-plex/internal/model"
)

// Link backfills ts from rec and pairs them.
//
// The backfill is validated before anything is written: when album and title
// still disagree the file is left untouched, ts is not modified and
// model.ErrLinkMismatch is returned. Unless simulate is set, a successful
// link with changed tags is saved through tagger.
//
// A failed save does not undo the pairing. The link is returned together
// with the error and its tags keep Dirty set.
func Link(tagger *audio.Tagger, rec model.Record, ts *model.TagSet, simulate bool) (*model.Link, error) {
	filled := *ts
	changed := tagger.Fill(&filled, rec)

	link, err := model.NewLink(rec, &filled)
	if err != nil {
		return nil, err
	}

	*ts = filled
	link.Tags = ts

	if changed && !simulate {
		if err := tagger.Save(*ts); err != nil {
			return link, err
		}
		ts.Dirty = false
	}
	return link, nil
}
