package reconcile

import "github.com/handiism/takeout-to-plex/internal/model"

// pool holds the records that have not been linked yet.
type pool struct {
	records  []model.Record
	consumed []bool
	byKey    map[model.Key][]int
}

func newPool(records []model.Record) *pool {
	p := &pool{
		records:  records,
		consumed: make([]bool, len(records)),
		byKey:    make(map[model.Key][]int, len(records)),
	}
	for i, rec := range records {
		k := rec.Key()
		p.byKey[k] = append(p.byKey[k], i)
	}
	return p
}

// exact returns the first unconsumed record with key k.
func (p *pool) exact(k model.Key) (int, bool) {
	for _, i := range p.byKey[k] {
		if !p.consumed[i] {
			return i, true
		}
	}
	return 0, false
}

// each calls fn for every unconsumed record in record order until fn
// returns false.
func (p *pool) each(fn func(i int, rec model.Record) bool) {
	for i, rec := range p.records {
		if p.consumed[i] {
			continue
		}
		if !fn(i, rec) {
			return
		}
	}
}

func (p *pool) consume(i int) {
	p.consumed[i] = true
}

func (p *pool) release(i int) {
	p.consumed[i] = false
}

// remaining returns the unconsumed records in record order.
func (p *pool) remaining() []model.Record {
	var out []model.Record
	p.each(func(_ int, rec model.Record) bool {
		out = append(out, rec)
		return true
	})
	return out
}
