package storage

import (
	"sort"
	"strings"
)

// Overlay buffers writes on top of a base database so a whole operation can be
// committed atomically or discarded. Reads observe pending writes first.
//
// Overlay is not safe for concurrent use.
type Overlay struct {
	base    Database
	writes  map[string][]byte
	deletes map[string]struct{}
}

// NewOverlay wraps base with an empty write set.
func NewOverlay(base Database) *Overlay {
	return &Overlay{
		base:    base,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (o *Overlay) Get(key []byte) ([]byte, error) {
	k := string(key)
	if v, ok := o.writes[k]; ok {
		return append([]byte(nil), v...), nil
	}
	if _, ok := o.deletes[k]; ok {
		return nil, ErrNotFound
	}
	return o.base.Get(key)
}

func (o *Overlay) Has(key []byte) (bool, error) {
	k := string(key)
	if _, ok := o.writes[k]; ok {
		return true, nil
	}
	if _, ok := o.deletes[k]; ok {
		return false, nil
	}
	return o.base.Has(key)
}

func (o *Overlay) Put(key, value []byte) error {
	k := string(key)
	delete(o.deletes, k)
	o.writes[k] = append([]byte(nil), value...)
	return nil
}

func (o *Overlay) Delete(key []byte) error {
	k := string(key)
	delete(o.writes, k)
	o.deletes[k] = struct{}{}
	return nil
}

// Iterate merges pending writes with the base view, hiding deleted keys.
func (o *Overlay) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	merged := make(map[string][]byte)
	if err := o.base.Iterate(prefix, func(key, value []byte) bool {
		merged[string(key)] = value
		return true
	}); err != nil {
		return err
	}
	p := string(prefix)
	for k, v := range o.writes {
		if strings.HasPrefix(k, p) {
			merged[k] = v
		}
	}
	for k := range o.deletes {
		delete(merged, k)
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !fn([]byte(k), append([]byte(nil), merged[k]...)) {
			break
		}
	}
	return nil
}

// NewBatch returns a batch against the base database. Writes made through it
// bypass the overlay.
func (o *Overlay) NewBatch() Batch { return o.base.NewBatch() }

// Close is a no-op; the base database is owned by the caller.
func (o *Overlay) Close() {}

// Dirty reports the number of pending mutations.
func (o *Overlay) Dirty() int { return len(o.writes) + len(o.deletes) }

// Commit writes every pending mutation to the base database in a single batch
// and clears the overlay.
func (o *Overlay) Commit() error {
	if o.Dirty() == 0 {
		return nil
	}
	batch := o.base.NewBatch()
	for k, v := range o.writes {
		batch.Put([]byte(k), v)
	}
	for k := range o.deletes {
		batch.Delete([]byte(k))
	}
	if err := batch.Write(); err != nil {
		return err
	}
	o.Discard()
	return nil
}

// Discard drops every pending mutation.
func (o *Overlay) Discard() {
	o.writes = make(map[string][]byte)
	o.deletes = make(map[string]struct{})
}
