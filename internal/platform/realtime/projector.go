package realtime

import "sync"

// Projector maintains an ordered in-memory view of a table that is kept
// current by applying feed events. The zero ordering is newest-first: inserts
// prepend. The feed is a global table stream, so an optional filter predicate
// is re-applied after every mutation to keep out-of-scope rows from leaking
// into the view.
type Projector[T any] struct {
	mu     sync.Mutex
	id     func(T) string
	filter func(T) bool
	items  []T
}

// NewProjector creates a projector keyed by id. A nil filter admits every
// record.
func NewProjector[T any](id func(T) string, filter func(T) bool) *Projector[T] {
	return &Projector[T]{id: id, filter: filter}
}

// Reset replaces the view with an initial snapshot, typically the result of
// the first fetch. The filter is applied to the snapshot as well.
func (p *Projector[T]) Reset(items []T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items = append([]T(nil), items...)
	p.refilter()
}

// ApplyInsert prepends the record unless a record with the same id is already
// present, which makes replayed insert events idempotent.
func (p *Projector[T]) ApplyInsert(record T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rid := p.id(record)
	for _, item := range p.items {
		if p.id(item) == rid {
			p.refilter()
			return
		}
	}

	p.items = append([]T{record}, p.items...)
	p.refilter()
}

// ApplyUpdate replaces the record with the matching id in place. Updates for
// ids not in the view are no-ops; list order is preserved.
func (p *Projector[T]) ApplyUpdate(record T) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rid := p.id(record)
	for i, item := range p.items {
		if p.id(item) == rid {
			p.items[i] = record
			break
		}
	}
	p.refilter()
}

// ApplyDelete removes the record with the given id. Deletes for ids not in
// the view are no-ops.
func (p *Projector[T]) ApplyDelete(recordID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, item := range p.items {
		if p.id(item) == recordID {
			p.items = append(p.items[:i], p.items[i+1:]...)
			break
		}
	}
	p.refilter()
}

// Items returns a copy of the current view.
func (p *Projector[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]T(nil), p.items...)
}

// Len returns the number of records currently visible.
func (p *Projector[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// refilter drops records the filter no longer admits. Caller must hold mu.
func (p *Projector[T]) refilter() {
	if p.filter == nil {
		return
	}
	kept := p.items[:0]
	for _, item := range p.items {
		if p.filter(item) {
			kept = append(kept, item)
		}
	}
	p.items = kept
}
