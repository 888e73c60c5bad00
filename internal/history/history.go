// Package history owns the ordered clipboard history: deduplication,
// capacity eviction and the lifecycle of every entry's files.
package history

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/rcliao/clipstack/internal/model"
)

// Blobs stores raw entry content by id.
type Blobs interface {
	Put(id uint64, b []byte) error
	Get(id uint64) ([]byte, error)
	Delete(id uint64) error
}

// Previewer builds previews and frees the files they own.
type Previewer interface {
	Generate(id uint64, b []byte) (model.Preview, error)
	Remove(p model.Preview) error
}

// Renderer formats an entry for display.
type Renderer interface {
	Render(id uint64, p model.Preview) string
}

// Options bounds the history.
type Options struct {
	MaxItems       int
	MaxDedupeDepth int
	DedupeMode     model.DedupeMode
}

// History is the in-memory aggregate. Load it once, mutate it, then hand
// Snapshot() to the store.
type History struct {
	order    []uint64
	entries  map[uint64]model.Entry
	nextID   uint64
	opts     Options
	blobs    Blobs
	previews Previewer
	now      func() time.Time
}

// New wraps a loaded snapshot.
func New(snap model.Snapshot, opts Options, blobs Blobs, previews Previewer) *History {
	if snap.Entries == nil {
		snap.Entries = make(map[uint64]model.Entry)
	}
	if snap.NextID == 0 {
		snap.NextID = 1
	}
	if opts.DedupeMode == "" {
		opts.DedupeMode = model.DedupeTouch
	}
	return &History{
		order:    slices.Clone(snap.Order),
		entries:  maps.Clone(snap.Entries),
		nextID:   snap.NextID,
		opts:     opts,
		blobs:    blobs,
		previews: previews,
		now:      time.Now,
	}
}

// Snapshot copies the current state for persistence.
func (h *History) Snapshot() model.Snapshot {
	return model.Snapshot{
		Order:   slices.Clone(h.order),
		Entries: maps.Clone(h.entries),
		NextID:  h.nextID,
	}
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	return len(h.order)
}

// Order returns entry ids oldest first.
func (h *History) Order() []uint64 {
	return slices.Clone(h.order)
}

// Entry returns the metadata stored for id.
func (h *History) Entry(id uint64) (model.Entry, bool) {
	e, ok := h.entries[id]
	return e, ok
}

// AddEntry records content as the most recent item and returns its id.
//
// Capacity is enforced before anything else, then the newest MaxDedupeDepth
// entries are checked for identical content. Fingerprints rule candidates
// out cheaply; a fingerprint hit is confirmed byte for byte against the blob.
func (h *History) AddEntry(content []byte) (uint64, error) {
	for h.opts.MaxItems > 0 && len(h.order) >= h.opts.MaxItems {
		oldest := h.order[0]
		slog.Debug("evicting oldest entry", "id", oldest, "max_items", h.opts.MaxItems)
		if err := h.destroy(oldest); err != nil {
			return 0, fmt.Errorf("evict %d: %w", oldest, err)
		}
	}

	fp := xxhash.Sum64(content)
	pos, err := h.findDuplicate(content, fp)
	if err != nil {
		return 0, err
	}
	if pos >= 0 {
		id := h.order[pos]
		if h.opts.DedupeMode == model.DedupeTouch {
			h.order = append(slices.Delete(h.order, pos, pos+1), id)
			slog.Debug("duplicate moved to front", "id", id)
			return id, nil
		}
		slog.Debug("duplicate replaced", "id", id)
		if err := h.destroy(id); err != nil {
			return 0, fmt.Errorf("replace %d: %w", id, err)
		}
	}

	return h.insert(content, fp)
}

// findDuplicate returns the position in order of the newest entry within the
// dedupe window whose bytes equal content, or -1.
func (h *History) findDuplicate(content []byte, fp uint64) (int, error) {
	depth := min(len(h.order), h.opts.MaxDedupeDepth)
	for i := len(h.order) - 1; i >= len(h.order)-depth; i-- {
		e := h.entries[h.order[i]]
		if e.Fingerprint != fp || e.Size != len(content) {
			continue
		}
		stored, err := h.blobs.Get(e.ID)
		if err != nil {
			return -1, fmt.Errorf("dedupe read %d: %w", e.ID, err)
		}
		if bytes.Equal(stored, content) {
			return i, nil
		}
	}
	return -1, nil
}

func (h *History) insert(content []byte, fp uint64) (uint64, error) {
	id := h.nextID
	if err := h.blobs.Put(id, content); err != nil {
		return 0, err
	}
	p, err := h.previews.Generate(id, content)
	if err != nil {
		return 0, fmt.Errorf("preview %d: %w", id, err)
	}

	h.entries[id] = model.Entry{
		ID:          id,
		Fingerprint: fp,
		Size:        len(content),
		CreatedAt:   h.now().UTC(),
		Preview:     p,
	}
	h.order = append(h.order, id)
	h.nextID++
	slog.Info("entry stored", "id", id, "kind", p.Kind, "bytes", len(content))
	return id, nil
}

// GetEntry returns the raw content of id.
func (h *History) GetEntry(id uint64) ([]byte, error) {
	if _, ok := h.entries[id]; !ok {
		return nil, fmt.Errorf("entry %d: %w", id, model.ErrNotFound)
	}
	return h.blobs.Get(id)
}

// DeleteEntry removes id and its files. Unknown ids are ignored.
func (h *History) DeleteEntry(id uint64) error {
	if _, ok := h.entries[id]; !ok {
		slog.Debug("delete of unknown entry ignored", "id", id)
		return nil
	}
	return h.destroy(id)
}

// Clear removes every entry.
func (h *History) Clear() error {
	for len(h.order) > 0 {
		if err := h.destroy(h.order[0]); err != nil {
			return err
		}
	}
	return nil
}

// destroy frees the blob and thumbnail of id, then forgets it. Files that
// are already gone are logged and skipped; any other failure aborts.
func (h *History) destroy(id uint64) error {
	e := h.entries[id]
	if err := h.blobs.Delete(id); err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		slog.Warn("blob already missing", "id", id)
	}
	if err := h.previews.Remove(e.Preview); err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		slog.Warn("thumbnail already missing", "id", id, "name", e.Preview.Thumbnail)
	}

	delete(h.entries, id)
	if i := slices.Index(h.order, id); i >= 0 {
		h.order = slices.Delete(h.order, i, i+1)
	}
	return nil
}

// List renders every entry, most recent first.
func (h *History) List(r Renderer) []string {
	out := make([]string, 0, len(h.order))
	for _, id := range slices.Backward(h.order) {
		out = append(out, r.Render(id, h.entries[id].Preview))
	}
	return out
}

// Last renders the most recent entry.
func (h *History) Last(r Renderer) (string, error) {
	return h.fromEnd(1, r)
}

// SecondLast renders the entry before the most recent one.
func (h *History) SecondLast(r Renderer) (string, error) {
	return h.fromEnd(2, r)
}

func (h *History) fromEnd(n int, r Renderer) (string, error) {
	if len(h.order) < n {
		return "", fmt.Errorf("need %d entries, have %d: %w", n, len(h.order), model.ErrInsufficientHistory)
	}
	id := h.order[len(h.order)-n]
	return r.Render(id, h.entries[id].Preview), nil
}
