// Package model defines the core clipboard history data types.
package model

import "time"

// PreviewKind tags which variant a Preview holds.
type PreviewKind string

const (
	PreviewText  PreviewKind = "text"
	PreviewThumb PreviewKind = "thumb"
)

// Preview is the precomputed summary of an entry's content.
// Thumbnail is only set for PreviewThumb and names a file under the thumbs directory.
type Preview struct {
	Kind      PreviewKind `json:"kind"`
	Summary   string      `json:"summary"`
	Mime      string      `json:"mime,omitempty"`
	Thumbnail string      `json:"thumbnail,omitempty"`
}

// TextPreview returns a Text variant preview.
func TextPreview(summary, mime string) Preview {
	return Preview{Kind: PreviewText, Summary: summary, Mime: mime}
}

// ThumbPreview returns a Thumb variant preview.
func ThumbPreview(summary, mime, thumbnail string) Preview {
	return Preview{Kind: PreviewThumb, Summary: summary, Mime: mime, Thumbnail: thumbnail}
}

// HasThumbnail reports whether the preview owns a thumbnail file.
func (p Preview) HasThumbnail() bool {
	return p.Kind == PreviewThumb && p.Thumbnail != ""
}

// Entry is one retained clipboard item. Its raw bytes live in the blob
// store under ID.
type Entry struct {
	ID          uint64    `json:"id"`
	Fingerprint uint64    `json:"fingerprint"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	Preview     Preview   `json:"preview"`
}

// Snapshot is the whole history aggregate as it is persisted.
type Snapshot struct {
	Order   []uint64         `json:"order"`
	Entries map[uint64]Entry `json:"entries"`
	NextID  uint64           `json:"next_id"`
}

// EmptySnapshot returns a freshly initialized aggregate.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Entries: make(map[uint64]Entry),
		NextID:  1,
	}
}

// DedupeMode selects what happens when new content matches a recent entry.
type DedupeMode string

const (
	// DedupeTouch moves the existing entry to the most recent position.
	DedupeTouch DedupeMode = "touch"
	// DedupeReinsert drops the existing entry and inserts a new one.
	DedupeReinsert DedupeMode = "reinsert"
)

// ValidDedupeModes are the allowed dedupe modes.
var ValidDedupeModes = map[DedupeMode]bool{
	DedupeTouch:    true,
	DedupeReinsert: true,
}

// ThumbMode selects the output encoding for thumbnail previews.
type ThumbMode string

const (
	ThumbNone ThumbMode = "none"
	ThumbWofi ThumbMode = "wofi"
	ThumbRofi ThumbMode = "rofi"
)

// ValidThumbModes are the allowed rendering modes.
var ValidThumbModes = map[ThumbMode]bool{
	ThumbNone: true,
	ThumbWofi: true,
	ThumbRofi: true,
}
