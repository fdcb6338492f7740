package engine

import (
	"sync"
	"time"
)

// Kind distinguishes the two request families.
type Kind int

const (
	KindParse Kind = iota
	KindThumbnail
)

// ParseCallbacks is the callback set for a parse-family request.
type ParseCallbacks struct {
	OnSubitemsAdded    func(item *Item, added []Subitem, userData any)
	OnAttachmentsAdded func(item *Item, userData any)
	OnPreparseEnded    func(item *Item, status Status, userData any)
}

func (c ParseCallbacks) isZero() bool {
	return c.OnSubitemsAdded == nil && c.OnAttachmentsAdded == nil && c.OnPreparseEnded == nil
}

// ThumbnailCallback is the callback set for a thumbnail-family request.
type ThumbnailCallback struct {
	OnEnded func(item *Item, status Status, pic *Picture, userData any)
}

func (c ThumbnailCallback) isZero() bool {
	return c.OnEnded == nil
}

type subTaskHandle struct {
	executor *Executor
	handle   SubHandle
}

// Record is the per-request state the coordinator mutates as sub-tasks
// complete. Every field below its mutex is guarded by rec.mu; fields above
// are set once at construction and never mutated again.
type Record struct {
	ID         RequestID
	Kind       Kind
	Item       *Item
	AcceptedAt time.Time

	Callbacks     ParseCallbacks
	ThumbCallback ThumbnailCallback
	UserData      any

	mu         sync.Mutex
	domains    Mask
	remaining  int
	subHandles map[Domain]subTaskHandle
	status     Status
	terminal   bool
	picture    *Picture
	tm         *timer
}
