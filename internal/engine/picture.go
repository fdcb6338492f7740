package engine

import (
	"image"
	"sync/atomic"
)

// Picture is the concrete, reference-counted Picture collaborator: an
// in-memory image with Hold/Release following the same convention as Item.
type Picture struct {
	refs atomic.Int32
	img  image.Image
}

// NewPicture wraps img with an initial reference count of one, representing
// the thumbnail worker's own handle.
func NewPicture(img image.Image) *Picture {
	p := &Picture{img: img}
	p.refs.Store(1)
	return p
}

// Hold acquires an additional strong reference and returns the same handle.
func (p *Picture) Hold() *Picture {
	p.refs.Add(1)
	return p
}

// Release drops one strong reference.
func (p *Picture) Release() {
	p.refs.Add(-1)
}

// RefCount reports the current reference count, for tests verifying
// reference balance.
func (p *Picture) RefCount() int32 {
	return p.refs.Load()
}

// Image returns the wrapped image.
func (p *Picture) Image() image.Image {
	return p.img
}
