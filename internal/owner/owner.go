// Package owner defines how the callback registry refers to the objects that
// contribute callbacks without controlling their lifetime.
package owner

import (
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"
)

// Owner is anything that can contribute frame callbacks.
//
// The registry identifies owners by ID, never by Go value equality, and asks
// Alive before every invocation. An owner that reports false is treated as
// gone: its callbacks stop running and are compacted away later.
type Owner interface {
	ID() uuid.UUID
	Alive() bool
}

// Handle is a ready-made Owner implementation meant to be embedded.
// The zero value is not usable; create handles with NewHandle.
type Handle struct {
	id    uuid.UUID
	alive atomic.Bool
}

// NewHandle returns a live handle with a fresh random identity.
func NewHandle() *Handle {
	h := &Handle{id: uuid.New()}
	h.alive.Store(true)
	return h
}

// ID returns the handle's identity.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Alive reports whether Invalidate has not yet been called.
func (h *Handle) Alive() bool {
	return h != nil && h.alive.Load()
}

// Invalidate marks the handle dead. It returns true only for the call that
// performed the transition.
func (h *Handle) Invalidate() bool {
	return h.alive.CompareAndSwap(true, false)
}

// IsNil reports whether o is nil, a typed nil pointer wrapped in the
// interface, or carries the nil identity.
func IsNil(o Owner) bool {
	if o == nil {
		return true
	}
	if v := reflect.ValueOf(o); v.Kind() == reflect.Pointer && v.IsNil() {
		return true
	}
	return o.ID() == uuid.Nil
}
