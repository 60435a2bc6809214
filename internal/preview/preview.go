// Package preview holds the display references created for uploaded images.
// Each upload gets a Handle that is served until it is released.
package preview

import (
	"sync"

	"github.com/google/uuid"
)

// Image is a stored preview.
type Image struct {
	Data     []byte
	MIMEType string
}

// Handle identifies a stored preview. The zero Handle refers to nothing.
type Handle struct {
	ID string
}

// Valid reports whether h refers to a stored preview.
func (h Handle) Valid() bool {
	return h.ID != ""
}

// Registry is a concurrency-safe set of live previews.
type Registry struct {
	mu     sync.RWMutex
	images map[string]Image
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{images: make(map[string]Image)}
}

// Put stores data and returns a fresh handle for it.
func (r *Registry) Put(data []byte, mimeType string) Handle {
	id := uuid.NewString()

	r.mu.Lock()
	r.images[id] = Image{Data: data, MIMEType: mimeType}
	r.mu.Unlock()

	return Handle{ID: id}
}

// Get returns the preview for id, if it has not been released.
func (r *Registry) Get(id string) (Image, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	img, ok := r.images[id]
	return img, ok
}

// Release drops the preview for id. Releasing twice is a no-op.
func (r *Registry) Release(id string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	delete(r.images, id)
	r.mu.Unlock()
}

// Len returns the number of live previews.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.images)
}
