// Package session keeps per-session state in memory: the generated-image
// gallery, the age-gate flag, and the count of in-flight operations.
// Sessions expire after a TTL of inactivity; touching a session through
// the store refreshes it.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"storycanvas/internal/domain"
)

// Store holds all live sessions.
type Store struct {
	cache *gocache.Cache
	ttl   time.Duration

	mu sync.Mutex
}

const defaultTTL = 12 * time.Hour

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		cache: gocache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

// NewID mints a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// Get returns the state for id, creating it on first touch. Every call
// refreshes the session's expiration.
func (s *Store) Get(id string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(id); ok {
		state := v.(*State)
		s.cache.Set(id, state, s.ttl)
		return state
	}
	state := &State{}
	s.cache.Set(id, state, s.ttl)
	return state
}

// State is one session's mutable data. All methods are safe for
// concurrent use.
type State struct {
	mu       sync.Mutex
	images   []domain.GeneratedImage
	unlocked bool
	inFlight int
}

// Prepend inserts a newly generated image at the head of the gallery.
func (st *State) Prepend(imgs ...domain.GeneratedImage) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.images = append(append([]domain.GeneratedImage{}, imgs...), st.images...)
}

// List returns the gallery newest-first. The slice is a copy; mutating it
// does not affect the session.
func (st *State) List() []domain.GeneratedImage {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]domain.GeneratedImage, len(st.images))
	copy(out, st.images)
	return out
}

// Lookup finds a gallery image by ID.
func (st *State) Lookup(id string) (domain.GeneratedImage, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, img := range st.images {
		if img.ID == id {
			return img, true
		}
	}
	return domain.GeneratedImage{}, false
}

// Remove deletes a gallery image by ID and reports whether it existed.
func (st *State) Remove(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i, img := range st.images {
		if img.ID == id {
			st.images = append(st.images[:i], st.images[i+1:]...)
			return true
		}
	}
	return false
}

// Unlock marks the session as having passed the age gate.
func (st *State) Unlock() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.unlocked = true
}

func (st *State) Unlocked() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.unlocked
}

// BeginOperation and EndOperation bracket a long-running generation so
// the client can report activity.
func (st *State) BeginOperation() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.inFlight++
}

func (st *State) EndOperation() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.inFlight > 0 {
		st.inFlight--
	}
}

func (st *State) InFlight() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.inFlight
}
