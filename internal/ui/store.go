package ui

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"comptes/internal/cache"
)

// Store keeps one Selection per page view. Each full page load, and so each
// browser tab, gets its own view id. Views expire after ttl of inactivity;
// the least recently used ones are evicted past maxViews.
type Store struct {
	mu    sync.Mutex
	views *cache.LRUCache[*Selection]
}

func NewStore(maxViews int, ttl time.Duration) *Store {
	return &Store{views: cache.NewLRUCache[*Selection](maxViews, ttl)}
}

// NewViewID returns a fresh random view id.
func NewViewID() string {
	return uuid.NewString()
}

// ValidViewID reports whether id looks like one issued by NewViewID.
func ValidViewID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Reset replaces the view's selection with the defaults and returns a copy.
func (s *Store) Reset(id string) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := NewSelection()
	s.views.Set(id, &sel)
	return sel
}

// Get returns a copy of the view's selection, creating defaults for unknown ids.
func (s *Store) Get(id string) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.load(id)
}

// Update applies fn to the view's selection under the store lock and
// returns the resulting state.
func (s *Store) Update(id string, fn func(*Selection)) Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.load(id)
	fn(sel)
	s.views.Set(id, sel)
	return *sel
}

func (s *Store) load(id string) *Selection {
	if sel, ok := s.views.Get(id); ok {
		return sel
	}
	sel := NewSelection()
	s.views.Set(id, &sel)
	return &sel
}

// Len returns the number of live views.
func (s *Store) Len() int {
	return s.views.Size()
}

// Cache exposes the underlying cache for expiry cleanup.
func (s *Store) Cache() cache.Cleaner {
	return s.views
}
