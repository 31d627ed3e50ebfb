// Package storage_catalog holds the in-process catalog cache and the
// per-user rotation state. It is the single shared mutable resource of the
// service: many concurrent readers, one writer, nothing held across I/O.
package storage_catalog

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/humanbelnik/kinoreco/internal/model"
)

// LatestKey is the only catalog key in use today. The map indirection is
// kept so that more catalogs can live side by side later.
const LatestKey = "latest"

// Rotation identity is the content title, not the provider id used for
// aggregation-time dedup. The two notions are deliberately separate:
// provider ids exist only inside one aggregation run, while titles are the
// only stable handle on persisted content (and may collide).
type Storage struct {
	mu sync.RWMutex

	content     map[string][]model.Content
	rotation    map[model.UserKey]map[string]struct{}
	lastUpdated time.Time

	staleAfter time.Duration
}

func New(staleAfter time.Duration) *Storage {
	return &Storage{
		content:    make(map[string][]model.Content),
		rotation:   make(map[model.UserKey]map[string]struct{}),
		staleAfter: staleAfter,
	}
}

// IsStale reports whether the catalog is older than the staleness
// threshold. Staleness is advisory: stale content is still served when a
// refresh fails. An empty storage is always stale.
func (s *Storage) IsStale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastUpdated) > s.staleAfter
}

// Read returns a copy of the current catalog. The bool is false when no
// catalog has been installed yet.
func (s *Storage) Read() ([]model.Content, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.content[LatestKey]
	if !ok {
		return nil, false
	}
	return slices.Clone(content), true
}

// Replace swaps in a new catalog, stamps the refresh clock and clears all
// rotation state: exclusion sets built against the previous catalog would
// mark most of the new one as already shown. It returns a deep snapshot so
// the caller can persist it without holding the lock.
func (s *Storage) Replace(content []model.Content) model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.content = map[string][]model.Content{LatestKey: content}
	s.rotation = make(map[model.UserKey]map[string]struct{})
	s.lastUpdated = time.Now().UTC()

	return s.snapshotLocked()
}

// Restore installs a previously persisted snapshot, rotation state and
// refresh clock included.
func (s *Storage) Restore(snap model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.content = map[string][]model.Content{LatestKey: snap.Content}
	s.rotation = make(map[model.UserKey]map[string]struct{}, len(snap.Rotation))
	for key, titles := range snap.Rotation {
		shown := make(map[string]struct{}, len(titles))
		for _, t := range titles {
			shown[t] = struct{}{}
		}
		s.rotation[key] = shown
	}
	s.lastUpdated = snap.LastUpdated
}

// Snapshot returns a deep copy of the whole state for persistence.
func (s *Storage) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Storage) snapshotLocked() model.Snapshot {
	rotation := make(map[model.UserKey][]string, len(s.rotation))
	for key, shown := range s.rotation {
		titles := make([]string, 0, len(shown))
		for t := range shown {
			titles = append(titles, t)
		}
		slices.Sort(titles)
		rotation[key] = titles
	}

	return model.Snapshot{
		Content:     slices.Clone(s.content[LatestKey]),
		Rotation:    rotation,
		LastUpdated: s.lastUpdated,
	}
}

// Shown returns a copy of the titles already served to the given user.
func (s *Storage) Shown(key model.UserKey) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.rotation[key])
}

// MarkShown adds titles to the user's rotation set (union, not replace).
func (s *Storage) MarkShown(key model.UserKey, titles []string) {
	if len(titles) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shown, ok := s.rotation[key]
	if !ok {
		shown = make(map[string]struct{}, len(titles))
		s.rotation[key] = shown
	}
	for _, t := range titles {
		shown[t] = struct{}{}
	}
}

// ResetUser drops the user's rotation set once their eligible pool is
// exhausted, allowing repeats over continued availability.
func (s *Storage) ResetUser(key model.UserKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rotation, key)
}

// LastUpdated returns the refresh clock.
func (s *Storage) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Len returns the size of the current catalog.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.content[LatestKey])
}
