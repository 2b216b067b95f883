package store

import (
	"sort"
	"sync"
	"time"

	"github.com/AngelCh415/FUNNEL_GO/internal/dashboard"
	"github.com/AngelCh415/FUNNEL_GO/internal/models"
)

// MemoryStore holds the transformed snapshot. It is written once at
// startup and read by every request.
type MemoryStore struct {
	mu       sync.RWMutex
	res      models.Result
	loadedAt time.Time
	ready    bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Set(res models.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.res = res
	s.loadedAt = time.Now()
	s.ready = true
}

// Result returns the snapshot and whether one has been loaded.
func (s *MemoryStore) Result() (models.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res, s.ready
}

func (s *MemoryStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *MemoryStore) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Period returns one period view.
func (s *MemoryStore) Period(id string) (models.PeriodView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.res.Periods[id]
	return p, ok
}

// Sessions tracks open dashboard sessions by id.
type Sessions struct {
	mu   sync.RWMutex
	byID map[string]*dashboard.Session
}

func NewSessions() *Sessions {
	return &Sessions{byID: make(map[string]*dashboard.Session)}
}

// Add registers a session; it reports false when the id is taken.
func (r *Sessions) Add(s *dashboard.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID()]; ok {
		return false
	}
	r.byID[s.ID()] = s
	return true
}

func (r *Sessions) Get(id string) (*dashboard.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

// Delete closes and forgets a session.
func (r *Sessions) Delete(id string) bool {
	r.mu.Lock()
	s, ok := r.byID[id]
	delete(r.byID, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// IDs lists session ids, oldest first.
func (r *Sessions) IDs() []string {
	r.mu.RLock()
	out := make([]*dashboard.Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created().Equal(out[j].Created()) {
			return out[i].Created().Before(out[j].Created())
		}
		return out[i].ID() < out[j].ID()
	})
	ids := make([]string, len(out))
	for i, s := range out {
		ids[i] = s.ID()
	}
	return ids
}

// CloseAll disposes every session, e.g. on shutdown.
func (r *Sessions) CloseAll() int {
	r.mu.Lock()
	all := r.byID
	r.byID = make(map[string]*dashboard.Session)
	r.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
	return len(all)
}
