package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/cinema-booking-wizard/internal/model"
)

type memEntry struct {
	draft   model.BookingDraft
	expires time.Time
}

type memLock struct {
	owner   uint64
	expires time.Time
}

// MemoryStore is the in-process fallback used when Redis is unavailable.
// Drafts are deep-copied on the way in and out.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memEntry
	locks   map[string]memLock
	seq     uint64
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memEntry),
		locks:   make(map[string]memLock),
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.BookingDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	now := s.now()
	if !ok || now.After(e.expires) {
		delete(s.entries, id)
		return model.BookingDraft{}, ErrNotFound
	}
	e.expires = now.Add(s.ttl)
	s.entries[id] = e
	return clone(e.draft), nil
}

func (s *MemoryStore) Save(_ context.Context, d model.BookingDraft) error {
	if d.SessionID == "" {
		return errors.New("draft has no session id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}
	s.entries[d.SessionID] = memEntry{draft: clone(d), expires: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) Lock(_ context.Context, id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if l, ok := s.locks[id]; ok && now.Before(l.expires) {
		return nil, ErrLocked
	}
	s.seq++
	owner := s.seq
	s.locks[id] = memLock{owner: owner, expires: now.Add(LockTTL)}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if l, ok := s.locks[id]; ok && l.owner == owner {
			delete(s.locks, id)
		}
	}, nil
}

func clone(d model.BookingDraft) model.BookingDraft {
	out := d
	out.SelectedSeats = append([]string(nil), d.SelectedSeats...)
	out.BookedSeats = append([]string(nil), d.BookedSeats...)
	if d.Concessions != nil {
		out.Concessions = make(map[string]int, len(d.Concessions))
		for k, v := range d.Concessions {
			out.Concessions[k] = v
		}
	}
	if d.Theater != nil {
		t := *d.Theater
		out.Theater = &t
	}
	if d.Movie != nil {
		m := *d.Movie
		out.Movie = &m
	}
	return out
}
