package web

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Download is a stored original file offered under its proposed name.
type Download struct {
	Name    string
	Data    []byte
	expires time.Time
}

// Store keeps uploaded bytes in memory until they expire.
type Store struct {
	ttl time.Duration
	now func() time.Time

	lock  sync.Mutex
	items map[string]Download
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]Download),
	}
}

// Put stores data under a new random id and returns the id.
func (s *Store) Put(name string, data []byte) string {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.evictLocked()
	id := uuid.NewString()
	s.items[id] = Download{Name: name, Data: data, expires: s.now().Add(s.ttl)}
	return id
}

func (s *Store) Get(id string) (Download, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	d, ok := s.items[id]
	if !ok {
		return Download{}, false
	}
	if !s.now().Before(d.expires) {
		delete(s.items, id)
		return Download{}, false
	}
	return d, true
}

// Len is the number of entries, expired or not.
func (s *Store) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.items)
}

func (s *Store) evictLocked() {
	now := s.now()
	for id, d := range s.items {
		if !now.Before(d.expires) {
			delete(s.items, id)
		}
	}
}
