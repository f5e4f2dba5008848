package gadget

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

// codeStore holds armed self-destruct codes keyed by gadget ID.
// Codes are single-use and expire after ttl. Arming a gadget again
// replaces its previous code.
type codeStore struct {
	mu    sync.Mutex
	codes map[int64]codeEntry
	ttl   time.Duration
	now   func() time.Time
}

type codeEntry struct {
	code      string
	expiresAt time.Time
}

func newCodeStore(ttl time.Duration) *codeStore {
	return &codeStore{
		codes: make(map[int64]codeEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// put records code for gadgetID and returns its expiry.
func (s *codeStore) put(gadgetID int64, code string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(s.ttl)
	s.codes[gadgetID] = codeEntry{code: code, expiresAt: expiresAt}
	return expiresAt
}

// consume reports whether code is the live code for gadgetID and removes it
// on success. A wrong code leaves the entry in place.
func (s *codeStore) consume(gadgetID int64, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[gadgetID]
	if !ok {
		return false
	}
	if s.now().After(entry.expiresAt) {
		delete(s.codes, gadgetID)
		return false
	}
	if subtle.ConstantTimeCompare([]byte(entry.code), []byte(code)) != 1 {
		return false
	}

	delete(s.codes, gadgetID)
	return true
}

// forget drops any code for gadgetID.
func (s *codeStore) forget(gadgetID int64) {
	s.mu.Lock()
	delete(s.codes, gadgetID)
	s.mu.Unlock()
}

// cleanExpired removes expired codes and returns how many were dropped.
func (s *codeStore) cleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.codes {
		if now.After(entry.expiresAt) {
			delete(s.codes, id)
			removed++
		}
	}
	return removed
}

func (s *codeStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

// cleanLoop runs cleanExpired every ttl until ctx is cancelled.
func (s *codeStore) cleanLoop(ctx context.Context, onClean func(removed int)) {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.cleanExpired(); n > 0 && onClean != nil {
				onClean(n)
			}
		}
	}
}
