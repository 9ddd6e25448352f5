/* Copyright (C) 2025 QRepair contributors
 *
 * This file is part of QRepair.
 *
 * QRepair is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * QRepair is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with QRepair.  If not, see <https://www.gnu.org/licenses/>.
 */

package session

import (
	"sync"
	"time"

	"github.com/qrepair/qrepair/pkg/clock"
)

// MemoryStore keeps sessions in process memory. Sessions do not survive a restart.
type MemoryStore struct {
	clock    clock.Clock
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore(c clock.Clock) *MemoryStore {
	return &MemoryStore{
		clock:    c,
		sessions: map[string]Session{},
	}
}

// Create implements Store
func (s *MemoryStore) Create(identity Identity, ttl time.Duration) (Session, error) {
	key, err := newKey()
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		Key:       key,
		Identity:  identity,
		ExpiresAt: s.clock.Now().Add(ttl),
	}

	s.mu.Lock()
	s.sessions[key] = sess
	s.mu.Unlock()

	return sess, nil
}

// Get implements Store
func (s *MemoryStore) Get(key string) (Session, bool, error) {
	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()

	if !ok || !sess.ExpiresAt.After(s.clock.Now()) {
		return Session{}, false, nil
	}

	return sess, true, nil
}

// Destroy implements Store
func (s *MemoryStore) Destroy(key string) error {
	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()

	return nil
}

// Purge implements Store
func (s *MemoryStore) Purge(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for key, sess := range s.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(s.sessions, key)
			n++
		}
	}

	return n, nil
}
