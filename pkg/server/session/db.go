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
	"errors"
	"time"

	pkgErrors "github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/clock"
	"github.com/qrepair/qrepair/pkg/server/database"
	"gorm.io/gorm"
)

// DBStore keeps sessions in the sessions table so that they survive a restart
type DBStore struct {
	store *database.Store
	clock clock.Clock
}

// NewDBStore returns a session store backed by the given database store
func NewDBStore(store *database.Store, c clock.Clock) *DBStore {
	return &DBStore{
		store: store,
		clock: c,
	}
}

// Create implements Store
func (s *DBStore) Create(identity Identity, ttl time.Duration) (Session, error) {
	key, err := newKey()
	if err != nil {
		return Session{}, err
	}

	now := s.clock.Now().UTC()
	record := database.Session{
		Key:       key,
		UserID:    identity.UserID,
		Username:  identity.Username,
		Nome:      identity.Nome,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	err = s.store.WithLock(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		return Session{}, pkgErrors.Wrap(err, "saving session")
	}

	return Session{
		Key:       key,
		Identity:  identity,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// Get implements Store
func (s *DBStore) Get(key string) (Session, bool, error) {
	if key == "" {
		return Session{}, false, nil
	}

	var record database.Session
	err := s.store.DB.Where("key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, false, nil
	} else if err != nil {
		return Session{}, false, pkgErrors.Wrap(err, "finding session")
	}

	if !record.ExpiresAt.After(s.clock.Now()) {
		return Session{}, false, nil
	}

	return Session{
		Key: record.Key,
		Identity: Identity{
			UserID:   record.UserID,
			Username: record.Username,
			Nome:     record.Nome,
		},
		ExpiresAt: record.ExpiresAt,
	}, true, nil
}

// Destroy implements Store
func (s *DBStore) Destroy(key string) error {
	err := s.store.WithLock(func(tx *gorm.DB) error {
		return tx.Where("key = ?", key).Delete(&database.Session{}).Error
	})
	if err != nil {
		return pkgErrors.Wrap(err, "deleting session")
	}

	return nil
}

// Purge implements Store
func (s *DBStore) Purge(now time.Time) (int, error) {
	var n int64

	err := s.store.WithLock(func(tx *gorm.DB) error {
		res := tx.Where("expires_at <= ?", now.UTC()).Delete(&database.Session{})
		n = res.RowsAffected

		return res.Error
	})
	if err != nil {
		return 0, pkgErrors.Wrap(err, "purging sessions")
	}

	return int(n), nil
}
