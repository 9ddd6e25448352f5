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

// Package session keeps track of who is signed in. A session maps an opaque
// key to the identity of a user until it expires or is destroyed.
package session

import (
	"time"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/helpers"
	"github.com/qrepair/qrepair/pkg/server/log"
)

// DefaultTTL is the lifetime of a session
const DefaultTTL = 24 * time.Hour

// CookieName is the name of the cookie carrying the signed session key. It
// also names the value signed into a bearer token.
const CookieName = "qrepair_sid"

// keyBytes is the number of random bytes in a session key
const keyBytes = 32

// Identity is the user a session belongs to
type Identity struct {
	UserID   int    `json:"id"`
	Username string `json:"username"`
	Nome     string `json:"nome"`
}

// Session is an authenticated session
type Session struct {
	Key       string
	Identity  Identity
	ExpiresAt time.Time
}

// Store persists sessions
type Store interface {
	// Create starts a new session for the given identity
	Create(identity Identity, ttl time.Duration) (Session, error)
	// Get returns the session with the given key. The second return value is
	// false if the session does not exist or has expired.
	Get(key string) (Session, bool, error)
	// Destroy ends the session with the given key. Destroying an unknown key is not an error.
	Destroy(key string) error
	// Purge removes the sessions that expired before now and returns how many were removed
	Purge(now time.Time) (int, error)
}

func newKey() (string, error) {
	key, err := helpers.GetRandomStr(keyBytes)
	if err != nil {
		return "", errors.Wrap(err, "generating session key")
	}

	return key, nil
}

// PurgeJob returns a maintenance job that removes expired sessions every hour
func PurgeJob(s Store, now func() time.Time) database.Job {
	return database.Job{
		Name: "purge-sessions",
		Spec: "@hourly",
		Run: func() error {
			n, err := s.Purge(now())
			if err != nil {
				return errors.Wrap(err, "purging sessions")
			}

			if n > 0 {
				log.WithFields(log.Fields{
					"count": n,
				}).Info("Expired sessions purged")
			}

			return nil
		},
	}
}
