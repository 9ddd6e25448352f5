/* Copyright 2025 Dnote Authors
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
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/assert"
	"github.com/qrepair/qrepair/pkg/clock"
	"github.com/qrepair/qrepair/pkg/server/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func initStore(t *testing.T) *database.Store {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	s, err := database.FromDB(db, database.DriverSQLite)
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing store"))
	}

	return s
}

type storeFactory func(t *testing.T, c clock.Clock) Store

var factories = map[string]storeFactory{
	"memory": func(t *testing.T, c clock.Clock) Store {
		return NewMemoryStore(c)
	},
	"db": func(t *testing.T, c clock.Clock) Store {
		return NewDBStore(initStore(t), c)
	},
}

var alice = Identity{UserID: 1, Username: "alice", Nome: "Alice"}

func TestCreateGet(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			c := clock.NewMock()
			s := factory(t, c)

			sess, err := s.Create(alice, DefaultTTL)
			if err != nil {
				t.Fatal(errors.Wrap(err, "creating"))
			}

			assert.NotEqual(t, sess.Key, "", "key should be set")
			assert.Equal(t, sess.ExpiresAt.Equal(c.Now().Add(DefaultTTL)), true, "ExpiresAt mismatch")

			got, ok, err := s.Get(sess.Key)
			if err != nil {
				t.Fatal(errors.Wrap(err, "getting"))
			}
			assert.Equal(t, ok, true, "session should exist")
			assert.DeepEqual(t, got.Identity, alice, "identity mismatch")

			_, ok, err = s.Get("unknown")
			if err != nil {
				t.Fatal(errors.Wrap(err, "getting unknown"))
			}
			assert.Equal(t, ok, false, "unknown key should not resolve")
		})
	}
}

func TestUniqueKeys(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			s := factory(t, clock.NewMock())

			a, err := s.Create(alice, DefaultTTL)
			if err != nil {
				t.Fatal(errors.Wrap(err, "creating a"))
			}
			b, err := s.Create(alice, DefaultTTL)
			if err != nil {
				t.Fatal(errors.Wrap(err, "creating b"))
			}

			assert.NotEqual(t, a.Key, b.Key, "keys should differ")
		})
	}
}

func TestExpiry(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			c := clock.NewMock()
			s := factory(t, c)

			sess, err := s.Create(alice, DefaultTTL)
			if err != nil {
				t.Fatal(errors.Wrap(err, "creating"))
			}

			c.Advance(DefaultTTL - time.Minute)
			_, ok, err := s.Get(sess.Key)
			if err != nil {
				t.Fatal(errors.Wrap(err, "getting before expiry"))
			}
			assert.Equal(t, ok, true, "session should be alive before expiry")

			c.Advance(time.Minute)
			_, ok, err = s.Get(sess.Key)
			if err != nil {
				t.Fatal(errors.Wrap(err, "getting after expiry"))
			}
			assert.Equal(t, ok, false, "session should expire after 24 hours")
		})
	}
}

func TestDestroy(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			s := factory(t, clock.NewMock())

			sess, err := s.Create(alice, DefaultTTL)
			if err != nil {
				t.Fatal(errors.Wrap(err, "creating"))
			}

			if err := s.Destroy(sess.Key); err != nil {
				t.Fatal(errors.Wrap(err, "destroying"))
			}
			_, ok, err := s.Get(sess.Key)
			if err != nil {
				t.Fatal(errors.Wrap(err, "getting"))
			}
			assert.Equal(t, ok, false, "session should be gone")

			err = s.Destroy("unknown")
			assert.Equal(t, err, nil, "destroying an unknown key should not fail")
		})
	}
}

func TestPurge(t *testing.T) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			c := clock.NewMock()
			s := factory(t, c)

			old, err := s.Create(alice, time.Hour)
			if err != nil {
				t.Fatal(errors.Wrap(err, "creating old"))
			}
			fresh, err := s.Create(alice, DefaultTTL)
			if err != nil {
				t.Fatal(errors.Wrap(err, "creating fresh"))
			}

			n, err := s.Purge(c.Now().Add(2 * time.Hour))
			if err != nil {
				t.Fatal(errors.Wrap(err, "purging"))
			}
			assert.Equal(t, n, 1, "purged count mismatch")

			_, ok, _ := s.Get(old.Key)
			assert.Equal(t, ok, false, "old session should be purged")
			_, ok, _ = s.Get(fresh.Key)
			assert.Equal(t, ok, true, "fresh session should remain")
		})
	}
}

func TestPurgeJob(t *testing.T) {
	c := clock.NewMock()
	s := NewMemoryStore(c)

	if _, err := s.Create(alice, time.Hour); err != nil {
		t.Fatal(errors.Wrap(err, "creating"))
	}

	job := PurgeJob(s, func() time.Time { return c.Now().Add(2 * time.Hour) })
	assert.Equal(t, job.Spec, "@hourly", "spec mismatch")

	if err := job.Run(); err != nil {
		t.Fatal(errors.Wrap(err, "running job"))
	}

	assert.Equal(t, len(s.sessions), 0, "sessions should be purged")
}
