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

package app

import (
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/metrics"
	"github.com/qrepair/qrepair/pkg/server/session"
	"golang.org/x/crypto/bcrypt"
)

// Login verifies the credentials and starts a session. An unknown user and a
// wrong password fail alike with ErrLoginInvalid.
func (a *App) Login(username, password string) (session.Session, error) {
	if username == "" || password == "" {
		return session.Session{}, ErrCredentialsRequired
	}

	user, err := a.GetUserByUsername(username)
	if errors.Is(err, ErrUserNotFound) {
		metrics.ObserveLogin(false)
		return session.Session{}, ErrLoginInvalid
	} else if err != nil {
		return session.Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		metrics.ObserveLogin(false)
		return session.Session{}, ErrLoginInvalid
	}

	sess, err := a.Sessions.Create(session.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Nome:     user.Nome,
	}, session.DefaultTTL)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "creating session")
	}

	metrics.ObserveLogin(true)

	return sess, nil
}

// Logout ends the session with the given key
func (a *App) Logout(key string) error {
	if key == "" {
		return nil
	}

	if err := a.Sessions.Destroy(key); err != nil {
		return errors.Wrap(err, "destroying session")
	}

	return nil
}

// Check returns the identity behind the session with the given key. The
// second return value is false when there is no live session.
func (a *App) Check(key string) (session.Identity, bool, error) {
	if key == "" {
		return session.Identity{}, false, nil
	}

	sess, ok, err := a.Sessions.Get(key)
	if err != nil {
		return session.Identity{}, false, errors.Wrap(err, "getting session")
	}
	if !ok {
		return session.Identity{}, false, nil
	}

	return sess.Identity, true, nil
}
