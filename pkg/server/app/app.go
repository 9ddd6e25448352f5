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

// Package app implements the operations of the service over the store: tickets,
// clients, users, authentication and settings.
package app

import (
	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/clock"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/session"
	"github.com/qrepair/qrepair/pkg/server/settings"
)

var (
	// ErrEmptyStore is an error for missing store in the app configuration
	ErrEmptyStore = errors.New("No store was provided")
	// ErrEmptyClock is an error for missing clock in the app configuration
	ErrEmptyClock = errors.New("No clock was provided")
	// ErrEmptySessions is an error for missing session store in the app configuration
	ErrEmptySessions = errors.New("No session store was provided")
	// ErrEmptySettings is an error for missing settings store in the app configuration
	ErrEmptySettings = errors.New("No settings store was provided")
	// ErrEmptyCookieCodec is an error for missing cookie codec in the app configuration
	ErrEmptyCookieCodec = errors.New("No cookie codec was provided")
)

// App is an application context
type App struct {
	Store       *database.Store
	Clock       clock.Clock
	Sessions    session.Store
	Settings    *settings.Store
	CookieCodec *securecookie.SecureCookie

	AppEnv       string
	Port         string
	DemoMode     bool
	CookieSecure bool
}

// Validate validates the app configuration
func (a *App) Validate() error {
	if a.Store == nil {
		return ErrEmptyStore
	}
	if a.Clock == nil {
		return ErrEmptyClock
	}
	if a.Sessions == nil {
		return ErrEmptySessions
	}
	if a.Settings == nil {
		return ErrEmptySettings
	}
	if a.CookieCodec == nil {
		return ErrEmptyCookieCodec
	}

	return nil
}

func (a *App) now() string {
	return clock.FormatISO(a.Clock.Now())
}
