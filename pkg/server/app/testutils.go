/* Copyright (C) 2019, 2020, 2021, 2022, 2023, 2024, 2025 Dnote contributors
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
	"github.com/gorilla/securecookie"
	"github.com/qrepair/qrepair/pkg/clock"
	"github.com/qrepair/qrepair/pkg/server/session"
	"github.com/qrepair/qrepair/pkg/server/settings"
)

// testHashKey signs session cookies in tests
var testHashKey = []byte("qrepair-test-hash-key-0123456789")

// NewTest returns an app for a testing environment. The caller sets the Store.
func NewTest() App {
	c := clock.NewMock()

	return App{
		Clock:       c,
		Sessions:    session.NewMemoryStore(c),
		Settings:    settings.Open(""),
		CookieCodec: securecookie.New(testHashKey, nil),
		AppEnv:      "TEST",
		Port:        "5126",
	}
}
