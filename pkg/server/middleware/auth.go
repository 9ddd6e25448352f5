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

package middleware

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/context"
	"github.com/qrepair/qrepair/pkg/server/session"
)

// AuthWithSession resolves the session of the request. It returns the
// identity and the session key, and false if there is no live session.
func AuthWithSession(a *app.App, r *http.Request) (session.Identity, string, bool, error) {
	key, err := GetCredential(r, a.CookieCodec)
	if err != nil {
		return session.Identity{}, "", false, errors.Wrap(err, "getting credential")
	}

	identity, ok, err := a.Check(key)
	if err != nil {
		return session.Identity{}, "", false, errors.Wrap(err, "checking session")
	}
	if !ok {
		return session.Identity{}, "", false, nil
	}

	return identity, key, true, nil
}

// Auth is an authentication middleware. It rejects a request without a live
// session before the handler runs.
func Auth(a *app.App, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, key, ok, err := AuthWithSession(a, r)
		if errors.Is(err, ErrMalformedAuthHeader) {
			RespondUnauthorized(w)
			return
		}
		if err != nil {
			DoError(w, "authenticating with session", err, http.StatusInternalServerError)
			return
		}
		if !ok {
			RespondUnauthorized(w)
			return
		}

		ctx := context.WithIdentity(r.Context(), &identity)
		ctx = context.WithSessionKey(ctx, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
