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

package middleware

import (
	"net/http"

	"github.com/qrepair/qrepair/pkg/server/app"
)

// Ready rejects requests with 503 until the store of the app is open
func Ready(a *app.App, next http.Handler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Store == nil || !a.Store.Ready() {
			RespondError(w, http.StatusServiceUnavailable, app.ErrNotReady.Message)
			return
		}

		next.ServeHTTP(w, r)
	})
}
