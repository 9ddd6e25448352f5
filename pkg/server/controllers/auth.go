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

package controllers

import (
	"net/http"

	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/log"
	mw "github.com/qrepair/qrepair/pkg/server/middleware"
	"github.com/qrepair/qrepair/pkg/server/session"
)

const (
	errLoginFailed  = "Errore durante il login"
	errLogoutFailed = "Errore durante il logout"
)

// NewAuth creates a new Auth controller.
func NewAuth(app *app.App) *Auth {
	return &Auth{
		app: app,
	}
}

// Auth is an authentication controller. Its failures are reported in the
// envelope with a 200 status.
type Auth struct {
	app *app.App
}

type loginParams struct {
	Username string `json:"username" schema:"username"`
	Password string `json:"password" schema:"password"`
}

type checkResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          *session.Identity `json:"user,omitempty"`
}

// Login handles POST /api/auth/login
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var params loginParams
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	sess, err := a.app.Login(params.Username, params.Password)
	if err != nil {
		if app.KindOf(err) == app.KindAuth {
			respondJSON(w, http.StatusOK, response{Success: false, Error: app.MessageOf(err)})
			return
		}

		log.ErrorWrap(err, "logging in")
		respondJSON(w, http.StatusOK, response{Success: false, Error: errLoginFailed})
		return
	}

	if err := setSessionCookie(w, r, a.app, sess); err != nil {
		log.ErrorWrap(err, "setting session cookie")
		respondJSON(w, http.StatusOK, response{Success: false, Error: errLoginFailed})
		return
	}

	log.WithFields(log.Fields{
		"username": sess.Identity.Username,
	}).Info("User logged in")

	respondData(w, http.StatusOK, sess.Identity)
}

// Logout handles POST /api/auth/logout
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	key, err := mw.GetCredential(r, a.app.CookieCodec)
	if err != nil {
		key = ""
	}

	if err := a.app.Logout(key); err != nil {
		log.ErrorWrap(err, "logging out")
		respondJSON(w, http.StatusOK, response{Success: false, Error: errLogoutFailed})
		return
	}

	unsetSessionCookie(w, r, a.app)
	respondJSON(w, http.StatusOK, response{Success: true})
}

// Check handles GET /api/auth/check
func (a *Auth) Check(w http.ResponseWriter, r *http.Request) {
	identity, _, ok, err := mw.AuthWithSession(a.app, r)
	if err != nil || !ok {
		if err != nil {
			log.WithFields(log.Fields{
				"error": err.Error(),
			}).Debug("checking session")
		}

		respondJSON(w, http.StatusOK, checkResponse{Authenticated: false})
		return
	}

	respondJSON(w, http.StatusOK, checkResponse{Authenticated: true, User: &identity})
}
