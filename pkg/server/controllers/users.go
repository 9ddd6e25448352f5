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

package controllers

import (
	"net/http"

	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/log"
	"github.com/qrepair/qrepair/pkg/server/presenters"
)

// NewUsers creates a new Users controller.
func NewUsers(app *app.App) *Users {
	return &Users{
		app: app,
	}
}

// Users is a user controller.
type Users struct {
	app *app.App
}

type userPayload struct {
	Username string `json:"username" schema:"username"`
	Password string `json:"password" schema:"password"`
	Nome     string `json:"nome" schema:"nome"`
}

func (p userPayload) params() app.UserParams {
	return app.UserParams{
		Username: p.Username,
		Password: p.Password,
		Nome:     p.Nome,
	}
}

// Index handles GET /api/users
func (u *Users) Index(w http.ResponseWriter, r *http.Request) {
	users, err := u.app.GetUsers()
	if err != nil {
		handleJSONError(w, err, "getting users")
		return
	}

	respondData(w, http.StatusOK, presenters.PresentUsers(users))
}

// Create handles POST /api/users
func (u *Users) Create(w http.ResponseWriter, r *http.Request) {
	var payload userPayload
	if err := parseRequestData(r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	user, err := u.app.CreateUser(payload.params())
	if err != nil {
		handleJSONError(w, err, "creating user")
		return
	}

	log.WithFields(log.Fields{
		"username": user.Username,
	}).Info("User created")

	respondData(w, http.StatusCreated, presenters.PresentUser(user))
}

// Update handles PUT /api/users/{id}
func (u *Users) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		handleJSONError(w, app.ErrUserNotFound, "parsing id")
		return
	}

	var payload userPayload
	if err := parseRequestData(r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if err := u.app.UpdateUser(id, payload.params()); err != nil {
		handleJSONError(w, err, "updating user")
		return
	}

	respondMessage(w, "Utente aggiornato")
}

// Delete handles DELETE /api/users/{id}
func (u *Users) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		handleJSONError(w, app.ErrUserNotFound, "parsing id")
		return
	}

	if err := u.app.DeleteUser(id); err != nil {
		handleJSONError(w, err, "deleting user")
		return
	}

	log.WithFields(log.Fields{
		"id": id,
	}).Info("User deleted")

	respondMessage(w, "Utente eliminato")
}
