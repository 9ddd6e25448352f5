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
)

// NewClients creates a new Clients controller.
func NewClients(app *app.App) *Clients {
	return &Clients{
		app: app,
	}
}

// Clients is a controller for the customers
type Clients struct {
	app *app.App
}

type clientPayload struct {
	Nome    string `json:"nome" schema:"nome"`
	Cognome string `json:"cognome" schema:"cognome"`
	Email   string `json:"email" schema:"email"`
	Tel     string `json:"tel" schema:"tel"`
	Lingua  string `json:"lingua" schema:"lingua"`
	Piva    string `json:"piva" schema:"piva"`
}

func (p clientPayload) params() app.ClientParams {
	return app.ClientParams{
		Nome:    p.Nome,
		Cognome: p.Cognome,
		Email:   p.Email,
		Tel:     p.Tel,
		Lingua:  p.Lingua,
		Piva:    p.Piva,
	}
}

type searchClientsQuery struct {
	Q string `schema:"q"`
}

// Index handles GET /api/clienti
func (c *Clients) Index(w http.ResponseWriter, r *http.Request) {
	clients, err := c.app.GetClients()
	if err != nil {
		handleJSONError(w, err, "getting clients")
		return
	}

	respondData(w, http.StatusOK, clients)
}

// Search handles GET /api/clienti/search
func (c *Clients) Search(w http.ResponseWriter, r *http.Request) {
	var q searchClientsQuery
	if err := parseQuery(r, &q); err != nil {
		handleJSONError(w, err, "parsing query")
		return
	}

	clients, err := c.app.SearchClients(q.Q)
	if err != nil {
		handleJSONError(w, err, "searching clients")
		return
	}

	respondData(w, http.StatusOK, clients)
}

// Show handles GET /api/clienti/{id}
func (c *Clients) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		handleJSONError(w, app.ErrClientNotFound, "parsing id")
		return
	}

	client, err := c.app.GetClient(id)
	if err != nil {
		handleJSONError(w, err, "getting client")
		return
	}

	respondData(w, http.StatusOK, client)
}

// Create handles POST /api/clienti
func (c *Clients) Create(w http.ResponseWriter, r *http.Request) {
	var payload clientPayload
	if err := parseRequestData(r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	client, err := c.app.CreateClient(payload.params())
	if err != nil {
		handleJSONError(w, err, "creating client")
		return
	}

	respondData(w, http.StatusCreated, client)
}

// Update handles PUT /api/clienti/{id}
func (c *Clients) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		handleJSONError(w, app.ErrClientNotFound, "parsing id")
		return
	}

	var payload clientPayload
	if err := parseRequestData(r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if err := c.app.UpdateClient(id, payload.params()); err != nil {
		handleJSONError(w, err, "updating client")
		return
	}

	respondMessage(w, "Cliente aggiornato")
}

// Delete handles DELETE /api/clienti/{id}
func (c *Clients) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		handleJSONError(w, app.ErrClientNotFound, "parsing id")
		return
	}

	if err := c.app.DeleteClient(id); err != nil {
		handleJSONError(w, err, "deleting client")
		return
	}

	respondMessage(w, "Cliente eliminato")
}
