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
	"github.com/qrepair/qrepair/pkg/server/settings"
)

// NewSettings creates a new Settings controller.
func NewSettings(app *app.App) *Settings {
	return &Settings{
		app: app,
	}
}

// Settings is a controller for the company details
type Settings struct {
	app *app.App
}

type settingsPayload struct {
	NomeAzienda string  `json:"nomeAzienda" schema:"nomeAzienda"`
	Telefono    string  `json:"telefono" schema:"telefono"`
	Logo        *string `json:"logo" schema:"logo"`
}

// Show handles GET /api/settings
func (s *Settings) Show(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, s.app.GetSettings())
}

// Update handles POST /api/settings
func (s *Settings) Update(w http.ResponseWriter, r *http.Request) {
	var payload settingsPayload
	if err := parseRequestData(r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	saved, err := s.app.SaveSettings(settings.Settings{
		NomeAzienda: payload.NomeAzienda,
		Telefono:    payload.Telefono,
		Logo:        payload.Logo,
	})
	if err != nil {
		handleJSONError(w, err, "saving settings")
		return
	}

	respondData(w, http.StatusOK, saved)
}
