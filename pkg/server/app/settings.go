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

package app

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/settings"
)

// GetSettings returns the company details
func (a *App) GetSettings() settings.Settings {
	return a.Settings.Get()
}

// SaveSettings validates and stores the company details. An empty logo is
// stored as null.
func (a *App) SaveSettings(s settings.Settings) (settings.Settings, error) {
	if strings.TrimSpace(s.NomeAzienda) == "" || strings.TrimSpace(s.Telefono) == "" {
		return settings.Settings{}, ErrSettingsFieldsRequired
	}

	if s.Logo != nil && *s.Logo == "" {
		s.Logo = nil
	}

	if err := a.Settings.Save(s); err != nil {
		return settings.Settings{}, errors.Wrap(err, "saving settings")
	}

	return s, nil
}
