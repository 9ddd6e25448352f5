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

package context

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/consts"
	"github.com/qrepair/qrepair/pkg/cli/utils"
)

// ConfigDir returns the directory holding the config file
func ConfigDir(paths Paths) string {
	return filepath.Join(paths.Config, consts.QRepairDirName)
}

// CacheDir returns the directory holding the scratch files of the editor
func CacheDir(paths Paths) string {
	return filepath.Join(paths.Cache, consts.QRepairDirName)
}

// InitQRepairDirs creates the qrepair directories if they don't already exist.
func InitQRepairDirs(paths Paths) error {
	if paths.Config != "" {
		if err := utils.EnsureDir(ConfigDir(paths)); err != nil {
			return errors.Wrap(err, "initializing config dir")
		}
	}
	if paths.Cache != "" {
		if err := utils.EnsureDir(CacheDir(paths)); err != nil {
			return errors.Wrap(err, "initializing cache dir")
		}
	}

	return nil
}
