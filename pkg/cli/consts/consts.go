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

// Package consts provides definitions of constants
package consts

var (
	// QRepairDirName is the name of the directory containing qrepair files
	QRepairDirName = "qrepair"
	// ConfigFilename is the name of the config file
	ConfigFilename = "qrepair.yaml"
	// TmpContentFileBase is the base for the filename of a ticket being edited
	TmpContentFileBase = "QREPAIR_TICKET"
	// TmpContentFileExt is the extension for the temporary content file
	TmpContentFileExt = "yaml"
	// SessionCookieName is the name of the cookie the server signs the session key into
	SessionCookieName = "qrepair_sid"
)
