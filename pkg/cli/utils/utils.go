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

// Package utils provides small helpers shared by the commands
package utils

import (
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// regexNumber is a regex that matches a string that looks like an integer
var regexNumber = regexp.MustCompile(`^\d+$`)

// IsNumber checks if the given string is in the form of a number
func IsNumber(s string) bool {
	if s == "" {
		return false
	}

	return regexNumber.MatchString(s)
}

// ParseID parses the id of a record given on the command line
func ParseID(s string) (int, error) {
	if !IsNumber(s) {
		return 0, errors.Errorf("invalid id '%s'", s)
	}

	id, err := strconv.Atoi(s)
	if err != nil || id == 0 {
		return 0, errors.Errorf("invalid id '%s'", s)
	}

	return id, nil
}
