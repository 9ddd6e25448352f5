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

package utils

import (
	"testing"

	"github.com/qrepair/qrepair/pkg/assert"
)

func TestParseID(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
		ok       bool
	}{
		{input: "1", expected: 1, ok: true},
		{input: "42", expected: 42, ok: true},
		{input: "0", ok: false},
		{input: "-3", ok: false},
		{input: "abc", ok: false},
		{input: "", ok: false},
		{input: "99999999999999999999", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			id, err := ParseID(tc.input)

			assert.Equal(t, err == nil, tc.ok, "error mismatch")
			assert.Equal(t, id, tc.expected, "id mismatch")
		})
	}
}
