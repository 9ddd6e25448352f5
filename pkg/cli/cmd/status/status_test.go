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

package status

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/assert"
	"github.com/qrepair/qrepair/pkg/cli/testutils"
)

func TestStatus(t *testing.T) {
	testCases := []struct {
		name       string
		sessionKey string
		body       string
		expected   string
	}{
		{
			name:       "valid session",
			sessionKey: "signed-key",
			body:       `{"authenticated":true,"user":{"id":1,"username":"admin","nome":"Amministratore"}}`,
			expected:   "logged in as Amministratore (admin)",
		},
		{
			name:       "expired session",
			sessionKey: "signed-key",
			body:       `{"authenticated":false}`,
			expected:   "session expired",
		},
		{
			name:       "no session",
			sessionKey: "",
			expected:   "not logged in",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Setup
			stub := testutils.NewAPIStub(t, map[string]testutils.Response{
				"GET /auth/check": {Body: tc.body},
			})
			ctx := testutils.SetupCtx(t, stub)
			ctx.SessionKey = tc.sessionKey
			out := testutils.CaptureLog(t)

			// Execute
			cmd := NewCmd(ctx)
			cmd.SetArgs([]string{})
			if err := cmd.Execute(); err != nil {
				t.Fatal(errors.Wrap(err, "executing"))
			}

			// Test
			assert.Equal(t, strings.Contains(out.String(), tc.expected), true, "output mismatch")
		})
	}
}
