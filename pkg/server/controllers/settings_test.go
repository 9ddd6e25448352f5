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
	"testing"

	"github.com/qrepair/qrepair/pkg/assert"
	"github.com/qrepair/qrepair/pkg/server/settings"
	"github.com/qrepair/qrepair/pkg/server/testutils"
)

type settingsTestPayload struct {
	NomeAzienda *string `json:"nomeAzienda,omitempty" schema:"nomeAzienda"`
	Telefono    *string `json:"telefono,omitempty" schema:"telefono"`
	Logo        *string `json:"logo,omitempty" schema:"logo"`
}

func TestSettingsShow(t *testing.T) {
	// Setup
	a, _ := setupTestApp(t)
	if err := a.Settings.Save(settings.Settings{NomeAzienda: "ACME", Telefono: "0123"}); err != nil {
		t.Fatal(err)
	}
	server := MustNewServer(t, &a)
	defer server.Close()

	// Execute
	req := testutils.MakeReq(server.URL, "GET", "/api/settings", "")
	res := testutils.HTTPDo(t, req)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	body := decodeEnvelope(t, res)
	assert.Equal(t, body.Success, true, "success mismatch")

	var got settings.Settings
	decodeData(t, body, &got)
	assert.DeepEqual(t, got, settings.Settings{NomeAzienda: "ACME", Telefono: "0123"}, "settings mismatch")
}

func TestSettingsUpdate(t *testing.T) {
	testutils.RunForJSONAndForm(t, "success", func(t *testing.T, target testutils.BodyType) {
		// Setup
		a, user := setupTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		// Execute
		req := testutils.MakeBodyReq(t, target, server.URL, "POST", "/api/settings", testutils.PayloadWrapper{
			Data: settingsTestPayload{
				NomeAzienda: testutils.StrPtr("ACME"),
				Telefono:    testutils.StrPtr("0123"),
				Logo:        testutils.StrPtr("data:image/png;base64,AAA"),
			},
		})
		res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

		// Test
		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		expected := settings.Settings{NomeAzienda: "ACME", Telefono: "0123", Logo: testutils.StrPtr("data:image/png;base64,AAA")}

		body := decodeEnvelope(t, res)
		var got settings.Settings
		decodeData(t, body, &got)
		assert.DeepEqual(t, got, expected, "returned settings mismatch")
		assert.DeepEqual(t, a.Settings.Get(), expected, "stored settings mismatch")
	})

	t.Run("empty logo", func(t *testing.T) {
		a, user := setupTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		req := testutils.MakeJSONReq(server.URL, "POST", "/api/settings", `{"nomeAzienda":"ACME","telefono":"0123","logo":""}`)
		res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

		assert.StatusCodeEquals(t, res, http.StatusOK, "")
		assert.Equal(t, a.Settings.Get().Logo == nil, true, "logo should be null")
	})

	t.Run("missing telefono", func(t *testing.T) {
		a, user := setupTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		req := testutils.MakeJSONReq(server.URL, "POST", "/api/settings", `{"nomeAzienda":"ACME"}`)
		res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

		assert.StatusCodeEquals(t, res, http.StatusBadRequest, "")

		body := decodeEnvelope(t, res)
		assert.Equal(t, body.Error, "Campi obbligatori: nomeAzienda, telefono", "error mismatch")
		assert.DeepEqual(t, a.Settings.Get(), settings.Settings{}, "settings should not change")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		a, _ := setupTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		req := testutils.MakeJSONReq(server.URL, "POST", "/api/settings", `{"nomeAzienda":"ACME","telefono":"0123"}`)
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "")
		assert.DeepEqual(t, a.Settings.Get(), settings.Settings{}, "settings should not change")
	})
}
