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
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/assert"
	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/testutils"
)

// envelope is the decoded form of a response
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, res *http.Response) envelope {
	var ret envelope
	testutils.MustDecodeJSON(t, res, &ret)

	return ret
}

func decodeData(t *testing.T, e envelope, v interface{}) {
	if err := json.Unmarshal(e.Data, v); err != nil {
		t.Fatal(errors.Wrap(err, "decoding data"))
	}
}

// setupTestApp returns an app over a fresh in-memory store with a single user
func setupTestApp(t *testing.T) (app.App, database.User) {
	a := app.NewTest()
	a.Store = testutils.InitMemoryDB(t)

	user := testutils.SetupUserData(a.Store, "admin", "Admin!", "Amministratore")

	return a, user
}

func TestGetStatusCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "validation", err: app.ErrTicketFieldsRequired, expected: http.StatusBadRequest},
		{name: "conflict", err: app.ErrLastUser, expected: http.StatusBadRequest},
		{name: "not found", err: errors.Wrap(app.ErrClientNotFound, "finding"), expected: http.StatusNotFound},
		{name: "auth", err: app.ErrUnauthenticated, expected: http.StatusUnauthorized},
		{name: "forbidden", err: app.ErrDemoUserCreation, expected: http.StatusForbidden},
		{name: "not ready", err: database.ErrNotReady, expected: http.StatusServiceUnavailable},
		{name: "bad request", err: errors.Wrap(badRequestError{errors.New("x")}, "decoding"), expected: http.StatusBadRequest},
		{name: "too large", err: &http.MaxBytesError{Limit: 1}, expected: http.StatusRequestEntityTooLarge},
		{name: "internal", err: errors.New("disk full"), expected: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, getStatusCode(tc.err), tc.expected, "status code mismatch")
		})
	}
}

func TestHandleJSONError(t *testing.T) {
	testCases := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "domain error",
			err:             app.ErrLanguageInvalid,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Lingua non valida. Valori accettati: it, en, de",
		},
		{
			name:            "internal error keeps the raw message",
			err:             errors.New("disk full"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "disk full",
		},
		{
			name:            "payload too large",
			err:             &http.MaxBytesError{Limit: 1},
			expectedStatus:  http.StatusRequestEntityTooLarge,
			expectedMessage: errPayloadTooLarge,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handleJSONError(w, tc.err, "testing")

			res := w.Result()
			assert.StatusCodeEquals(t, res, tc.expectedStatus, "")

			body := decodeEnvelope(t, res)
			assert.Equal(t, body.Success, false, "success mismatch")
			assert.Equal(t, body.Error, tc.expectedMessage, "error mismatch")
		})
	}
}

type parseTarget struct {
	Nome     string  `json:"nome" schema:"nome"`
	Scadenza *string `json:"scadenza" schema:"scadenza"`
	ClientID *int    `json:"client_id" schema:"client_id"`
}

func TestParseRequestData(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"nome":"Mario","scadenza":"2025-06-01","client_id":3,"extra":true}`))
		req.Header.Set("Content-Type", "application/json")

		var v parseTarget
		if err := parseRequestData(req, &v); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, v.Nome, "Mario", "nome mismatch")
		assert.Equal(t, *v.Scadenza, "2025-06-01", "scadenza mismatch")
		assert.Equal(t, *v.ClientID, 3, "client_id mismatch")
	})

	t.Run("json without content type", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"nome":"Mario"}`))

		var v parseTarget
		if err := parseRequestData(req, &v); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, v.Nome, "Mario", "nome mismatch")
	})

	t.Run("form", func(t *testing.T) {
		form := url.Values{}
		form.Set("nome", "Mario")
		form.Set("client_id", "7")
		form.Set("unknown", "x")
		req := httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var v parseTarget
		if err := parseRequestData(req, &v); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, v.Nome, "Mario", "nome mismatch")
		assert.Equal(t, *v.ClientID, 7, "client_id mismatch")
		assert.Equal(t, v.Scadenza == nil, true, "scadenza should be nil")
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))

		v := parseTarget{Nome: "unchanged"}
		if err := parseRequestData(req, &v); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, v.Nome, "unchanged", "nome mismatch")
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"nome":`))

		var v parseTarget
		err := parseRequestData(req, &v)
		assert.Equal(t, getStatusCode(err), http.StatusBadRequest, "status code mismatch")
	})
}

func TestParseID(t *testing.T) {
	testCases := []struct {
		id         string
		expectedID int
		expectedOK bool
	}{
		{id: "12", expectedID: 12, expectedOK: true},
		{id: "0", expectedID: 0, expectedOK: false},
		{id: "-3", expectedID: 0, expectedOK: false},
		{id: "abc", expectedID: 0, expectedOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req = mux.SetURLVars(req, map[string]string{"id": tc.id})

			id, ok := parseID(req)
			assert.Equal(t, id, tc.expectedID, "id mismatch")
			assert.Equal(t, ok, tc.expectedOK, "ok mismatch")
		})
	}
}

func TestIsSecure(t *testing.T) {
	testCases := []struct {
		name         string
		cookieSecure bool
		proto        string
		expected     bool
	}{
		{name: "plain", expected: false},
		{name: "configured", cookieSecure: true, expected: true},
		{name: "behind a proxy", proto: "https", expected: true},
		{name: "proxy over http", proto: "http", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tc.proto)
			}

			assert.Equal(t, isSecure(req, tc.cookieSecure), tc.expected, fmt.Sprintf("result mismatch for %s", tc.name))
		})
	}
}
