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

package controllers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/assert"
	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/testutils"
)

func mustReadBody(t *testing.T, res *http.Response) string {
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading body"))
	}

	return string(b)
}

func TestNewRouter_invalidApp(t *testing.T) {
	a := app.NewTest()

	_, err := NewServer(&a)
	assert.Equal(t, errors.Cause(err), app.ErrEmptyStore, "error mismatch")
}

func TestNotReady(t *testing.T) {
	// Setup
	a := app.NewTest()
	a.Store = database.New(database.Params{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "x.db")})
	server := MustNewServer(t, &a)
	defer server.Close()

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/api/manutenzioni"},
		{"GET", "/api/manutenzioni/1"},
		{"POST", "/api/auth/login"},
		{"GET", "/api/auth/check"},
		{"GET", "/api/settings"},
		{"GET", "/api/unknown"},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s %s", tc.method, tc.path), func(t *testing.T) {
			req := testutils.MakeReq(server.URL, tc.method, tc.path, "")
			res := testutils.HTTPDo(t, req)

			assert.StatusCodeEquals(t, res, http.StatusServiceUnavailable, "")

			body := decodeEnvelope(t, res)
			assert.Equal(t, body.Success, false, "success mismatch")
			assert.Equal(t, body.Error, "Database non ancora pronto", "error mismatch")
		})
	}

	t.Run("health", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "GET", "/health", "")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "")
		assert.Equal(t, mustReadBody(t, res), "ok", "body mismatch")
	})
}

func TestNotFound(t *testing.T) {
	a, _ := setupTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	testCases := []string{"/api/unknown", "/unknown", "/api/manutenzioni/1/unknown"}

	for _, path := range testCases {
		t.Run(path, func(t *testing.T) {
			req := testutils.MakeReq(server.URL, "GET", path, "")
			res := testutils.HTTPDo(t, req)

			assert.StatusCodeEquals(t, res, http.StatusNotFound, "")
			assert.Equal(t, res.Header.Get("Content-Type"), "application/json", "content type mismatch")

			body := decodeEnvelope(t, res)
			assert.Equal(t, body.Success, false, "success mismatch")
		})
	}
}

func TestBodyLimit(t *testing.T) {
	// Setup
	a, user := setupTestApp(t)
	ctl := New(&a)
	router, err := NewRouter(&a, RouteConfig{Controllers: ctl, APIRoutes: NewAPIRoutes(&a, ctl)})
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing router"))
	}

	logo := strings.Repeat("A", 6<<20)
	payload := fmt.Sprintf(`{"nomeAzienda":"ACME","telefono":"0123","logo":"%s"}`, logo)

	req := httptest.NewRequest("POST", "/api/settings", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	testutils.SetReqAuthHeader(t, a.Sessions, a.CookieCodec, req, user)

	// Execute
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Test
	res := w.Result()
	assert.StatusCodeEquals(t, res, http.StatusRequestEntityTooLarge, "")
	assert.Equal(t, a.Settings.Get().NomeAzienda, "", "settings should not change")
}

func TestRequestID(t *testing.T) {
	a, _ := setupTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeReq(server.URL, "GET", "/health", "")
	res := testutils.HTTPDo(t, req)
	defer res.Body.Close()

	assert.NotEqual(t, res.Header.Get("X-Request-ID"), "", "request id should be set")
}

func TestMetrics(t *testing.T) {
	// Setup
	a, user := setupTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeReq(server.URL, "GET", "/api/count", "")
	res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)
	res.Body.Close()

	// Execute
	res = testutils.HTTPDo(t, testutils.MakeReq(server.URL, "GET", "/metrics", ""))

	// Test
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	body := mustReadBody(t, res)
	assert.Equal(t, strings.Contains(body, "qrepair_http_requests_total"), true, "request counter missing")
	assert.Equal(t, strings.Contains(body, `route="/api/count"`), true, "route label missing")
}
