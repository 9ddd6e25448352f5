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

package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/assert"
	"github.com/qrepair/qrepair/pkg/cli/consts"
	"github.com/qrepair/qrepair/pkg/cli/context"
)

func newTestCtx(t *testing.T, handler http.HandlerFunc) context.QRepairCtx {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return context.QRepairCtx{
		APIEndpoint: server.URL + "/api",
		Version:     "test",
		SessionKey:  "signed-key",
		HTTPClient:  NewRateLimitedHTTPClient(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func TestCall_authorization(t *testing.T) {
	var gotAuth, gotPath, gotAgent string
	ctx := newTestCtx(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		writeJSON(w, http.StatusOK, `{"success":true,"data":7}`)
	})

	// Execute
	n, err := Count(ctx)
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	// Test
	assert.Equal(t, n, int64(7), "count mismatch")
	assert.Equal(t, gotAuth, "Bearer signed-key", "Authorization mismatch")
	assert.Equal(t, gotPath, "/api/count", "path mismatch")
	assert.Equal(t, gotAgent, "qrepair-cli/test", "User-Agent mismatch")
}

func TestCall_notLoggedIn(t *testing.T) {
	called := false
	ctx := newTestCtx(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	ctx.SessionKey = ""

	_, err := GetTickets(ctx)

	assert.Equal(t, errors.Cause(err), ErrNotLoggedIn, "error mismatch")
	assert.Equal(t, called, false, "no request should be made")
}

func TestCall_errors(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		contentType string
		body        string
		expected    *APIError
	}{
		{
			name:        "envelope error",
			status:      http.StatusNotFound,
			contentType: "application/json",
			body:        `{"success":false,"error":"Record non trovato"}`,
			expected:    &APIError{StatusCode: http.StatusNotFound, Message: "Record non trovato"},
		},
		{
			name:        "unsuccessful envelope with 200",
			status:      http.StatusOK,
			contentType: "application/json",
			body:        `{"success":false,"error":"Credenziali non valide"}`,
			expected:    &APIError{StatusCode: http.StatusOK, Message: "Credenziali non valide"},
		},
		{
			name:        "plain text error",
			status:      http.StatusTooManyRequests,
			contentType: "text/plain; charset=utf-8",
			body:        "Too many requests\n",
			expected:    &APIError{StatusCode: http.StatusTooManyRequests, Message: "Too many requests"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := newTestCtx(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.contentType)
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			})

			_, err := GetTicket(ctx, 3)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected an APIError, got %v", err)
			}
			assert.DeepEqual(t, apiErr, tc.expected, "error mismatch")
		})
	}
}

func TestCall_contentTypeMismatch(t *testing.T) {
	ctx := newTestCtx(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html></html>")
	})

	_, err := GetTickets(ctx)

	assert.Equal(t, errors.Is(err, ErrContentTypeMismatch), true, "error mismatch")
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got loginPayload
		ctx := newTestCtx(t, func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Fatal(errors.Wrap(err, "decoding"))
			}

			http.SetCookie(w, &http.Cookie{Name: consts.SessionCookieName, Value: "new-signed-key", Path: "/"})
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":1,"username":"admin","nome":"Amministratore"}}`)
		})
		ctx.SessionKey = ""

		resp, err := Login(ctx, "admin", "Admin!")
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, got, loginPayload{Username: "admin", Password: "Admin!"}, "payload mismatch")
		assert.Equal(t, resp.SessionKey, "new-signed-key", "session key mismatch")
		assert.Equal(t, resp.User, Identity{ID: 1, Username: "admin", Nome: "Amministratore"}, "user mismatch")
	})

	t.Run("wrong credentials", func(t *testing.T) {
		ctx := newTestCtx(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"success":false,"error":"Credenziali non valide"}`)
		})

		_, err := Login(ctx, "admin", "wrong")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected an APIError, got %v", err)
		}
		assert.Equal(t, apiErr.Message, "Credenziali non valide", "message mismatch")
	})

	t.Run("missing cookie", func(t *testing.T) {
		ctx := newTestCtx(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":1,"username":"admin","nome":"A"}}`)
		})

		_, err := Login(ctx, "admin", "Admin!")

		assert.Equal(t, err, ErrSessionCookieMissing, "error mismatch")
	})
}

func TestCheck(t *testing.T) {
	ctx := newTestCtx(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"authenticated":true,"user":{"id":2,"username":"luca","nome":"Luca"}}`)
	})

	resp, err := Check(ctx)
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.Equal(t, resp.Authenticated, true, "authenticated mismatch")
	assert.Equal(t, *resp.User, Identity{ID: 2, Username: "luca", Nome: "Luca"}, "user mismatch")
}

func TestImport_payload(t *testing.T) {
	var body map[string]json.RawMessage
	ctx := newTestCtx(t, func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(errors.Wrap(err, "reading"))
		}
		if err := json.Unmarshal(b, &body); err != nil {
			t.Fatal(errors.Wrap(err, "decoding"))
		}

		writeJSON(w, http.StatusOK, `{"success":true,"message":"0 record importati"}`)
	})

	msg, err := Import(ctx, nil)
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.Equal(t, msg, "0 record importati", "message mismatch")
	assert.Equal(t, string(body["records"]), "[]", "records should be an empty list")
}

func TestSearch_escapesQuery(t *testing.T) {
	var gotPath string
	ctx := newTestCtx(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
	})

	if _, err := Search(ctx, "Mario Rossi"); err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.Equal(t, gotPath, "/api/search/Mario%20Rossi", "path mismatch")
}

func TestGetQRCode(t *testing.T) {
	t.Run("image", func(t *testing.T) {
		var gotQuery string
		ctx := newTestCtx(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "image/png")
			fmt.Fprint(w, "\x89PNG")
		})

		b, err := GetQRCode(ctx, 4, 128)
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, string(b), "\x89PNG", "body mismatch")
		assert.Equal(t, gotQuery, "size=128", "query mismatch")
	})

	t.Run("envelope error", func(t *testing.T) {
		ctx := newTestCtx(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, `{"success":false,"error":"URL non disponibile"}`)
		})

		_, err := GetQRCode(ctx, 4, 0)

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected an APIError, got %v", err)
		}
		assert.Equal(t, apiErr.IsNotFound(), true, "status mismatch")
		assert.Equal(t, apiErr.Message, "URL non disponibile", "message mismatch")
	})
}
