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

package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/log"
	"github.com/qrepair/qrepair/pkg/server/session"
)

// ErrMalformedAuthHeader is returned for an Authorization header that is not a bearer token
var ErrMalformedAuthHeader = errors.New("malformed authorization header")

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RespondError writes a JSON error envelope with the given status code
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(errorResponse{Success: false, Error: message}); err != nil {
		log.ErrorWrap(err, "encoding error response")
	}
}

// RespondUnauthorized responds with the unauthorized envelope
func RespondUnauthorized(w http.ResponseWriter) {
	RespondError(w, http.StatusUnauthorized, "Non autenticato")
}

// DoError logs the error and responds with the given status code
func DoError(w http.ResponseWriter, msg string, err error, statusCode int) {
	var message string
	if err == nil {
		message = msg
	} else {
		message = errors.Wrap(err, msg).Error()
	}

	log.WithFields(log.Fields{
		"statusCode": statusCode,
	}).Error(message)

	RespondError(w, statusCode, message)
}

// decodeKey verifies a signed session key. A value with a bad signature
// yields an empty key.
func decodeKey(codec *securecookie.SecureCookie, value string) string {
	var key string
	if err := codec.Decode(session.CookieName, value, &key); err != nil {
		return ""
	}

	return key
}

func getSessionKeyFromCookie(r *http.Request, codec *securecookie.SecureCookie) (string, error) {
	c, err := r.Cookie(session.CookieName)

	if err == http.ErrNoCookie {
		return "", nil
	} else if err != nil {
		return "", errors.Wrap(err, "reading session cookie")
	}

	return decodeKey(codec, c.Value), nil
}

func getSessionKeyFromAuth(r *http.Request, codec *securecookie.SecureCookie) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", nil
	}

	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		return "", ErrMalformedAuthHeader
	}

	return decodeKey(codec, token), nil
}

// GetCredential extracts a session key from the request from the
// Authorization header, falling back to the session cookie
func GetCredential(r *http.Request, codec *securecookie.SecureCookie) (string, error) {
	key, err := getSessionKeyFromAuth(r, codec)
	if err != nil {
		return "", errors.Wrap(err, "getting session key from Authorization header")
	}

	if key == "" {
		key, err = getSessionKeyFromCookie(r, codec)
		if err != nil {
			return "", errors.Wrap(err, "getting session key from cookie")
		}
	}

	return key, nil
}
