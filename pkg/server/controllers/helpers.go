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
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/log"
	"github.com/qrepair/qrepair/pkg/server/session"
)

// errPayloadTooLarge is the message for a body over the size limit
const errPayloadTooLarge = "Payload troppo grande"

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// badRequestError is a payload that could not be decoded
type badRequestError struct {
	err error
}

func (e badRequestError) Error() string {
	return e.err.Error()
}

// response is the envelope of every API response
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

func respondData(w http.ResponseWriter, statusCode int, data interface{}) {
	respondJSON(w, statusCode, response{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, response{Success: true, Message: message})
}

func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, response{Success: false, Error: message})
}

func getStatusCode(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}

	var badReq badRequestError
	if errors.As(err, &badReq) {
		return http.StatusBadRequest
	}

	switch app.KindOf(err) {
	case app.KindValidation, app.KindConflict:
		return http.StatusBadRequest
	case app.KindNotFound:
		return http.StatusNotFound
	case app.KindAuth:
		return http.StatusUnauthorized
	case app.KindForbidden:
		return http.StatusForbidden
	case app.KindNotReady:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleJSONError logs the error and responds with the status code its kind maps to
func handleJSONError(w http.ResponseWriter, err error, msg string) {
	statusCode := getStatusCode(err)

	message := app.MessageOf(err)
	if statusCode == http.StatusRequestEntityTooLarge {
		message = errPayloadTooLarge
	}

	if statusCode >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"statusCode": statusCode,
		}).ErrorWrap(err, msg)
	} else {
		log.WithFields(log.Fields{
			"statusCode": statusCode,
			"error":      err.Error(),
		}).Debug(msg)
	}

	respondError(w, statusCode, message)
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}

	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

// parseRequestData decodes the body of the request into v. A form body is
// decoded by its schema tags and any other body as JSON. An empty body leaves
// v unchanged.
func parseRequestData(r *http.Request, v interface{}) error {
	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			return errors.Wrap(badRequestError{err}, "parsing form")
		}

		if err := decoder.Decode(v, r.PostForm); err != nil {
			return errors.Wrap(badRequestError{err}, "decoding form")
		}

		return nil
	}

	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}

	return errors.Wrap(badRequestError{err}, "decoding json")
}

// parseQuery decodes the query string of the request into v by its schema tags
func parseQuery(r *http.Request, v interface{}) error {
	if err := decoder.Decode(v, r.URL.Query()); err != nil {
		return errors.Wrap(badRequestError{err}, "decoding query")
	}

	return nil
}

// parseID parses the id path variable. The second return value is false when
// it is not a positive integer.
func parseID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

func isSecure(r *http.Request, cookieSecure bool) bool {
	if cookieSecure || r.TLS != nil {
		return true
	}

	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// setSessionCookie sets a cookie carrying the signed session key
func setSessionCookie(w http.ResponseWriter, r *http.Request, a *app.App, sess session.Session) error {
	value, err := a.CookieCodec.Encode(session.CookieName, sess.Key)
	if err != nil {
		return errors.Wrap(err, "signing session key")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(session.DefaultTTL / time.Second),
		HttpOnly: true,
		Secure:   isSecure(r, a.CookieSecure),
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// unsetSessionCookie expires the session cookie
func unsetSessionCookie(w http.ResponseWriter, r *http.Request, a *app.App) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure(r, a.CookieSecure),
		SameSite: http.SameSiteLaxMode,
	})
}
