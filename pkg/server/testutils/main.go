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

// Package testutils provides utilities used in tests
package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/helpers"
	"github.com/qrepair/qrepair/pkg/server/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens a store at the given path with the schema initialized
func InitDB(dbPath string) *database.Store {
	s, err := database.Open(database.Params{Driver: database.DriverSQLite, Path: dbPath})
	if err != nil {
		panic(errors.Wrap(err, "opening database"))
	}

	return s
}

// InitMemoryDB creates a store over an in-memory SQLite database with the schema initialized
func InitMemoryDB(t *testing.T) *database.Store {
	// Use file-based in-memory database with unique UUID per test to avoid sharing
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", MustUUID(t))
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	s, err := database.FromDB(db, database.DriverSQLite)
	if err != nil {
		t.Fatalf("failed to initialize in-memory database: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// MustUUID generates a UUID and fails the test on error
func MustUUID(t *testing.T) string {
	uuid, err := helpers.GenUUID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "Failed to generate UUID"))
	}
	return uuid
}

// SetupUserData creates and returns a new user with the given credentials for testing purposes.
// The password policy is not applied.
func SetupUserData(s *database.Store, username, password, nome string) database.User {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(errors.Wrap(err, "Failed to hash password"))
	}

	user := database.User{
		Username:  strings.ToLower(username),
		Password:  string(hashedPassword),
		Nome:      nome,
		CreatedAt: "2025-01-01T00:00:00.000Z",
	}

	if err := s.DB.Save(&user).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare user"))
	}

	return user
}

// SetupTicketData inserts the given ticket as it is and returns it
func SetupTicketData(s *database.Store, ticket database.Ticket) database.Ticket {
	if ticket.DataCreazione == "" {
		ticket.DataCreazione = "2025-01-01T00:00:00.000Z"
	}
	if ticket.Lingua == "" {
		ticket.Lingua = "it"
	}

	if err := s.DB.Save(&ticket).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare ticket"))
	}

	return ticket
}

// SetupClientData inserts the given client as it is and returns it
func SetupClientData(s *database.Store, client database.Client) database.Client {
	if client.CreatedAt == "" {
		client.CreatedAt = "2025-01-01T00:00:00.000Z"
	}
	if client.Lingua == "" {
		client.Lingua = "it"
	}

	if err := s.DB.Save(&client).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare client"))
	}

	return client
}

// HTTPDo makes an HTTP request and returns a response
func HTTPDo(t *testing.T, req *http.Request) *http.Response {
	hc := http.Client{
		// Do not follow redirects.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	res, err := hc.Do(req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "performing http request"))
	}

	return res
}

// SetupSession starts a session for the given user and returns its signed token
func SetupSession(t *testing.T, sessions session.Store, codec *securecookie.SecureCookie, user database.User) string {
	sess, err := sessions.Create(session.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Nome:     user.Nome,
	}, session.DefaultTTL)
	if err != nil {
		t.Fatal(errors.Wrap(err, "Failed to prepare session"))
	}

	token, err := codec.Encode(session.CookieName, sess.Key)
	if err != nil {
		t.Fatal(errors.Wrap(err, "encoding session key"))
	}

	return token
}

// SetReqAuthHeader sets the authorization header in the given request for the given user
func SetReqAuthHeader(t *testing.T, sessions session.Store, codec *securecookie.SecureCookie, req *http.Request, user database.User) {
	token := SetupSession(t, sessions, codec, user)

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
}

// HTTPAuthDo makes an HTTP request with an appropriate authorization header for a user
func HTTPAuthDo(t *testing.T, sessions session.Store, codec *securecookie.SecureCookie, req *http.Request, user database.User) *http.Response {
	SetReqAuthHeader(t, sessions, codec, req, user)

	return HTTPDo(t, req)
}

// MakeReq makes an HTTP request and returns a response
func MakeReq(endpoint string, method, path, data string) *http.Request {
	u := fmt.Sprintf("%s%s", endpoint, path)

	req, err := http.NewRequest(method, u, strings.NewReader(data))

	if err != nil {
		panic(errors.Wrap(err, "constructing http request"))
	}

	return req
}

// MakeFormReq makes an HTTP request and returns a response
func MakeFormReq(endpoint, method, path string, data url.Values) *http.Request {
	req := MakeReq(endpoint, method, path, data.Encode())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req
}

// MakeJSONReq makes an HTTP request with a JSON body
func MakeJSONReq(endpoint, method, path, data string) *http.Request {
	req := MakeReq(endpoint, method, path, data)
	req.Header.Set("Content-Type", "application/json")

	return req
}

// MustExec fails the test if the given database query has error
func MustExec(t *testing.T, db *gorm.DB, message string) {
	if err := db.Error; err != nil {
		t.Fatalf("%s: %s", message, err.Error())
	}
}

// GetCookieByName returns a cookie with the given name
func GetCookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	var ret *http.Cookie

	for i := 0; i < len(cookies); i++ {
		if cookies[i].Name == name {
			ret = cookies[i]
			break
		}
	}

	return ret
}

// MustDecodeJSON decodes the JSON body of the given response into v. If the
// decoding fails, the test fails.
func MustDecodeJSON(t *testing.T, res *http.Response, v interface{}) {
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatal(errors.Wrap(err, "decoding response payload"))
	}
}

// BodyType is the encoding of a request body
type BodyType int

const (
	// BodyJSON is a JSON request body
	BodyJSON BodyType = iota
	// BodyForm is a form-encoded request body
	BodyForm
)

type bodyTest func(t *testing.T, target BodyType)

// RunForJSONAndForm runs the given test function with a JSON body and with a form body
func RunForJSONAndForm(t *testing.T, name string, runTest bodyTest) {
	t.Run(fmt.Sprintf("%s-json", name), func(t *testing.T) {
		runTest(t, BodyJSON)
	})

	t.Run(fmt.Sprintf("%s-form", name), func(t *testing.T) {
		runTest(t, BodyForm)
	})
}

// PayloadWrapper is a wrapper for a payload that can be converted to
// either URL form values or JSON
type PayloadWrapper struct {
	Data interface{}
}

// ToURLValues converts the non-nil pointer fields of the payload to form
// values, named after their schema tags
func (p PayloadWrapper) ToURLValues() url.Values {
	values := url.Values{}

	el := reflect.ValueOf(p.Data)
	if el.Kind() == reflect.Ptr {
		el = el.Elem()
	}
	iVal := el
	typ := iVal.Type()
	for i := 0; i < iVal.NumField(); i++ {
		fi := typ.Field(i)
		name := fi.Tag.Get("schema")
		if name == "" {
			name = fi.Name
		}

		if !iVal.Field(i).IsNil() {
			values.Set(name, fmt.Sprint(iVal.Field(i).Elem()))
		}
	}

	return values
}

// ToJSON encodes the payload as JSON
func (p PayloadWrapper) ToJSON(t *testing.T) string {
	b, err := json.Marshal(p.Data)
	if err != nil {
		t.Fatal(err)
	}

	return string(b)
}

// MakeBodyReq makes a request whose body encodes the payload as the given type
func MakeBodyReq(t *testing.T, target BodyType, endpoint, method, path string, p PayloadWrapper) *http.Request {
	if target == BodyForm {
		return MakeFormReq(endpoint, method, path, p.ToURLValues())
	}

	return MakeJSONReq(endpoint, method, path, p.ToJSON(t))
}

// StrPtr returns a pointer to the given string
func StrPtr(s string) *string {
	return &s
}
