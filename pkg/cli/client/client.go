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

// Package client provides the calls to the qrepair API and the data
// structures of its responses
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/consts"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"golang.org/x/time/rate"
)

var (
	// ErrNotLoggedIn is returned by the calls that need a session when there is none
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrContentTypeMismatch is returned when the server responds with an unexpected Content-Type
	ErrContentTypeMismatch = errors.New("content type mismatch")
	// ErrSessionCookieMissing is returned when a successful login carries no session cookie
	ErrSessionCookieMissing = errors.New("session cookie missing from the response")
)

// APIError is a failure reported by the server, either with an unsuccessful
// envelope or with an error status
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error is a 404 Not Found error
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized returns true if the error is a 401 Unauthorized error
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

const (
	contentTypeJSON = "application/json"
	contentTypePNG  = "image/png"
)

// requestOptions contains options for requests
type requestOptions struct {
	// ExpectedContentType is the Content-Type that the client is expecting from the server
	ExpectedContentType string
	// Authorized requests fail with ErrNotLoggedIn without a session key
	Authorized bool
}

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 20
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 40
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting. Redirects
// are not followed, so that a misconfigured endpoint surfaces as an error.
func NewRateLimitedHTTPClient() *http.Client {
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func getHTTPClient(ctx context.QRepairCtx) *http.Client {
	if ctx.HTTPClient != nil {
		return ctx.HTTPClient
	}

	return &http.Client{}
}

func getReq(ctx context.QRepairCtx, method, path string, body io.Reader) (*http.Request, error) {
	endpoint := strings.TrimRight(ctx.APIEndpoint, "/") + path
	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("User-Agent", fmt.Sprintf("qrepair-cli/%s", ctx.Version))
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	if ctx.SessionKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", ctx.SessionKey))
	}

	return req, nil
}

func hasContentType(res *http.Response, expected string) bool {
	return strings.HasPrefix(res.Header.Get("Content-Type"), expected)
}

// checkRespErr turns an error status without a JSON body into an APIError
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 || hasContentType(res, contentTypeJSON) {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	return &APIError{
		StatusCode: res.StatusCode,
		Message:    strings.TrimRight(string(body), "\n"),
	}
}

func checkContentType(res *http.Response, expected string) error {
	if !hasContentType(res, expected) {
		got := res.Header.Get("Content-Type")
		return errors.Wrapf(ErrContentTypeMismatch, "got: '%s' want: '%s'. Did you configure your endpoint correctly?", got, expected)
	}

	return nil
}

// doReq does a http request to the given path in the api endpoint. The
// payload, if any, is sent as JSON. The caller closes the body of the response.
func doReq(ctx context.QRepairCtx, method, path string, payload interface{}, options requestOptions) (*http.Response, error) {
	if options.Authorized && ctx.SessionKey == "" {
		return nil, ErrNotLoggedIn
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "marshaling payload")
		}
		body = bytes.NewReader(b)
	}

	req, err := getReq(ctx, method, path, body)
	if err != nil {
		return nil, errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	res, err := getHTTPClient(ctx).Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "making http request")
	}

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err := checkRespErr(res); err != nil {
		res.Body.Close()
		return nil, errors.Wrap(err, "server responded with an error")
	}

	expected := options.ExpectedContentType
	if expected == "" {
		expected = contentTypeJSON
	}
	if expected != contentTypeJSON && hasContentType(res, contentTypeJSON) {
		// a binary endpoint reports its failures in the JSON envelope
		if _, err := decodeEnvelope(res); err != nil {
			return nil, err
		}

		return nil, errors.Wrap(ErrContentTypeMismatch, "got a JSON body")
	}
	if err := checkContentType(res, expected); err != nil {
		res.Body.Close()
		return nil, errors.Wrap(err, "unexpected Content-Type")
	}

	return res, nil
}

// envelope is the body of every JSON response of the API
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// decodeEnvelope decodes the body of res and closes it. An unsuccessful
// envelope becomes an APIError carrying the status of the response.
func decodeEnvelope(res *http.Response) (envelope, error) {
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return env, errors.Wrap(err, "decoding the response")
	}

	if !env.Success {
		return env, &APIError{
			StatusCode: res.StatusCode,
			Message:    env.Error,
		}
	}

	return env, nil
}

// call performs a JSON request and decodes the data of the envelope into dest,
// unless dest is nil. It returns the message of the envelope.
func call(ctx context.QRepairCtx, method, path string, payload, dest interface{}) (string, error) {
	res, err := doReq(ctx, method, path, payload, requestOptions{Authorized: true})
	if err != nil {
		return "", err
	}

	env, err := decodeEnvelope(res)
	if err != nil {
		return "", err
	}

	if dest != nil {
		if err := json.Unmarshal(env.Data, dest); err != nil {
			return "", errors.Wrap(err, "unmarshalling the data")
		}
	}

	return env.Message, nil
}

// Identity is the user a session belongs to
type Identity struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Nome     string `json:"nome"`
}

// LoginResp is the result of a successful login
type LoginResp struct {
	User       Identity
	SessionKey string
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func findSessionCookie(res *http.Response) (string, bool) {
	for _, c := range res.Cookies() {
		if c.Name == consts.SessionCookieName && c.Value != "" {
			return c.Value, true
		}
	}

	return "", false
}

// Login signs in and returns the signed session key from the session cookie.
// Wrong credentials come back as an APIError with the message of the server.
func Login(ctx context.QRepairCtx, username, password string) (LoginResp, error) {
	payload := loginPayload{
		Username: username,
		Password: password,
	}

	res, err := doReq(ctx, "POST", "/auth/login", payload, requestOptions{})
	if err != nil {
		return LoginResp{}, err
	}

	key, ok := findSessionCookie(res)

	env, err := decodeEnvelope(res)
	if err != nil {
		return LoginResp{}, err
	}
	if !ok {
		return LoginResp{}, ErrSessionCookieMissing
	}

	var user Identity
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return LoginResp{}, errors.Wrap(err, "unmarshalling the user")
	}

	return LoginResp{User: user, SessionKey: key}, nil
}

// Logout deletes the session on the server side
func Logout(ctx context.QRepairCtx) error {
	if _, err := call(ctx, "POST", "/auth/logout", nil, nil); err != nil {
		return errors.Wrap(err, "requesting logout")
	}

	return nil
}

// CheckResp is the response of the session check
type CheckResp struct {
	Authenticated bool      `json:"authenticated"`
	User          *Identity `json:"user"`
}

// Check reports whether the session key of the context is still valid
func Check(ctx context.QRepairCtx) (CheckResp, error) {
	var ret CheckResp

	res, err := doReq(ctx, "GET", "/auth/check", nil, requestOptions{})
	if err != nil {
		return ret, err
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(&ret); err != nil {
		return ret, errors.Wrap(err, "decoding the response")
	}

	return ret, nil
}
