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

// Package testutils provides utilities used in the tests of the commands
package testutils

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/config"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/log"
)

// Response is a canned response of the stub API
type Response struct {
	Status int
	Body   string
}

// Request is a request received by the stub API
type Request struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

// APIStub is a server answering the routes it is given with canned JSON
// responses. It records every request.
type APIStub struct {
	*httptest.Server

	mu       sync.Mutex
	routes   map[string]Response
	requests []Request
}

// NewAPIStub starts a stub API. Routes are keyed by method and path, as in
// "GET /manutenzioni/1". The server is closed when the test ends.
func NewAPIStub(t *testing.T, routes map[string]Response) *APIStub {
	s := &APIStub{routes: routes}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)

	return s
}

func (s *APIStub) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.RequestURI(),
		Body:   string(body),
		Auth:   r.Header.Get("Authorization"),
	})
	resp, ok := s.routes[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"Not found"}`))
		return
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	w.Write([]byte(resp.Body))
}

// Requests returns the requests received so far
func (s *APIStub) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	ret := make([]Request, len(s.requests))
	copy(ret, s.requests)

	return ret
}

// Find returns the last request with the given method and path
func (s *APIStub) Find(method, path string) (Request, bool) {
	reqs := s.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}

	return Request{}, false
}

// SetupCtx returns a test context logged in to the stub API
func SetupCtx(t *testing.T, s *APIStub) context.QRepairCtx {
	ctx := context.InitTestCtx(t)
	ctx.APIEndpoint = s.URL
	ctx.SessionKey = "signed-key"
	ctx.Editor = "vi"

	cf := config.Config{Editor: ctx.Editor, APIEndpoint: ctx.APIEndpoint, SessionKey: ctx.SessionKey}
	if err := config.Write(ctx, cf); err != nil {
		t.Fatal(errors.Wrap(err, "writing config"))
	}

	return ctx
}

// CaptureLog redirects the messages of the commands to a buffer until the test ends
func CaptureLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	restore := log.SetOutput(&buf)
	t.Cleanup(restore)

	return &buf
}
