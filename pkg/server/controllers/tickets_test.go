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
	"fmt"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/assert"
	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/testutils"
)

type ticketTestPayload struct {
	Nome         *string `json:"nome,omitempty" schema:"nome"`
	Tel          *string `json:"tel,omitempty" schema:"tel"`
	Modello      *string `json:"modello,omitempty" schema:"modello"`
	SerialNumber *string `json:"serialNumber,omitempty" schema:"serialNumber"`
	Data         *string `json:"data,omitempty" schema:"data"`
	URL          *string `json:"url,omitempty" schema:"url"`
	Lingua       *string `json:"lingua,omitempty" schema:"lingua"`
	Scadenza     *string `json:"scadenza,omitempty" schema:"scadenza"`
}

func mustGetTicket(t *testing.T, s *database.Store, id int) database.Ticket {
	var ticket database.Ticket
	testutils.MustExec(t, s.DB.Where("id = ?", id).First(&ticket), "finding ticket")

	return ticket
}

func countTickets(t *testing.T, s *database.Store) int64 {
	var count int64
	testutils.MustExec(t, s.DB.Model(&database.Ticket{}).Count(&count), "counting tickets")

	return count
}

func TestTickets_requireAuth(t *testing.T) {
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/api/manutenzioni"},
		{"POST", "/api/manutenzioni"},
		{"DELETE", "/api/manutenzioni"},
		{"PUT", "/api/manutenzioni/1"},
		{"PUT", "/api/manutenzioni/1/data"},
		{"DELETE", "/api/manutenzioni/1"},
		{"GET", "/api/search/abc"},
		{"GET", "/api/stats"},
		{"GET", "/api/count"},
		{"GET", "/api/export"},
		{"POST", "/api/import"},
	}

	a, _ := setupTestApp(t)
	ticket := testutils.SetupTicketData(a.Store, database.Ticket{Nome: "Mario", Tel: "333", Data: "2025-01-01"})
	server := MustNewServer(t, &a)
	defer server.Close()

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s %s", tc.method, tc.path), func(t *testing.T) {
			req := testutils.MakeJSONReq(server.URL, tc.method, tc.path, `{"nome":"x","tel":"1","data":"2025-01-01","records":[]}`)
			res := testutils.HTTPDo(t, req)

			assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "")

			body := decodeEnvelope(t, res)
			assert.Equal(t, body.Success, false, "success mismatch")
			assert.Equal(t, body.Error, "Non autenticato", "error mismatch")
		})
	}

	got := mustGetTicket(t, a.Store, ticket.ID)
	assert.Equal(t, got.Nome, "Mario", "ticket should be untouched")
	assert.Equal(t, countTickets(t, a.Store), int64(1), "ticket count mismatch")
}

func TestTicketsIndex(t *testing.T) {
	// Setup
	a, user := setupTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	t1 := testutils.SetupTicketData(a.Store, database.Ticket{Nome: "Mario", Tel: "333", Data: "2025-01-01", DataCreazione: "2025-01-01T00:00:00.000Z"})
	t2 := testutils.SetupTicketData(a.Store, database.Ticket{Nome: "Anna", Tel: "444", Data: "2025-02-01", DataCreazione: "2025-02-01T00:00:00.000Z"})

	// Execute
	req := testutils.MakeReq(server.URL, "GET", "/api/manutenzioni", "")
	res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	body := decodeEnvelope(t, res)
	assert.Equal(t, body.Success, true, "success mismatch")

	var tickets []database.Ticket
	decodeData(t, body, &tickets)
	assert.DeepEqual(t, tickets, []database.Ticket{t2, t1}, "tickets mismatch")
}

func TestTicketsShow(t *testing.T) {
	a, _ := setupTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	ticket := testutils.SetupTicketData(a.Store, database.Ticket{Nome: "Mario", Tel: "333", Data: "2025-01-01", URL: "https://example.com/view?id=1"})

	t.Run("public", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "GET", fmt.Sprintf("/api/manutenzioni/%d", ticket.ID), "")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		body := decodeEnvelope(t, res)
		var got database.Ticket
		decodeData(t, body, &got)
		assert.DeepEqual(t, got, ticket, "ticket mismatch")
	})

	testCases := []string{"999", "abc", "0"}
	for _, id := range testCases {
		t.Run(fmt.Sprintf("not found %s", id), func(t *testing.T) {
			req := testutils.MakeReq(server.URL, "GET", "/api/manutenzioni/"+id, "")
			res := testutils.HTTPDo(t, req)

			assert.StatusCodeEquals(t, res, http.StatusNotFound, "")

			body := decodeEnvelope(t, res)
			assert.Equal(t, body.Error, "Record non trovato", "error mismatch")
		})
	}
}

func TestTicketsCreate(t *testing.T) {
	testutils.RunForJSONAndForm(t, "all fields", func(t *testing.T, target testutils.BodyType) {
		// Setup
		a, user := setupTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		// Execute
		req := testutils.MakeBodyReq(t, target, server.URL, "POST", "/api/manutenzioni", testutils.PayloadWrapper{
			Data: ticketTestPayload{
				Nome:         testutils.StrPtr("Mario"),
				Tel:          testutils.StrPtr("333"),
				Modello:      testutils.StrPtr("X1"),
				SerialNumber: testutils.StrPtr("SN-9"),
				Data:         testutils.StrPtr("2025-03-01"),
				URL:          testutils.StrPtr("https://example.com/view"),
				Lingua:       testutils.StrPtr("en"),
				Scadenza:     testutils.StrPtr("2026-03-01"),
			},
		})
		res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

		// Test
		assert.StatusCodeEquals(t, res, http.StatusCreated, "")

		body := decodeEnvelope(t, res)
		var created database.Ticket
		decodeData(t, body, &created)

		got := mustGetTicket(t, a.Store, created.ID)
		assert.DeepEqual(t, got, created, "stored ticket mismatch")
		assert.Equal(t, got.Nome, "Mario", "Nome mismatch")
		assert.Equal(t, got.SerialNumber, "SN-9", "SerialNumber mismatch")
		assert.Equal(t, got.URL, fmt.Sprintf("https://example.com/view?id=%d", got.ID), "URL mismatch")
		assert.Equal(t, got.Lingua, "en", "Lingua mismatch")
		assert.Equal(t, *got.Scadenza, "2026-03-01", "Scadenza mismatch")
		assert.Equal(t, got.DataCreazione, "2025-03-14T10:30:00.000Z", "DataCreazione mismatch")
	})

	testCases := []struct {
		name    string
		payload ticketTestPayload
	}{
		{name: "missing nome", payload: ticketTestPayload{Tel: testutils.StrPtr("333"), Data: testutils.StrPtr("2025-03-01")}},
		{name: "missing tel", payload: ticketTestPayload{Nome: testutils.StrPtr("Mario"), Data: testutils.StrPtr("2025-03-01")}},
		{name: "missing data", payload: ticketTestPayload{Nome: testutils.StrPtr("Mario"), Tel: testutils.StrPtr("333")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Setup
			a, user := setupTestApp(t)
			server := MustNewServer(t, &a)
			defer server.Close()

			// Execute
			req := testutils.MakeBodyReq(t, testutils.BodyJSON, server.URL, "POST", "/api/manutenzioni", testutils.PayloadWrapper{Data: tc.payload})
			res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

			// Test
			assert.StatusCodeEquals(t, res, http.StatusBadRequest, "")

			body := decodeEnvelope(t, res)
			assert.Equal(t, body.Error, "Campi obbligatori: nome, tel, data", "error mismatch")
			assert.Equal(t, countTickets(t, a.Store), int64(0), "no ticket should be created")
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		a, user := setupTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		req := testutils.MakeJSONReq(server.URL, "POST", "/api/manutenzioni", `{"nome":`)
		res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

		assert.StatusCodeEquals(t, res, http.StatusBadRequest, "")
	})
}

func TestTicketsUpdate(t *testing.T) {
	t.Run("replaces fields", func(t *testing.T) {
		// Setup
		a, user := setupTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		ticket := testutils.SetupTicketData(a.Store, database.Ticket{
			Nome:          "Mario",
			Tel:           "333",
			Modello:       "X1",
			SerialNumber:  "SN-1",
			Data:          "2025-01-01",
			DataCreazione: "2025-01-01T00:00:00.000Z",
			URL:           "https://example.com/view?id=1",
			Lingua:        "de",
		})

		// Execute
		req := testutils.MakeJSONReq(server.URL, "PUT", fmt.Sprintf("/api/manutenzioni/%d", ticket.ID), `{"nome":"Anna","tel":"444","data":"2025-02-01"}`)
		res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

		// Test
		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		body := decodeEnvelope(t, res)
		assert.Equal(t, body.Success, true, "success mismatch")
		assert.Equal(t, body.Message, "Record aggiornato", "message mismatch")

		got := mustGetTicket(t, a.Store, ticket.ID)
		assert.Equal(t, got.Nome, "Anna", "Nome mismatch")
		assert.Equal(t, got.Tel, "444", "Tel mismatch")
		assert.Equal(t, got.Data, "2025-02-01", "Data mismatch")
		assert.Equal(t, got.Modello, "", "Modello mismatch")
		assert.Equal(t, got.SerialNumber, "", "SerialNumber mismatch")
		assert.Equal(t, got.URL, "", "URL mismatch")
		assert.Equal(t, got.Lingua, "it", "Lingua mismatch")
		assert.Equal(t, got.DataCreazione, "2025-01-01T00:00:00.000Z", "DataCreazione should be kept")
	})

	t.Run("not found", func(t *testing.T) {
		a, user := setupTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		req := testutils.MakeJSONReq(server.URL, "PUT", "/api/manutenzioni/42", `{"nome":"Anna","tel":"444","data":"2025-02-01"}`)
		res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

		assert.StatusCodeEquals(t, res, http.StatusNotFound, "")

		body := decodeEnvelope(t, res)
		assert.Equal(t, body.Error, "Record non trovato", "error mismatch")
	})

	t.Run("missing fields", func(t *testing.T) {
		a, user := setupTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		ticket := testutils.SetupTicketData(a.Store, database.Ticket{Nome: "Mario", Tel: "333", Data: "2025-01-01"})

		req := testutils.MakeJSONReq(server.URL, "PUT", fmt.Sprintf("/api/manutenzioni/%d", ticket.ID), `{"nome":"Anna"}`)
		res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

		assert.StatusCodeEquals(t, res, http.StatusBadRequest, "")

		got := mustGetTicket(t, a.Store, ticket.ID)
		assert.Equal(t, got.Nome, "Mario", "ticket should be untouched")
	})
}

func TestTicketsUpdateDate(t *testing.T) {
	testCases := []struct {
		name             string
		path             string
		payload          string
		expectedStatus   int
		expectedData     string
		expectedScadenza string
	}{
		{
			name:             "date and expiry",
			payload:          `{"data":"2025-06-01","scadenza":"2026-06-01"}`,
			expectedStatus:   http.StatusOK,
			expectedData:     "2025-06-01",
			expectedScadenza: "2026-06-01",
		},
		{
			name:             "date only keeps the expiry",
			payload:          `{"data":"2025-06-01"}`,
			expectedStatus:   http.StatusOK,
			expectedData:     "2025-06-01",
			expectedScadenza: "2025-12-31",
		},
		{
			name:             "missing date",
			payload:          `{"scadenza":"2026-06-01"}`,
			expectedStatus:   http.StatusBadRequest,
			expectedData:     "2025-01-01",
			expectedScadenza: "2025-12-31",
		},
		{
			name:             "not found",
			path:             "/api/manutenzioni/999/data",
			payload:          `{"data":"2025-06-01"}`,
			expectedStatus:   http.StatusNotFound,
			expectedData:     "2025-01-01",
			expectedScadenza: "2025-12-31",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Setup
			a, user := setupTestApp(t)
			server := MustNewServer(t, &a)
			defer server.Close()

			ticket := testutils.SetupTicketData(a.Store, database.Ticket{
				Nome:     "Mario",
				Tel:      "333",
				Data:     "2025-01-01",
				URL:      "https://example.com/view?id=1",
				Scadenza: testutils.StrPtr("2025-12-31"),
			})

			path := tc.path
			if path == "" {
				path = fmt.Sprintf("/api/manutenzioni/%d/data", ticket.ID)
			}

			// Execute
			req := testutils.MakeJSONReq(server.URL, "PUT", path, tc.payload)
			res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

			// Test
			assert.StatusCodeEquals(t, res, tc.expectedStatus, "")

			body := decodeEnvelope(t, res)
			if tc.expectedStatus == http.StatusOK {
				var returned database.Ticket
				decodeData(t, body, &returned)
				assert.Equal(t, returned.Data, tc.expectedData, "returned data mismatch")
				assert.Equal(t, returned.URL, "https://example.com/view?id=1", "returned url mismatch")
			}

			got := mustGetTicket(t, a.Store, ticket.ID)
			assert.Equal(t, got.Data, tc.expectedData, "Data mismatch")
			assert.Equal(t, *got.Scadenza, tc.expectedScadenza, "Scadenza mismatch")
			assert.Equal(t, got.URL, "https://example.com/view?id=1", "URL should be untouched")
		})
	}
}

func TestTicketsDelete(t *testing.T) {
	t.Run("existing", func(t *testing.T) {
		a, user := setupTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		ticket := testutils.SetupTicketData(a.Store, database.Ticket{Nome: "Mario", Tel: "333", Data: "2025-01-01"})
		testutils.SetupTicketData(a.Store, database.Ticket{Nome: "Anna", Tel: "444", Data: "2025-01-01"})

		req := testutils.MakeReq(server.URL, "DELETE", fmt.Sprintf("/api/manutenzioni/%d", ticket.ID), "")
		res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		body := decodeEnvelope(t, res)
		assert.Equal(t, body.Message, "Record eliminato", "message mismatch")
		assert.Equal(t, countTickets(t, a.Store), int64(1), "ticket count mismatch")
	})

	t.Run("not found", func(t *testing.T) {
		a, user := setupTestApp(t)
		server := MustNewServer(t, &a)
		defer server.Close()

		req := testutils.MakeReq(server.URL, "DELETE", "/api/manutenzioni/42", "")
		res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

		assert.StatusCodeEquals(t, res, http.StatusNotFound, "")

		body := decodeEnvelope(t, res)
		assert.Equal(t, body.Error, "Record non trovato", "error mismatch")
	})
}

func TestTicketsClear(t *testing.T) {
	// Setup
	a, user := setupTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	for i := 0; i < 3; i++ {
		testutils.SetupTicketData(a.Store, database.Ticket{Nome: fmt.Sprintf("n%d", i), Tel: "1", Data: "2025-01-01"})
	}

	// Execute
	req := testutils.MakeReq(server.URL, "DELETE", "/api/manutenzioni", "")
	res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	body := decodeEnvelope(t, res)
	assert.Equal(t, body.Message, "3 record eliminati", "message mismatch")
	assert.Equal(t, countTickets(t, a.Store), int64(0), "ticket count mismatch")
}

func TestTicketsSearch(t *testing.T) {
	// Setup
	a, user := setupTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	mario := testutils.SetupTicketData(a.Store, database.Ticket{Nome: "Mario Rossi", Tel: "333", Data: "2025-01-01"})
	testutils.SetupTicketData(a.Store, database.Ticket{Nome: "Anna", Tel: "444", Modello: "mario", Data: "2025-01-01"})

	// Execute
	req := testutils.MakeReq(server.URL, "GET", "/api/search/Mario", "")
	res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	body := decodeEnvelope(t, res)
	var tickets []database.Ticket
	decodeData(t, body, &tickets)
	assert.DeepEqual(t, tickets, []database.Ticket{mario}, "result mismatch")
}

func TestTicketsStats(t *testing.T) {
	// Setup
	a, user := setupTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	testutils.SetupTicketData(a.Store, database.Ticket{Nome: "a", Tel: "1", Modello: "X1", Data: "2025-03-01", DataCreazione: "2025-03-02T00:00:00.000Z"})
	testutils.SetupTicketData(a.Store, database.Ticket{Nome: "b", Tel: "1", Modello: "X1", Data: "2025-03-01", DataCreazione: "2025-03-05T00:00:00.000Z"})
	testutils.SetupTicketData(a.Store, database.Ticket{Nome: "c", Tel: "2", Modello: "Y2", Data: "2025-01-01", DataCreazione: "2025-01-05T00:00:00.000Z"})

	// Execute
	req := testutils.MakeReq(server.URL, "GET", "/api/stats", "")
	res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	body := decodeEnvelope(t, res)
	var stats app.Stats
	decodeData(t, body, &stats)
	assert.DeepEqual(t, stats, app.Stats{
		Total:         3,
		ThisMonth:     2,
		UniqueClients: 2,
		TopModels: []app.ModelCount{
			{Modello: "X1", Count: 2},
			{Modello: "Y2", Count: 1},
		},
	}, "stats mismatch")
}

func TestTicketsCount(t *testing.T) {
	// Setup
	a, user := setupTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	testutils.SetupTicketData(a.Store, database.Ticket{Nome: "a", Tel: "1", Data: "2025-01-01"})
	testutils.SetupTicketData(a.Store, database.Ticket{Nome: "b", Tel: "2", Data: "2025-01-01"})

	// Execute
	req := testutils.MakeReq(server.URL, "GET", "/api/count", "")
	res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	body := decodeEnvelope(t, res)
	var count int64
	decodeData(t, body, &count)
	assert.Equal(t, count, int64(2), "count mismatch")
}

func TestTicketsExport(t *testing.T) {
	// Setup
	a, user := setupTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	ticket := testutils.SetupTicketData(a.Store, database.Ticket{Nome: "a", Tel: "1", Data: "2025-01-01", Scadenza: testutils.StrPtr("2026-01-01")})

	// Execute
	req := testutils.MakeReq(server.URL, "GET", "/api/export", "")
	res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	body := decodeEnvelope(t, res)
	var tickets []database.Ticket
	decodeData(t, body, &tickets)
	assert.DeepEqual(t, tickets, []database.Ticket{ticket}, "export mismatch")
}

func TestTicketsImport(t *testing.T) {
	testCases := []struct {
		name            string
		payload         string
		expectedStatus  int
		expectedMessage string
		expectedError   string
		expectedCount   int64
	}{
		{
			name:            "records",
			payload:         `{"records":[{"nome":"a","tel":"1","data":"2025-01-01","serialNumber":"SN","url":"https://example.com/view?nome=a"},{"nome":"b","tel":"2","data":"2025-01-02","client_id":3}]}`,
			expectedStatus:  http.StatusOK,
			expectedMessage: "2 record importati",
			expectedCount:   2,
		},
		{
			name:            "empty list",
			payload:         `{"records":[]}`,
			expectedStatus:  http.StatusOK,
			expectedMessage: "0 record importati",
			expectedCount:   0,
		},
		{
			name:           "not a list",
			payload:        `{"records":{"nome":"a"}}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Il campo records deve essere un array",
		},
		{
			name:           "missing records",
			payload:        `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Il campo records deve essere un array",
		},
		{
			name:           "empty body",
			payload:        "",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Il campo records deve essere un array",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Setup
			a, user := setupTestApp(t)
			server := MustNewServer(t, &a)
			defer server.Close()

			// Execute
			req := testutils.MakeJSONReq(server.URL, "POST", "/api/import", tc.payload)
			res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

			// Test
			assert.StatusCodeEquals(t, res, tc.expectedStatus, "")

			body := decodeEnvelope(t, res)
			assert.Equal(t, body.Message, tc.expectedMessage, "message mismatch")
			assert.Equal(t, body.Error, tc.expectedError, "error mismatch")
			assert.Equal(t, countTickets(t, a.Store), tc.expectedCount, "ticket count mismatch")
		})
	}
}

func TestTicketsImport_keepsFields(t *testing.T) {
	a, user := setupTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeJSONReq(server.URL, "POST", "/api/import", `{"records":[{"nome":"a","tel":"1","data":"2025-01-01","serialNumber":"SN","lingua":"de","scadenza":"2026-01-01","client_id":3,"url":"https://example.com/view?nome=a","dataCreazione":"2024-01-01T00:00:00.000Z"}]}`)
	res := testutils.HTTPAuthDo(t, a.Sessions, a.CookieCodec, req, user)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var got database.Ticket
	testutils.MustExec(t, a.Store.DB.First(&got), "finding ticket")
	assert.Equal(t, got.SerialNumber, "SN", "SerialNumber mismatch")
	assert.Equal(t, got.Lingua, "de", "Lingua mismatch")
	assert.Equal(t, *got.Scadenza, "2026-01-01", "Scadenza mismatch")
	assert.Equal(t, *got.ClientID, 3, "ClientID mismatch")
	assert.Equal(t, got.URL, fmt.Sprintf("https://example.com/view?id=%d", got.ID), "URL should point at the new ticket")
	assert.Equal(t, got.DataCreazione, "2024-01-01T00:00:00.000Z", "DataCreazione mismatch")
}

func TestTicketsQRCode(t *testing.T) {
	a, _ := setupTestApp(t)
	server := MustNewServer(t, &a)
	defer server.Close()

	withURL := testutils.SetupTicketData(a.Store, database.Ticket{Nome: "a", Tel: "1", Data: "2025-01-01", URL: "https://example.com/view?id=1"})
	withoutURL := testutils.SetupTicketData(a.Store, database.Ticket{Nome: "b", Tel: "2", Data: "2025-01-01"})

	testCases := []struct {
		name         string
		query        string
		expectedSize int
	}{
		{name: "default size", query: "", expectedSize: 256},
		{name: "custom size", query: "?size=300", expectedSize: 300},
		{name: "too small", query: "?size=10", expectedSize: 64},
		{name: "too large", query: "?size=5000", expectedSize: 1024},
		{name: "invalid", query: "?size=abc", expectedSize: 256},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutils.MakeReq(server.URL, "GET", fmt.Sprintf("/api/manutenzioni/%d/qrcode%s", withURL.ID, tc.query), "")
			res := testutils.HTTPDo(t, req)
			defer res.Body.Close()

			assert.StatusCodeEquals(t, res, http.StatusOK, "")
			assert.Equal(t, res.Header.Get("Content-Type"), "image/png", "content type mismatch")

			img, err := png.Decode(res.Body)
			if err != nil {
				t.Fatal(errors.Wrap(err, "decoding png"))
			}
			assert.Equal(t, img.Bounds().Dx(), tc.expectedSize, "width mismatch")
			assert.Equal(t, img.Bounds().Dy(), tc.expectedSize, "height mismatch")
		})
	}

	t.Run("long url below its natural size", func(t *testing.T) {
		long := testutils.SetupTicketData(a.Store, database.Ticket{
			Nome: "c",
			Tel:  "3",
			Data: "2025-01-01",
			URL:  "https://example.com/" + strings.Repeat("manutenzione/", 30) + "view.html?id=1",
		})

		req := testutils.MakeReq(server.URL, "GET", fmt.Sprintf("/api/manutenzioni/%d/qrcode?size=64", long.ID), "")
		res := testutils.HTTPDo(t, req)
		defer res.Body.Close()

		assert.StatusCodeEquals(t, res, http.StatusOK, "")

		img, err := png.Decode(res.Body)
		if err != nil {
			t.Fatal(errors.Wrap(err, "decoding png"))
		}
		assert.Equal(t, img.Bounds().Dx() > 64, true, "width should grow to fit the code")
		assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy(), "image should be square")
	})

	t.Run("without url", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "GET", fmt.Sprintf("/api/manutenzioni/%d/qrcode", withoutURL.ID), "")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusNotFound, "")

		body := decodeEnvelope(t, res)
		assert.Equal(t, body.Error, "URL non disponibile", "error mismatch")
	})

	t.Run("unknown ticket", func(t *testing.T) {
		req := testutils.MakeReq(server.URL, "GET", "/api/manutenzioni/999/qrcode", "")
		res := testutils.HTTPDo(t, req)

		assert.StatusCodeEquals(t, res, http.StatusNotFound, "")
	})
}
