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
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"strconv"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/log"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// NewTickets creates a new Tickets controller.
func NewTickets(app *app.App) *Tickets {
	return &Tickets{
		app: app,
	}
}

// Tickets is a controller for the maintenance tickets
type Tickets struct {
	app *app.App
}

type ticketPayload struct {
	Nome          string  `json:"nome" schema:"nome"`
	Tel           string  `json:"tel" schema:"tel"`
	Modello       string  `json:"modello" schema:"modello"`
	SerialNumber  string  `json:"serialNumber" schema:"serialNumber"`
	Data          string  `json:"data" schema:"data"`
	DataCreazione string  `json:"dataCreazione" schema:"dataCreazione"`
	URL           string  `json:"url" schema:"url"`
	Lingua        string  `json:"lingua" schema:"lingua"`
	Scadenza      *string `json:"scadenza" schema:"scadenza"`
	ClientID      *int    `json:"client_id" schema:"client_id"`
}

func (p ticketPayload) params() app.TicketParams {
	return app.TicketParams{
		Nome:          p.Nome,
		Tel:           p.Tel,
		Modello:       p.Modello,
		SerialNumber:  p.SerialNumber,
		Data:          p.Data,
		DataCreazione: p.DataCreazione,
		URL:           p.URL,
		Lingua:        p.Lingua,
		Scadenza:      p.Scadenza,
		ClientID:      p.ClientID,
	}
}

type datePayload struct {
	Data     string  `json:"data" schema:"data"`
	Scadenza *string `json:"scadenza" schema:"scadenza"`
}

type importPayload struct {
	Records json.RawMessage `json:"records"`
}

// Index handles GET /api/manutenzioni
func (t *Tickets) Index(w http.ResponseWriter, r *http.Request) {
	tickets, err := t.app.GetTickets()
	if err != nil {
		handleJSONError(w, err, "getting tickets")
		return
	}

	respondData(w, http.StatusOK, tickets)
}

// Show handles GET /api/manutenzioni/{id}
func (t *Tickets) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		handleJSONError(w, app.ErrTicketNotFound, "parsing id")
		return
	}

	ticket, err := t.app.GetTicket(id)
	if err != nil {
		handleJSONError(w, err, "getting ticket")
		return
	}

	respondData(w, http.StatusOK, ticket)
}

// Create handles POST /api/manutenzioni
func (t *Tickets) Create(w http.ResponseWriter, r *http.Request) {
	var payload ticketPayload
	if err := parseRequestData(r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	params := payload.params()
	if err := app.ValidateTicket(params); err != nil {
		handleJSONError(w, err, "validating ticket")
		return
	}

	ticket, err := t.app.AddTicket(params)
	if err != nil {
		handleJSONError(w, err, "creating ticket")
		return
	}

	respondData(w, http.StatusCreated, ticket)
}

// Update handles PUT /api/manutenzioni/{id}
func (t *Tickets) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		handleJSONError(w, app.ErrTicketNotFound, "parsing id")
		return
	}

	var payload ticketPayload
	if err := parseRequestData(r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	params := payload.params()
	if err := app.ValidateTicket(params); err != nil {
		handleJSONError(w, err, "validating ticket")
		return
	}

	if err := t.app.UpdateTicket(id, params); err != nil {
		handleJSONError(w, err, "updating ticket")
		return
	}

	respondMessage(w, "Record aggiornato")
}

// UpdateDate handles PUT /api/manutenzioni/{id}/data
func (t *Tickets) UpdateDate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		handleJSONError(w, app.ErrTicketNotFound, "parsing id")
		return
	}

	var payload datePayload
	if err := parseRequestData(r, &payload); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	ticket, err := t.app.UpdateTicketDate(id, payload.Data, payload.Scadenza)
	if err != nil {
		handleJSONError(w, err, "updating ticket date")
		return
	}

	respondData(w, http.StatusOK, ticket)
}

// Delete handles DELETE /api/manutenzioni/{id}
func (t *Tickets) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		handleJSONError(w, app.ErrTicketNotFound, "parsing id")
		return
	}

	deleted, err := t.app.DeleteTicket(id)
	if err != nil {
		handleJSONError(w, err, "deleting ticket")
		return
	}
	if !deleted {
		handleJSONError(w, app.ErrTicketNotFound, "deleting ticket")
		return
	}

	respondMessage(w, "Record eliminato")
}

// Clear handles DELETE /api/manutenzioni
func (t *Tickets) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := t.app.ClearTickets()
	if err != nil {
		handleJSONError(w, err, "clearing tickets")
		return
	}

	respondMessage(w, fmt.Sprintf("%d record eliminati", n))
}

// Search handles GET /api/search/{query}
func (t *Tickets) Search(w http.ResponseWriter, r *http.Request) {
	query := mux.Vars(r)["query"]

	tickets, err := t.app.SearchTickets(query)
	if err != nil {
		handleJSONError(w, err, "searching tickets")
		return
	}

	respondData(w, http.StatusOK, tickets)
}

// Stats handles GET /api/stats
func (t *Tickets) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := t.app.GetStats()
	if err != nil {
		handleJSONError(w, err, "getting stats")
		return
	}

	respondData(w, http.StatusOK, stats)
}

// Count handles GET /api/count
func (t *Tickets) Count(w http.ResponseWriter, r *http.Request) {
	count, err := t.app.CountTickets()
	if err != nil {
		handleJSONError(w, err, "counting tickets")
		return
	}

	respondData(w, http.StatusOK, count)
}

// Export handles GET /api/export
func (t *Tickets) Export(w http.ResponseWriter, r *http.Request) {
	tickets, err := t.app.ExportTickets()
	if err != nil {
		handleJSONError(w, err, "exporting tickets")
		return
	}

	respondData(w, http.StatusOK, tickets)
}

// parseRecords decodes the records of an import payload. A missing field or
// anything but a list is rejected.
func parseRecords(raw json.RawMessage) ([]app.TicketParams, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, app.ErrRecordsNotArray
	}

	var payloads []ticketPayload
	if err := json.Unmarshal(trimmed, &payloads); err != nil {
		return nil, errors.Wrap(badRequestError{err}, "decoding records")
	}

	records := make([]app.TicketParams, 0, len(payloads))
	for _, p := range payloads {
		records = append(records, p.params())
	}

	return records, nil
}

// Import handles POST /api/import
func (t *Tickets) Import(w http.ResponseWriter, r *http.Request) {
	var payload importPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if !errors.As(err, &maxErr) {
			err = errors.Wrap(badRequestError{err}, "decoding json")
		}

		handleJSONError(w, err, "parsing payload")
		return
	}

	records, err := parseRecords(payload.Records)
	if err != nil {
		handleJSONError(w, err, "parsing records")
		return
	}

	n, err := t.app.ImportTickets(records)
	if err != nil {
		handleJSONError(w, err, "importing tickets")
		return
	}

	log.WithFields(log.Fields{
		"count": n,
	}).Info("Tickets imported")

	respondMessage(w, fmt.Sprintf("%d record importati", n))
}

// qrSize returns the size requested by the query, or the default when it is
// missing or not a number. It is clamped to the supported range.
func qrSize(r *http.Request) int {
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size <= 0 {
		return defaultQRSize
	}

	if size < minQRSize {
		return minQRSize
	}
	if size > maxQRSize {
		return maxQRSize
	}

	return size
}

// QRCode handles GET /api/manutenzioni/{id}/qrcode. It renders the url of the
// ticket as a PNG.
func (t *Tickets) QRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		handleJSONError(w, app.ErrTicketNotFound, "parsing id")
		return
	}

	ticket, err := t.app.GetTicket(id)
	if err != nil {
		handleJSONError(w, err, "getting ticket")
		return
	}
	if ticket.URL == "" {
		handleJSONError(w, app.ErrTicketURLMissing, "encoding qr code")
		return
	}

	code, err := qr.Encode(ticket.URL, qr.M, qr.Auto)
	if err != nil {
		handleJSONError(w, errors.Wrap(err, "encoding qr code"), "encoding qr code")
		return
	}

	// a code cannot be scaled below its own width
	size := max(qrSize(r), code.Bounds().Dx())
	code, err = barcode.Scale(code, size, size)
	if err != nil {
		handleJSONError(w, errors.Wrap(err, "scaling qr code"), "scaling qr code")
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		handleJSONError(w, errors.Wrap(err, "writing png"), "writing png")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
