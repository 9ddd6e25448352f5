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
	"fmt"
	"io"
	"net/url"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/context"
)

// Ticket is a maintenance record in a response
type Ticket struct {
	ID            int     `json:"id"`
	Nome          string  `json:"nome"`
	Tel           string  `json:"tel"`
	Modello       string  `json:"modello"`
	SerialNumber  string  `json:"serialNumber"`
	Data          string  `json:"data"`
	DataCreazione string  `json:"dataCreazione"`
	URL           string  `json:"url"`
	Lingua        string  `json:"lingua"`
	Scadenza      *string `json:"scadenza"`
	ClientID      *int    `json:"client_id"`
}

// TicketPayload is a payload for creating, replacing or importing a ticket
type TicketPayload struct {
	Nome          string  `json:"nome"`
	Tel           string  `json:"tel"`
	Modello       string  `json:"modello"`
	SerialNumber  string  `json:"serialNumber"`
	Data          string  `json:"data"`
	DataCreazione string  `json:"dataCreazione,omitempty"`
	URL           string  `json:"url,omitempty"`
	Lingua        string  `json:"lingua,omitempty"`
	Scadenza      *string `json:"scadenza,omitempty"`
	ClientID      *int    `json:"client_id,omitempty"`
}

// Payload returns the payload that recreates the ticket
func (t Ticket) Payload() TicketPayload {
	return TicketPayload{
		Nome:          t.Nome,
		Tel:           t.Tel,
		Modello:       t.Modello,
		SerialNumber:  t.SerialNumber,
		Data:          t.Data,
		DataCreazione: t.DataCreazione,
		URL:           t.URL,
		Lingua:        t.Lingua,
		Scadenza:      t.Scadenza,
		ClientID:      t.ClientID,
	}
}

// ModelCount is the number of tickets of a device model
type ModelCount struct {
	Modello string `json:"modello"`
	Count   int64  `json:"count"`
}

// Stats are aggregate figures over the tickets
type Stats struct {
	Total         int64        `json:"total"`
	ThisMonth     int64        `json:"thisMonth"`
	UniqueClients int64        `json:"uniqueClients"`
	TopModels     []ModelCount `json:"topModels"`
}

func ticketPath(id int) string {
	return fmt.Sprintf("/manutenzioni/%d", id)
}

// GetTickets gets every ticket, most recent first
func GetTickets(ctx context.QRepairCtx) ([]Ticket, error) {
	var ret []Ticket
	if _, err := call(ctx, "GET", "/manutenzioni", nil, &ret); err != nil {
		return nil, errors.Wrap(err, "getting tickets")
	}

	return ret, nil
}

// GetTicket gets a ticket by id
func GetTicket(ctx context.QRepairCtx, id int) (Ticket, error) {
	var ret Ticket
	if _, err := call(ctx, "GET", ticketPath(id), nil, &ret); err != nil {
		return ret, errors.Wrapf(err, "getting ticket %d", id)
	}

	return ret, nil
}

// AddTicket creates a ticket
func AddTicket(ctx context.QRepairCtx, p TicketPayload) (Ticket, error) {
	var ret Ticket
	if _, err := call(ctx, "POST", "/manutenzioni", p, &ret); err != nil {
		return ret, errors.Wrap(err, "creating ticket")
	}

	return ret, nil
}

// UpdateTicket replaces the fields of a ticket
func UpdateTicket(ctx context.QRepairCtx, id int, p TicketPayload) error {
	if _, err := call(ctx, "PUT", ticketPath(id), p, nil); err != nil {
		return errors.Wrapf(err, "updating ticket %d", id)
	}

	return nil
}

type datePayload struct {
	Data     string  `json:"data"`
	Scadenza *string `json:"scadenza,omitempty"`
}

// UpdateTicketDate sets the date of a ticket and, when given, its due date
func UpdateTicketDate(ctx context.QRepairCtx, id int, data string, scadenza *string) (Ticket, error) {
	var ret Ticket
	payload := datePayload{Data: data, Scadenza: scadenza}
	if _, err := call(ctx, "PUT", ticketPath(id)+"/data", payload, &ret); err != nil {
		return ret, errors.Wrapf(err, "updating the date of ticket %d", id)
	}

	return ret, nil
}

// DeleteTicket deletes a ticket
func DeleteTicket(ctx context.QRepairCtx, id int) error {
	if _, err := call(ctx, "DELETE", ticketPath(id), nil, nil); err != nil {
		return errors.Wrapf(err, "deleting ticket %d", id)
	}

	return nil
}

// ClearTickets deletes every ticket and returns the message of the server
func ClearTickets(ctx context.QRepairCtx) (string, error) {
	msg, err := call(ctx, "DELETE", "/manutenzioni", nil, nil)
	if err != nil {
		return "", errors.Wrap(err, "clearing tickets")
	}

	return msg, nil
}

// Search gets the tickets matching the query by name, phone, model or serial number
func Search(ctx context.QRepairCtx, query string) ([]Ticket, error) {
	var ret []Ticket
	path := fmt.Sprintf("/search/%s", url.PathEscape(query))
	if _, err := call(ctx, "GET", path, nil, &ret); err != nil {
		return nil, errors.Wrap(err, "searching tickets")
	}

	return ret, nil
}

// GetStats gets the aggregate figures over the tickets
func GetStats(ctx context.QRepairCtx) (Stats, error) {
	var ret Stats
	if _, err := call(ctx, "GET", "/stats", nil, &ret); err != nil {
		return ret, errors.Wrap(err, "getting stats")
	}

	return ret, nil
}

// Count gets the number of tickets
func Count(ctx context.QRepairCtx) (int64, error) {
	var ret int64
	if _, err := call(ctx, "GET", "/count", nil, &ret); err != nil {
		return 0, errors.Wrap(err, "counting tickets")
	}

	return ret, nil
}

// Export gets every ticket for a backup
func Export(ctx context.QRepairCtx) ([]Ticket, error) {
	var ret []Ticket
	if _, err := call(ctx, "GET", "/export", nil, &ret); err != nil {
		return nil, errors.Wrap(err, "exporting tickets")
	}

	return ret, nil
}

type importPayload struct {
	Records []TicketPayload `json:"records"`
}

// Import inserts the given records and returns the message of the server
func Import(ctx context.QRepairCtx, records []TicketPayload) (string, error) {
	if records == nil {
		records = []TicketPayload{}
	}

	msg, err := call(ctx, "POST", "/import", importPayload{Records: records}, nil)
	if err != nil {
		return "", errors.Wrap(err, "importing tickets")
	}

	return msg, nil
}

// GetQRCode gets the PNG image of the QR code of a ticket. A size of zero
// lets the server pick its default.
func GetQRCode(ctx context.QRepairCtx, id, size int) ([]byte, error) {
	path := ticketPath(id) + "/qrcode"
	if size > 0 {
		path = fmt.Sprintf("%s?size=%d", path, size)
	}

	res, err := doReq(ctx, "GET", path, nil, requestOptions{ExpectedContentType: contentTypePNG})
	if err != nil {
		return nil, errors.Wrapf(err, "getting the qr code of ticket %d", id)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading the image")
	}

	return b, nil
}
