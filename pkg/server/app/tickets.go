/* Copyright (C) 2019, 2020, 2021, 2022, 2023, 2024, 2025 Dnote contributors
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

package app

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/clock"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/metrics"
	"gorm.io/gorm"
)

// DefaultLanguage is the language of a ticket that does not specify one
const DefaultLanguage = "it"

// maxTopModels is the number of models reported by GetStats
const maxTopModels = 5

// TicketParams are the fields of a ticket supplied by a caller
type TicketParams struct {
	Nome          string
	Tel           string
	Modello       string
	SerialNumber  string
	Data          string
	DataCreazione string
	URL           string
	Lingua        string
	Scadenza      *string
	ClientID      *int
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

// ValidateTicket checks the fields required to create or replace a ticket
func ValidateTicket(p TicketParams) error {
	if p.Nome == "" || p.Tel == "" || p.Data == "" {
		return ErrTicketFieldsRequired
	}

	return nil
}

// TicketURL returns the url of the ticket with the given id: the base of the
// given url followed by the id as the only query parameter.
func TicketURL(url string, id int) string {
	base := strings.SplitN(url, "?", 2)[0]

	return fmt.Sprintf("%s?id=%d", base, id)
}

func optionalString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}

	return s
}

func optionalInt(i *int) *int {
	if i == nil || *i == 0 {
		return nil
	}

	return i
}

func (a *App) newTicket(p TicketParams) database.Ticket {
	lingua := p.Lingua
	if lingua == "" {
		lingua = DefaultLanguage
	}

	dataCreazione := p.DataCreazione
	if dataCreazione == "" {
		dataCreazione = a.now()
	}

	return database.Ticket{
		Nome:          p.Nome,
		Tel:           p.Tel,
		Modello:       p.Modello,
		SerialNumber:  p.SerialNumber,
		Data:          p.Data,
		DataCreazione: dataCreazione,
		URL:           p.URL,
		Lingua:        lingua,
		Scadenza:      optionalString(p.Scadenza),
		ClientID:      optionalInt(p.ClientID),
	}
}

// insertTicket creates the ticket and points a non-empty url at its new id
func insertTicket(tx *gorm.DB, ticket *database.Ticket) error {
	if err := tx.Create(ticket).Error; err != nil {
		return errors.Wrap(err, "inserting ticket")
	}

	if ticket.URL == "" {
		return nil
	}

	ticket.URL = TicketURL(ticket.URL, ticket.ID)
	if err := tx.Model(ticket).Update("url", ticket.URL).Error; err != nil {
		return errors.Wrap(err, "setting ticket url")
	}

	return nil
}

// AddTicket inserts a ticket. It does not validate the fields. When a url is
// given, it is rewritten to point at the new ticket.
func (a *App) AddTicket(p TicketParams) (database.Ticket, error) {
	ticket := a.newTicket(p)

	err := a.Store.WithLock(func(tx *gorm.DB) error {
		return insertTicket(tx, &ticket)
	})
	if err != nil {
		return database.Ticket{}, err
	}

	metrics.AddTicketsCreated(1)

	return ticket, nil
}

func (a *App) orderedTickets() *gorm.DB {
	return a.Store.DB.Model(&database.Ticket{}).Order(`"dataCreazione" DESC`).Order("id DESC")
}

// GetTickets returns all tickets, newest first
func (a *App) GetTickets() ([]database.Ticket, error) {
	tickets := []database.Ticket{}
	if err := a.orderedTickets().Find(&tickets).Error; err != nil {
		return nil, errors.Wrap(err, "finding tickets")
	}

	return tickets, nil
}

// GetTicket returns the ticket with the given id
func (a *App) GetTicket(id int) (database.Ticket, error) {
	var ticket database.Ticket

	err := a.Store.DB.Where("id = ?", id).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ticket, ErrTicketNotFound
	} else if err != nil {
		return ticket, errors.Wrap(err, "finding ticket")
	}

	return ticket, nil
}

// UpdateTicket replaces every field of a ticket except its id and creation time.
// A non-empty url is rewritten to point at the ticket.
func (a *App) UpdateTicket(id int, p TicketParams) error {
	lingua := p.Lingua
	if lingua == "" {
		lingua = DefaultLanguage
	}

	url := p.URL
	if url != "" {
		url = TicketURL(url, id)
	}

	fields := map[string]interface{}{
		"nome":         p.Nome,
		"tel":          p.Tel,
		"modello":      p.Modello,
		"serialNumber": p.SerialNumber,
		"data":         p.Data,
		"url":          url,
		"lingua":       lingua,
		"scadenza":     optionalString(p.Scadenza),
		"client_id":    optionalInt(p.ClientID),
	}

	return a.Store.WithLock(func(tx *gorm.DB) error {
		res := tx.Model(&database.Ticket{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return errors.Wrap(res.Error, "updating ticket")
		}
		if res.RowsAffected == 0 {
			return ErrTicketNotFound
		}

		return nil
	})
}

// UpdateTicketDate sets the service date of a ticket and, when given, its
// expiry. The url is left unchanged.
func (a *App) UpdateTicketDate(id int, data string, scadenza *string) (database.Ticket, error) {
	if data == "" {
		return database.Ticket{}, ErrTicketDateRequired
	}

	var ticket database.Ticket
	err := a.Store.WithLock(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).First(&ticket).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTicketNotFound
		} else if err != nil {
			return errors.Wrap(err, "finding ticket")
		}

		fields := map[string]interface{}{"data": data}
		ticket.Data = data
		if s := optionalString(scadenza); s != nil {
			fields["scadenza"] = *s
			ticket.Scadenza = s
		}

		if err := tx.Model(&database.Ticket{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return errors.Wrap(err, "updating ticket date")
		}

		return nil
	})
	if err != nil {
		return database.Ticket{}, err
	}

	return ticket, nil
}

// DeleteTicket deletes a ticket and reports whether it existed
func (a *App) DeleteTicket(id int) (bool, error) {
	var deleted int64

	err := a.Store.WithLock(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&database.Ticket{})
		deleted = res.RowsAffected

		return res.Error
	})
	if err != nil {
		return false, errors.Wrap(err, "deleting ticket")
	}

	return deleted > 0, nil
}

// ClearTickets deletes every ticket and returns how many were deleted
func (a *App) ClearTickets() (int64, error) {
	var deleted int64

	err := a.Store.WithLock(func(tx *gorm.DB) error {
		res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&database.Ticket{})
		deleted = res.RowsAffected

		return res.Error
	})
	if err != nil {
		return 0, errors.Wrap(err, "clearing tickets")
	}

	return deleted, nil
}

// SearchTickets returns the tickets whose nome, tel, modello or serialNumber
// contains the query. The match is case-sensitive.
func (a *App) SearchTickets(query string) ([]database.Ticket, error) {
	cond := strings.Join([]string{
		a.Store.ContainsExpr("nome"),
		a.Store.ContainsExpr("tel"),
		a.Store.ContainsExpr("modello"),
		a.Store.ContainsExpr("serialNumber"),
	}, " OR ")

	tickets := []database.Ticket{}
	if err := a.orderedTickets().Where(cond, query, query, query, query).Find(&tickets).Error; err != nil {
		return nil, errors.Wrap(err, "searching tickets")
	}

	return tickets, nil
}

// CountTickets returns the number of tickets
func (a *App) CountTickets() (int64, error) {
	var count int64
	if err := a.Store.DB.Model(&database.Ticket{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "counting tickets")
	}

	return count, nil
}

// GetStats computes the ticket statistics. The current month is taken in the
// location of the app clock.
func (a *App) GetStats() (Stats, error) {
	db := a.Store.DB
	stats := Stats{TopModels: []ModelCount{}}

	if err := db.Model(&database.Ticket{}).Count(&stats.Total).Error; err != nil {
		return Stats{}, errors.Wrap(err, "counting tickets")
	}

	start, end := clock.MonthBounds(a.Clock.Now())
	err := db.Model(&database.Ticket{}).
		Where(`"dataCreazione" >= ? AND "dataCreazione" <= ?`, clock.FormatISO(start), clock.FormatISO(end)).
		Count(&stats.ThisMonth).Error
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting tickets of this month")
	}

	if err := db.Model(&database.Ticket{}).Distinct("tel").Count(&stats.UniqueClients).Error; err != nil {
		return Stats{}, errors.Wrap(err, "counting clients")
	}

	err = db.Model(&database.Ticket{}).
		Select("modello, COUNT(*) AS count").
		Where("modello IS NOT NULL AND modello != ''").
		Group("modello").
		Order("count DESC").
		Order("MIN(id) ASC").
		Limit(maxTopModels).
		Scan(&stats.TopModels).Error
	if err != nil {
		return Stats{}, errors.Wrap(err, "finding top models")
	}
	if stats.TopModels == nil {
		stats.TopModels = []ModelCount{}
	}

	return stats, nil
}

// ExportTickets returns every ticket for a backup
func (a *App) ExportTickets() ([]database.Ticket, error) {
	return a.GetTickets()
}

// ImportTickets inserts the given records in a single transaction and returns
// how many were inserted. Records are neither validated nor deduplicated. Ids
// in the records are ignored and every url is pointed at the new ticket.
func (a *App) ImportTickets(records []TicketParams) (int, error) {
	err := a.Store.WithLock(func(tx *gorm.DB) error {
		for i, r := range records {
			ticket := a.newTicket(r)
			if err := insertTicket(tx, &ticket); err != nil {
				return errors.Wrapf(err, "importing record %d", i)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	metrics.AddTicketsCreated(len(records))

	return len(records), nil
}
