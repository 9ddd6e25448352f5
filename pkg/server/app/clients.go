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

package app

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/database"
	"gorm.io/gorm"
)

// ValidLanguages are the languages a client can be contacted in
var ValidLanguages = []string{"it", "en", "de"}

// ClientParams are the fields of a client supplied by a caller
type ClientParams struct {
	Nome    string
	Cognome string
	Email   string
	Tel     string
	Lingua  string
	Piva    string
}

func (p ClientParams) normalize() ClientParams {
	return ClientParams{
		Nome:    strings.TrimSpace(p.Nome),
		Cognome: strings.TrimSpace(p.Cognome),
		Email:   strings.TrimSpace(p.Email),
		Tel:     strings.TrimSpace(p.Tel),
		Lingua:  strings.ToLower(strings.TrimSpace(p.Lingua)),
		Piva:    strings.TrimSpace(p.Piva),
	}
}

func validLanguage(lingua string) bool {
	for _, l := range ValidLanguages {
		if l == lingua {
			return true
		}
	}

	return false
}

// ValidateClient checks the fields of a normalized client
func ValidateClient(p ClientParams) error {
	if p.Nome == "" || p.Cognome == "" || p.Tel == "" || p.Lingua == "" {
		return ErrClientFieldsRequired
	}
	if !validLanguage(p.Lingua) {
		return ErrLanguageInvalid
	}

	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// CreateClient validates and inserts a client
func (a *App) CreateClient(p ClientParams) (database.Client, error) {
	p = p.normalize()
	if err := ValidateClient(p); err != nil {
		return database.Client{}, err
	}

	client := database.Client{
		Nome:      p.Nome,
		Cognome:   p.Cognome,
		Email:     nullable(p.Email),
		Tel:       p.Tel,
		Lingua:    p.Lingua,
		Piva:      nullable(p.Piva),
		CreatedAt: a.now(),
	}

	err := a.Store.WithLock(func(tx *gorm.DB) error {
		return tx.Create(&client).Error
	})
	if err != nil {
		return database.Client{}, errors.Wrap(err, "inserting client")
	}

	return client, nil
}

// GetClients returns all clients ordered by surname and name
func (a *App) GetClients() ([]database.Client, error) {
	clients := []database.Client{}
	if err := a.Store.DB.Order("cognome").Order("nome").Find(&clients).Error; err != nil {
		return nil, errors.Wrap(err, "finding clients")
	}

	return clients, nil
}

func (a *App) findClient(cond string, arg interface{}) (database.Client, error) {
	var client database.Client

	err := a.Store.DB.Where(cond, arg).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return client, ErrClientNotFound
	} else if err != nil {
		return client, errors.Wrap(err, "finding client")
	}

	return client, nil
}

// GetClient returns the client with the given id
func (a *App) GetClient(id int) (database.Client, error) {
	return a.findClient("id = ?", id)
}

// GetClientByTel returns the client with the given phone number
func (a *App) GetClientByTel(tel string) (database.Client, error) {
	return a.findClient("tel = ?", tel)
}

// SearchClients returns the clients whose nome, cognome or tel contains the
// query, ignoring case. An empty query matches every client.
func (a *App) SearchClients(query string) ([]database.Client, error) {
	term := "%" + query + "%"

	clients := []database.Client{}
	err := a.Store.DB.
		Where("LOWER(nome) LIKE LOWER(?) OR LOWER(cognome) LIKE LOWER(?) OR LOWER(tel) LIKE LOWER(?)", term, term, term).
		Order("cognome").Order("nome").
		Find(&clients).Error
	if err != nil {
		return nil, errors.Wrap(err, "searching clients")
	}

	return clients, nil
}

// UpdateClient validates the given fields and replaces the client with them.
// The creation time is kept.
func (a *App) UpdateClient(id int, p ClientParams) error {
	p = p.normalize()
	if err := ValidateClient(p); err != nil {
		return err
	}

	fields := map[string]interface{}{
		"nome":    p.Nome,
		"cognome": p.Cognome,
		"email":   nullable(p.Email),
		"tel":     p.Tel,
		"lingua":  p.Lingua,
		"piva":    nullable(p.Piva),
	}

	return a.Store.WithLock(func(tx *gorm.DB) error {
		res := tx.Model(&database.Client{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return errors.Wrap(res.Error, "updating client")
		}
		if res.RowsAffected == 0 {
			return ErrClientNotFound
		}

		return nil
	})
}

// DeleteClient deletes a client. Tickets that reference it are left as they are.
func (a *App) DeleteClient(id int) error {
	return a.Store.WithLock(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&database.Client{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "deleting client")
		}
		if res.RowsAffected == 0 {
			return ErrClientNotFound
		}

		return nil
	})
}

// CountClients returns the number of clients
func (a *App) CountClients() (int64, error) {
	var count int64
	if err := a.Store.DB.Model(&database.Client{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "counting clients")
	}

	return count, nil
}
