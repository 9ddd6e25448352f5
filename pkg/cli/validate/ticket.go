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

// Package validate checks records before they are sent to the server
package validate

import (
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
)

// Languages are the languages the server accepts
var Languages = []string{"it", "en", "de"}

var (
	// ErrTicketFieldsRequired is an error for a ticket without a name, a phone or a date
	ErrTicketFieldsRequired = errors.New("nome, tel and data are required")
	// ErrClientFieldsRequired is an error for a client missing a required field
	ErrClientFieldsRequired = errors.New("nome, cognome, tel and lingua are required")
	// ErrLanguageInvalid is an error for a language the server does not know
	ErrLanguageInvalid = errors.New("lingua must be one of it, en, de")
)

func validLanguage(lingua string) bool {
	for _, l := range Languages {
		if l == lingua {
			return true
		}
	}

	return false
}

// Ticket validates a ticket payload. An empty language lets the server pick its default.
func Ticket(p client.TicketPayload) error {
	if p.Nome == "" || p.Tel == "" || p.Data == "" {
		return ErrTicketFieldsRequired
	}
	if p.Lingua != "" && !validLanguage(p.Lingua) {
		return ErrLanguageInvalid
	}

	return nil
}

// Client validates a client payload
func Client(p client.ClientPayload) error {
	if p.Nome == "" || p.Cognome == "" || p.Tel == "" || p.Lingua == "" {
		return ErrClientFieldsRequired
	}
	if !validLanguage(p.Lingua) {
		return ErrLanguageInvalid
	}

	return nil
}
