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

package ui

import (
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"gopkg.in/yaml.v2"
)

// formHeader is written above the fields of a ticket opened in the editor
const formHeader = "# Modifica i campi e salva. nome, tel e data sono obbligatori.\n"

// TicketForm holds the fields of a ticket an operator can edit
type TicketForm struct {
	Nome         string `yaml:"nome"`
	Tel          string `yaml:"tel"`
	Modello      string `yaml:"modello"`
	SerialNumber string `yaml:"serialNumber"`
	Data         string `yaml:"data"`
	Lingua       string `yaml:"lingua"`
	Scadenza     string `yaml:"scadenza"`
	ClientID     int    `yaml:"client_id"`
}

// NewTicketForm returns the form of the given ticket
func NewTicketForm(p client.TicketPayload) TicketForm {
	f := TicketForm{
		Nome:         p.Nome,
		Tel:          p.Tel,
		Modello:      p.Modello,
		SerialNumber: p.SerialNumber,
		Data:         p.Data,
		Lingua:       p.Lingua,
	}
	if p.Scadenza != nil {
		f.Scadenza = *p.Scadenza
	}
	if p.ClientID != nil {
		f.ClientID = *p.ClientID
	}

	return f
}

// Apply returns base with the fields of the form. The fields the form does not
// carry, such as the creation date and the url, are kept.
func (f TicketForm) Apply(base client.TicketPayload) client.TicketPayload {
	ret := base
	ret.Nome = f.Nome
	ret.Tel = f.Tel
	ret.Modello = f.Modello
	ret.SerialNumber = f.SerialNumber
	ret.Data = f.Data
	ret.Lingua = f.Lingua

	ret.Scadenza = nil
	if f.Scadenza != "" {
		s := f.Scadenza
		ret.Scadenza = &s
	}

	ret.ClientID = nil
	if f.ClientID != 0 {
		id := f.ClientID
		ret.ClientID = &id
	}

	return ret
}

// Render returns the YAML document of the form
func (f TicketForm) Render() (string, error) {
	b, err := yaml.Marshal(f)
	if err != nil {
		return "", errors.Wrap(err, "marshalling the form")
	}

	return string(b), nil
}

// ParseTicketForm parses a form edited by the operator. Unknown fields are rejected.
func ParseTicketForm(s string) (TicketForm, error) {
	var f TicketForm
	if err := yaml.UnmarshalStrict([]byte(s), &f); err != nil {
		return f, errors.Wrap(err, "parsing the form")
	}

	return f, nil
}

// EditTicketForm opens the form in the editor and returns the edited form
func EditTicketForm(ctx context.QRepairCtx, f TicketForm) (TicketForm, error) {
	content, err := f.Render()
	if err != nil {
		return f, err
	}

	fpath, err := GetTmpContentPath(ctx)
	if err != nil {
		return f, errors.Wrap(err, "getting temporarily content file path")
	}

	edited, err := GetEditorInput(ctx, fpath, formHeader+content)
	if err != nil {
		return f, errors.Wrap(err, "getting editor input")
	}

	return ParseTicketForm(edited)
}
