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

// Package output prints records returned by the server
package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/qrepair/qrepair/pkg/cli/utils/diff"
)

// column is a cell of a row with a fixed width
type column struct {
	text  string
	width int
}

var headerStyle = lipgloss.NewStyle().Bold(true)

// renderRow lays the columns out side by side, truncating the text that does
// not fit in its column
func renderRow(cols []column) string {
	cells := make([]string, 0, len(cols))
	for _, c := range cols {
		cell := lipgloss.NewStyle().Width(c.width).MaxWidth(c.width).MaxHeight(1).Render(c.text)
		cells = append(cells, cell)
	}

	return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, cells...), " ")
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}

	return *s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

func ticketColumns(t client.Ticket) []column {
	return []column{
		{text: fmt.Sprintf("%d", t.ID), width: 6},
		{text: t.Data, width: 12},
		{text: t.Nome, width: 24},
		{text: t.Tel, width: 15},
		{text: orDash(t.Modello), width: 18},
		{text: optional(t.Scadenza), width: 12},
	}
}

// TicketList prints the tickets as a table
func TicketList(tickets []client.Ticket) {
	if len(tickets) == 0 {
		log.Info("nessun record\n")
		return
	}

	header := renderRow([]column{
		{text: "ID", width: 6},
		{text: "DATA", width: 12},
		{text: "NOME", width: 24},
		{text: "TEL", width: 15},
		{text: "MODELLO", width: 18},
		{text: "SCADENZA", width: 12},
	})
	log.Plainf("%s\n", headerStyle.Render(header))

	for _, t := range tickets {
		log.Plainf("%s\n", renderRow(ticketColumns(t)))
	}
}

// TicketInfo prints the fields of a ticket
func TicketInfo(t client.Ticket) {
	log.Infof("id: %d\n", t.ID)
	log.Infof("nome: %s\n", t.Nome)
	log.Infof("tel: %s\n", t.Tel)
	log.Infof("modello: %s\n", orDash(t.Modello))
	log.Infof("serial number: %s\n", orDash(t.SerialNumber))
	log.Infof("data: %s\n", t.Data)
	log.Infof("scadenza: %s\n", optional(t.Scadenza))
	log.Infof("lingua: %s\n", t.Lingua)
	if t.ClientID != nil {
		log.Infof("cliente: %d\n", *t.ClientID)
	}
	log.Infof("creato il: %s\n", t.DataCreazione)
	log.Infof("url: %s\n", orDash(t.URL))
}

// Stats prints the aggregate figures over the tickets
func Stats(s client.Stats) {
	log.Infof("totale: %d\n", s.Total)
	log.Infof("questo mese: %d\n", s.ThisMonth)
	log.Infof("clienti unici: %d\n", s.UniqueClients)

	if len(s.TopModels) == 0 {
		return
	}

	log.Infof("modelli più frequenti:\n")
	for _, m := range s.TopModels {
		log.Plainf("  %s\n", renderRow([]column{
			{text: m.Modello, width: 24},
			{text: fmt.Sprintf("%d", m.Count), width: 6},
		}))
	}
}

// ClientList prints the customers as a table
func ClientList(clients []client.Client) {
	if len(clients) == 0 {
		log.Info("nessun cliente\n")
		return
	}

	for _, c := range clients {
		log.Plainf("%s\n", renderRow([]column{
			{text: fmt.Sprintf("%d", c.ID), width: 6},
			{text: fmt.Sprintf("%s %s", c.Nome, c.Cognome), width: 30},
			{text: c.Tel, width: 15},
			{text: c.Lingua, width: 4},
			{text: optional(c.Email), width: 30},
		}))
	}
}

// UserList prints the operators
func UserList(users []client.User) {
	for _, u := range users {
		log.Plainf("%s\n", renderRow([]column{
			{text: fmt.Sprintf("%d", u.ID), width: 6},
			{text: u.Username, width: 20},
			{text: u.Nome, width: 30},
			{text: u.CreatedAt, width: 24},
		}))
	}
}

// Diff prints the lines changed between before and after. It reports whether
// anything changed.
func Diff(before, after string) bool {
	lines := diff.Lines(before, after)

	for _, l := range lines {
		switch l.Kind {
		case diff.Delete:
			log.Plainf("%s\n", log.ColorRed.Sprintf("- %s", l.Text))
		case diff.Insert:
			log.Plainf("%s\n", log.ColorGreen.Sprintf("+ %s", l.Text))
		default:
			log.Plainf("  %s\n", l.Text)
		}
	}

	return diff.Changed(lines)
}
