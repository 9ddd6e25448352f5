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

// Package sheet reads and writes tickets as xlsx workbooks
package sheet

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the worksheet holding the tickets
const SheetName = "Manutenzioni"

// Columns are the header cells, named after the JSON fields of a ticket
var Columns = []string{"id", "nome", "tel", "modello", "serialNumber", "data", "dataCreazione", "url", "lingua", "scadenza", "client_id"}

var (
	// ErrNoSheet is returned for a workbook without any worksheet
	ErrNoSheet = errors.New("no sheets in the workbook")
	// ErrMissingColumns is returned when the header lacks a required column
	ErrMissingColumns = errors.New("the header must have the nome, tel and data columns")
)

func ticketRow(t client.Ticket) []interface{} {
	scadenza := ""
	if t.Scadenza != nil {
		scadenza = *t.Scadenza
	}

	var clientID interface{} = ""
	if t.ClientID != nil {
		clientID = *t.ClientID
	}

	return []interface{}{
		t.ID, t.Nome, t.Tel, t.Modello, t.SerialNumber, t.Data, t.DataCreazione, t.URL, t.Lingua, scadenza, clientID,
	}
}

// Write writes the tickets to w as a workbook with a header row
func Write(w io.Writer, tickets []client.Ticket) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return errors.Wrap(err, "naming the sheet")
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "writing the header")
	}

	for i, t := range tickets {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrapf(err, "locating row %d", i+2)
		}

		row := ticketRow(t)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return errors.Wrapf(err, "writing ticket %d", t.ID)
		}
	}

	if err := f.SetColWidth(SheetName, "B", "C", 24); err != nil {
		return errors.Wrap(err, "setting column width")
	}
	if err := f.SetColWidth(SheetName, "G", "H", 32); err != nil {
		return errors.Wrap(err, "setting column width")
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing the workbook")
	}

	return nil
}

// row gives access to the cells of a data row by column name. Trailing empty
// cells are missing from the rows excelize returns.
type row struct {
	index map[string]int
	cells []string
}

func (r row) get(name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(r.cells) {
		return ""
	}

	return strings.TrimSpace(r.cells[i])
}

func (r row) payload() (client.TicketPayload, error) {
	p := client.TicketPayload{
		Nome:          r.get("nome"),
		Tel:           r.get("tel"),
		Modello:       r.get("modello"),
		SerialNumber:  r.get("serialNumber"),
		Data:          r.get("data"),
		DataCreazione: r.get("dataCreazione"),
		URL:           r.get("url"),
		Lingua:        r.get("lingua"),
	}

	if s := r.get("scadenza"); s != "" {
		p.Scadenza = &s
	}

	if s := r.get("client_id"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			return p, errors.Errorf("invalid client_id '%s'", s)
		}
		p.ClientID = &id
	}

	return p, nil
}

// Read reads the tickets from the first worksheet of a workbook. The columns
// are matched by their header name in any order. Empty rows are skipped.
func Read(r io.Reader) ([]client.TicketPayload, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening the workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "reading rows")
	}
	if len(rows) == 0 {
		return []client.TicketPayload{}, nil
	}

	index := map[string]int{}
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"nome", "tel", "data"} {
		if _, ok := index[name]; !ok {
			return nil, ErrMissingColumns
		}
	}

	ret := []client.TicketPayload{}
	for i, cells := range rows[1:] {
		if strings.TrimSpace(strings.Join(cells, "")) == "" {
			continue
		}

		p, err := row{index: index, cells: cells}.payload()
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+2)
		}

		ret = append(ret, p)
	}

	return ret, nil
}
