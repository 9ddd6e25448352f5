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

// Package fields defines the flags that set the fields of a ticket
package fields

import (
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/spf13/pflag"
)

// flag names
const (
	FlagNome     = "nome"
	FlagTel      = "tel"
	FlagModello  = "modello"
	FlagSerial   = "serial"
	FlagData     = "data"
	FlagLingua   = "lingua"
	FlagScadenza = "scadenza"
	FlagClient   = "client"
	FlagURL      = "url"
)

// Flags holds the values of the ticket flags
type Flags struct {
	Nome     string
	Tel      string
	Modello  string
	Serial   string
	Data     string
	Lingua   string
	Scadenza string
	ClientID int
	URL      string
}

// Register defines the ticket flags on fs
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Nome, FlagNome, "n", "", "name of the customer")
	fs.StringVarP(&f.Tel, FlagTel, "t", "", "phone number of the customer")
	fs.StringVarP(&f.Modello, FlagModello, "m", "", "device model")
	fs.StringVarP(&f.Serial, FlagSerial, "s", "", "serial number of the device")
	fs.StringVarP(&f.Data, FlagData, "d", "", "date of the maintenance (YYYY-MM-DD)")
	fs.StringVarP(&f.Lingua, FlagLingua, "l", "", "language of the customer (it, en, de)")
	fs.StringVar(&f.Scadenza, FlagScadenza, "", "due date of the next maintenance (YYYY-MM-DD)")
	fs.IntVar(&f.ClientID, FlagClient, 0, "id of the customer record")
	fs.StringVar(&f.URL, FlagURL, "", "base url of the public page of the ticket")
}

// Changed returns the names of the ticket flags set on the command line
func Changed(fs *pflag.FlagSet) []string {
	var ret []string
	for _, name := range []string{FlagNome, FlagTel, FlagModello, FlagSerial, FlagData, FlagLingua, FlagScadenza, FlagClient, FlagURL} {
		if fs.Changed(name) {
			ret = append(ret, name)
		}
	}

	return ret
}

// OnlyDates reports whether the changed flags touch nothing but the dates
func OnlyDates(changed []string) bool {
	if len(changed) == 0 {
		return false
	}

	for _, name := range changed {
		if name != FlagData && name != FlagScadenza {
			return false
		}
	}

	return true
}

// Apply returns p with the fields of the flags set on the command line
func (f Flags) Apply(fs *pflag.FlagSet, p client.TicketPayload) client.TicketPayload {
	ret := p

	for _, name := range Changed(fs) {
		switch name {
		case FlagNome:
			ret.Nome = f.Nome
		case FlagTel:
			ret.Tel = f.Tel
		case FlagModello:
			ret.Modello = f.Modello
		case FlagSerial:
			ret.SerialNumber = f.Serial
		case FlagData:
			ret.Data = f.Data
		case FlagLingua:
			ret.Lingua = f.Lingua
		case FlagScadenza:
			ret.Scadenza = nil
			if f.Scadenza != "" {
				s := f.Scadenza
				ret.Scadenza = &s
			}
		case FlagClient:
			ret.ClientID = nil
			if f.ClientID != 0 {
				id := f.ClientID
				ret.ClientID = &id
			}
		case FlagURL:
			ret.URL = f.URL
		}
	}

	return ret
}
