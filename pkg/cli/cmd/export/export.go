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

package export

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/infra"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/qrepair/qrepair/pkg/cli/sheet"
	"github.com/spf13/cobra"
)

// formats
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

var example = `
 * Print a JSON backup of every ticket
 qrepair export

 * Save the backup to a file
 qrepair export -o backup.json

 * Save a spreadsheet
 qrepair export -o manutenzioni.xlsx`

var formatFlag, outFlag string

// NewCmd returns a new export command
func NewCmd(ctx context.QRepairCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export every ticket as JSON or as a spreadsheet",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&formatFlag, "format", "f", "", "output format: json or xlsx (defaults to the extension of the output file)")
	f.StringVarP(&outFlag, "output", "o", "", "output file (defaults to stdout for json)")

	return cmd
}

// resolveFormat picks the format from the flag, then from the extension of the output file
func resolveFormat(format, out string) (string, error) {
	if format == "" {
		format = FormatJSON
		if strings.EqualFold(filepath.Ext(out), ".xlsx") {
			format = FormatXLSX
		}
	}

	switch format {
	case FormatJSON:
		return format, nil
	case FormatXLSX:
		if out == "" {
			return "", errors.New("the xlsx format needs an output file")
		}
		return format, nil
	default:
		return "", errors.Errorf("unknown format '%s'", format)
	}
}

// Write writes the tickets to w in the given format
func Write(w io.Writer, format string, tickets []client.Ticket) error {
	if format == FormatXLSX {
		return sheet.Write(w, tickets)
	}

	b, err := json.MarshalIndent(tickets, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshalling tickets")
	}

	if _, err := w.Write(append(b, '\n')); err != nil {
		return errors.Wrap(err, "writing tickets")
	}

	return nil
}

func writeFile(path, format string, tickets []client.Ticket) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}

	if err := Write(f, format, tickets); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func newRun(ctx context.QRepairCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		format, err := resolveFormat(formatFlag, outFlag)
		if err != nil {
			return err
		}

		tickets, err := client.Export(ctx)
		if err != nil {
			return err
		}

		if outFlag == "" {
			return Write(cmd.OutOrStdout(), format, tickets)
		}

		if err := writeFile(outFlag, format, tickets); err != nil {
			return err
		}

		log.Successf("exported %d tickets to %s\n", len(tickets), outFlag)

		return nil
	}
}
