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

package importcmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/infra"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/qrepair/qrepair/pkg/cli/sheet"
	"github.com/qrepair/qrepair/pkg/cli/ui"
	"github.com/qrepair/qrepair/pkg/cli/validate"
	"github.com/spf13/cobra"
)

var example = `
 * Restore a JSON backup made with export
 qrepair import backup.json

 * Import a spreadsheet
 qrepair import manutenzioni.xlsx -y`

var yesFlag bool

// ErrInvalidFile is returned for a JSON document that is neither a list of
// tickets nor an object with a records list
var ErrInvalidFile = errors.New("the file must hold a list of tickets or an object with a records list")

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new import command
func NewCmd(ctx context.QRepairCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "import <file>",
		Short:   "Import tickets from a JSON backup or a spreadsheet",
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&yesFlag, "yes", "y", false, "Assume yes to the prompts and run in non-interactive mode")

	return cmd
}

// parseJSON accepts a list of tickets or an object with a records list
func parseJSON(b []byte) ([]client.TicketPayload, error) {
	trimmed := bytes.TrimSpace(b)

	if bytes.HasPrefix(trimmed, []byte("[")) {
		var ret []client.TicketPayload
		if err := json.Unmarshal(trimmed, &ret); err != nil {
			return nil, errors.Wrap(err, "decoding the list")
		}
		return ret, nil
	}

	var doc struct {
		Records *[]client.TicketPayload `json:"records"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding the document")
	}
	if doc.Records == nil {
		return nil, ErrInvalidFile
	}

	return *doc.Records, nil
}

// ReadFile reads the tickets of a JSON or xlsx file
func ReadFile(path string) ([]client.TicketPayload, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return sheet.Read(bytes.NewReader(b))
	}

	return parseJSON(b)
}

func newRun(ctx context.QRepairCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		records, err := ReadFile(args[0])
		if err != nil {
			return err
		}

		for i, r := range records {
			if err := validate.Ticket(r); err != nil {
				return errors.Wrapf(err, "record %d", i+1)
			}
		}

		if !yesFlag {
			ok, err := ui.Confirm(fmt.Sprintf("import %d tickets?", len(records)), true)
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				log.Warnf("aborted by user\n")
				return nil
			}
		}

		msg, err := client.Import(ctx, records)
		if err != nil {
			return err
		}

		log.Successf("%s\n", msg)

		return nil
	}
}
