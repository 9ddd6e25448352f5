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

package view

import (
	"os"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/infra"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/qrepair/qrepair/pkg/cli/output"
	"github.com/qrepair/qrepair/pkg/cli/utils"
	"github.com/spf13/cobra"
)

var example = `
 * View a ticket
 qrepair view 12

 * Save the QR code of the public page of a ticket
 qrepair view 12 --qr ticket-12.png --size 512`

var qrPath string
var qrSize int

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new view command
func NewCmd(ctx context.QRepairCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "view <id>",
		Aliases: []string{"v"},
		Short:   "View a ticket",
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&qrPath, "qr", "", "write the QR code of the ticket url to the given PNG file")
	f.IntVar(&qrSize, "size", 256, "size of the QR code in pixels")

	return cmd
}

// SaveQRCode writes the QR code of the ticket to a PNG file
func SaveQRCode(ctx context.QRepairCtx, id, size int, path string) error {
	png, err := client.GetQRCode(ctx, id, size)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, png, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	return nil
}

func newRun(ctx context.QRepairCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		id, err := utils.ParseID(args[0])
		if err != nil {
			return err
		}

		t, err := client.GetTicket(ctx, id)
		if err != nil {
			return err
		}

		output.TicketInfo(t)

		if qrPath == "" {
			return nil
		}

		if err := SaveQRCode(ctx, id, qrSize, qrPath); err != nil {
			return errors.Wrap(err, "saving QR code")
		}

		log.Successf("QR code saved to %s\n", qrPath)

		return nil
	}
}
