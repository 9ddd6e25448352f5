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

package add

import (
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/cmd/fields"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/infra"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/qrepair/qrepair/pkg/cli/output"
	"github.com/qrepair/qrepair/pkg/cli/ui"
	"github.com/qrepair/qrepair/pkg/cli/validate"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var example = `
 * Open an editor to fill in the ticket
 qrepair add

 * Skip the editor by providing the fields directly
 qrepair add -n "Mario Rossi" -t 3331234567 -m "iPhone 12" --scadenza 2026-03-01

 * Link the ticket to a customer record
 qrepair add -n "Mario Rossi" -t 3331234567 --client 4`

var flags fields.Flags

// NewCmd returns a new add command
func NewCmd(ctx context.QRepairCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a new ticket",
		Aliases: []string{"a", "n", "new"},
		Example: example,
		RunE:    newRun(ctx),
	}

	flags = fields.Flags{}
	flags.Register(cmd.Flags())

	return cmd
}

// defaultPayload returns the fields of a new ticket before any input
func defaultPayload(ctx context.QRepairCtx) client.TicketPayload {
	return client.TicketPayload{
		Data:   ctx.Clock.Now().Format("2006-01-02"),
		Lingua: "it",
	}
}

func getPayload(ctx context.QRepairCtx, fs *pflag.FlagSet) (client.TicketPayload, error) {
	p := flags.Apply(fs, defaultPayload(ctx))
	if len(fields.Changed(fs)) > 0 {
		return p, nil
	}

	f, err := ui.EditTicketForm(ctx, ui.NewTicketForm(p))
	if err != nil {
		return p, errors.Wrap(err, "getting the ticket from the editor")
	}

	return f.Apply(p), nil
}

func newRun(ctx context.QRepairCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		p, err := getPayload(ctx, cmd.Flags())
		if err != nil {
			return err
		}

		if err := validate.Ticket(p); err != nil {
			return errors.Wrap(err, "invalid ticket")
		}

		t, err := client.AddTicket(ctx, p)
		if err != nil {
			return err
		}

		log.Successf("added ticket %d\n", t.ID)
		output.TicketInfo(t)

		return nil
	}
}
