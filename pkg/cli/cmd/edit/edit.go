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

package edit

import (
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/cmd/fields"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/infra"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/qrepair/qrepair/pkg/cli/output"
	"github.com/qrepair/qrepair/pkg/cli/ui"
	"github.com/qrepair/qrepair/pkg/cli/utils"
	"github.com/qrepair/qrepair/pkg/cli/validate"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var example = `
 * Edit a ticket in the editor
 qrepair edit 3

 * Skip the editor by providing new fields directly
 qrepair edit 3 -m "iPhone 13" --serial SN-12

 * Move a maintenance to another date
 qrepair edit 3 -d 2025-06-10 --scadenza 2026-06-10`

var flags fields.Flags
var yesFlag bool

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new edit command
func NewCmd(ctx context.QRepairCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "edit <id>",
		Short:   "Edit a ticket",
		Aliases: []string{"e"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	flags = fields.Flags{}
	f := cmd.Flags()
	flags.Register(f)
	f.BoolVarP(&yesFlag, "yes", "y", false, "Assume yes to the prompts and run in non-interactive mode")

	return cmd
}

// renderForDiff renders the fields of a ticket an operator can change
func renderForDiff(p client.TicketPayload) (string, error) {
	s, err := ui.NewTicketForm(p).Render()
	if err != nil {
		return "", err
	}

	return s + "url: " + p.URL + "\n", nil
}

// datesOnly reports whether the change can go through the date endpoint
func datesOnly(fs *pflag.FlagSet) bool {
	if !fields.OnlyDates(fields.Changed(fs)) {
		return false
	}

	// the date endpoint can set a due date but not clear it
	return !fs.Changed(fields.FlagScadenza) || flags.Scadenza != ""
}

func updateDates(ctx context.QRepairCtx, fs *pflag.FlagSet, t client.Ticket) error {
	data := t.Data
	if fs.Changed(fields.FlagData) {
		data = flags.Data
	}

	var scadenza *string
	if fs.Changed(fields.FlagScadenza) {
		s := flags.Scadenza
		scadenza = &s
	}

	updated, err := client.UpdateTicketDate(ctx, t.ID, data, scadenza)
	if err != nil {
		return err
	}

	log.Successf("updated the date of ticket %d\n", t.ID)
	output.TicketInfo(updated)

	return nil
}

func getNextPayload(ctx context.QRepairCtx, fs *pflag.FlagSet, base client.TicketPayload) (client.TicketPayload, error) {
	if len(fields.Changed(fs)) > 0 {
		return flags.Apply(fs, base), nil
	}

	f, err := ui.EditTicketForm(ctx, ui.NewTicketForm(base))
	if err != nil {
		return base, errors.Wrap(err, "getting the ticket from the editor")
	}

	return f.Apply(base), nil
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

		fs := cmd.Flags()
		if datesOnly(fs) {
			return updateDates(ctx, fs, t)
		}

		base := t.Payload()
		next, err := getNextPayload(ctx, fs, base)
		if err != nil {
			return err
		}

		before, err := renderForDiff(base)
		if err != nil {
			return err
		}
		after, err := renderForDiff(next)
		if err != nil {
			return err
		}

		if !output.Diff(before, after) {
			log.Info("nothing changed\n")
			return nil
		}

		if err := validate.Ticket(next); err != nil {
			return errors.Wrap(err, "invalid ticket")
		}

		if !yesFlag {
			ok, err := ui.Confirm("save the changes?", true)
			if err != nil {
				return errors.Wrap(err, "getting confirmation")
			}
			if !ok {
				log.Warnf("aborted by user\n")
				return nil
			}
		}

		if err := client.UpdateTicket(ctx, id, next); err != nil {
			return err
		}

		log.Successf("updated ticket %d\n", id)

		return nil
	}
}
