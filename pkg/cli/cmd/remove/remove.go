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

package remove

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/infra"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/qrepair/qrepair/pkg/cli/output"
	"github.com/qrepair/qrepair/pkg/cli/ui"
	"github.com/qrepair/qrepair/pkg/cli/utils"
	"github.com/spf13/cobra"
)

var allFlag bool
var yesFlag bool

var example = `
  * Delete a ticket by its id
  qrepair rm 12

  * Delete every ticket
  qrepair rm --all`

func preRun(cmd *cobra.Command, args []string) error {
	if allFlag && len(args) != 0 {
		return errors.New("--all takes no argument")
	}
	if !allFlag && len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new remove command
func NewCmd(ctx context.QRepairCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <id>",
		Short:   "Remove a ticket",
		Aliases: []string{"rm", "d"},
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVarP(&allFlag, "all", "", false, "Remove every ticket")
	f.BoolVarP(&yesFlag, "yes", "y", false, "Assume yes to the prompts and run in non-interactive mode")

	return cmd
}

func maybeConfirm(message string, defaultValue bool) (bool, error) {
	if yesFlag {
		return true, nil
	}

	return ui.Confirm(message, defaultValue)
}

func runTicket(ctx context.QRepairCtx, idArg string) error {
	id, err := utils.ParseID(idArg)
	if err != nil {
		return err
	}

	t, err := client.GetTicket(ctx, id)
	if err != nil {
		return err
	}

	output.TicketInfo(t)

	ok, err := maybeConfirm("remove this ticket?", false)
	if err != nil {
		return errors.Wrap(err, "getting confirmation")
	}
	if !ok {
		log.Warnf("aborted by user\n")
		return nil
	}

	if err := client.DeleteTicket(ctx, id); err != nil {
		return err
	}

	log.Successf("removed ticket %d\n", id)

	return nil
}

func runAll(ctx context.QRepairCtx) error {
	n, err := client.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		log.Info("nessun record\n")
		return nil
	}

	ok, err := maybeConfirm(fmt.Sprintf("remove all %d tickets?", n), false)
	if err != nil {
		return errors.Wrap(err, "getting confirmation")
	}
	if !ok {
		log.Warnf("aborted by user\n")
		return nil
	}

	msg, err := client.ClearTickets(ctx)
	if err != nil {
		return err
	}

	log.Successf("%s\n", msg)

	return nil
}

func newRun(ctx context.QRepairCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if allFlag {
			return runAll(ctx)
		}

		return runTicket(ctx, args[0])
	}
}
