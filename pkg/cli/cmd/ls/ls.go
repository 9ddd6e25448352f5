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

package ls

import (
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/infra"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/qrepair/qrepair/pkg/cli/output"
	"github.com/spf13/cobra"
)

var example = `
 * List every ticket, most recent first
 qrepair ls

 * Print the number of tickets only
 qrepair ls --count`

var countOnly bool

// NewCmd returns a new ls command
func NewCmd(ctx context.QRepairCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"l", "list"},
		Short:   "List the tickets",
		Example: example,
		RunE:    NewRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&countOnly, "count", false, "print the number of tickets only")

	return cmd
}

// NewRun returns a new run function for ls
func NewRun(ctx context.QRepairCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if countOnly {
			n, err := client.Count(ctx)
			if err != nil {
				return err
			}

			log.Plainf("%d\n", n)
			return nil
		}

		tickets, err := client.GetTickets(ctx)
		if err != nil {
			return errors.Wrap(err, "listing tickets")
		}

		output.TicketList(tickets)

		return nil
	}
}
