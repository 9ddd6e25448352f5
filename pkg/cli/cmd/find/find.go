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

package find

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/infra"
	"github.com/qrepair/qrepair/pkg/cli/output"
	"github.com/spf13/cobra"
)

var example = `
 * Find the tickets of a customer
 qrepair find rossi

 * Find by phone number, model or serial number
 qrepair find 333
 qrepair find "iPhone 12"`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}
	if strings.TrimSpace(args[0]) == "" {
		return errors.New("Empty query")
	}

	return nil
}

// NewCmd returns a new find command
func NewCmd(ctx context.QRepairCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "find <query>",
		Aliases: []string{"f", "search"},
		Short:   "Find tickets by name, phone, model or serial number",
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	return cmd
}

func newRun(ctx context.QRepairCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		tickets, err := client.Search(ctx, strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}

		output.TicketList(tickets)

		return nil
	}
}
