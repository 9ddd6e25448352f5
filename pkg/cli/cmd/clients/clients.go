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

package clients

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/infra"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/qrepair/qrepair/pkg/cli/output"
	"github.com/qrepair/qrepair/pkg/cli/validate"
	"github.com/spf13/cobra"
)

var example = `
 * List the customers
 qrepair clients ls

 * Find a customer by name, surname or phone
 qrepair clients find rossi

 * Add a customer
 qrepair clients add --nome Mario --cognome Rossi --tel 3331234567 --lingua it`

var payload client.ClientPayload

// NewCmd returns a new clients command
func NewCmd(ctx context.QRepairCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clients",
		Aliases: []string{"clienti"},
		Short:   "Manage the customers",
		Example: example,
	}

	cmd.AddCommand(newLsCmd(ctx))
	cmd.AddCommand(newFindCmd(ctx))
	cmd.AddCommand(newAddCmd(ctx))

	return cmd
}

func newLsCmd(ctx context.QRepairCtx) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List the customers",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := client.GetClients(ctx)
			if err != nil {
				return err
			}

			output.ClientList(clients)

			return nil
		},
	}
}

func newFindCmd(ctx context.QRepairCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "Find customers by name, surname or phone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(args[0])
			if query == "" {
				return errors.New("Empty query")
			}

			clients, err := client.SearchClients(ctx, query)
			if err != nil {
				return err
			}

			output.ClientList(clients)

			return nil
		},
	}
}

func newAddCmd(ctx context.QRepairCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a customer",
		Args:  cobra.NoArgs,
		RunE:  newAddRun(ctx),
	}

	payload = client.ClientPayload{}
	f := cmd.Flags()
	f.StringVarP(&payload.Nome, "nome", "n", "", "first name")
	f.StringVarP(&payload.Cognome, "cognome", "c", "", "surname")
	f.StringVarP(&payload.Tel, "tel", "t", "", "phone number")
	f.StringVarP(&payload.Lingua, "lingua", "l", "it", "language (it, en, de)")
	f.StringVar(&payload.Email, "email", "", "email address")
	f.StringVar(&payload.Piva, "piva", "", "VAT number")

	return cmd
}

func newAddRun(ctx context.QRepairCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate.Client(payload); err != nil {
			return errors.Wrap(err, "invalid customer")
		}

		c, err := client.AddClient(ctx, payload)
		if err != nil {
			return err
		}

		log.Successf("added customer %d\n", c.ID)
		output.ClientList([]client.Client{c})

		return nil
	}
}
