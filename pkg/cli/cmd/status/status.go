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

package status

import (
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/infra"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/spf13/cobra"
)

var example = `
  qrepair status`

// NewCmd returns a new status command
func NewCmd(ctx context.QRepairCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Show whether the stored session is still valid",
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

func newRun(ctx context.QRepairCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		log.Infof("server: %s\n", ctx.APIEndpoint)

		if ctx.SessionKey == "" {
			log.Warnf("not logged in\n")
			return nil
		}

		resp, err := client.Check(ctx)
		if err != nil {
			return errors.Wrap(err, "checking session")
		}

		if !resp.Authenticated || resp.User == nil {
			log.Warnf("session expired. run qrepair login\n")
			return nil
		}

		log.Successf("logged in as %s (%s)\n", resp.User.Nome, resp.User.Username)

		return nil
	}
}
