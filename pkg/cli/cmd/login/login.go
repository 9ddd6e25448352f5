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

package login

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/config"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/infra"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/qrepair/qrepair/pkg/cli/ui"
	"github.com/spf13/cobra"
)

var example = `
  qrepair login

  * Log in to a given server
  qrepair login --apiEndpoint https://officina.example.com/api`

var usernameFlag, apiEndpointFlag string

// NewCmd returns a new login command
func NewCmd(ctx context.QRepairCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Login to the server",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&usernameFlag, "username", "u", "", "username")
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

// Do logs in and stores the session key in the config
func Do(ctx context.QRepairCtx, username, password string) (client.Identity, error) {
	resp, err := client.Login(ctx, username, password)
	if err != nil {
		return client.Identity{}, err
	}

	if err := config.SetSessionKey(ctx, resp.SessionKey); err != nil {
		return client.Identity{}, errors.Wrap(err, "saving session key")
	}

	return resp.User, nil
}

func getUsername() (string, error) {
	if usernameFlag != "" {
		return usernameFlag, nil
	}

	var username string
	if err := ui.PromptInput("username", &username); err != nil {
		return "", errors.Wrap(err, "getting username input")
	}

	return strings.TrimSpace(username), nil
}

func getPassword() (string, error) {
	var password string
	if err := ui.PromptPassword("password", &password); err != nil {
		return "", errors.Wrap(err, "getting password input")
	}

	return password, nil
}

// getServerDisplayURL returns the scheme and the host of the API endpoint
func getServerDisplayURL(ctx context.QRepairCtx) string {
	u, err := url.Parse(ctx.APIEndpoint)
	if err != nil {
		return ""
	}
	if u.Scheme == "" || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host
}

func newRun(ctx context.QRepairCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if apiEndpointFlag != "" {
			ctx.APIEndpoint = apiEndpointFlag
		}

		if displayURL := getServerDisplayURL(ctx); displayURL != "" {
			log.Infof("login to %s\n", displayURL)
		}

		username, err := getUsername()
		if err != nil {
			return err
		}
		password, err := getPassword()
		if err != nil {
			return err
		}
		if username == "" || password == "" {
			return errors.New("Username e password richiesti")
		}

		user, err := Do(ctx, username, password)
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			log.Errorf("%s\n", apiErr.Message)
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging in")
		}

		log.Successf("logged in as %s (%s)\n", user.Nome, user.Username)

		return nil
	}
}
