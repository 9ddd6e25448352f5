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

// Package infra initializes the runtime of the command line client
package infra

import (
	"os"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/client"
	"github.com/qrepair/qrepair/pkg/cli/config"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/qrepair/qrepair/pkg/cli/utils"
	"github.com/qrepair/qrepair/pkg/clock"
	"github.com/qrepair/qrepair/pkg/dirs"
	"github.com/spf13/cobra"
)

const (
	// DefaultAPIEndpoint is the default API endpoint used when none is configured
	DefaultAPIEndpoint = "http://localhost:3000/api"
	// envAPIEndpoint overrides the endpoint of the config file
	envAPIEndpoint = "QREPAIR_API_ENDPOINT"
)

// RunEFunc is a function type of qrepair commands
type RunEFunc func(*cobra.Command, []string) error

// Init initializes the qrepair environment and returns a new context.
// apiEndpoint is written to a new config file, and defaults to DefaultAPIEndpoint.
func Init(versionTag, apiEndpoint string) (*context.QRepairCtx, error) {
	paths := context.Paths{
		Home:   dirs.Home,
		Config: dirs.ConfigHome,
		Cache:  dirs.CacheHome,
	}

	ctx, err := initCtx(paths, versionTag, apiEndpoint)
	if err != nil {
		return nil, err
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}

func initCtx(paths context.Paths, versionTag, apiEndpoint string) (context.QRepairCtx, error) {
	ctx := context.QRepairCtx{
		Paths:   paths,
		Version: versionTag,
	}

	if err := initFiles(ctx, apiEndpoint); err != nil {
		return ctx, errors.Wrap(err, "initializing files")
	}

	ctx, err := setupCtx(ctx, apiEndpoint)
	if err != nil {
		return ctx, errors.Wrap(err, "setting up the context")
	}

	return ctx, nil
}

// resolveEndpoint picks the endpoint from the environment, then the one given
// at build time, then the config file
func resolveEndpoint(apiEndpoint string, cf config.Config) string {
	if v := os.Getenv(envAPIEndpoint); v != "" {
		return v
	}
	if apiEndpoint != "" {
		return apiEndpoint
	}

	return cf.APIEndpoint
}

// setupCtx enriches the base context with values from config file
func setupCtx(ctx context.QRepairCtx, apiEndpoint string) (context.QRepairCtx, error) {
	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}

	endpoint := resolveEndpoint(apiEndpoint, cf)

	ret := context.QRepairCtx{
		Paths:       ctx.Paths,
		Version:     ctx.Version,
		SessionKey:  cf.SessionKey,
		APIEndpoint: endpoint,
		Editor:      cf.Editor,
		Clock:       clock.New(),
		HTTPClient:  client.NewRateLimitedHTTPClient(),
	}

	return ret, nil
}

// getEditorCommand returns the system's editor command with appropriate flags,
// if necessary, to make the command wait until editor is close to exit.
func getEditorCommand() string {
	editor := os.Getenv("EDITOR")

	var ret string

	switch editor {
	case "atom":
		ret = "atom -w"
	case "subl":
		ret = "subl -n -w"
	case "code":
		ret = "code -n -w"
	case "mate":
		ret = "mate -w"
	case "vim", "nano", "emacs", "nvim", "micro":
		ret = editor
	default:
		ret = "vi"
	}

	return ret
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(ctx context.QRepairCtx, apiEndpoint string) error {
	path := config.GetPath(ctx)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	endpoint := apiEndpoint
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}

	cf := config.Config{
		Editor:      getEditorCommand(),
		APIEndpoint: endpoint,
	}

	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}

// initFiles creates, if necessary, the qrepair directories and the config file
func initFiles(ctx context.QRepairCtx, apiEndpoint string) error {
	if err := context.InitQRepairDirs(ctx.Paths); err != nil {
		return errors.Wrap(err, "creating the qrepair dir")
	}
	if err := initConfigFile(ctx, apiEndpoint); err != nil {
		return errors.Wrap(err, "generating the config file")
	}

	return nil
}
