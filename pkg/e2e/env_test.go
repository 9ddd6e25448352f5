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

package e2e

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/cmd/login"
	"github.com/qrepair/qrepair/pkg/cli/config"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"github.com/qrepair/qrepair/pkg/cli/log"
	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/controllers"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/testutils"
	"github.com/spf13/cobra"
)

const (
	adminUsername = "admin"
	adminPassword = "admin123"
)

// testEnv is a server running in process with a CLI context pointing to it
type testEnv struct {
	Server *httptest.Server
	App    *app.App
	Ctx    context.QRepairCtx
}

func setupEnv(t *testing.T) testEnv {
	a := app.NewTest()
	a.Store = testutils.InitMemoryDB(t)
	testutils.SetupUserData(a.Store, adminUsername, adminPassword, "Amministratore")

	server := controllers.MustNewServer(t, &a)
	t.Cleanup(server.Close)

	ctx := context.InitTestCtx(t)
	ctx.APIEndpoint = server.URL + "/api"
	ctx.Editor = "vi"
	if err := config.Write(ctx, config.Config{Editor: ctx.Editor, APIEndpoint: ctx.APIEndpoint}); err != nil {
		t.Fatal(errors.Wrap(err, "writing config"))
	}

	return testEnv{Server: server, App: &a, Ctx: ctx}
}

// loggedIn logs in as the admin and returns a context carrying the session key
func (env testEnv) loggedIn(t *testing.T) context.QRepairCtx {
	if _, err := login.Do(env.Ctx, adminUsername, adminPassword); err != nil {
		t.Fatal(errors.Wrap(err, "logging in"))
	}

	cf, err := config.Read(env.Ctx)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading config"))
	}

	ctx := env.Ctx
	ctx.SessionKey = cf.SessionKey

	return ctx
}

// countTickets counts the tickets in the store of the server
func (env testEnv) countTickets(t *testing.T) int64 {
	var count int64
	if err := env.App.Store.DB.Model(&database.Ticket{}).Count(&count).Error; err != nil {
		t.Fatal(errors.Wrap(err, "counting tickets"))
	}

	return count
}

// runCmd executes a command and returns what it logged
func runCmd(t *testing.T, cmd *cobra.Command, args ...string) string {
	var buf bytes.Buffer
	restore := log.SetOutput(&buf)
	defer restore()

	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatal(errors.Wrapf(err, "running %s %v", cmd.Name(), args))
	}

	return buf.String()
}
