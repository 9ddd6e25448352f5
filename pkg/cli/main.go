/* Copyright (C) 2019, 2020, 2021, 2022, 2023, 2024, 2025 Dnote contributors
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

package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/infra"
	"github.com/qrepair/qrepair/pkg/cli/log"

	// commands
	"github.com/qrepair/qrepair/pkg/cli/cmd/add"
	"github.com/qrepair/qrepair/pkg/cli/cmd/clients"
	"github.com/qrepair/qrepair/pkg/cli/cmd/edit"
	"github.com/qrepair/qrepair/pkg/cli/cmd/export"
	"github.com/qrepair/qrepair/pkg/cli/cmd/find"
	"github.com/qrepair/qrepair/pkg/cli/cmd/importcmd"
	"github.com/qrepair/qrepair/pkg/cli/cmd/login"
	"github.com/qrepair/qrepair/pkg/cli/cmd/logout"
	"github.com/qrepair/qrepair/pkg/cli/cmd/ls"
	"github.com/qrepair/qrepair/pkg/cli/cmd/remove"
	"github.com/qrepair/qrepair/pkg/cli/cmd/root"
	"github.com/qrepair/qrepair/pkg/cli/cmd/stats"
	"github.com/qrepair/qrepair/pkg/cli/cmd/status"
	"github.com/qrepair/qrepair/pkg/cli/cmd/users"
	"github.com/qrepair/qrepair/pkg/cli/cmd/version"
	"github.com/qrepair/qrepair/pkg/cli/cmd/view"
)

// apiEndpoint and versionTag are populated during link time
var apiEndpoint string
var versionTag = "master"

func main() {
	ctx, err := infra.Init(versionTag, apiEndpoint)
	if err != nil {
		panic(errors.Wrap(err, "initializing context"))
	}

	root.Register(login.NewCmd(*ctx))
	root.Register(logout.NewCmd(*ctx))
	root.Register(status.NewCmd(*ctx))
	root.Register(add.NewCmd(*ctx))
	root.Register(ls.NewCmd(*ctx))
	root.Register(view.NewCmd(*ctx))
	root.Register(edit.NewCmd(*ctx))
	root.Register(remove.NewCmd(*ctx))
	root.Register(find.NewCmd(*ctx))
	root.Register(stats.NewCmd(*ctx))
	root.Register(export.NewCmd(*ctx))
	root.Register(importcmd.NewCmd(*ctx))
	root.Register(clients.NewCmd(*ctx))
	root.Register(users.NewCmd(*ctx))
	root.Register(version.NewCmd(*ctx))

	if err := root.Execute(); err != nil {
		log.Errorf("%s\n", err.Error())
		os.Exit(1)
	}
}
