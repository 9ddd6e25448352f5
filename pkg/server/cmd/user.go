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

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/prompt"
	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/log"
)

// confirm prompts for user input to confirm a choice
func confirm(r io.Reader, question string, optimistic bool) (bool, error) {
	message := prompt.FormatQuestion(question, optimistic)
	fmt.Print(message + " ")

	confirmed, err := prompt.ReadYesNo(r, optimistic)
	if err != nil {
		return false, errors.Wrap(err, "reading stdin")
	}

	return confirmed, nil
}

// exitWithError prints the message of a domain error, or logs any other error, and exits
func exitWithError(err error, msg string) {
	if app.KindOf(err) != app.KindInternal {
		fmt.Printf("Error: %s\n", app.MessageOf(err))
	} else {
		log.ErrorWrap(err, msg)
	}

	os.Exit(1)
}

func userCreateCmd(args []string) {
	fs := setupFlagSet("create", "qrepair-server user create")

	username := fs.String("username", "", "Username (required)")
	password := fs.String("password", "", "User password (required)")
	nome := fs.String("nome", "", "Display name (default: the username)")
	dbPath := fs.String("dbPath", "", "Path to SQLite database file (env: DB_PATH, default: $XDG_DATA_HOME/qrepair/manutenzioni.db)")

	fs.Parse(args)

	requireString(fs, *username, "username")
	requireString(fs, *password, "password")

	displayName := *nome
	if displayName == "" {
		displayName = *username
	}

	a, cleanup := setupAppWithStore(fs, *dbPath)
	defer cleanup()

	user, err := a.CreateUser(app.UserParams{
		Username: *username,
		Password: *password,
		Nome:     displayName,
	})
	if err != nil {
		exitWithError(err, "creating user")
	}

	fmt.Printf("User created successfully\n")
	fmt.Printf("Username: %s\n", user.Username)
}

func userRemoveCmd(args []string, stdin io.Reader) {
	fs := setupFlagSet("remove", "qrepair-server user remove")

	username := fs.String("username", "", "Username (required)")
	dbPath := fs.String("dbPath", "", "Path to SQLite database file (env: DB_PATH, default: $XDG_DATA_HOME/qrepair/manutenzioni.db)")

	fs.Parse(args)

	requireString(fs, *username, "username")

	a, cleanup := setupAppWithStore(fs, *dbPath)
	defer cleanup()

	user, err := a.GetUserByUsername(*username)
	if err != nil {
		exitWithError(err, "finding user")
	}

	ok, err := confirm(stdin, fmt.Sprintf("Remove user %s?", user.Username), false)
	if err != nil {
		log.ErrorWrap(err, "getting confirmation")
		os.Exit(1)
	}
	if !ok {
		fmt.Println("Aborted by user")
		return
	}

	if err := a.DeleteUser(user.ID); err != nil {
		exitWithError(err, "removing user")
	}

	fmt.Printf("User removed successfully\n")
	fmt.Printf("Username: %s\n", user.Username)
}

func userResetPasswordCmd(args []string) {
	fs := setupFlagSet("reset-password", "qrepair-server user reset-password")

	username := fs.String("username", "", "Username (required)")
	password := fs.String("password", "", "New password (required)")
	dbPath := fs.String("dbPath", "", "Path to SQLite database file (env: DB_PATH, default: $XDG_DATA_HOME/qrepair/manutenzioni.db)")

	fs.Parse(args)

	requireString(fs, *username, "username")
	requireString(fs, *password, "password")

	a, cleanup := setupAppWithStore(fs, *dbPath)
	defer cleanup()

	if err := a.ResetPassword(*username, *password); err != nil {
		exitWithError(err, "resetting password")
	}

	fmt.Printf("Password reset successfully\n")
	fmt.Printf("Username: %s\n", *username)
}

func userCmd(args []string) {
	if len(args) < 1 {
		fmt.Println(`Usage:
  qrepair-server user [command]

Available commands:
  create: Create a new user
  remove: Remove a user
  reset-password: Reset a user's password`)
		os.Exit(1)
	}

	subcommand := args[0]
	subArgs := []string{}
	if len(args) > 1 {
		subArgs = args[1:]
	}

	switch subcommand {
	case "create":
		userCreateCmd(subArgs)
	case "remove":
		userRemoveCmd(subArgs, os.Stdin)
	case "reset-password":
		userResetPasswordCmd(subArgs)
	default:
		fmt.Printf("Unknown subcommand: %s\n\n", subcommand)
		fmt.Println(`Available commands:
  create: Create a new user
  remove: Remove a user (the last user cannot be removed)
  reset-password: Reset a user's password`)
		os.Exit(1)
	}
}
