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

package cmd

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/clock"
	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/config"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/helpers"
	"github.com/qrepair/qrepair/pkg/server/log"
	"github.com/qrepair/qrepair/pkg/server/session"
	"github.com/qrepair/qrepair/pkg/server/settings"
)

// dotEnvPath is the file the environment is loaded from, relative to the working directory
const dotEnvPath = ".env"

// generatedSecretBytes is the size of the secret generated when none is configured
const generatedSecretBytes = 32

func dbParams(cfg config.Config) database.Params {
	return database.Params{
		Driver:   cfg.DBDriver,
		Path:     cfg.DBPath,
		DSN:      cfg.DatabaseURL,
		LogLevel: cfg.LogLevel,
	}
}

// newCookieCodec returns the codec that signs session keys with the given
// secret. Without a secret a random one is generated, and sessions do not
// survive a restart.
func newCookieCodec(secret string) (*securecookie.SecureCookie, error) {
	hashKey := []byte(secret)
	if secret == "" {
		b, err := helpers.GetRandomBytes(generatedSecretBytes)
		if err != nil {
			return nil, errors.Wrap(err, "generating session secret")
		}

		log.Warn("SESSION_SECRET is not set. Using a random secret; sessions will not survive a restart")
		hashKey = b
	}

	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(int(session.DefaultTTL / time.Second))

	return codec, nil
}

func newSessionStore(cfg config.Config, store *database.Store, c clock.Clock) session.Store {
	if cfg.SessionStore == config.SessionStoreMemory {
		return session.NewMemoryStore(c)
	}

	return session.NewDBStore(store, c)
}

// initApp returns an app over the given store, which may not be open yet
func initApp(cfg config.Config, store *database.Store) (app.App, error) {
	codec, err := newCookieCodec(cfg.SessionSecret)
	if err != nil {
		return app.App{}, err
	}

	c := clock.New()

	return app.App{
		Store:        store,
		Clock:        c,
		Sessions:     newSessionStore(cfg, store, c),
		Settings:     settings.Open(cfg.SettingsPath),
		CookieCodec:  codec,
		AppEnv:       cfg.AppEnv,
		Port:         cfg.Port,
		DemoMode:     cfg.DemoMode,
		CookieSecure: cfg.CookieSecure,
	}, nil
}

// printFlags prints flags with -- prefix for consistency with CLI
func printFlags(fs *flag.FlagSet) {
	fs.VisitAll(func(f *flag.Flag) {
		fmt.Printf("  --%s", f.Name)

		// Print type hint for non-boolean flags
		name, usage := flag.UnquoteUsage(f)
		if name != "" {
			fmt.Printf(" %s", name)
		}
		fmt.Println()

		if usage != "" {
			fmt.Printf("    \t%s", usage)
			if f.DefValue != "" && f.DefValue != "false" {
				fmt.Printf(" (default: %s)", f.DefValue)
			}
			fmt.Println()
		}
	})
}

// setupFlagSet creates a FlagSet with standard usage format
func setupFlagSet(name, usageCmd string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Printf(`Usage:
  %s [flags]

Flags:
`, usageCmd)
		printFlags(fs)
	}
	return fs
}

// requireString validates that a required string flag is not empty
func requireString(fs *flag.FlagSet, value, fieldName string) {
	if value == "" {
		fmt.Printf("Error: %s is required\n", fieldName)
		fs.Usage()
		os.Exit(1)
	}
}

// setupAppWithStore loads the config, opens the store and returns an app
// for the admin commands, along with a cleanup function. Demo mode does not
// apply to them.
func setupAppWithStore(fs *flag.FlagSet, dbPath string) (*app.App, func()) {
	if err := config.LoadDotEnv(dotEnvPath); err != nil {
		log.ErrorWrap(err, "loading environment")
	}

	cfg, err := config.New(config.Params{
		DBPath: dbPath,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}
	log.SetLevel(cfg.LogLevel)

	store, err := database.Open(dbParams(cfg))
	if err != nil {
		log.ErrorWrap(err, "opening database")
		os.Exit(1)
	}

	a, err := initApp(cfg, store)
	if err != nil {
		log.ErrorWrap(err, "initializing app")
		os.Exit(1)
	}
	a.DemoMode = false

	cleanup := func() {
		if err := store.Close(); err != nil {
			log.ErrorWrap(err, "closing database")
		}
	}

	return &a, cleanup
}
