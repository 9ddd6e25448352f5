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
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/buildinfo"
	"github.com/qrepair/qrepair/pkg/server/config"
	"github.com/qrepair/qrepair/pkg/server/controllers"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/log"
	mw "github.com/qrepair/qrepair/pkg/server/middleware"
	"github.com/qrepair/qrepair/pkg/server/session"
	"github.com/robfig/cron"
)

const (
	shutdownTimeout       = 10 * time.Second
	readHeaderTimeout     = 10 * time.Second
	settingsWatchInterval = time.Second
)

// openStore opens the store, prepares its data and starts the maintenance jobs.
// The caller stops the returned scheduler.
func openStore(a *app.App) (*cron.Cron, error) {
	if err := a.Store.Open(); err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	a.Bootstrap()

	c, err := database.StartMaintenance(
		database.OptimizeJob(a.Store),
		session.PurgeJob(a.Sessions, a.Clock.Now),
		mw.SweepJob(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "starting maintenance")
	}

	return c, nil
}

func newHandler(a *app.App) (http.Handler, error) {
	ctl := controllers.New(a)
	rc := controllers.RouteConfig{
		APIRoutes:   controllers.NewAPIRoutes(a, ctl),
		Controllers: ctl,
	}

	r, err := controllers.NewRouter(a, rc)
	if err != nil {
		return nil, errors.Wrap(err, "initializing router")
	}

	return r, nil
}

// serve serves the handler on addr until ctx is done, then shuts down gracefully
func serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func startCmd(args []string) {
	fs := setupFlagSet("start", "qrepair-server start")

	port := fs.String("port", "", "Server port (env: PORT, default: 5126)")
	dbDriver := fs.String("dbDriver", "", "Database driver: sqlite or postgres (env: DB_DRIVER, default: sqlite)")
	dbPath := fs.String("dbPath", "", "Path to SQLite database file (env: DB_PATH, default: $XDG_DATA_HOME/qrepair/manutenzioni.db)")
	settingsPath := fs.String("settingsPath", "", "Path to the settings file (env: SETTINGS_PATH, default: $XDG_DATA_HOME/qrepair/settings.json)")
	sessionStore := fs.String("sessionStore", "", "Session store: memory or db (env: SESSION_STORE, default: db)")
	demoMode := fs.Bool("demo", false, "Disable user management (env: DEMO_MODE, default: false)")
	logLevel := fs.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")

	fs.Parse(args)

	if err := config.LoadDotEnv(dotEnvPath); err != nil {
		log.ErrorWrap(err, "loading environment")
	}

	cfg, err := config.New(config.Params{
		Port:         *port,
		DBDriver:     *dbDriver,
		DBPath:       *dbPath,
		SettingsPath: *settingsPath,
		SessionStore: *sessionStore,
		DemoMode:     *demoMode,
		LogLevel:     *logLevel,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	log.SetLevel(cfg.LogLevel)

	store := database.New(dbParams(cfg))
	a, err := initApp(cfg, store)
	if err != nil {
		log.ErrorWrap(err, "initializing app")
		os.Exit(1)
	}
	defer a.Settings.Close()

	if err := a.Settings.Watch(settingsWatchInterval); err != nil {
		log.ErrorWrap(err, "watching settings")
	}

	h, err := newHandler(&a)
	if err != nil {
		panic(err)
	}

	// The store opens in the background. Until it is ready the API answers 503.
	maintenance := make(chan *cron.Cron, 1)
	go func() {
		c, err := openStore(&a)
		if err != nil {
			log.ErrorWrap(err, "database initialization failed")
			return
		}

		maintenance <- c
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"version":  buildinfo.Version,
		"port":     cfg.Port,
		"driver":   cfg.DBDriver,
		"sessions": cfg.SessionStore,
		"demo":     cfg.DemoMode,
	}).Info("QRepair server starting")

	if err := serve(ctx, fmt.Sprintf(":%s", cfg.Port), h); err != nil {
		log.ErrorWrap(err, "server failed")
		os.Exit(1)
	}

	select {
	case c := <-maintenance:
		c.Stop()
	default:
	}

	if err := store.Close(); err != nil {
		log.ErrorWrap(err, "closing database")
	}

	log.Info("QRepair server stopped")
}
