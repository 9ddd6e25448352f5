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

package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/app"
	"github.com/qrepair/qrepair/pkg/server/metrics"
	mw "github.com/qrepair/qrepair/pkg/server/middleware"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	APIRoutes   []Route
}

// NewAPIRoutes returns a new api routes. Fixed paths are listed before the
// patterns with an id that would shadow them.
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	return []Route{
		// auth
		{"POST", "/auth/login", c.Auth.Login, true},
		{"POST", "/auth/logout", c.Auth.Logout, true},
		{"GET", "/auth/check", c.Auth.Check, true},

		// tickets
		{"GET", "/manutenzioni", mw.Auth(a, c.Tickets.Index), true},
		{"POST", "/manutenzioni", mw.Auth(a, c.Tickets.Create), true},
		{"DELETE", "/manutenzioni", mw.Auth(a, c.Tickets.Clear), true},
		{"GET", "/manutenzioni/{id}", c.Tickets.Show, true},
		{"GET", "/manutenzioni/{id}/qrcode", c.Tickets.QRCode, true},
		{"PUT", "/manutenzioni/{id}", mw.Auth(a, c.Tickets.Update), true},
		{"PUT", "/manutenzioni/{id}/data", mw.Auth(a, c.Tickets.UpdateDate), true},
		{"DELETE", "/manutenzioni/{id}", mw.Auth(a, c.Tickets.Delete), true},
		{"GET", "/search/{query}", mw.Auth(a, c.Tickets.Search), true},
		{"GET", "/stats", mw.Auth(a, c.Tickets.Stats), true},
		{"GET", "/count", mw.Auth(a, c.Tickets.Count), true},
		{"GET", "/export", mw.Auth(a, c.Tickets.Export), true},
		{"POST", "/import", mw.Auth(a, c.Tickets.Import), true},

		// users
		{"GET", "/users", mw.Auth(a, c.Users.Index), true},
		{"POST", "/users", mw.Auth(a, c.Users.Create), true},
		{"PUT", "/users/{id}", mw.Auth(a, c.Users.Update), true},
		{"DELETE", "/users/{id}", mw.Auth(a, c.Users.Delete), true},

		// clients
		{"GET", "/clienti", mw.Auth(a, c.Clients.Index), true},
		{"POST", "/clienti", mw.Auth(a, c.Clients.Create), true},
		{"GET", "/clienti/search", mw.Auth(a, c.Clients.Search), true},
		{"GET", "/clienti/{id}", mw.Auth(a, c.Clients.Show), true},
		{"PUT", "/clienti/{id}", mw.Auth(a, c.Clients.Update), true},
		{"DELETE", "/clienti/{id}", mw.Auth(a, c.Clients.Delete), true},

		// settings
		{"GET", "/settings", c.Settings.Show, true},
		{"POST", "/settings", mw.Auth(a, c.Settings.Update), true},
	}
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, app *app.App, routes []Route) {
	for _, route := range routes {
		wrappedHandler := wrapper(route.Handler, app, route.RateLimit)

		router.
			Handle(route.Pattern, mw.Instrument("/api"+route.Pattern, wrappedHandler)).
			Methods(route.Method)
	}
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)

	apiRouter := router.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter, mw.APIMw, app, rc.APIRoutes)
	apiRouter.NotFoundHandler = mw.Ready(app, http.HandlerFunc(mw.NotFound))

	router.HandleFunc("/health", rc.Controllers.Health.Index).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// catch-all
	router.NotFoundHandler = http.HandlerFunc(mw.NotFound)

	return mw.Global(router), nil
}
