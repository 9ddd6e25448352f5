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
	"github.com/qrepair/qrepair/pkg/server/app"
)

// Controllers is a group of controllers
type Controllers struct {
	Auth     *Auth
	Tickets  *Tickets
	Clients  *Clients
	Users    *Users
	Settings *Settings
	Health   *Health
}

// New returns a new group of controllers
func New(app *app.App) *Controllers {
	c := Controllers{}

	c.Auth = NewAuth(app)
	c.Tickets = NewTickets(app)
	c.Clients = NewClients(app)
	c.Users = NewUsers(app)
	c.Settings = NewSettings(app)
	c.Health = NewHealth(app)

	return &c
}
