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

package client

import (
	"net/url"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/context"
)

// Client is a customer in a response
type Client struct {
	ID        int     `json:"id"`
	Nome      string  `json:"nome"`
	Cognome   string  `json:"cognome"`
	Email     *string `json:"email"`
	Tel       string  `json:"tel"`
	Lingua    string  `json:"lingua"`
	Piva      *string `json:"piva"`
	CreatedAt string  `json:"createdAt"`
}

// ClientPayload is a payload for creating a customer
type ClientPayload struct {
	Nome    string `json:"nome"`
	Cognome string `json:"cognome"`
	Email   string `json:"email,omitempty"`
	Tel     string `json:"tel"`
	Lingua  string `json:"lingua"`
	Piva    string `json:"piva,omitempty"`
}

// User is an operator in a response
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Nome      string `json:"nome"`
	CreatedAt string `json:"createdAt"`
}

// GetClients gets every customer
func GetClients(ctx context.QRepairCtx) ([]Client, error) {
	var ret []Client
	if _, err := call(ctx, "GET", "/clienti", nil, &ret); err != nil {
		return nil, errors.Wrap(err, "getting clients")
	}

	return ret, nil
}

// SearchClients gets the customers matching the query
func SearchClients(ctx context.QRepairCtx, query string) ([]Client, error) {
	v := url.Values{}
	v.Set("q", query)

	var ret []Client
	if _, err := call(ctx, "GET", "/clienti/search?"+v.Encode(), nil, &ret); err != nil {
		return nil, errors.Wrap(err, "searching clients")
	}

	return ret, nil
}

// AddClient creates a customer
func AddClient(ctx context.QRepairCtx, p ClientPayload) (Client, error) {
	var ret Client
	if _, err := call(ctx, "POST", "/clienti", p, &ret); err != nil {
		return ret, errors.Wrap(err, "creating client")
	}

	return ret, nil
}

// GetUsers gets every operator
func GetUsers(ctx context.QRepairCtx) ([]User, error) {
	var ret []User
	if _, err := call(ctx, "GET", "/users", nil, &ret); err != nil {
		return nil, errors.Wrap(err, "getting users")
	}

	return ret, nil
}
