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

// Package presenters shapes the models returned by the API
package presenters

import (
	"github.com/qrepair/qrepair/pkg/server/database"
)

// User is a result of PresentUsers. It never carries the password hash.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Nome      string `json:"nome"`
	CreatedAt string `json:"createdAt"`
}

// PresentUser presents a user
func PresentUser(user database.User) User {
	return User{
		ID:        user.ID,
		Username:  user.Username,
		Nome:      user.Nome,
		CreatedAt: user.CreatedAt,
	}
}

// PresentUsers presents users
func PresentUsers(users []database.User) []User {
	ret := []User{}

	for _, user := range users {
		p := PresentUser(user)
		ret = append(ret, p)
	}

	return ret
}
