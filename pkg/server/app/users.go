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

package app

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	bcryptCost        = 10
	minPasswordLength = 6
)

var (
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	specialRe   = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{}|;:,.<>?]`)
)

// UserParams are the fields of a user supplied by a caller. On update, an
// empty field is left unchanged.
type UserParams struct {
	Username string
	Password string
	Nome     string
}

// ValidatePassword checks the password policy
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if !uppercaseRe.MatchString(password) {
		return ErrPasswordNoUppercase
	}
	if !specialRe.MatchString(password) {
		return ErrPasswordNoSpecial
	}

	return nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}

	return string(b), nil
}

func usernameTaken(tx *gorm.DB, username string, exceptID int) (bool, error) {
	var count int64
	err := tx.Model(&database.User{}).Where("username = ? AND id != ?", username, exceptID).Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "counting users")
	}

	return count > 0, nil
}

func (a *App) insertUser(username, password, nome string) (database.User, error) {
	hashed, err := hashPassword(password)
	if err != nil {
		return database.User{}, err
	}

	user := database.User{
		Username:  username,
		Password:  hashed,
		Nome:      nome,
		CreatedAt: a.now(),
	}

	err = a.Store.WithLock(func(tx *gorm.DB) error {
		taken, err := usernameTaken(tx, username, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateUsername
		}

		if err := tx.Create(&user).Error; err != nil {
			return errors.Wrap(err, "inserting user")
		}

		return nil
	})
	if err != nil {
		return database.User{}, err
	}

	return user, nil
}

// CreateUser creates a user. The username is stored in lowercase.
func (a *App) CreateUser(p UserParams) (database.User, error) {
	if a.DemoMode {
		return database.User{}, ErrDemoUserCreation
	}

	username := normalizeUsername(p.Username)
	if username == "" || p.Password == "" || p.Nome == "" {
		return database.User{}, ErrUserFieldsRequired
	}
	if err := ValidatePassword(p.Password); err != nil {
		return database.User{}, err
	}

	return a.insertUser(username, p.Password, p.Nome)
}

// GetUsers returns all users ordered by id
func (a *App) GetUsers() ([]database.User, error) {
	users := []database.User{}
	if err := a.Store.DB.Order("id").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "finding users")
	}

	return users, nil
}

func (a *App) findUser(cond string, arg interface{}) (database.User, error) {
	var user database.User

	err := a.Store.DB.Where(cond, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrUserNotFound
	} else if err != nil {
		return user, errors.Wrap(err, "finding user")
	}

	return user, nil
}

// GetUser returns the user with the given id
func (a *App) GetUser(id int) (database.User, error) {
	return a.findUser("id = ?", id)
}

// GetUserByUsername returns the user with the given username, ignoring case
func (a *App) GetUserByUsername(username string) (database.User, error) {
	return a.findUser("username = ?", normalizeUsername(username))
}

// UpdateUser updates the non-empty fields of a user
func (a *App) UpdateUser(id int, p UserParams) error {
	if a.DemoMode {
		return ErrDemoUserModification
	}

	fields := map[string]interface{}{}
	if username := normalizeUsername(p.Username); username != "" {
		fields["username"] = username
	}
	if p.Nome != "" {
		fields["nome"] = p.Nome
	}
	if p.Password != "" {
		if err := ValidatePassword(p.Password); err != nil {
			return err
		}

		hashed, err := hashPassword(p.Password)
		if err != nil {
			return err
		}
		fields["password"] = hashed
	}

	return a.Store.WithLock(func(tx *gorm.DB) error {
		var user database.User
		err := tx.Where("id = ?", id).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		} else if err != nil {
			return errors.Wrap(err, "finding user")
		}

		if len(fields) == 0 {
			return nil
		}

		if username, ok := fields["username"]; ok {
			taken, err := usernameTaken(tx, username.(string), id)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateUsername
			}
		}

		if err := tx.Model(&database.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return errors.Wrap(err, "updating user")
		}

		return nil
	})
}

// DeleteUser deletes a user. The last remaining user cannot be deleted.
func (a *App) DeleteUser(id int) error {
	if a.DemoMode {
		return ErrDemoUserDeletion
	}

	return a.Store.WithLock(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.User{}).Count(&count).Error; err != nil {
			return errors.Wrap(err, "counting users")
		}
		if count <= 1 {
			return ErrLastUser
		}

		res := tx.Where("id = ?", id).Delete(&database.User{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "deleting user")
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}

// CountUsers returns the number of users
func (a *App) CountUsers() (int64, error) {
	var count int64
	if err := a.Store.DB.Model(&database.User{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "counting users")
	}

	return count, nil
}

// ResetPassword sets a new password for the user with the given username
func (a *App) ResetPassword(username, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}

	return a.Store.WithLock(func(tx *gorm.DB) error {
		res := tx.Model(&database.User{}).Where("username = ?", normalizeUsername(username)).Update("password", hashed)
		if res.Error != nil {
			return errors.Wrap(res.Error, "updating password")
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}

// EnsureDefaultUser creates the default user when no user exists and reports
// whether it did. The default credentials are demo/demo in demo mode and
// admin/admin otherwise.
func (a *App) EnsureDefaultUser() (bool, error) {
	count, err := a.CountUsers()
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	username, password, nome := "admin", "admin", "Amministratore"
	if a.DemoMode {
		username, password, nome = "demo", "demo", "Demo User"
	}

	if _, err := a.insertUser(username, password, nome); err != nil {
		return false, errors.Wrap(err, "creating default user")
	}

	log.WithFields(log.Fields{
		"username": username,
		"demo":     a.DemoMode,
	}).Info("Default user created")

	return true, nil
}
