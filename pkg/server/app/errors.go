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
	"errors"

	"github.com/qrepair/qrepair/pkg/server/database"
)

// Kind classifies an error so that callers can map it to a response
type Kind int

const (
	// KindInternal is an unexpected failure
	KindInternal Kind = iota
	// KindValidation is a missing or invalid field
	KindValidation
	// KindNotFound is a missing record
	KindNotFound
	// KindAuth is a missing session or invalid credentials
	KindAuth
	// KindConflict is a request that would break a uniqueness or cardinality rule
	KindConflict
	// KindForbidden is an operation disabled by configuration
	KindForbidden
	// KindNotReady is a request made before the store is open
	KindNotReady
)

// Error is an error with a kind and a message meant for the end user
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	// ErrTicketFieldsRequired is returned when a ticket lacks a required field
	ErrTicketFieldsRequired = newError(KindValidation, "Campi obbligatori: nome, tel, data")
	// ErrTicketDateRequired is returned when a date update lacks the date
	ErrTicketDateRequired = newError(KindValidation, "Campo obbligatorio: data")
	// ErrRecordsNotArray is returned when an import payload does not carry a list of records
	ErrRecordsNotArray = newError(KindValidation, "Il campo records deve essere un array")
	// ErrTicketNotFound is returned when a ticket does not exist
	ErrTicketNotFound = newError(KindNotFound, "Record non trovato")
	// ErrTicketURLMissing is returned when a ticket has no url to encode
	ErrTicketURLMissing = newError(KindNotFound, "URL non disponibile")

	// ErrClientFieldsRequired is returned when a client lacks a required field
	ErrClientFieldsRequired = newError(KindValidation, "Campi obbligatori: nome, cognome, tel, lingua")
	// ErrLanguageInvalid is returned for a language outside ValidLanguages
	ErrLanguageInvalid = newError(KindValidation, "Lingua non valida. Valori accettati: it, en, de")
	// ErrClientNotFound is returned when a client does not exist
	ErrClientNotFound = newError(KindNotFound, "Cliente non trovato")

	// ErrUserFieldsRequired is returned when a new user lacks a required field
	ErrUserFieldsRequired = newError(KindValidation, "Campi obbligatori: username, password, nome")
	// ErrPasswordTooShort is returned for a password shorter than minPasswordLength
	ErrPasswordTooShort = newError(KindValidation, "La password deve essere di almeno 6 caratteri")
	// ErrPasswordNoUppercase is returned for a password without an uppercase letter
	ErrPasswordNoUppercase = newError(KindValidation, "La password deve contenere almeno una lettera maiuscola")
	// ErrPasswordNoSpecial is returned for a password without a special character
	ErrPasswordNoSpecial = newError(KindValidation, "La password deve contenere almeno un carattere speciale")
	// ErrDuplicateUsername is returned when the username is taken
	ErrDuplicateUsername = newError(KindConflict, "Username già esistente")
	// ErrLastUser is returned when deleting the only remaining user
	ErrLastUser = newError(KindConflict, "Impossibile eliminare l'ultimo utente")
	// ErrUserNotFound is returned when a user does not exist
	ErrUserNotFound = newError(KindNotFound, "Utente non trovato")
	// ErrDemoUserCreation is returned when creating a user in demo mode
	ErrDemoUserCreation = newError(KindForbidden, "Demo mode: User creation is disabled")
	// ErrDemoUserModification is returned when updating a user in demo mode
	ErrDemoUserModification = newError(KindForbidden, "Demo mode: User modification is disabled")
	// ErrDemoUserDeletion is returned when deleting a user in demo mode
	ErrDemoUserDeletion = newError(KindForbidden, "Demo mode: User deletion is disabled")

	// ErrCredentialsRequired is returned when a login lacks the username or the password
	ErrCredentialsRequired = newError(KindAuth, "Username e password richiesti")
	// ErrLoginInvalid is returned for an unknown user or a wrong password alike
	ErrLoginInvalid = newError(KindAuth, "Credenziali non valide")
	// ErrUnauthenticated is returned for a request without a valid session
	ErrUnauthenticated = newError(KindAuth, "Non autenticato")

	// ErrSettingsFieldsRequired is returned when the settings lack a required field
	ErrSettingsFieldsRequired = newError(KindValidation, "Campi obbligatori: nomeAzienda, telefono")

	// ErrNotReady is returned while the store is still opening
	ErrNotReady = newError(KindNotReady, "Database non ancora pronto")
)

// KindOf returns the kind of the given error. Errors that were not raised by
// this package are internal, except a store that is not ready yet.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	if errors.Is(err, database.ErrNotReady) {
		return KindNotReady
	}

	return KindInternal
}

// MessageOf returns the message to show to the end user for the given error
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}

	if errors.Is(err, database.ErrNotReady) {
		return ErrNotReady.Message
	}

	return err.Error()
}
