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

package database

import (
	"time"
)

// Ticket is a model for a maintenance record
type Ticket struct {
	ID            int     `json:"id" gorm:"column:id;primaryKey"`
	Nome          string  `json:"nome" gorm:"column:nome;type:text;not null;index:idx_nome"`
	Tel           string  `json:"tel" gorm:"column:tel;type:text;not null;index:idx_tel"`
	Modello       string  `json:"modello" gorm:"column:modello;type:text"`
	SerialNumber  string  `json:"serialNumber" gorm:"column:serialNumber;type:text;default:''"`
	Data          string  `json:"data" gorm:"column:data;type:text;not null"`
	DataCreazione string  `json:"dataCreazione" gorm:"column:dataCreazione;type:text;not null;index:idx_data"`
	URL           string  `json:"url" gorm:"column:url;type:text;not null"`
	Lingua        string  `json:"lingua" gorm:"column:lingua;type:text;default:'it'"`
	Scadenza      *string `json:"scadenza" gorm:"column:scadenza;type:text"`
	ClientID      *int    `json:"client_id" gorm:"column:client_id"`
}

// TableName overrides the table name used by Ticket
func (Ticket) TableName() string {
	return "manutenzioni"
}

// Client is a model for a customer
type Client struct {
	ID        int     `json:"id" gorm:"column:id;primaryKey"`
	Nome      string  `json:"nome" gorm:"column:nome;type:text;not null;index:idx_cliente_nome,priority:1"`
	Cognome   string  `json:"cognome" gorm:"column:cognome;type:text;not null;index:idx_cliente_nome,priority:2"`
	Email     *string `json:"email" gorm:"column:email;type:text"`
	Tel       string  `json:"tel" gorm:"column:tel;type:text;not null;index:idx_cliente_tel"`
	Lingua    string  `json:"lingua" gorm:"column:lingua;type:text;not null"`
	Piva      *string `json:"piva" gorm:"column:piva;type:text"`
	CreatedAt string  `json:"createdAt" gorm:"column:createdAt;type:text;not null;autoCreateTime:false"`
}

// TableName overrides the table name used by Client
func (Client) TableName() string {
	return "clienti"
}

// User is a model for an operator who can sign in
type User struct {
	ID        int    `json:"id" gorm:"column:id;primaryKey"`
	Username  string `json:"username" gorm:"column:username;type:text;unique;not null;index:idx_username"`
	Password  string `json:"-" gorm:"column:password;type:text;not null"`
	Nome      string `json:"nome" gorm:"column:nome;type:text;not null"`
	CreatedAt string `json:"createdAt" gorm:"column:createdAt;type:text;not null;autoCreateTime:false"`
}

// TableName overrides the table name used by User
func (User) TableName() string {
	return "users"
}

// Session is a persisted user session
type Session struct {
	ID        int       `gorm:"primaryKey"`
	Key       string    `gorm:"type:text;not null;uniqueIndex:idx_session_key"`
	UserID    int       `gorm:"index:idx_session_user"`
	Username  string    `gorm:"type:text"`
	Nome      string    `gorm:"type:text"`
	ExpiresAt time.Time `gorm:"index:idx_session_expiry"`
	CreatedAt time.Time
}

// TableName overrides the table name used by Session
func (Session) TableName() string {
	return "sessions"
}
