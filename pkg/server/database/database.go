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

// Package database owns the relational store of the server: the connection,
// the schema and its additive migrations.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverSQLite is the name of the SQLite backend
	DriverSQLite = "sqlite"
	// DriverPostgres is the name of the Postgres backend
	DriverPostgres = "postgres"
)

var (
	// ErrNotReady is returned when the store is used before it has been opened
	ErrNotReady = errors.New("store is not ready")
	// ErrUnknownDriver is returned for an unsupported backend
	ErrUnknownDriver = errors.New("unknown database driver")
)

// Params are the parameters to open a store
type Params struct {
	Driver   string
	Path     string
	DSN      string
	LogLevel string
}

// Store is the single owner of the database connection. Mutations go through
// WithLock so that writers are serialized and flushed before they return.
type Store struct {
	DB *gorm.DB

	params  Params
	created bool
	ready   atomic.Bool
	mu      sync.Mutex

	// LastMigration is the report of the migration that ran when the store was opened
	LastMigration MigrationReport
}

// getDBLogLevel maps the server log level to a gorm log level
func getDBLogLevel(level string) logger.LogLevel {
	switch level {
	case log.LevelDebug:
		return logger.Info
	case log.LevelWarn:
		return logger.Warn
	case log.LevelError:
		return logger.Error
	default:
		return logger.Silent
	}
}

func newGormConfig(logLevel string) *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(getDBLogLevel(logLevel)),
	}
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", path)
}

func dialector(p Params) (gorm.Dialector, error) {
	switch p.Driver {
	case DriverSQLite, "":
		dir := filepath.Dir(p.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating database directory at %s", dir)
		}

		return sqlite.Open(sqliteDSN(p.Path)), nil
	case DriverPostgres:
		return postgres.Open(p.DSN), nil
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "'%s'", p.Driver)
	}
}

// New returns a store that is not opened yet. Ready reports false until Open succeeds.
func New(p Params) *Store {
	return &Store{params: p}
}

// Open opens the database and the store with the given parameters
func Open(p Params) (*Store, error) {
	s := New(p)
	if err := s.Open(); err != nil {
		return nil, err
	}

	return s, nil
}

// FromDB returns a ready store over an already opened connection. It creates or
// migrates the schema the same way Open does.
func FromDB(db *gorm.DB, driver string) (*Store, error) {
	s := &Store{
		DB:     db,
		params: Params{Driver: driver},
	}

	if err := s.init(); err != nil {
		return nil, err
	}

	return s, nil
}

// Open connects to the database. A store without any table gets the full
// schema and is persisted immediately. An existing store is migrated.
func (s *Store) Open() error {
	d, err := dialector(s.params)
	if err != nil {
		return err
	}

	if s.params.Driver == DriverSQLite || s.params.Driver == "" {
		_, statErr := os.Stat(s.params.Path)
		log.WithFields(log.Fields{
			"path":   s.params.Path,
			"exists": statErr == nil,
		}).Debug("Opening database file")
	}

	db, err := gorm.Open(d, newGormConfig(s.params.LogLevel))
	if err != nil {
		return errors.Wrap(err, "opening database connection")
	}

	s.DB = db

	return s.init()
}

func (s *Store) init() error {
	if !s.DB.Migrator().HasTable(&Ticket{}) {
		if err := InitSchema(s.DB); err != nil {
			return errors.Wrap(err, "creating schema")
		}
		if err := s.Persist(); err != nil {
			return errors.Wrap(err, "persisting new schema")
		}

		s.created = true
		log.WithFields(log.Fields{
			"driver": s.Driver(),
		}).Info("Database created")
	} else {
		log.WithFields(log.Fields{
			"driver": s.Driver(),
		}).Info("Database loaded")

		s.LastMigration = s.Migrate()
	}

	s.ready.Store(true)

	return nil
}

// Driver returns the name of the backend
func (s *Store) Driver() string {
	if s.params.Driver == "" {
		return DriverSQLite
	}

	return s.params.Driver
}

// Created reports whether the schema was created when the store was opened
func (s *Store) Created() bool {
	return s.created
}

// Ready reports whether the store has been opened and its schema is current
func (s *Store) Ready() bool {
	return s.ready.Load()
}

// Persist flushes the store to its durable image. For SQLite the write-ahead
// log is checkpointed into the main database file. Postgres commits are
// already durable.
func (s *Store) Persist() error {
	if s.Driver() != DriverSQLite {
		return nil
	}

	if err := s.DB.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
		return errors.Wrap(err, "checkpointing the write-ahead log")
	}

	return nil
}

// WithLock runs fn in a transaction while holding the single writer lock, and
// persists the store once the transaction commits.
func (s *Store) WithLock(fn func(tx *gorm.DB) error) error {
	if !s.Ready() {
		return ErrNotReady
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.DB.Transaction(fn); err != nil {
		return err
	}

	return s.Persist()
}

// ContainsExpr returns a case-sensitive substring predicate over the given
// column, with a single placeholder for the needle.
func (s *Store) ContainsExpr(column string) string {
	if s.Driver() == DriverPostgres {
		return fmt.Sprintf(`strpos("%s", ?) > 0`, column)
	}

	return fmt.Sprintf(`instr("%s", ?) > 0`, column)
}

// Close closes the underlying connection
func (s *Store) Close() error {
	if s.DB == nil {
		return nil
	}

	sqlDB, err := s.DB.DB()
	if err != nil {
		return errors.Wrap(err, "getting the connection pool")
	}

	return sqlDB.Close()
}
