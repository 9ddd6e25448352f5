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

package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/dirs"
)

const (
	// AppEnvProduction represents an app environment for production.
	AppEnvProduction string = "PRODUCTION"
	// AppEnvTest represents an app environment for tests.
	AppEnvTest string = "TEST"
	// DefaultDataDir is the default directory name for the server data
	DefaultDataDir = "qrepair"
	// DefaultDBFilename is the default database filename
	DefaultDBFilename = "manutenzioni.db"
	// DefaultSettingsFilename is the default settings filename
	DefaultSettingsFilename = "settings.json"
	// DefaultPort is the port the server listens on unless configured
	DefaultPort = "5126"

	// DBDriverSQLite selects the SQLite file backend
	DBDriverSQLite = "sqlite"
	// DBDriverPostgres selects the Postgres backend
	DBDriverPostgres = "postgres"

	// SessionStoreMemory keeps sessions in process memory
	SessionStoreMemory = "memory"
	// SessionStoreDB keeps sessions in the database
	SessionStoreDB = "db"
)

var (
	// DefaultDBPath is the default path to the database file
	DefaultDBPath = filepath.Join(dirs.DataHome, DefaultDataDir, DefaultDBFilename)
	// DefaultSettingsPath is the default path to the settings file
	DefaultSettingsPath = filepath.Join(dirs.DataHome, DefaultDataDir, DefaultSettingsFilename)
)

var (
	// ErrDBMissingPath is an error for an incomplete configuration missing the database path
	ErrDBMissingPath = errors.New("DB Path is empty")
	// ErrPortInvalid is an error for an incomplete configuration with invalid port
	ErrPortInvalid = errors.New("Invalid Port")
	// ErrDBDriverInvalid is an error for an unsupported database driver
	ErrDBDriverInvalid = errors.New("Invalid DB driver")
	// ErrDSNMissing is an error for a postgres configuration without a connection string
	ErrDSNMissing = errors.New("DATABASE_URL is empty")
	// ErrSessionStoreInvalid is an error for an unsupported session store
	ErrSessionStoreInvalid = errors.New("Invalid session store")
)

// LoadDotEnv loads environment variables from the given file, if it exists.
// Variables already present in the environment are not overridden.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}

	return nil
}

func readBoolEnv(name string) bool {
	v, err := strconv.ParseBool(os.Getenv(name))
	if err != nil {
		return false
	}

	return v
}

// getOrEnv returns value if non-empty, otherwise env var, otherwise default
func getOrEnv(value, envKey, defaultVal string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return defaultVal
}

// Config is an application configuration
type Config struct {
	AppEnv        string
	Port          string
	DBDriver      string
	DBPath        string
	DatabaseURL   string
	SettingsPath  string
	SessionSecret string
	SessionStore  string
	DemoMode      bool
	CookieSecure  bool
	LogLevel      string
}

// Params are the configuration parameters for creating a new Config
type Params struct {
	AppEnv        string
	Port          string
	DBDriver      string
	DBPath        string
	DatabaseURL   string
	SettingsPath  string
	SessionSecret string
	SessionStore  string
	DemoMode      bool
	CookieSecure  bool
	LogLevel      string
}

// New constructs and returns a new validated config.
// Empty string params will fall back to environment variables and defaults.
func New(p Params) (Config, error) {
	c := Config{
		AppEnv:        getOrEnv(p.AppEnv, "APP_ENV", AppEnvProduction),
		Port:          getOrEnv(p.Port, "PORT", DefaultPort),
		DBDriver:      getOrEnv(p.DBDriver, "DB_DRIVER", DBDriverSQLite),
		DBPath:        getOrEnv(p.DBPath, "DB_PATH", DefaultDBPath),
		DatabaseURL:   getOrEnv(p.DatabaseURL, "DATABASE_URL", ""),
		SettingsPath:  getOrEnv(p.SettingsPath, "SETTINGS_PATH", DefaultSettingsPath),
		SessionSecret: getOrEnv(p.SessionSecret, "SESSION_SECRET", ""),
		SessionStore:  getOrEnv(p.SessionStore, "SESSION_STORE", SessionStoreDB),
		DemoMode:      p.DemoMode || readBoolEnv("DEMO_MODE"),
		CookieSecure:  p.CookieSecure || readBoolEnv("COOKIE_SECURE"),
		LogLevel:      getOrEnv(p.LogLevel, "LOG_LEVEL", "info"),
	}

	if err := validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}

// IsProd checks if the app environment is configured to be production.
func (c Config) IsProd() bool {
	return c.AppEnv == AppEnvProduction
}

// IsTest checks if the app environment is configured to be test.
func (c Config) IsTest() bool {
	return c.AppEnv == AppEnvTest
}

func validate(c Config) error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.Wrapf(ErrPortInvalid, "'%s'", c.Port)
	}

	switch c.DBDriver {
	case DBDriverSQLite:
		if c.DBPath == "" {
			return ErrDBMissingPath
		}
	case DBDriverPostgres:
		if c.DatabaseURL == "" {
			return ErrDSNMissing
		}
	default:
		return errors.Wrapf(ErrDBDriverInvalid, "'%s'", c.DBDriver)
	}

	if c.SessionStore != SessionStoreMemory && c.SessionStore != SessionStoreDB {
		return errors.Wrapf(ErrSessionStoreInvalid, "'%s'", c.SessionStore)
	}

	return nil
}
