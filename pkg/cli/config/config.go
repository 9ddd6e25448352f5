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

// Package config reads and writes the YAML config of the command line client
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/cli/consts"
	"github.com/qrepair/qrepair/pkg/cli/context"
	"gopkg.in/yaml.v2"
)

// Config holds qrepair configuration
type Config struct {
	Editor      string `yaml:"editor"`
	APIEndpoint string `yaml:"apiEndpoint"`
	SessionKey  string `yaml:"sessionKey,omitempty"`
}

// GetPath returns the path to the qrepair config file
func GetPath(ctx context.QRepairCtx) string {
	return filepath.Join(context.ConfigDir(ctx.Paths), consts.ConfigFilename)
}

// Read reads the config file
func Read(ctx context.QRepairCtx) (Config, error) {
	var ret Config

	b, err := os.ReadFile(GetPath(ctx))
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}

	if err := yaml.Unmarshal(b, &ret); err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	return ret, nil
}

// Write writes the config to the config file. The file is readable only by
// its owner because it holds the session key.
func Write(ctx context.QRepairCtx, cf Config) error {
	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config into YAML")
	}

	if err := os.WriteFile(GetPath(ctx), b, 0600); err != nil {
		return errors.Wrap(err, "writing the config file")
	}

	return nil
}

// SetSessionKey stores the session key in the config file. An empty key
// removes it.
func SetSessionKey(ctx context.QRepairCtx, key string) error {
	cf, err := Read(ctx)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}

	cf.SessionKey = key

	return Write(ctx, cf)
}
