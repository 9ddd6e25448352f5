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

// Package settings stores the company details shown on printed tickets. They
// live in a JSON file next to the database and are reloaded when the file changes.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/log"
	"github.com/radovskyb/watcher"
)

// Settings are the company details
type Settings struct {
	NomeAzienda string  `json:"nomeAzienda"`
	Telefono    string  `json:"telefono"`
	Logo        *string `json:"logo"`
}

// Store holds the current settings. A store without a path keeps them in memory only.
type Store struct {
	path string

	mu      sync.RWMutex
	current Settings
	w       *watcher.Watcher
}

// Open returns a store backed by the file at the given path. A missing file
// yields empty settings. An unreadable file is logged and yields empty settings.
func Open(path string) *Store {
	s := &Store{path: path}

	if err := s.Reload(); err != nil {
		log.WithFields(log.Fields{
			"path":  path,
			"error": err,
		}).Warn("Reading settings failed, using defaults")
	}

	return s
}

// Path returns the path of the backing file
func (s *Store) Path() string {
	return s.path
}

// Get returns the current settings
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

func read(path string) (Settings, error) {
	var ret Settings

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ret, nil
	} else if err != nil {
		return ret, errors.Wrap(err, "reading file")
	}

	if err := json.Unmarshal(b, &ret); err != nil {
		return Settings{}, errors.Wrap(err, "decoding settings")
	}

	return ret, nil
}

// Reload reads the settings from the file again
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}

	v, err := read(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = v
	s.mu.Unlock()

	return nil
}

// Save replaces the settings and writes them to the file
func (s *Store) Save(v Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		if err := write(s.path, v); err != nil {
			return err
		}
	}

	s.current = v

	return nil
}

func write(path string, v Settings) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding settings")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return errors.Wrap(err, "creating temporary file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temporary file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temporary file")
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "replacing settings file")
	}

	return nil
}

// Watch reloads the settings whenever the file is changed by another process.
// The directory is polled at the given interval until Close is called.
func (s *Store) Watch(interval time.Duration) error {
	if s.path == "" {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}

	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create, watcher.Rename, watcher.Move)
	w.AddFilterHook(watcher.RegexFilterHook(regexp.MustCompile("^"+regexp.QuoteMeta(filepath.Base(s.path))+"$"), false))

	if err := w.Add(dir); err != nil {
		return errors.Wrapf(err, "watching %s", dir)
	}

	go func() {
		for {
			select {
			case <-w.Event:
				if err := s.Reload(); err != nil {
					log.WithFields(log.Fields{
						"path":  s.path,
						"error": err,
					}).Warn("Reloading settings failed")
					continue
				}

				log.WithFields(log.Fields{
					"path": s.path,
				}).Debug("Settings reloaded")
			case err := <-w.Error:
				log.ErrorWrap(err, "watching settings")
			case <-w.Closed:
				return
			}
		}
	}()

	go func() {
		if err := w.Start(interval); err != nil {
			log.ErrorWrap(err, "starting settings watcher")
		}
	}()
	w.Wait()

	s.mu.Lock()
	s.w = w
	s.mu.Unlock()

	return nil
}

// Close stops watching the file
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w != nil {
		s.w.Close()
		s.w = nil
	}
}
