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

package database

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/log"
	"gorm.io/gorm"
)

// schemaModel describes a table of the current schema and the names of its indexes
type schemaModel struct {
	model   interface{}
	indexes []string
}

// currentSchema lists the tables in the order they are created
var currentSchema = []schemaModel{
	{model: &Ticket{}, indexes: []string{"idx_nome", "idx_tel", "idx_data"}},
	{model: &User{}, indexes: []string{"idx_username"}},
	{model: &Client{}, indexes: []string{"idx_cliente_tel", "idx_cliente_nome"}},
	{model: &Session{}, indexes: []string{"idx_session_key", "idx_session_user", "idx_session_expiry"}},
}

// MigrationReport lists the migration steps that were applied and the ones that failed
type MigrationReport struct {
	Applied []string
	Failed  []string
}

// migrationStep is a single additive change to the schema
type migrationStep struct {
	name string
	run  func(m gorm.Migrator) error
}

// InitSchema creates every table of the current schema, along with the indexes
func InitSchema(db *gorm.DB) error {
	m := db.Migrator()

	for _, sm := range currentSchema {
		if err := m.CreateTable(sm.model); err != nil {
			return errors.Wrapf(err, "creating table for %T", sm.model)
		}
	}

	return nil
}

// pendingSteps introspects the database and returns the steps needed to bring
// it up to the current schema. It never returns a step that drops or renames.
func pendingSteps(db *gorm.DB) ([]migrationStep, error) {
	m := db.Migrator()
	var steps []migrationStep

	for _, sm := range currentSchema {
		model := sm.model

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, errors.Wrapf(err, "parsing %T", model)
		}
		table := stmt.Schema.Table

		if !m.HasTable(model) {
			steps = append(steps, migrationStep{
				name: fmt.Sprintf("create table %s", table),
				run: func(m gorm.Migrator) error {
					return m.CreateTable(model)
				},
			})
			continue
		}

		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" || m.HasColumn(model, field.DBName) {
				continue
			}

			fieldName := field.Name
			steps = append(steps, migrationStep{
				name: fmt.Sprintf("add column %s.%s", table, field.DBName),
				run: func(m gorm.Migrator) error {
					return m.AddColumn(model, fieldName)
				},
			})
		}

		for _, idx := range sm.indexes {
			if m.HasIndex(model, idx) {
				continue
			}

			indexName := idx
			steps = append(steps, migrationStep{
				name: fmt.Sprintf("create index %s", indexName),
				run: func(m gorm.Migrator) error {
					return m.CreateIndex(model, indexName)
				},
			})
		}
	}

	return steps, nil
}

// Migrate brings the schema up to date. Every step is best-effort: a failing
// step is logged and the remaining steps still run. The store is persisted
// after each applied step. Running it on an up-to-date store is a no-op.
func (s *Store) Migrate() MigrationReport {
	var report MigrationReport

	steps, err := pendingSteps(s.DB)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Warn("Inspecting schema failed")
		report.Failed = append(report.Failed, "inspect schema")

		return report
	}

	if len(steps) == 0 {
		log.Debug("Database schema is up to date")
		return report
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, step := range steps {
		if err := step.run(s.DB.Migrator()); err != nil {
			log.WithFields(log.Fields{
				"step":  step.name,
				"error": err,
			}).Warn("Migration step failed")
			report.Failed = append(report.Failed, step.name)
			continue
		}

		if err := s.Persist(); err != nil {
			log.WithFields(log.Fields{
				"step":  step.name,
				"error": err,
			}).Warn("Persisting after migration step failed")
		}

		log.WithFields(log.Fields{
			"step": step.name,
		}).Info("Migration step applied")
		report.Applied = append(report.Applied, step.name)
	}

	return report
}
