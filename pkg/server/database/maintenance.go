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

package database

import (
	"time"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/log"
	"github.com/robfig/cron"
)

// Job is a periodic maintenance task
type Job struct {
	Name string
	// Spec is a cron expression or a descriptor such as "@hourly"
	Spec string
	Run  func() error
}

func (j Job) wrap() func() {
	return func() {
		start := time.Now()

		if err := j.Run(); err != nil {
			log.WithFields(log.Fields{
				"job": j.Name,
			}).ErrorWrap(err, "maintenance job failed")
			return
		}

		log.WithFields(log.Fields{
			"job":      j.Name,
			"duration": time.Since(start).String(),
		}).Debug("Maintenance job done")
	}
}

// OptimizeJob returns a job that refreshes the query planner statistics of the store
func OptimizeJob(s *Store) Job {
	return Job{
		Name: "optimize",
		Spec: "@daily",
		Run: func() error {
			stmt := "PRAGMA optimize"
			if s.Driver() == DriverPostgres {
				stmt = "ANALYZE"
			}

			if err := s.DB.Exec(stmt).Error; err != nil {
				return errors.Wrap(err, "optimizing")
			}

			return s.Persist()
		},
	}
}

// StartMaintenance schedules the given jobs and starts the scheduler.
// The caller stops the returned scheduler on shutdown.
func StartMaintenance(jobs ...Job) (*cron.Cron, error) {
	c := cron.New()

	for _, j := range jobs {
		if err := c.AddFunc(j.Spec, j.wrap()); err != nil {
			return nil, errors.Wrapf(err, "scheduling %s", j.Name)
		}
	}

	c.Start()

	return c, nil
}
