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

package app

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/server/database"
	"github.com/qrepair/qrepair/pkg/server/log"
	"github.com/qrepair/qrepair/pkg/server/metrics"
	"gorm.io/gorm"
)

// NeedsURLMigration reports whether the url of the ticket with the given id
// carries a query string other than its own id
func NeedsURLMigration(url string, id int) bool {
	return strings.Contains(url, "?") && url != TicketURL(url, id)
}

// MigrateTicketURLs rewrites the url of every ticket in the legacy format, or
// pointing at another id, to the form <base>?id=<id> and returns how many were
// rewritten. Other columns are left untouched. Running it twice is a no-op.
func (a *App) MigrateTicketURLs() (int, error) {
	var migrated int

	err := a.Store.WithLock(func(tx *gorm.DB) error {
		var tickets []database.Ticket
		if err := tx.Select("id", "url").Where("url LIKE ?", "%?%").Find(&tickets).Error; err != nil {
			return errors.Wrap(err, "finding tickets")
		}

		for _, t := range tickets {
			if !NeedsURLMigration(t.URL, t.ID) {
				continue
			}

			url := TicketURL(t.URL, t.ID)
			if err := tx.Model(&database.Ticket{}).Where("id = ?", t.ID).Update("url", url).Error; err != nil {
				return errors.Wrapf(err, "updating url of ticket %d", t.ID)
			}
			migrated++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return migrated, nil
}

// Bootstrap runs the one-off tasks that follow the opening of the store. Each
// task is best-effort: a failure is logged and the next task still runs.
func (a *App) Bootstrap() {
	report := a.Store.LastMigration
	metrics.ObserveMigration(len(report.Applied), len(report.Failed))

	if _, err := a.EnsureDefaultUser(); err != nil {
		log.ErrorWrap(err, "ensuring the default user")
	}

	n, err := a.MigrateTicketURLs()
	if err != nil {
		log.ErrorWrap(err, "migrating ticket urls")
	} else if n > 0 {
		log.WithFields(log.Fields{
			"count": n,
		}).Info("Ticket urls migrated")
	}
}
