// Package sqlite registers the application's tuned SQLite driver. Importing
// it for side effects makes the "sqlite3_app" driver name available to
// database/sql.
package sqlite

import (
	"database/sql"
	"database/sql/driver"

	"github.com/mattn/go-sqlite3"
)

func init() {
	sql.Register("sqlite3_app", &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// SQLite ships with foreign keys off; the schema relies on them.
			// WAL keeps readers unblocked while response submissions write.
			for _, pragma := range []string{
				"PRAGMA journal_mode = WAL",
				"PRAGMA foreign_keys = ON",
				"PRAGMA busy_timeout = 5000",
			} {
				if _, err := conn.Exec(pragma, []driver.Value{}); err != nil {
					return err
				}
			}
			return nil
		},
	})
}
