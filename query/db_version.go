package query

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"timetracker/entity"
)

const (
	TableDatabaseVersion = "database_version"

	// DriverModernc is the pure Go driver registered by modernc.org/sqlite.
	DriverModernc = "sqlite"
	// DriverCGO is the driver registered by mattn/go-sqlite3; needs a cgo build.
	DriverCGO = "sqlite3"

	// MemoryPath opens a throwaway in-memory database.
	MemoryPath = ":memory:"

	reportSchemaVersion = 1
)

// ReportDatabase mirrors the data file into SQLite so reporting tools can query it.
type ReportDatabase struct {
	*sqlx.DB
}

// OpenReportDatabase opens (or creates) the database at path and brings its
// schema up to date.
func OpenReportDatabase(driver, path string) (*ReportDatabase, error) {
	if driver != DriverModernc && driver != DriverCGO {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}
	conn, err := sqlx.Open(driver, path)
	if err != nil {
		return nil, errors.Wrap(err, "open report database")
	}
	if path == MemoryPath {
		// every connection would get its own empty database
		conn.SetMaxOpenConns(1)
	}
	db := &ReportDatabase{DB: conn}
	if err := db.updateDb(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *ReportDatabase) GetDbVersion() (int, error) {
	var dbVersion int
	err := db.Get(&dbVersion, "SELECT db_version FROM database_version LIMIT 1")
	if err != nil {
		return 0, fmt.Errorf("GetDbVersion: %w", err)
	}
	return dbVersion, nil
}

func (db *ReportDatabase) TableExists(tableName string) (bool, error) {
	query := `
		SELECT count(name)
		FROM sqlite_master
		WHERE type='table' AND name=?
	`
	var count int
	if err := db.QueryRow(query, tableName).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (db *ReportDatabase) updateDb() error {
	exist, err := db.TableExists(TableDatabaseVersion)
	if err != nil {
		return fmt.Errorf("updateDb: %w", err)
	}
	dbVersion := 0
	if exist {
		if dbVersion, err = db.GetDbVersion(); err != nil {
			return fmt.Errorf("updateDb: %w", err)
		}
	}
	if dbVersion >= reportSchemaVersion {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("updateDb: %w", err)
	}
	defer tx.Rollback()

	if !exist {
		stmts := []string{
			`CREATE TABLE database_version (db_version INTEGER DEFAULT 0)`,
			`INSERT INTO database_version VALUES (0)`,
		}
		for _, s := range stmts {
			if _, err := tx.Exec(s); err != nil {
				return fmt.Errorf("updateDb: %w", err)
			}
		}
	}

	if dbVersion < 1 {
		stmts := []string{
			`CREATE TABLE IF NOT EXISTS employees (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				position INTEGER NOT NULL,
				name TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS events (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				employee_id INTEGER NOT NULL REFERENCES employees(id),
				seq INTEGER NOT NULL,
				action TEXT NOT NULL,
				timestamp TEXT NOT NULL,
				date TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_events_date ON events(date)`,
			`UPDATE database_version SET db_version=1`,
		}
		for _, s := range stmts {
			if _, err := tx.Exec(s); err != nil {
				return fmt.Errorf("updateDb version 1: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("updateDb: error at commit: %w", err)
	}
	return nil
}

// ExportSnapshot replaces the database content with employees.
func (db *ReportDatabase) ExportSnapshot(employees []entity.Employee) error {
	tx, err := db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin export")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM events`); err != nil {
		return errors.Wrap(err, "clear events")
	}
	if _, err := tx.Exec(`DELETE FROM employees`); err != nil {
		return errors.Wrap(err, "clear employees")
	}

	for pos, emp := range employees {
		res, err := tx.Exec(`INSERT INTO employees (position, name) VALUES (?, ?)`, pos, emp.Name)
		if err != nil {
			return errors.Wrapf(err, "insert employee %q", emp.Name)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "employee id")
		}
		for seq, ev := range emp.Events {
			ts := ev.Timestamp()
			_, err := tx.Exec(`
				INSERT INTO events (employee_id, seq, action, timestamp, date)
				VALUES (?, ?, ?, ?, ?)`,
				id, seq, string(ev.Action), ts, ts[:10],
			)
			if err != nil {
				return errors.Wrapf(err, "insert event for %q", emp.Name)
			}
		}
	}
	return errors.Wrap(tx.Commit(), "commit export")
}

// EventRow is an events row joined with its employee name.
type EventRow struct {
	Name      string `db:"name"`
	Action    string `db:"action"`
	Timestamp string `db:"timestamp"`
	Date      string `db:"date"`
}

// GetEventsForDate returns the events of one day in store order.
func (db *ReportDatabase) GetEventsForDate(date string) ([]EventRow, error) {
	rows := []EventRow{}
	err := db.Select(&rows, `
		SELECT e.name, ev.action, ev.timestamp, ev.date
		FROM events ev
		JOIN employees e ON e.id = ev.employee_id
		WHERE ev.date = ?
		ORDER BY e.position, ev.seq`, date)
	return rows, err
}

func (db *ReportDatabase) CountEvents() (int, error) {
	var n int
	err := db.Get(&n, `SELECT count(*) FROM events`)
	return n, err
}
