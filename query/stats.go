package query

import (
	"time"

	"github.com/pkg/errors"

	"timetracker/entity"
)

// SummaryItem aggregates one employee's events over a date range.
type SummaryItem struct {
	Name        string `db:"name" json:"name"`
	DaysPresent int    `db:"days_present" json:"days_present"`
	ClockIns    int    `db:"clock_ins" json:"clock_ins"`
	ClockOuts   int    `db:"clock_outs" json:"clock_outs"`
	FirstSeen   string `db:"first_seen" json:"first_seen"`
	LastSeen    string `db:"last_seen" json:"last_seen"`
}

// GetSummaryBetween returns per employee totals between inclusive dates
// (YYYY-MM-DD), in store order. Employees without events in the range are
// left out.
func (db *ReportDatabase) GetSummaryBetween(startDate, endDate string) ([]SummaryItem, error) {
	items := []SummaryItem{}
	q := `
	SELECT e.name,
	       COUNT(DISTINCT ev.date) AS days_present,
	       SUM(CASE WHEN ev.action = 'In' THEN 1 ELSE 0 END) AS clock_ins,
	       SUM(CASE WHEN ev.action = 'Out' THEN 1 ELSE 0 END) AS clock_outs,
	       MIN(ev.timestamp) AS first_seen,
	       MAX(ev.timestamp) AS last_seen
	FROM events ev
	JOIN employees e ON e.id = ev.employee_id
	WHERE ev.date >= ? AND ev.date <= ?
	GROUP BY e.id
	ORDER BY e.position`
	if err := db.Select(&items, q, startDate, endDate); err != nil {
		return nil, errors.Wrap(err, "summary")
	}
	return items, nil
}

// PeriodRange returns the inclusive date range of a named period ending on
// now. Unknown periods fall back to a week.
func PeriodRange(period string, now time.Time) (string, string) {
	nowDate := now.Format("2006-01-02")
	var start time.Time
	switch period {
	case "day":
		start = now
	case "week":
		start = now.AddDate(0, 0, -6) // today and the previous 6 days
	case "month":
		start = now.AddDate(0, -1, 1)
	case "year":
		start = now.AddDate(-1, 0, 1)
	case "all":
		return "0000-01-01", nowDate
	default:
		start = now.AddDate(0, 0, -6)
	}
	return start.Format("2006-01-02"), nowDate
}

// Summarize loads employees into a throwaway database and returns the
// summary of period ending on now.
func Summarize(driver string, employees []entity.Employee, period string, now time.Time) ([]SummaryItem, error) {
	db, err := OpenReportDatabase(driver, MemoryPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if err := db.ExportSnapshot(employees); err != nil {
		return nil, err
	}
	start, end := PeriodRange(period, now)
	return db.GetSummaryBetween(start, end)
}
