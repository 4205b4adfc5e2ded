package query

import (
	"strings"

	"timetracker/entity"
)

// AllEmployees is the label the UI shows for "no employee filter".
const AllEmployees = "All Employees"

// IsAllEmployees reports whether an employee filter selects everyone.
func IsAllEmployees(filter string) bool {
	return filter == "" || filter == "All" || filter == AllEmployees
}

// FilterActivities flattens the store into activity rows, keeping store order
// and then event order. employeeFilter must match a name exactly unless it is
// one of the "all" sentinels; date is a plain substring of the timestamp.
func FilterActivities(employees []entity.Employee, employeeFilter, date string) []entity.ActivityRow {
	date = strings.TrimSpace(date)
	all := IsAllEmployees(employeeFilter)

	rows := []entity.ActivityRow{}
	for _, emp := range employees {
		if !all && emp.Name != employeeFilter {
			continue
		}
		for _, ev := range emp.Events {
			ts := ev.Timestamp()
			if date != "" && !strings.Contains(ts, date) {
				continue
			}
			rows = append(rows, entity.ActivityRow{
				Employee:  emp.Name,
				Action:    ev.Action,
				Timestamp: ts,
			})
		}
	}
	return rows
}
