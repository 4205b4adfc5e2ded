package entity

// Employee is a name plus its clock history in recorded order.
type Employee struct {
	Name   string
	Events []Event
}

// Clone returns a copy that shares no slice with e.
func (e Employee) Clone() Employee {
	events := make([]Event, len(e.Events))
	copy(events, e.Events)
	return Employee{Name: e.Name, Events: events}
}

// Record renders the employee as one data file row.
func (e Employee) Record() []string {
	rec := make([]string, 0, len(e.Events)+1)
	rec = append(rec, e.Name)
	for _, ev := range e.Events {
		rec = append(rec, ev.String())
	}
	return rec
}
