package manager

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"

	"timetracker/entity"
	"timetracker/query"
)

// Store is where the manager loads and persists employees.
type Store interface {
	Load() ([]entity.Employee, error)
	Save(employees []entity.Employee) error
}

type Reason string

const (
	ReasonNone        Reason = ""
	ReasonInvalidName Reason = "invalid_name"
	ReasonDuplicate   Reason = "duplicate"
	ReasonNoSelection Reason = "no_selection"
	ReasonNotFound    Reason = "not_found"
)

// Status is the user-facing outcome of an operation. Validation failures
// are reported here, never as errors.
type Status struct {
	OK      bool   `json:"ok"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message"`
}

const msgInvalidName = "Invalid name or employee already exists"

// AttendanceManager owns the in-memory employee list and writes it back to
// the store after every change.
type AttendanceManager struct {
	store     Store
	employees []entity.Employee
	index     map[string]int // name -> first position
	mutex     sync.RWMutex
	now       func() time.Time
	log       logrus.FieldLogger
}

type Option func(*AttendanceManager)

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *AttendanceManager) { m.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(m *AttendanceManager) { m.log = log }
}

// NewAttendanceManager loads the store. A malformed data file is returned
// as an error so the caller never overwrites it.
func NewAttendanceManager(store Store, opts ...Option) (*AttendanceManager, error) {
	m := &AttendanceManager{
		store: store,
		now:   time.Now,
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.Refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// Refresh reloads the employee list from the store.
func (m *AttendanceManager) Refresh() error {
	employees, err := m.store.Load()
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.employees = employees
	m.index = make(map[string]int, len(employees))
	for i, emp := range employees {
		if _, seen := m.index[emp.Name]; !seen {
			m.index[emp.Name] = i
		}
	}
	employeesGauge.Set(float64(len(employees)))
	return nil
}

func (m *AttendanceManager) AddEmployee(name string) (Status, error) {
	name = strings.TrimSpace(name)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if name == "" {
		recordOperation("add_employee", ReasonInvalidName)
		return Status{Reason: ReasonInvalidName, Message: msgInvalidName}, nil
	}
	if _, exists := m.index[name]; exists {
		recordOperation("add_employee", ReasonDuplicate)
		return Status{Reason: ReasonDuplicate, Message: msgInvalidName}, nil
	}

	m.employees = append(m.employees, entity.Employee{Name: name, Events: []entity.Event{}})
	if err := m.store.Save(m.employees); err != nil {
		m.employees = m.employees[:len(m.employees)-1]
		recordOperation("add_employee", "io_error")
		return Status{}, fmt.Errorf("add employee %q: %w", name, err)
	}
	m.index[name] = len(m.employees) - 1

	recordOperation("add_employee", ReasonNone)
	employeesGauge.Set(float64(len(m.employees)))
	m.log.WithField("employee", name).Info("employee added")
	return Status{OK: true, Message: "Added: " + name}, nil
}

func (m *AttendanceManager) ClockIn(name string) (Status, error) {
	return m.clock(name, entity.ActionIn)
}

func (m *AttendanceManager) ClockOut(name string) (Status, error) {
	return m.clock(name, entity.ActionOut)
}

func (m *AttendanceManager) clock(name string, action entity.Action) (Status, error) {
	op := "clock_" + action.Verb()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if name == "" {
		recordOperation(op, ReasonNoSelection)
		return Status{Reason: ReasonNoSelection, Message: "Please select an employee"}, nil
	}
	i, ok := m.index[name]
	if !ok {
		recordOperation(op, ReasonNotFound)
		msg := "Employee not found: " + name
		if s := m.suggest(name); s != "" {
			msg += fmt.Sprintf(" (did you mean %s?)", s)
		}
		return Status{Reason: ReasonNotFound, Message: msg}, nil
	}

	ev := entity.Event{Action: action, Time: entity.WallClock(m.now())}
	emp := &m.employees[i]
	emp.Events = append(emp.Events, ev)
	if err := m.store.Save(m.employees); err != nil {
		emp.Events = emp.Events[:len(emp.Events)-1]
		recordOperation(op, "io_error")
		return Status{}, fmt.Errorf("clock %s %q: %w", action.Verb(), name, err)
	}

	recordOperation(op, ReasonNone)
	clockEvents.WithLabelValues(string(action)).Inc()
	m.log.WithFields(logrus.Fields{"employee": name, "action": action}).Info("clock event recorded")
	return Status{
		OK:      true,
		Message: fmt.Sprintf("%s clocked %s at %s", name, action.Verb(), ev.Timestamp()),
	}, nil
}

// suggest returns the known name closest to an unknown one, or "".
// Caller holds the lock.
func (m *AttendanceManager) suggest(name string) string {
	names := make([]string, 0, len(m.index))
	for n := range m.index {
		names = append(names, n)
	}
	sort.Strings(names)

	if ranks := fuzzy.RankFindFold(name, names); len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}

	// short names tolerate fewer typos
	limit := min(2, len([]rune(name))/2)
	best, bestDist := "", limit+1
	for _, n := range names {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(n)); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// EmployeeNames lists names in store order.
func (m *AttendanceManager) EmployeeNames() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	names := make([]string, len(m.employees))
	for i, emp := range m.employees {
		names[i] = emp.Name
	}
	return names
}

func (m *AttendanceManager) FilteredActivities(employeeFilter, date string) []entity.ActivityRow {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return query.FilterActivities(m.employees, employeeFilter, date)
}

// Employees returns a copy of the store that callers may keep.
func (m *AttendanceManager) Employees() []entity.Employee {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make([]entity.Employee, len(m.employees))
	for i, emp := range m.employees {
		out[i] = emp.Clone()
	}
	return out
}
