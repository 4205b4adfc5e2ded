package manager

import (
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetracker/entity"
	"timetracker/query"
)

var timestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

type memStore struct {
	data    string
	saves   int
	failErr error
}

func (s *memStore) Load() ([]entity.Employee, error) {
	return query.DecodeEmployees(strings.NewReader(s.data))
}

func (s *memStore) Save(employees []entity.Employee) error {
	if s.failErr != nil {
		return s.failErr
	}
	var b strings.Builder
	if err := query.EncodeEmployees(&b, employees); err != nil {
		return err
	}
	s.data = b.String()
	s.saves++
	return nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 6, 7, 8, 9, 500, time.Local)
}

func newManager(t *testing.T, data string) (*AttendanceManager, *memStore) {
	t.Helper()
	store := &memStore{data: data}
	m, err := NewAttendanceManager(store, WithClock(fixedClock), WithLogger(quietLogger()))
	require.NoError(t, err)
	return m, store
}

const sample = "Alice,In: 2024-01-01 09:00:00,Out: 2024-01-01 17:00:00\r\n" +
	"Bob,In: 2024-01-02 08:30:00\r\n"

func TestAddEmployee(t *testing.T) {
	m, store := newManager(t, sample)

	st, err := m.AddEmployee("  Carol ")
	require.NoError(t, err)
	assert.True(t, st.OK)
	assert.Equal(t, "Added: Carol", st.Message)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, m.EmployeeNames())
	assert.Empty(t, m.Employees()[2].Events)
	assert.Equal(t, 1, store.saves)
	assert.True(t, strings.HasSuffix(store.data, "Carol\r\n"))
}

func TestAddEmployeeRejectsEmptyAndDuplicate(t *testing.T) {
	m, store := newManager(t, sample)

	for name, reason := range map[string]Reason{
		"":      ReasonInvalidName,
		"   ":   ReasonInvalidName,
		"Alice": ReasonDuplicate,
		"Bob ":  ReasonDuplicate,
	} {
		st, err := m.AddEmployee(name)
		require.NoError(t, err)
		assert.False(t, st.OK, name)
		assert.Equal(t, reason, st.Reason, name)
		assert.Equal(t, "Invalid name or employee already exists", st.Message)
	}
	assert.Equal(t, []string{"Alice", "Bob"}, m.EmployeeNames())
	assert.Zero(t, store.saves)

	// case-sensitive uniqueness
	st, err := m.AddEmployee("alice")
	require.NoError(t, err)
	assert.True(t, st.OK)
}

func TestClockInAndOut(t *testing.T) {
	m, store := newManager(t, sample)

	st, err := m.ClockIn("Bob")
	require.NoError(t, err)
	assert.True(t, st.OK)
	assert.Equal(t, "Bob clocked in at 2024-05-06 07:08:09", st.Message)

	st, err = m.ClockOut("Bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob clocked out at 2024-05-06 07:08:09", st.Message)

	emps := m.Employees()
	require.Len(t, emps, 2)
	bob := emps[1]
	require.Len(t, bob.Events, 3)
	assert.Equal(t, entity.ActionIn, bob.Events[1].Action)
	assert.Equal(t, entity.ActionOut, bob.Events[2].Action)
	assert.Regexp(t, timestampRe, bob.Events[2].Timestamp())
	assert.Len(t, emps[0].Events, 2)
	assert.Equal(t, 2, store.saves)
	assert.Contains(t, store.data, "Bob,In: 2024-01-02 08:30:00,In: 2024-05-06 07:08:09,Out: 2024-05-06 07:08:09\r\n")
}

func TestClockAllowsRepeatedActions(t *testing.T) {
	m, _ := newManager(t, "Carol\r\n")
	for i := 0; i < 2; i++ {
		st, err := m.ClockOut("Carol")
		require.NoError(t, err)
		require.True(t, st.OK)
	}
	assert.Len(t, m.Employees()[0].Events, 2)
}

func TestClockUnknownOrEmptyName(t *testing.T) {
	m, store := newManager(t, sample)

	st, err := m.ClockIn("")
	require.NoError(t, err)
	assert.False(t, st.OK)
	assert.Equal(t, ReasonNoSelection, st.Reason)
	assert.Equal(t, "Please select an employee", st.Message)

	st, err = m.ClockOut("Zoe")
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, st.Reason)
	assert.Equal(t, "Employee not found: Zoe", st.Message)

	st, err = m.ClockIn("alice")
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, st.Reason)
	assert.Equal(t, "Employee not found: alice (did you mean Alice?)", st.Message)

	st, err = m.ClockIn("Alcie")
	require.NoError(t, err)
	assert.Equal(t, "Employee not found: Alcie (did you mean Alice?)", st.Message)

	assert.Zero(t, store.saves)
	assert.Equal(t, sample, store.data)
}

func TestClockUsesFirstMatchForDuplicates(t *testing.T) {
	m, _ := newManager(t, "Alice\r\nAlice\r\n")
	_, err := m.ClockIn("Alice")
	require.NoError(t, err)

	emps := m.Employees()
	assert.Len(t, emps[0].Events, 1)
	assert.Empty(t, emps[1].Events)
}

func TestSaveFailureRollsBack(t *testing.T) {
	m, store := newManager(t, sample)
	store.failErr = errors.New("disk full")

	_, err := m.AddEmployee("Carol")
	require.Error(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, m.EmployeeNames())

	_, err = m.ClockIn("Alice")
	require.ErrorIs(t, err, store.failErr)
	assert.Len(t, m.Employees()[0].Events, 2)

	// the failed add left no stale index entry
	store.failErr = nil
	st, err := m.AddEmployee("Carol")
	require.NoError(t, err)
	assert.True(t, st.OK)
}

func TestFilteredActivities(t *testing.T) {
	m, _ := newManager(t, sample)
	rows := m.FilteredActivities("All", "2024-01-01")
	assert.Equal(t, []entity.ActivityRow{
		{Employee: "Alice", Action: entity.ActionIn, Timestamp: "2024-01-01 09:00:00"},
		{Employee: "Alice", Action: entity.ActionOut, Timestamp: "2024-01-01 17:00:00"},
	}, rows)
}

func TestEmployeesIsACopy(t *testing.T) {
	m, _ := newManager(t, sample)
	emps := m.Employees()
	emps[0].Name = "Mallory"
	emps[0].Events[0].Action = entity.ActionOut

	fresh := m.Employees()
	assert.Equal(t, "Alice", fresh[0].Name)
	assert.Equal(t, entity.ActionIn, fresh[0].Events[0].Action)
}

func TestNewAttendanceManagerFailsOnMalformedData(t *testing.T) {
	_, err := NewAttendanceManager(&memStore{data: "Alice,Lunch\r\n"}, WithLogger(quietLogger()))
	var pe *query.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestWithFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employees.csv")
	m, err := NewAttendanceManager(query.NewFileStore(path), WithClock(fixedClock), WithLogger(quietLogger()))
	require.NoError(t, err)

	_, err = m.AddEmployee("Alice")
	require.NoError(t, err)
	_, err = m.ClockIn("Alice")
	require.NoError(t, err)

	reloaded, err := NewAttendanceManager(query.NewFileStore(path), WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, m.FilteredActivities("All", ""), reloaded.FilteredActivities("All", ""))
}

func TestMetricsRecorded(t *testing.T) {
	m, _ := newManager(t, sample)
	before := testutil.ToFloat64(clockEvents.WithLabelValues("Out"))
	notFound := testutil.ToFloat64(operationsTotal.WithLabelValues("clock_out", "not_found"))

	_, err := m.ClockOut("Alice")
	require.NoError(t, err)
	_, err = m.ClockOut("Nobody")
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(clockEvents.WithLabelValues("Out")))
	assert.Equal(t, notFound+1, testutil.ToFloat64(operationsTotal.WithLabelValues("clock_out", "not_found")))
	assert.Equal(t, float64(2), testutil.ToFloat64(employeesGauge))
}
