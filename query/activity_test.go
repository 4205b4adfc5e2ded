package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetracker/entity"
)

func sampleEmployees(t *testing.T) []entity.Employee {
	t.Helper()
	employees, err := DecodeEmployees(strings.NewReader(sampleFile))
	require.NoError(t, err)
	return employees
}

func TestFilterAllReturnsEverythingInStoreOrder(t *testing.T) {
	employees := sampleEmployees(t)
	want := []entity.ActivityRow{
		{Employee: "Alice", Action: entity.ActionIn, Timestamp: "2024-01-01 09:00:00"},
		{Employee: "Alice", Action: entity.ActionOut, Timestamp: "2024-01-01 17:00:00"},
		{Employee: "Bob", Action: entity.ActionIn, Timestamp: "2024-01-02 08:30:00"},
	}
	for _, sentinel := range []string{"All", AllEmployees, ""} {
		assert.Equal(t, want, FilterActivities(employees, sentinel, ""), "sentinel %q", sentinel)
	}
}

func TestFilterByEmployee(t *testing.T) {
	rows := FilterActivities(sampleEmployees(t), "Alice", "")
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "Alice", r.Employee)
	}

	assert.Empty(t, FilterActivities(sampleEmployees(t), "alice", ""))
	assert.Empty(t, FilterActivities(sampleEmployees(t), "Nobody", ""))
}

func TestFilterByDateSubstring(t *testing.T) {
	rows := FilterActivities(sampleEmployees(t), "All", "2024-01-01")
	assert.Equal(t, []entity.ActivityRow{
		{Employee: "Alice", Action: entity.ActionIn, Timestamp: "2024-01-01 09:00:00"},
		{Employee: "Alice", Action: entity.ActionOut, Timestamp: "2024-01-01 17:00:00"},
	}, rows)

	// lexical match, so any part of the timestamp works
	rows = FilterActivities(sampleEmployees(t), "All", " 08:30 ")
	require.Len(t, rows, 1)
	assert.Equal(t, "Bob", rows[0].Employee)

	assert.Empty(t, FilterActivities(sampleEmployees(t), "Bob", "2024-01-01"))
}

func TestFilterDoesNotSortAcrossEmployees(t *testing.T) {
	employees, err := DecodeEmployees(strings.NewReader(
		"Zed,In: 2024-03-02 09:00:00\r\nAmy,In: 2024-03-01 09:00:00\r\n"))
	require.NoError(t, err)

	rows := FilterActivities(employees, "All", "2024-03")
	require.Len(t, rows, 2)
	assert.Equal(t, "Zed", rows[0].Employee)
	assert.Equal(t, "Amy", rows[1].Employee)
}

func TestFilterEmptyStore(t *testing.T) {
	rows := FilterActivities(nil, "All", "")
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
