package entity

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the only timestamp format accepted in the data file.
const TimestampLayout = "2006-01-02 15:04:05"

// Action is the kind of clock event.
type Action string

const (
	ActionIn  Action = "In"
	ActionOut Action = "Out"
)

// ParseAction accepts exactly "In" or "Out".
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionIn, ActionOut:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Verb is used in status messages ("clocked in").
func (a Action) Verb() string {
	return strings.ToLower(string(a))
}

// Event is a single clock-in or clock-out. Time holds the wall clock reading
// labelled UTC; the data file carries no zone.
type Event struct {
	Action Action
	Time   time.Time
}

func (e Event) Timestamp() string {
	return e.Time.Format(TimestampLayout)
}

// WallClock keeps t's local date and time of day, relabelled as UTC, so it
// formats back to the same reading in any zone.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// String renders the persisted form "<Action>: <timestamp>".
func (e Event) String() string {
	return string(e.Action) + ": " + e.Timestamp()
}

// ParseEvent is the inverse of Event.String. Anything that does not match
// "<In|Out>: YYYY-MM-DD HH:MM:SS" exactly is rejected.
func ParseEvent(field string) (Event, error) {
	action, ts, ok := strings.Cut(field, ": ")
	if !ok {
		return Event{}, fmt.Errorf("event %q: missing \": \" separator", field)
	}
	a, err := ParseAction(action)
	if err != nil {
		return Event{}, fmt.Errorf("event %q: %w", field, err)
	}
	t, err := time.ParseInLocation(TimestampLayout, ts, time.UTC)
	if err != nil {
		return Event{}, fmt.Errorf("event %q: bad timestamp: %w", field, err)
	}
	// time.Parse tolerates a few things (fractional seconds) the file format does not.
	if t.Format(TimestampLayout) != ts {
		return Event{}, fmt.Errorf("event %q: timestamp is not in %s form", field, TimestampLayout)
	}
	return Event{Action: a, Time: t}, nil
}

// ActivityRow is one flattened line of the activity log.
type ActivityRow struct {
	Employee  string `json:"employee"`
	Action    Action `json:"action"`
	Timestamp string `json:"timestamp"`
}
