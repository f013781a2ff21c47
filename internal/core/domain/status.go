package domain

import (
	"fmt"
	"time"
)

// ExpirationThresholdDays is the window, in days, within which a client is
// reported as expiring soon.
const ExpirationThresholdDays = 7

// DueDateLayout is the wire and storage format for due-dates.
const DueDateLayout = "2006-01-02"

// ParseDueDate parses a YYYY-MM-DD due-date. Malformed input maps to
// ErrInvalidDate so callers can reject it at write time instead of letting
// garbage reach status derivation.
func ParseDueDate(s string) (time.Time, error) {
	t, err := time.Parse(DueDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// midnight truncates t to its calendar date, normalised to UTC so that day
// arithmetic is immune to DST shifts.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DeriveStatus classifies a due-date against a reference date.
//
//	due <  today            → expired, days reported as nil
//	due <= today + 7 days   → expiring_soon
//	otherwise               → active
func DeriveStatus(dueDate string, today time.Time) (ClientStatus, *int, error) {
	due, err := ParseDueDate(dueDate)
	if err != nil {
		return "", nil, err
	}

	days := int(midnight(due).Sub(midnight(today)).Hours() / 24)
	switch {
	case days < 0:
		return StatusExpired, nil, nil
	case days <= ExpirationThresholdDays:
		return StatusExpiringSoon, &days, nil
	default:
		return StatusActive, &days, nil
	}
}

// WithStatus attaches the derived status to c.
func WithStatus(c Client, today time.Time) (ClientWithStatus, error) {
	status, days, err := DeriveStatus(c.DueDate, today)
	if err != nil {
		return ClientWithStatus{}, err
	}
	return ClientWithStatus{Client: c, Status: status, DaysRemaining: days}, nil
}

// DeriveAll attaches derived statuses to every client in the list.
func DeriveAll(clients []Client, today time.Time) ([]ClientWithStatus, error) {
	out := make([]ClientWithStatus, 0, len(clients))
	for _, c := range clients {
		cs, err := WithStatus(c, today)
		if err != nil {
			return nil, fmt.Errorf("client %s: %w", c.ID, err)
		}
		out = append(out, cs)
	}
	return out, nil
}
