package domain

import (
	"errors"
	"time"
)

// ClientStatus is the derived subscription state of a client. It is never
// stored: it is recomputed from the due-date and the current date on every
// read.
type ClientStatus string

const (
	StatusActive       ClientStatus = "active"
	StatusExpiringSoon ClientStatus = "expiring_soon"
	StatusExpired      ClientStatus = "expired"
)

// HistoryAction tags an audit entry with the kind of mutation that produced it.
type HistoryAction string

const (
	ActionCreated HistoryAction = "created"
	ActionUpdated HistoryAction = "updated"
	ActionDeleted HistoryAction = "deleted"
	ActionRenewed HistoryAction = "renewed"
	ActionNoted   HistoryAction = "noted"
	ActionSystem  HistoryAction = "system"
)

var ErrClientNotFound = errors.New("client not found")
var ErrInvalidDate = errors.New("invalid due date")
var ErrInvalidBackup = errors.New("invalid backup document")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrForbidden = errors.New("access forbidden")
var ErrAssistUnavailable = errors.New("assist service unavailable")
var ErrJobNotFound = errors.New("job not found")

// Client is a subscription record. DueDate is a calendar date (YYYY-MM-DD,
// no time component). Position only carries relative order for the custom
// sort; values need not be contiguous.
type Client struct {
	ID       string `json:"id" bson:"id"`
	Name     string `json:"name" bson:"name"`
	Login    string `json:"login" bson:"login"`
	Password string `json:"password,omitempty" bson:"password,omitempty"`
	Server   string `json:"server" bson:"server"`
	DueDate  string `json:"due_date" bson:"due_date"`
	Phone    string `json:"phone,omitempty" bson:"phone,omitempty"`
	Notes    string `json:"notes,omitempty" bson:"notes,omitempty"`
	Position int64  `json:"position" bson:"position"`
}

// ClientWithStatus is a client plus its derived status. DaysRemaining is nil
// for expired clients so the UI never shows negative counts.
type ClientWithStatus struct {
	Client
	Status        ClientStatus `json:"status"`
	DaysRemaining *int         `json:"days_remaining"`
}

// HistoryEntry is an immutable audit record of a single mutation. ClientName
// is a snapshot of the display name at the time of the action, not a live
// reference: renaming a client does not rewrite past entries.
type HistoryEntry struct {
	ID         string        `json:"id" bson:"id"`
	Timestamp  time.Time     `json:"timestamp" bson:"timestamp"`
	ClientName string        `json:"client_name" bson:"client_name"`
	Action     HistoryAction `json:"action" bson:"action"`
	Details    string        `json:"details" bson:"details"`
}

// Snapshot is the complete state of one user's roster: all clients plus the
// full audit history, newest entry first. It is the unit of persistence;
// every mutation produces a new snapshot that overwrites the stored one
// wholesale.
type Snapshot struct {
	Clients []Client
	History []HistoryEntry
}

// FindClient returns the client with the given id, or nil.
func (s *Snapshot) FindClient(id string) *Client {
	for i := range s.Clients {
		if s.Clients[i].ID == id {
			return &s.Clients[i]
		}
	}
	return nil
}
