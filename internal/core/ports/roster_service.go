package ports

import (
	"context"

	"github.com/gerenciadorpro/roster-api/internal/core/domain"
)

// ClientInput carries all writable client fields. DueDate is YYYY-MM-DD.
type ClientInput struct {
	Name     string
	Login    string
	Password string
	Server   string
	DueDate  string
	Phone    string
	Notes    string
}

// RosterView is the derived, filtered, sorted view of a roster plus its
// audit history (newest entry first).
type RosterView struct {
	Clients []domain.ClientWithStatus
	History []domain.HistoryEntry
}

// Stats aggregates the roster by derived status.
type Stats struct {
	Total        int
	Active       int
	Expired      int
	ExpiringSoon int
}

// RosterService defines the use-case operations of the roster engine. Every
// mutation reads the latest stored snapshot, reduces it to a new snapshot
// with zero or more history entries prepended, and overwrites the stored
// copy in a single write.
type RosterService interface {
	View(ctx context.Context, userID string, q domain.ListQuery) (*RosterView, error)
	Stats(ctx context.Context, userID string) (*Stats, error)
	// Snapshot returns the raw stored state (for backup and export).
	Snapshot(ctx context.Context, userID string) (*domain.Snapshot, error)

	CreateClient(ctx context.Context, userID string, in ClientInput) (*domain.Client, error)
	UpdateClient(ctx context.Context, userID, clientID string, in ClientInput) (*domain.Client, error)
	// DeleteClient is a silent no-op when the id does not exist.
	DeleteClient(ctx context.Context, userID, clientID string) error
	// RenewClient extends the due-date by days (default 30 when <= 0),
	// counting from the later of the current due-date and today.
	RenewClient(ctx context.Context, userID, clientID string, days int) (*domain.Client, error)
	// ReorderClients reassigns positions by index in orderedIDs; clients not
	// listed keep their prior position. Generates no history entry.
	ReorderClients(ctx context.Context, userID string, orderedIDs []string) error
	// Restore destructively replaces the whole snapshot. Clients missing a
	// position get one synthesized from the current time plus their index so
	// the custom sort preserves input order.
	Restore(ctx context.Context, userID string, clients []domain.Client, history []domain.HistoryEntry) error
}
