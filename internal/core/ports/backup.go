package ports

import (
	"context"
	"io"
	"time"
)

// BackupObject describes one stored cloud backup.
type BackupObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// BackupStore is the cloud object storage the backup service copies
// snapshots to.
type BackupStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]BackupObject, error)
	Delete(ctx context.Context, key string) error
}

// BackupService exports and restores full roster snapshots as JSON backup
// documents of the form {clients: {id: client}, history: {id: entry}}.
type BackupService interface {
	// Export renders the user's snapshot as a backup document.
	Export(ctx context.Context, userID string) ([]byte, error)
	// Restore validates and applies a backup document, replacing the whole
	// snapshot. Malformed documents map to domain.ErrInvalidBackup and leave
	// state unchanged.
	Restore(ctx context.Context, userID string, r io.Reader) error

	// CloudUpload exports the snapshot to the backup store under a
	// timestamped key and prunes old copies beyond the retention limit.
	CloudUpload(ctx context.Context, userID string) (string, error)
	CloudList(ctx context.Context, userID string) ([]BackupObject, error)
	CloudRestore(ctx context.Context, userID, key string) error
}
