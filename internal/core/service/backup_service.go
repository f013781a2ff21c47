package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/gerenciadorpro/roster-api/internal/core/domain"
	"github.com/gerenciadorpro/roster-api/internal/core/ports"
)

// maxCloudBackups is the number of cloud copies kept per user; older ones
// are pruned after each upload.
const maxCloudBackups = 3

const backupKeyPrefix = "roster_backup_"

// backupDocument is the on-disk backup format: both collections keyed by
// entity id, matching the remote store's persisted shape.
type backupDocument struct {
	Clients map[string]domain.Client       `json:"clients"`
	History map[string]domain.HistoryEntry `json:"history"`
}

// BackupService exports and restores whole roster snapshots as JSON backup
// documents, locally and through a cloud object store.
type BackupService struct {
	roster ports.RosterService
	store  ports.BackupStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewBackupService(roster ports.RosterService, store ports.BackupStore, logger zerolog.Logger) *BackupService {
	return &BackupService{roster: roster, store: store, logger: logger, now: time.Now}
}

func (s *BackupService) Export(ctx context.Context, userID string) ([]byte, error) {
	snap, err := s.roster.Snapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export backup: %w", err)
	}

	doc := backupDocument{
		Clients: make(map[string]domain.Client, len(snap.Clients)),
		History: make(map[string]domain.HistoryEntry, len(snap.History)),
	}
	for _, c := range snap.Clients {
		doc.Clients[c.ID] = c
	}
	for _, h := range snap.History {
		doc.History[h.ID] = h
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export backup: %w", err)
	}
	return data, nil
}

// Restore validates a backup document and replaces the user's snapshot with
// its contents. Both top-level keys must be present and must be objects, and
// every client's due-date must parse; anything else is rejected with
// ErrInvalidBackup and state is left unchanged, so a restore can never store
// records the list views would later choke on.
// Clients missing a position get one synthesized from the current
// timestamp plus their document-order index, so the custom sort reproduces
// the backup's order.
func (s *BackupService) Restore(ctx context.Context, userID string, r io.Reader) error {
	clients, history, err := s.decodeBackup(r)
	if err != nil {
		return err
	}

	if err := s.roster.Restore(ctx, userID, clients, history); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Int("clients", len(clients)).Msg("backup restored")
	return nil
}

func (s *BackupService) CloudUpload(ctx context.Context, userID string) (string, error) {
	data, err := s.Export(ctx, userID)
	if err != nil {
		return "", err
	}

	stamp := s.now().UTC().Format("2006-01-02T15_04_05")
	key := fmt.Sprintf("%s/%s%s.json", userID, backupKeyPrefix, stamp)

	if err := s.store.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("cloud backup upload: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Str("key", key).Msg("cloud backup uploaded")

	if err := s.prune(ctx, userID); err != nil {
		// The upload itself succeeded; pruning failure is not fatal.
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to prune old cloud backups")
	}
	return key, nil
}

func (s *BackupService) CloudList(ctx context.Context, userID string) ([]ports.BackupObject, error) {
	objects, err := s.store.List(ctx, userID+"/")
	if err != nil {
		return nil, fmt.Errorf("cloud backup list: %w", err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key > objects[j].Key })
	return objects, nil
}

func (s *BackupService) CloudRestore(ctx context.Context, userID, key string) error {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("cloud backup download: %w", err)
	}
	return s.Restore(ctx, userID, bytes.NewReader(data))
}

// prune keeps only the newest maxCloudBackups objects. Timestamped keys sort
// lexicographically in chronological order.
func (s *BackupService) prune(ctx context.Context, userID string) error {
	objects, err := s.store.List(ctx, userID+"/")
	if err != nil {
		return err
	}
	if len(objects) <= maxCloudBackups {
		return nil
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key > objects[j].Key })
	for _, obj := range objects[maxCloudBackups:] {
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			return err
		}
		s.logger.Debug().Str("key", obj.Key).Msg("old cloud backup pruned")
	}
	return nil
}

// backupClient shadows the position field with a pointer so a missing value
// can be told apart from an explicit zero.
type backupClient struct {
	domain.Client
	Position *int64 `json:"position"`
}

// decodeBackup walks the document with a token decoder instead of
// unmarshalling into a map, because restoring legacy backups (clients with
// no position) must preserve the document's own ordering and Go maps drop it.
func (s *BackupService) decodeBackup(r io.Reader) ([]domain.Client, []domain.HistoryEntry, error) {
	dec := json.NewDecoder(r)

	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, nil, fmt.Errorf("%w: not a JSON object", domain.ErrInvalidBackup)
	}

	var (
		clients     []domain.Client
		history     []domain.HistoryEntry
		haveClients bool
		haveHistory bool
	)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
		}
		key, _ := keyTok.(string)

		switch key {
		case "clients":
			clients, err = s.decodeClients(dec)
			if err != nil {
				return nil, nil, err
			}
			haveClients = true
		case "history":
			history, err = decodeHistory(dec)
			if err != nil {
				return nil, nil, err
			}
			haveHistory = true
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
	}
	if !haveClients || !haveHistory {
		return nil, nil, fmt.Errorf("%w: missing clients or history", domain.ErrInvalidBackup)
	}
	return clients, history, nil
}

func (s *BackupService) decodeClients(dec *json.Decoder) ([]domain.Client, error) {
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("%w: clients is not an object", domain.ErrInvalidBackup)
	}

	base := s.now().UnixMilli()
	var out []domain.Client
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
		}
		var bc backupClient
		if err := dec.Decode(&bc); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
		}
		c := bc.Client
		if _, err := domain.ParseDueDate(c.DueDate); err != nil {
			return nil, fmt.Errorf("%w: client %q has unreadable due date %q", domain.ErrInvalidBackup, c.ID, c.DueDate)
		}
		if bc.Position != nil {
			c.Position = *bc.Position
		} else {
			c.Position = base + int64(len(out))
		}
		out = append(out, c)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
	}
	return out, nil
}

func decodeHistory(dec *json.Decoder) ([]domain.HistoryEntry, error) {
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("%w: history is not an object", domain.ErrInvalidBackup)
	}

	var out []domain.HistoryEntry
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
		}
		var h domain.HistoryEntry
		if err := dec.Decode(&h); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
		}
		out = append(out, h)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidBackup, err)
	}
	return out, nil
}
