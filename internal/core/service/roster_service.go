package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gerenciadorpro/roster-api/internal/core/domain"
	"github.com/gerenciadorpro/roster-api/internal/core/ports"
)

// DefaultRenewalDays is applied when a renew request does not specify a period.
const DefaultRenewalDays = 30

// RosterService implements the roster engine: every mutation loads the latest
// stored snapshot, reduces it to a new snapshot with history entries
// prepended, and overwrites the stored copy in one write (last writer wins).
type RosterService struct {
	repo   ports.SnapshotRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewRosterService(repo ports.SnapshotRepository, logger zerolog.Logger) *RosterService {
	return &RosterService{repo: repo, logger: logger, now: time.Now}
}

func (s *RosterService) View(ctx context.Context, userID string, q domain.ListQuery) (*ports.RosterView, error) {
	snap, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("view roster: %w", err)
	}

	derived, err := domain.DeriveAll(snap.Clients, s.now())
	if err != nil {
		return nil, fmt.Errorf("view roster: %w", err)
	}

	return &ports.RosterView{
		Clients: domain.ApplyView(derived, q),
		History: snap.History,
	}, nil
}

func (s *RosterService) Stats(ctx context.Context, userID string) (*ports.Stats, error) {
	snap, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("roster stats: %w", err)
	}

	derived, err := domain.DeriveAll(snap.Clients, s.now())
	if err != nil {
		return nil, fmt.Errorf("roster stats: %w", err)
	}

	stats := &ports.Stats{Total: len(derived)}
	for _, c := range derived {
		switch c.Status {
		case domain.StatusActive:
			stats.Active++
		case domain.StatusExpired:
			stats.Expired++
		case domain.StatusExpiringSoon:
			stats.ExpiringSoon++
		}
	}
	return stats, nil
}

func (s *RosterService) Snapshot(ctx context.Context, userID string) (*domain.Snapshot, error) {
	return s.repo.Load(ctx, userID)
}

// CreateClient assigns a fresh id and a position derived from the current
// timestamp, so new clients sort last under the custom order.
func (s *RosterService) CreateClient(ctx context.Context, userID string, in ports.ClientInput) (*domain.Client, error) {
	if _, err := domain.ParseDueDate(in.DueDate); err != nil {
		return nil, err
	}

	snap, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	now := s.now()
	client := domain.Client{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Login:    in.Login,
		Password: in.Password,
		Server:   in.Server,
		DueDate:  in.DueDate,
		Phone:    in.Phone,
		Notes:    in.Notes,
		Position: now.UnixMilli(),
	}

	entry := s.historyEntry(domain.ActionCreated, client.Name,
		fmt.Sprintf("Cliente %s foi adicionado.", client.Name))

	next := &domain.Snapshot{
		Clients: append(cloneClients(snap.Clients), client),
		History: prependHistory(snap.History, entry),
	}
	if err := s.repo.Save(ctx, userID, next); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to persist snapshot")
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("client_id", client.ID).Msg("client created")
	return &client, nil
}

// UpdateClient replaces the stored record. Changes to the core fields (name,
// login, password, server, due-date, phone) produce one "updated" entry;
// independently, a change to the note field produces a separate "noted"
// entry. A payload identical to the stored record writes no history.
func (s *RosterService) UpdateClient(ctx context.Context, userID, clientID string, in ports.ClientInput) (*domain.Client, error) {
	if _, err := domain.ParseDueDate(in.DueDate); err != nil {
		return nil, err
	}

	snap, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}

	original := snap.FindClient(clientID)
	if original == nil {
		return nil, domain.ErrClientNotFound
	}

	updated := *original
	updated.Name = in.Name
	updated.Login = in.Login
	updated.Password = in.Password
	updated.Server = in.Server
	updated.DueDate = in.DueDate
	updated.Phone = in.Phone
	updated.Notes = in.Notes

	var entries []domain.HistoryEntry
	if coreFieldsChanged(*original, updated) {
		entries = append(entries, s.historyEntry(domain.ActionUpdated, updated.Name,
			fmt.Sprintf("Dados de %s foram alterados.", updated.Name)))
	}
	if original.Notes != updated.Notes {
		entries = append(entries, s.historyEntry(domain.ActionNoted, updated.Name, noteDetails(updated.Notes)))
	}

	clients := cloneClients(snap.Clients)
	for i := range clients {
		if clients[i].ID == clientID {
			clients[i] = updated
		}
	}

	next := &domain.Snapshot{
		Clients: clients,
		History: prependHistory(snap.History, entries...),
	}
	if err := s.repo.Save(ctx, userID, next); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to persist snapshot")
		return nil, fmt.Errorf("update client: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("client_id", clientID).
		Int("history_entries", len(entries)).Msg("client updated")
	return &updated, nil
}

// DeleteClient removes the record by id. A missing id is a silent no-op: no
// write is issued and no error is returned.
func (s *RosterService) DeleteClient(ctx context.Context, userID, clientID string) error {
	snap, err := s.repo.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	target := snap.FindClient(clientID)
	if target == nil {
		s.logger.Debug().Str("user_id", userID).Str("client_id", clientID).Msg("delete skipped, unknown id")
		return nil
	}

	clients := make([]domain.Client, 0, len(snap.Clients)-1)
	for _, c := range snap.Clients {
		if c.ID != clientID {
			clients = append(clients, c)
		}
	}

	entry := s.historyEntry(domain.ActionDeleted, target.Name,
		fmt.Sprintf("Cliente %s foi removido.", target.Name))

	next := &domain.Snapshot{
		Clients: clients,
		History: prependHistory(snap.History, entry),
	}
	if err := s.repo.Save(ctx, userID, next); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to persist snapshot")
		return fmt.Errorf("delete client: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("client_id", clientID).Msg("client deleted")
	return nil
}

// RenewClient pushes the due-date forward by days, counting from the later
// of the current due-date and today. Renewing an expired subscription resets
// the clock from today instead of extending the lapsed date.
func (s *RosterService) RenewClient(ctx context.Context, userID, clientID string, days int) (*domain.Client, error) {
	if days <= 0 {
		days = DefaultRenewalDays
	}

	snap, err := s.repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("renew client: %w", err)
	}

	target := snap.FindClient(clientID)
	if target == nil {
		return nil, domain.ErrClientNotFound
	}

	due, err := domain.ParseDueDate(target.DueDate)
	if err != nil {
		return nil, err
	}

	today := s.now()
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if due.After(start) {
		start = due
	}
	newDue := start.AddDate(0, 0, days)

	renewed := *target
	renewed.DueDate = newDue.Format(domain.DueDateLayout)

	clients := cloneClients(snap.Clients)
	for i := range clients {
		if clients[i].ID == clientID {
			clients[i] = renewed
		}
	}

	entry := s.historyEntry(domain.ActionRenewed, renewed.Name,
		fmt.Sprintf("Assinatura renovada por %d dias. Novo vencimento: %s.", days, newDue.Format("02/01/2006")))

	next := &domain.Snapshot{
		Clients: clients,
		History: prependHistory(snap.History, entry),
	}
	if err := s.repo.Save(ctx, userID, next); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to persist snapshot")
		return nil, fmt.Errorf("renew client: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("client_id", clientID).
		Str("due_date", renewed.DueDate).Msg("client renewed")
	return &renewed, nil
}

// ReorderClients reassigns each listed client's position to its index in
// orderedIDs. Clients absent from the list keep their prior position.
// Reordering generates no history entry.
func (s *RosterService) ReorderClients(ctx context.Context, userID string, orderedIDs []string) error {
	snap, err := s.repo.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("reorder clients: %w", err)
	}

	index := make(map[string]int64, len(orderedIDs))
	for i, id := range orderedIDs {
		index[id] = int64(i)
	}

	clients := cloneClients(snap.Clients)
	for i := range clients {
		if pos, ok := index[clients[i].ID]; ok {
			clients[i].Position = pos
		}
	}

	next := &domain.Snapshot{Clients: clients, History: snap.History}
	if err := s.repo.Save(ctx, userID, next); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to persist snapshot")
		return fmt.Errorf("reorder clients: %w", err)
	}

	s.logger.Debug().Str("user_id", userID).Int("count", len(orderedIDs)).Msg("clients reordered")
	return nil
}

// Restore destructively replaces the whole snapshot with externally supplied
// data and records one "system" entry. Incoming history is re-sorted newest
// first; callers are responsible for synthesizing positions on legacy
// clients before restoring (see the backup service).
func (s *RosterService) Restore(ctx context.Context, userID string, clients []domain.Client, history []domain.HistoryEntry) error {
	entry := s.historyEntry(domain.ActionSystem, "Sistema", "Backup restaurado com sucesso.")

	restored := cloneHistory(history)
	sort.SliceStable(restored, func(i, j int) bool {
		return restored[i].Timestamp.After(restored[j].Timestamp)
	})

	next := &domain.Snapshot{
		Clients: cloneClients(clients),
		History: prependHistory(restored, entry),
	}
	if err := s.repo.Save(ctx, userID, next); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to persist restored snapshot")
		return fmt.Errorf("restore snapshot: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Int("clients", len(clients)).Msg("snapshot restored from backup")
	return nil
}

func (s *RosterService) historyEntry(action domain.HistoryAction, clientName, details string) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:         uuid.NewString(),
		Timestamp:  s.now().UTC(),
		ClientName: clientName,
		Action:     action,
		Details:    details,
	}
}

// coreFieldsChanged compares every core field between the stored and the
// incoming record. Notes are deliberately excluded: note changes produce
// their own history entry.
func coreFieldsChanged(a, b domain.Client) bool {
	return a.Name != b.Name ||
		a.Login != b.Login ||
		a.Password != b.Password ||
		a.Server != b.Server ||
		a.DueDate != b.DueDate ||
		a.Phone != b.Phone
}

// noteDetails renders the audit detail for a note change: the new note
// quoted, cut to 50 characters with a trailing ellipsis when longer, or a
// removal marker when cleared.
func noteDetails(notes string) string {
	if notes == "" {
		return "Anotação removida."
	}
	excerpt := []rune(notes)
	if len(excerpt) > 50 {
		return fmt.Sprintf("Anotação adicionada/modificada: %q", string(excerpt[:50])+"...")
	}
	return fmt.Sprintf("Anotação adicionada/modificada: %q", notes)
}

func prependHistory(history []domain.HistoryEntry, entries ...domain.HistoryEntry) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, 0, len(history)+len(entries))
	out = append(out, entries...)
	out = append(out, history...)
	return out
}

func cloneClients(clients []domain.Client) []domain.Client {
	out := make([]domain.Client, len(clients))
	copy(out, clients)
	return out
}

func cloneHistory(history []domain.HistoryEntry) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(history))
	copy(out, history)
	return out
}
