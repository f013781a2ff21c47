package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gerenciadorpro/roster-api/internal/core/domain"
	"github.com/gerenciadorpro/roster-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubSnapshotRepo struct {
	snapshots map[string]*domain.Snapshot
	saveCalls int
	saveErr   error // if set, Save returns this error
}

func newStubSnapshotRepo() *stubSnapshotRepo {
	return &stubSnapshotRepo{snapshots: make(map[string]*domain.Snapshot)}
}

func (r *stubSnapshotRepo) Load(_ context.Context, userID string) (*domain.Snapshot, error) {
	snap, ok := r.snapshots[userID]
	if !ok {
		return &domain.Snapshot{}, nil
	}
	clone := &domain.Snapshot{
		Clients: append([]domain.Client(nil), snap.Clients...),
		History: append([]domain.HistoryEntry(nil), snap.History...),
	}
	return clone, nil
}

func (r *stubSnapshotRepo) Save(_ context.Context, userID string, snap *domain.Snapshot) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saveCalls++
	r.snapshots[userID] = snap
	return nil
}

func newTestRosterService(repo ports.SnapshotRepository, now time.Time) *RosterService {
	s := NewRosterService(repo, zerolog.Nop())
	s.now = func() time.Time { return now }
	return s
}

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestCreateClient(t *testing.T) {
	repo := newStubSnapshotRepo()
	svc := newTestRosterService(repo, testNow)

	client, err := svc.CreateClient(context.Background(), "u1", ports.ClientInput{
		Name:    "Maria",
		Login:   "maria",
		Server:  "srv-01",
		DueDate: "2025-04-01",
	})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if client.ID == "" {
		t.Fatalf("expected generated id")
	}
	if client.Position != testNow.UnixMilli() {
		t.Fatalf("position = %d, want %d", client.Position, testNow.UnixMilli())
	}

	snap := repo.snapshots["u1"]
	if len(snap.Clients) != 1 {
		t.Fatalf("stored clients = %d, want 1", len(snap.Clients))
	}
	if len(snap.History) != 1 {
		t.Fatalf("stored history = %d, want 1", len(snap.History))
	}
	entry := snap.History[0]
	if entry.Action != domain.ActionCreated {
		t.Fatalf("action = %s, want %s", entry.Action, domain.ActionCreated)
	}
	if entry.Details != "Cliente Maria foi adicionado." {
		t.Fatalf("details = %q", entry.Details)
	}
}

func TestCreateClient_InvalidDueDate(t *testing.T) {
	repo := newStubSnapshotRepo()
	svc := newTestRosterService(repo, testNow)

	_, err := svc.CreateClient(context.Background(), "u1", ports.ClientInput{
		Name: "Maria", Login: "maria", Server: "srv", DueDate: "01/04/2025",
	})
	if !errors.Is(err, domain.ErrInvalidDate) {
		t.Fatalf("error = %v, want ErrInvalidDate", err)
	}
	if repo.saveCalls != 0 {
		t.Fatalf("no write expected on validation failure")
	}
}

func TestUpdateClient_NoChangesWritesNoHistory(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{{ID: "c1", Name: "Maria", Login: "maria", Server: "srv", DueDate: "2025-04-01"}},
	}
	svc := newTestRosterService(repo, testNow)

	_, err := svc.UpdateClient(context.Background(), "u1", "c1", ports.ClientInput{
		Name: "Maria", Login: "maria", Server: "srv", DueDate: "2025-04-01",
	})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if got := len(repo.snapshots["u1"].History); got != 0 {
		t.Fatalf("history = %d entries, want 0", got)
	}
}

func TestUpdateClient_CoreAndNoteChangesWriteSeparateEntries(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{{ID: "c1", Name: "Maria", Login: "maria", Server: "srv", DueDate: "2025-04-01"}},
	}
	svc := newTestRosterService(repo, testNow)

	_, err := svc.UpdateClient(context.Background(), "u1", "c1", ports.ClientInput{
		Name: "Maria Souza", Login: "maria", Server: "srv", DueDate: "2025-04-01",
		Notes: "Pagamento via pix",
	})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}

	history := repo.snapshots["u1"].History
	if len(history) != 2 {
		t.Fatalf("history = %d entries, want 2", len(history))
	}
	if history[0].Action != domain.ActionUpdated {
		t.Fatalf("first action = %s, want %s", history[0].Action, domain.ActionUpdated)
	}
	if history[1].Action != domain.ActionNoted {
		t.Fatalf("second action = %s, want %s", history[1].Action, domain.ActionNoted)
	}
	if history[1].Details != `Anotação adicionada/modificada: "Pagamento via pix"` {
		t.Fatalf("note details = %q", history[1].Details)
	}
}

func TestUpdateClient_LongNoteIsTruncatedInDetails(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{{ID: "c1", Name: "Maria", Login: "maria", Server: "srv", DueDate: "2025-04-01"}},
	}
	svc := newTestRosterService(repo, testNow)

	note := strings.Repeat("a", 60)
	_, err := svc.UpdateClient(context.Background(), "u1", "c1", ports.ClientInput{
		Name: "Maria", Login: "maria", Server: "srv", DueDate: "2025-04-01",
		Notes: note,
	})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}

	history := repo.snapshots["u1"].History
	if len(history) != 1 {
		t.Fatalf("history = %d entries, want 1", len(history))
	}
	want := `Anotação adicionada/modificada: "` + strings.Repeat("a", 50) + `..."`
	if history[0].Details != want {
		t.Fatalf("details = %q, want %q", history[0].Details, want)
	}
}

func TestUpdateClient_ClearedNoteUsesRemovalMarker(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{{ID: "c1", Name: "Maria", Login: "maria", Server: "srv", DueDate: "2025-04-01", Notes: "antiga"}},
	}
	svc := newTestRosterService(repo, testNow)

	_, err := svc.UpdateClient(context.Background(), "u1", "c1", ports.ClientInput{
		Name: "Maria", Login: "maria", Server: "srv", DueDate: "2025-04-01", Notes: "",
	})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}

	history := repo.snapshots["u1"].History
	if len(history) != 1 {
		t.Fatalf("history = %d entries, want 1", len(history))
	}
	if history[0].Details != "Anotação removida." {
		t.Fatalf("details = %q", history[0].Details)
	}
}

func TestUpdateClient_UnknownID(t *testing.T) {
	repo := newStubSnapshotRepo()
	svc := newTestRosterService(repo, testNow)

	_, err := svc.UpdateClient(context.Background(), "u1", "nope", ports.ClientInput{
		Name: "X", Login: "x", Server: "srv", DueDate: "2025-04-01",
	})
	if !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("error = %v, want ErrClientNotFound", err)
	}
}

func TestDeleteClient(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{
			{ID: "c1", Name: "Maria", DueDate: "2025-04-01"},
			{ID: "c2", Name: "João", DueDate: "2025-04-02"},
		},
	}
	svc := newTestRosterService(repo, testNow)

	if err := svc.DeleteClient(context.Background(), "u1", "c1"); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}

	snap := repo.snapshots["u1"]
	if len(snap.Clients) != 1 || snap.Clients[0].ID != "c2" {
		t.Fatalf("unexpected clients after delete: %+v", snap.Clients)
	}
	if len(snap.History) != 1 || snap.History[0].Action != domain.ActionDeleted {
		t.Fatalf("unexpected history after delete: %+v", snap.History)
	}
}

func TestDeleteClient_UnknownIDIsNoOp(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{{ID: "c1", Name: "Maria", DueDate: "2025-04-01"}},
	}
	svc := newTestRosterService(repo, testNow)

	if err := svc.DeleteClient(context.Background(), "u1", "ghost"); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}
	if repo.saveCalls != 0 {
		t.Fatalf("no write expected for unknown id")
	}
}

func TestRenewClient_FutureDueDateExtendsFromIt(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{{ID: "c1", Name: "Maria", DueDate: "2025-03-20"}},
	}
	svc := newTestRosterService(repo, testNow)

	renewed, err := svc.RenewClient(context.Background(), "u1", "c1", 30)
	if err != nil {
		t.Fatalf("RenewClient: %v", err)
	}
	if renewed.DueDate != "2025-04-19" {
		t.Fatalf("due date = %s, want 2025-04-19", renewed.DueDate)
	}
}

func TestRenewClient_ExpiredRestartsFromToday(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{{ID: "c1", Name: "Maria", DueDate: "2024-12-01"}},
	}
	svc := newTestRosterService(repo, testNow)

	renewed, err := svc.RenewClient(context.Background(), "u1", "c1", 30)
	if err != nil {
		t.Fatalf("RenewClient: %v", err)
	}
	if renewed.DueDate != "2025-04-09" {
		t.Fatalf("due date = %s, want 2025-04-09", renewed.DueDate)
	}

	history := repo.snapshots["u1"].History
	if len(history) != 1 || history[0].Action != domain.ActionRenewed {
		t.Fatalf("unexpected history: %+v", history)
	}
	if history[0].Details != "Assinatura renovada por 30 dias. Novo vencimento: 09/04/2025." {
		t.Fatalf("details = %q", history[0].Details)
	}
}

func TestRenewClient_DefaultPeriod(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{{ID: "c1", Name: "Maria", DueDate: "2024-12-01"}},
	}
	svc := newTestRosterService(repo, testNow)

	renewed, err := svc.RenewClient(context.Background(), "u1", "c1", 0)
	if err != nil {
		t.Fatalf("RenewClient: %v", err)
	}
	if renewed.DueDate != "2025-04-09" {
		t.Fatalf("due date = %s, want 2025-04-09 (30-day default)", renewed.DueDate)
	}
}

func TestReorderClients(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{
			{ID: "c1", Name: "Ana", DueDate: "2025-04-01", Position: 100},
			{ID: "c2", Name: "Bia", DueDate: "2025-04-02", Position: 200},
			{ID: "c3", Name: "Caio", DueDate: "2025-04-03", Position: 300},
		},
	}
	svc := newTestRosterService(repo, testNow)

	if err := svc.ReorderClients(context.Background(), "u1", []string{"c3", "c1", "c2"}); err != nil {
		t.Fatalf("ReorderClients: %v", err)
	}

	snap := repo.snapshots["u1"]
	positions := map[string]int64{}
	for _, c := range snap.Clients {
		positions[c.ID] = c.Position
	}
	if positions["c3"] != 0 || positions["c1"] != 1 || positions["c2"] != 2 {
		t.Fatalf("positions = %v", positions)
	}
	if len(snap.History) != 0 {
		t.Fatalf("reorder must not write history, got %d entries", len(snap.History))
	}
}

func TestReorderClients_UnlistedKeepPosition(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{
			{ID: "c1", Name: "Ana", DueDate: "2025-04-01", Position: 100},
			{ID: "c2", Name: "Bia", DueDate: "2025-04-02", Position: 200},
		},
	}
	svc := newTestRosterService(repo, testNow)

	if err := svc.ReorderClients(context.Background(), "u1", []string{"c2"}); err != nil {
		t.Fatalf("ReorderClients: %v", err)
	}

	for _, c := range repo.snapshots["u1"].Clients {
		switch c.ID {
		case "c1":
			if c.Position != 100 {
				t.Fatalf("c1 position = %d, want 100", c.Position)
			}
		case "c2":
			if c.Position != 0 {
				t.Fatalf("c2 position = %d, want 0", c.Position)
			}
		}
	}
}

func TestRestore_SortsHistoryAndAddsSystemEntry(t *testing.T) {
	repo := newStubSnapshotRepo()
	svc := newTestRosterService(repo, testNow)

	older := domain.HistoryEntry{ID: "h1", Timestamp: testNow.Add(-2 * time.Hour), ClientName: "Ana", Action: domain.ActionCreated}
	newer := domain.HistoryEntry{ID: "h2", Timestamp: testNow.Add(-1 * time.Hour), ClientName: "Ana", Action: domain.ActionUpdated}

	err := svc.Restore(context.Background(), "u1",
		[]domain.Client{{ID: "c1", Name: "Ana", DueDate: "2025-04-01", Position: 5}},
		[]domain.HistoryEntry{older, newer},
	)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	history := repo.snapshots["u1"].History
	if len(history) != 3 {
		t.Fatalf("history = %d entries, want 3", len(history))
	}
	if history[0].Action != domain.ActionSystem || history[0].ClientName != "Sistema" {
		t.Fatalf("first entry = %+v, want system entry", history[0])
	}
	if history[0].Details != "Backup restaurado com sucesso." {
		t.Fatalf("system details = %q", history[0].Details)
	}
	if history[1].ID != "h2" || history[2].ID != "h1" {
		t.Fatalf("restored history not newest-first: %s, %s", history[1].ID, history[2].ID)
	}
}

func TestStats(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{
			{ID: "c1", Name: "Ana", DueDate: "2025-06-01"},  // active
			{ID: "c2", Name: "Bia", DueDate: "2025-03-12"},  // expiring soon
			{ID: "c3", Name: "Caio", DueDate: "2025-03-01"}, // expired
			{ID: "c4", Name: "Davi", DueDate: "2025-03-10"}, // expiring soon (today)
		},
	}
	svc := newTestRosterService(repo, testNow)

	stats, err := svc.Stats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := ports.Stats{Total: 4, Active: 1, Expired: 1, ExpiringSoon: 2}
	if *stats != want {
		t.Fatalf("stats = %+v, want %+v", *stats, want)
	}
}

func TestView_AppliesQueryAndKeepsHistory(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.snapshots["u1"] = &domain.Snapshot{
		Clients: []domain.Client{
			{ID: "c1", Name: "Ana", DueDate: "2025-06-01", Position: 2},
			{ID: "c2", Name: "Bia", DueDate: "2025-03-01", Position: 1},
		},
		History: []domain.HistoryEntry{{ID: "h1", Action: domain.ActionCreated, ClientName: "Ana"}},
	}
	svc := newTestRosterService(repo, testNow)

	view, err := svc.View(context.Background(), "u1", domain.ListQuery{Filter: domain.FilterExpired})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(view.Clients) != 1 || view.Clients[0].ID != "c2" {
		t.Fatalf("unexpected view clients: %+v", view.Clients)
	}
	if view.Clients[0].Status != domain.StatusExpired {
		t.Fatalf("status = %s, want expired", view.Clients[0].Status)
	}
	if len(view.History) != 1 {
		t.Fatalf("history should pass through untouched")
	}
}

func TestMutation_SaveFailurePropagates(t *testing.T) {
	repo := newStubSnapshotRepo()
	repo.saveErr = errors.New("write failed")
	svc := newTestRosterService(repo, testNow)

	_, err := svc.CreateClient(context.Background(), "u1", ports.ClientInput{
		Name: "Maria", Login: "maria", Server: "srv", DueDate: "2025-04-01",
	})
	if err == nil || !errors.Is(err, repo.saveErr) {
		t.Fatalf("error = %v, want wrapped save error", err)
	}
}
