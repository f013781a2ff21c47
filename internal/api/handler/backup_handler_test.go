package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gerenciadorpro/roster-api/internal/core/domain"
	"github.com/gerenciadorpro/roster-api/internal/core/ports"
)

type stubBackupService struct {
	exportData  []byte
	uploadKey   string
	listObjects []ports.BackupObject
	err         error

	restoredBody string
	restoredKey  string
}

func (s *stubBackupService) Export(_ context.Context, _ string) ([]byte, error) {
	return s.exportData, s.err
}

func (s *stubBackupService) Restore(_ context.Context, _ string, r io.Reader) error {
	body, _ := io.ReadAll(r)
	s.restoredBody = string(body)
	return s.err
}

func (s *stubBackupService) CloudUpload(_ context.Context, _ string) (string, error) {
	return s.uploadKey, s.err
}

func (s *stubBackupService) CloudList(_ context.Context, _ string) ([]ports.BackupObject, error) {
	return s.listObjects, s.err
}

func (s *stubBackupService) CloudRestore(_ context.Context, _, key string) error {
	s.restoredKey = key
	return s.err
}

func TestBackupHandler_Export(t *testing.T) {
	stub := &stubBackupService{exportData: []byte(`{"clients":{},"history":{}}`)}
	h := NewBackupHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/v1/backup", "")
	if err := h.Export(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "attachment") {
		t.Fatalf("Content-Disposition = %q, want attachment", got)
	}
	if rec.Body.String() != string(stub.exportData) {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestBackupHandler_Restore(t *testing.T) {
	stub := &stubBackupService{}
	h := NewBackupHandler(stub)

	body := `{"clients":{},"history":{}}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/restore", body)
	if err := h.Restore(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if stub.restoredBody != body {
		t.Fatalf("restored body = %q", stub.restoredBody)
	}
}

func TestBackupHandler_Restore_InvalidDocumentPropagates(t *testing.T) {
	stub := &stubBackupService{err: domain.ErrInvalidBackup}
	h := NewBackupHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/v1/restore", "not-json")
	if err := h.Restore(c); !errors.Is(err, domain.ErrInvalidBackup) {
		t.Fatalf("error = %v, want ErrInvalidBackup", err)
	}
}

func TestBackupHandler_CloudRestore_ForeignKeyForbidden(t *testing.T) {
	stub := &stubBackupService{}
	h := NewBackupHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/v1/restore/cloud", `{"key":"other-user/roster_backup_x.json"}`)
	if err := h.CloudRestore(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}
	if stub.restoredKey != "" {
		t.Fatalf("restore should not have been attempted")
	}
}

func TestBackupHandler_CloudRestore_OwnKey(t *testing.T) {
	stub := &stubBackupService{}
	h := NewBackupHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/restore/cloud", `{"key":"u1/roster_backup_x.json"}`)
	if err := h.CloudRestore(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if stub.restoredKey != "u1/roster_backup_x.json" {
		t.Fatalf("restored key = %q", stub.restoredKey)
	}
}

func TestBackupHandler_CloudUpload(t *testing.T) {
	stub := &stubBackupService{uploadKey: "u1/roster_backup_2025-03-10T12_00_00.json"}
	h := NewBackupHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/backup/cloud", "")
	if err := h.CloudUpload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), stub.uploadKey) {
		t.Fatalf("body = %q, want key", rec.Body.String())
	}
}
