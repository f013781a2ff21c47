package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gerenciadorpro/roster-api/internal/core/domain"
	"github.com/gerenciadorpro/roster-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubGenerator struct {
	textResponse string
	jsonResponse string
	err          error
	calls        int
}

func (g *stubGenerator) GenerateText(_ context.Context, _ string) (string, error) {
	g.calls++
	return g.textResponse, g.err
}

func (g *stubGenerator) GenerateJSON(_ context.Context, _ string) (string, error) {
	g.calls++
	return g.jsonResponse, g.err
}

type memoryCache struct {
	entries map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.entries[key] = value
	return nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRenewalReminder_ReturnsGeneratedText(t *testing.T) {
	gen := &stubGenerator{textResponse: "Olá Maria, sua assinatura vence em 01/04/2025."}
	svc := NewAssistService(gen, newMemoryCache(), zerolog.Nop())

	got := svc.RenewalReminder(context.Background(), "Maria", "01/04/2025")
	if got != gen.textResponse {
		t.Fatalf("reminder = %q", got)
	}
}

func TestRenewalReminder_FallsBackOnError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream down")}
	svc := NewAssistService(gen, newMemoryCache(), zerolog.Nop())

	got := svc.RenewalReminder(context.Background(), "Maria", "01/04/2025")
	if got != FallbackReminder {
		t.Fatalf("reminder = %q, want fallback", got)
	}
}

func TestRenewalReminder_SecondCallServedFromCache(t *testing.T) {
	gen := &stubGenerator{textResponse: "mensagem"}
	svc := NewAssistService(gen, newMemoryCache(), zerolog.Nop())

	svc.RenewalReminder(context.Background(), "Maria", "01/04/2025")
	svc.RenewalReminder(context.Background(), "Maria", "01/04/2025")
	if gen.calls != 1 {
		t.Fatalf("generator calls = %d, want 1", gen.calls)
	}

	// A different client misses the cache.
	svc.RenewalReminder(context.Background(), "João", "01/04/2025")
	if gen.calls != 2 {
		t.Fatalf("generator calls = %d, want 2", gen.calls)
	}
}

func TestRenewalReminder_NilCacheIsTolerated(t *testing.T) {
	gen := &stubGenerator{textResponse: "mensagem"}
	svc := NewAssistService(gen, nil, zerolog.Nop())

	if got := svc.RenewalReminder(context.Background(), "Maria", "01/04/2025"); got != "mensagem" {
		t.Fatalf("reminder = %q", got)
	}
}

func TestDashboardSummary_FallsBackOnError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream down")}
	svc := NewAssistService(gen, newMemoryCache(), zerolog.Nop())

	got := svc.DashboardSummary(context.Background(), ports.Stats{Total: 10, Active: 7, Expired: 2, ExpiringSoon: 1})
	if got != FallbackSummary {
		t.Fatalf("summary = %q, want fallback", got)
	}
}

func TestStrongPassword_TrimsWhitespace(t *testing.T) {
	gen := &stubGenerator{textResponse: "  X9$mQ2!pL7@z \n"}
	svc := NewAssistService(gen, newMemoryCache(), zerolog.Nop())

	if got := svc.StrongPassword(context.Background()); got != "X9$mQ2!pL7@z" {
		t.Fatalf("password = %q", got)
	}
}

func TestStrongPassword_FallsBackOnError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream down")}
	svc := NewAssistService(gen, newMemoryCache(), zerolog.Nop())

	if got := svc.StrongPassword(context.Background()); got != FallbackPassword {
		t.Fatalf("password = %q, want fallback", got)
	}
}

func TestParseClient(t *testing.T) {
	gen := &stubGenerator{jsonResponse: `{"name": "Maria Souza", "login": "msouza", "due_date": "2025-04-01"}`}
	svc := NewAssistService(gen, newMemoryCache(), zerolog.Nop())

	parsed, err := svc.ParseClient(context.Background(), "cadastrar Maria Souza, login msouza, vence 01 de abril")
	if err != nil {
		t.Fatalf("ParseClient: %v", err)
	}
	if parsed.Name != "Maria Souza" || parsed.Login != "msouza" || parsed.DueDate != "2025-04-01" {
		t.Fatalf("parsed = %+v", parsed)
	}
}

func TestParseClient_StripsCodeFence(t *testing.T) {
	gen := &stubGenerator{jsonResponse: "```json\n{\"name\": \"Maria\", \"due_date\": \"2025-04-01\"}\n```"}
	svc := NewAssistService(gen, newMemoryCache(), zerolog.Nop())

	parsed, err := svc.ParseClient(context.Background(), "texto")
	if err != nil {
		t.Fatalf("ParseClient: %v", err)
	}
	if parsed.Name != "Maria" {
		t.Fatalf("parsed = %+v", parsed)
	}
}

func TestParseClient_NormalizesDayFirstDates(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"01/04/2025", "2025-04-01"},
		{"01-04-2025", "2025-04-01"},
		{"2025-04-01", "2025-04-01"},
		{"abril", "abril"}, // unparseable values pass through
	}

	for _, tt := range tests {
		gen := &stubGenerator{jsonResponse: `{"name": "Maria", "due_date": "` + tt.raw + `"}`}
		svc := NewAssistService(gen, newMemoryCache(), zerolog.Nop())

		parsed, err := svc.ParseClient(context.Background(), "texto")
		if err != nil {
			t.Fatalf("ParseClient(%q): %v", tt.raw, err)
		}
		if parsed.DueDate != tt.want {
			t.Fatalf("due date = %q, want %q", parsed.DueDate, tt.want)
		}
	}
}

func TestParseClient_GeneratorFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream down")}
	svc := NewAssistService(gen, newMemoryCache(), zerolog.Nop())

	_, err := svc.ParseClient(context.Background(), "texto")
	if !errors.Is(err, domain.ErrAssistUnavailable) {
		t.Fatalf("error = %v, want ErrAssistUnavailable", err)
	}
}

func TestParseClient_MalformedJSON(t *testing.T) {
	gen := &stubGenerator{jsonResponse: "desculpe, não entendi"}
	svc := NewAssistService(gen, newMemoryCache(), zerolog.Nop())

	_, err := svc.ParseClient(context.Background(), "texto")
	if !errors.Is(err, domain.ErrAssistUnavailable) {
		t.Fatalf("error = %v, want ErrAssistUnavailable", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
