package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gerenciadorpro/roster-api/internal/core/domain"
	"github.com/gerenciadorpro/roster-api/internal/core/ports"
)

// Fixed Portuguese fallbacks returned when the text-generation boundary
// fails. There is no retry policy: failures degrade, they do not propagate.
const (
	FallbackReminder = "Não foi possível gerar a mensagem de renovação no momento."
	FallbackSummary  = "Não foi possível gerar o resumo do painel no momento."
	FallbackPassword = "erro-ao-gerar"
)

const assistCacheTTL = time.Hour

var codeFenceRe = regexp.MustCompile("(?s)^```(?:\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")
var dayFirstDateRe = regexp.MustCompile(`^(\d{2})[/-](\d{2})[/-](\d{4})$`)

// AssistService wraps the LLM boundary with the dashboard's fixed prompts.
// Deterministic prompts (reminders, summaries) are cached so repeated views
// do not re-bill the API.
type AssistService struct {
	gen    ports.TextGenerator
	cache  ports.TextCache
	logger zerolog.Logger
}

func NewAssistService(gen ports.TextGenerator, cache ports.TextCache, logger zerolog.Logger) *AssistService {
	return &AssistService{gen: gen, cache: cache, logger: logger}
}

func (s *AssistService) RenewalReminder(ctx context.Context, clientName, dueDate string) string {
	cacheKey := fmt.Sprintf("assist:reminder:%s:%s", clientName, dueDate)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached
	}

	prompt := fmt.Sprintf(`Gere uma mensagem curta, amigável e profissional em português para lembrar um cliente sobre o vencimento de sua assinatura.
Cliente: %s
Data de Vencimento: %s

A mensagem deve ser concisa e clara. Inclua o nome do cliente e a data. Não adicione saudações como "Prezado" ou "Olá". Comece diretamente com o lembrete. Termine pedindo para entrar em contato para renovar.`, clientName, dueDate)

	text, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Str("client", clientName).Msg("reminder generation failed")
		return FallbackReminder
	}

	s.cacheSet(ctx, cacheKey, text)
	return text
}

func (s *AssistService) DashboardSummary(ctx context.Context, stats ports.Stats) string {
	cacheKey := fmt.Sprintf("assist:summary:%d:%d:%d:%d", stats.Total, stats.Active, stats.Expired, stats.ExpiringSoon)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached
	}

	prompt := fmt.Sprintf(`Aja como um analista de negócios. Analise os seguintes dados de uma carteira de clientes e gere um resumo conciso (2-3 frases) em português. Destaque o ponto mais importante (positivo ou negativo).
- Total de Clientes: %d
- Clientes Ativos: %d
- Clientes Vencidos: %d
- Clientes com Vencimento Próximo (próximos 7 dias): %d`, stats.Total, stats.Active, stats.Expired, stats.ExpiringSoon)

	text, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Msg("dashboard summary generation failed")
		return FallbackSummary
	}

	s.cacheSet(ctx, cacheKey, text)
	return text
}

func (s *AssistService) StrongPassword(ctx context.Context) string {
	prompt := `Gere uma senha forte e segura com 12 caracteres. Deve incluir letras maiúsculas, minúsculas, números e símbolos. Responda apenas com a senha, sem qualquer texto adicional.`

	text, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Msg("password generation failed")
		return FallbackPassword
	}
	return strings.TrimSpace(text)
}

// ParseClient asks the model to extract structured client fields from free
// text. Unlike the other assist operations there is no sensible fallback, so
// failures surface as ErrAssistUnavailable.
func (s *AssistService) ParseClient(ctx context.Context, text string) (*ports.ParsedClient, error) {
	prompt := fmt.Sprintf(`Analise o seguinte texto e extraia as informações de um cliente. O texto pode estar em formato livre.
As informações a serem extraídas são:
- name (string): O nome completo do cliente.
- login (string): O nome de usuário ou login.
- password (string, opcional): A senha do cliente.
- server (string, opcional): O servidor associado.
- phone (string, opcional): O número de telefone.
- due_date (string): A data de vencimento no formato AAAA-MM-DD. Se o ano não for especificado, assuma o ano atual ou o próximo, o que fizer mais sentido.

Texto para analisar:
---
%s
---

Responda APENAS com um objeto JSON contendo os dados extraídos. Não inclua explicações ou formatação markdown. Se um campo não for encontrado, omita-o do JSON.`, text)

	raw, err := s.gen.GenerateJSON(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Msg("client parsing failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrAssistUnavailable, err)
	}

	var parsed ports.ParsedClient
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		s.logger.Error().Err(err).Msg("client parsing returned malformed JSON")
		return nil, fmt.Errorf("%w: malformed model response", domain.ErrAssistUnavailable)
	}

	parsed.DueDate = normalizeDueDate(parsed.DueDate)
	return &parsed, nil
}

func (s *AssistService) cacheGet(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	val, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("assist cache read failed")
		return "", false
	}
	return val, ok
}

func (s *AssistService) cacheSet(ctx context.Context, key, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, assistCacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("assist cache write failed")
	}
}

// stripCodeFence unwraps a markdown ```json fence the model sometimes adds
// despite being told not to.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// normalizeDueDate rewrites DD/MM/YYYY and DD-MM-YYYY model output to the
// storage format.
func normalizeDueDate(s string) string {
	if m := dayFirstDateRe.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
	}
	return s
}
