package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gerenciadorpro/roster-api/internal/api/metrics"
	"github.com/gerenciadorpro/roster-api/internal/core/domain"
	"github.com/gerenciadorpro/roster-api/internal/core/ports"
	"github.com/gerenciadorpro/roster-api/internal/core/service"
)

// reminderEnqueuer is the slice of the dispatcher the handler needs.
type reminderEnqueuer interface {
	EnqueueBatch(jobs []ports.ReminderJob)
}

// AssistHandler exposes the text-generation features: renewal reminders,
// dashboard summaries, password suggestions, free-text client parsing, and
// asynchronous bulk reminder generation.
type AssistHandler struct {
	roster  ports.RosterService
	assist  ports.AssistService
	queue   reminderEnqueuer
	results ports.JobResults
}

func NewAssistHandler(roster ports.RosterService, assist ports.AssistService, queue reminderEnqueuer, results ports.JobResults) *AssistHandler {
	return &AssistHandler{roster: roster, assist: assist, queue: queue, results: results}
}

// Reminder handles POST /v1/assist/reminder.
//
// @Summary      Generate a renewal reminder message for a client
// @Tags         assist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      reminderRequest  true  "Client to remind"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/assist/reminder [post]
func (h *AssistHandler) Reminder(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	var req reminderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.findClient(c, uid, req.ClientID)
	if err != nil {
		return err
	}

	message := h.assist.RenewalReminder(c.Request().Context(), client.Name, displayDate(client.DueDate))
	metrics.AssistRequestsTotal.WithLabelValues("reminder", assistOutcome(message, service.FallbackReminder)).Inc()

	return c.JSON(http.StatusOK, messageResponse{Message: message})
}

// Summary handles POST /v1/assist/summary.
//
// @Summary      Generate a short analysis of the roster totals
// @Tags         assist
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/assist/summary [post]
func (h *AssistHandler) Summary(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	stats, err := h.roster.Stats(c.Request().Context(), uid)
	if err != nil {
		return err
	}

	message := h.assist.DashboardSummary(c.Request().Context(), *stats)
	metrics.AssistRequestsTotal.WithLabelValues("summary", assistOutcome(message, service.FallbackSummary)).Inc()

	return c.JSON(http.StatusOK, messageResponse{Message: message})
}

// Password handles POST /v1/assist/password.
//
// @Summary      Generate a strong password suggestion
// @Tags         assist
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  passwordResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/assist/password [post]
func (h *AssistHandler) Password(c echo.Context) error {
	if _, err := ctxUID(c); err != nil {
		return err
	}

	password := h.assist.StrongPassword(c.Request().Context())
	metrics.AssistRequestsTotal.WithLabelValues("password", assistOutcome(password, service.FallbackPassword)).Inc()

	return c.JSON(http.StatusOK, passwordResponse{Password: password})
}

// ParseClient handles POST /v1/assist/parse-client.
//
// @Summary      Extract client fields from free text
// @Tags         assist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      parseClientRequest  true  "Free text describing a client"
// @Success      200   {object}  parsedClientResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/assist/parse-client [post]
func (h *AssistHandler) ParseClient(c echo.Context) error {
	if _, err := ctxUID(c); err != nil {
		return err
	}

	var req parseClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	parsed, err := h.assist.ParseClient(c.Request().Context(), req.Text)
	if err != nil {
		metrics.AssistRequestsTotal.WithLabelValues("parse", "fallback").Inc()
		return err
	}
	metrics.AssistRequestsTotal.WithLabelValues("parse", "ok").Inc()

	return c.JSON(http.StatusOK, parsedClientResponse{
		Name:     parsed.Name,
		Login:    parsed.Login,
		Password: parsed.Password,
		Server:   parsed.Server,
		Phone:    parsed.Phone,
		DueDate:  parsed.DueDate,
	})
}

// BulkReminders handles POST /v1/assist/reminders/bulk. The response is
// immediate; messages are generated in the background and collected under
// the returned job id.
//
// @Summary      Generate renewal reminders for several clients
// @Tags         assist
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bulkRemindersRequest  true  "Clients to remind"
// @Success      202   {object}  bulkRemindersResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/assist/reminders/bulk [post]
func (h *AssistHandler) BulkReminders(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	var req bulkRemindersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	snap, err := h.roster.Snapshot(c.Request().Context(), uid)
	if err != nil {
		return err
	}

	jobID := uuid.NewString()
	jobs := make([]ports.ReminderJob, 0, len(req.ClientIDs))
	for _, id := range req.ClientIDs {
		client := snap.FindClient(id)
		if client == nil {
			return domain.ErrClientNotFound
		}
		jobs = append(jobs, ports.ReminderJob{
			JobID:      jobID,
			ClientID:   client.ID,
			ClientName: client.Name,
			DueDate:    displayDate(client.DueDate),
		})
	}

	if err := h.results.Init(c.Request().Context(), jobID, len(jobs)); err != nil {
		return err
	}
	h.queue.EnqueueBatch(jobs)
	metrics.BulkJobsEnqueuedTotal.Inc()

	return c.JSON(http.StatusAccepted, bulkRemindersResponse{JobID: jobID, Total: len(jobs)})
}

// BulkRemindersStatus handles GET /v1/assist/reminders/bulk/:job_id.
//
// @Summary      Poll a bulk reminder job
// @Tags         assist
// @Produce      json
// @Security     BearerAuth
// @Param        job_id  path      string  true  "Job id"
// @Success      200     {object}  bulkStatusResponse
// @Failure      401     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/assist/reminders/bulk/{job_id} [get]
func (h *AssistHandler) BulkRemindersStatus(c echo.Context) error {
	if _, err := ctxUID(c); err != nil {
		return err
	}

	messages, total, err := h.results.Get(c.Request().Context(), c.Param("job_id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bulkStatusResponse{
		Messages: messages,
		Total:    total,
		Done:     len(messages) >= total,
	})
}

func (h *AssistHandler) findClient(c echo.Context, uid, clientID string) (*domain.Client, error) {
	snap, err := h.roster.Snapshot(c.Request().Context(), uid)
	if err != nil {
		return nil, err
	}
	client := snap.FindClient(clientID)
	if client == nil {
		return nil, domain.ErrClientNotFound
	}
	return client, nil
}

// displayDate renders a stored due-date in the DD/MM/YYYY form used inside
// generated messages. Unparseable values pass through unchanged.
func displayDate(dueDate string) string {
	t, err := time.Parse(domain.DueDateLayout, dueDate)
	if err != nil {
		return dueDate
	}
	return t.Format("02/01/2006")
}

// assistOutcome labels a generated string "fallback" when it matches the
// fixed degradation message, "ok" otherwise.
func assistOutcome(message, fallback string) string {
	if message == fallback {
		return "fallback"
	}
	return "ok"
}
