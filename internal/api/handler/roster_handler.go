package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gerenciadorpro/roster-api/internal/api/metrics"
	"github.com/gerenciadorpro/roster-api/internal/core/ports"
	"github.com/gerenciadorpro/roster-api/internal/infrastructure/export"
)

// RosterHandler handles HTTP requests for the roster view and its mutations.
type RosterHandler struct {
	service ports.RosterService
}

func NewRosterHandler(service ports.RosterService) *RosterHandler {
	return &RosterHandler{service: service}
}

// View handles GET /v1/roster.
//
// @Summary      Get the derived roster view
// @Tags         roster
// @Produce      json
// @Security     BearerAuth
// @Param        filter  query     string  false  "Status filter"  Enums(all, active, expired, expiring_soon)
// @Param        search  query     string  false  "Search term (name, login, notes, or phone digits)"
// @Param        sort    query     string  false  "Sort order"  Enums(custom, name, due_date, status)
// @Success      200     {object}  rosterViewResponse
// @Failure      401     {object}  errorResponse
// @Failure      500     {object}  errorResponse
// @Router       /v1/roster [get]
func (h *RosterHandler) View(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	start := time.Now()
	view, err := h.service.View(c.Request().Context(), uid, toListQuery(c))
	if err != nil {
		return err
	}
	metrics.ViewDuration.Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, toViewResponse(view))
}

// Stats handles GET /v1/roster/stats.
//
// @Summary      Get roster totals by derived status
// @Tags         roster
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/roster/stats [get]
func (h *RosterHandler) Stats(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	stats, err := h.service.Stats(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStatsResponse(stats))
}

// Export handles GET /v1/roster/export.
//
// @Summary      Download the roster as a spreadsheet
// @Tags         roster
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        filter  query  string  false  "Status filter"  Enums(all, active, expired, expiring_soon)
// @Param        search  query  string  false  "Search term"
// @Param        sort    query  string  false  "Sort order"  Enums(custom, name, due_date, status)
// @Success      200  {file}    file
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/roster/export [get]
func (h *RosterHandler) Export(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	view, err := h.service.View(c.Request().Context(), uid, toListQuery(c))
	if err != nil {
		return err
	}

	f, err := export.Workbook(view.Clients)
	if err != nil {
		return err
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.FileName(time.Now())+`"`)
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}

// Create handles POST /v1/clients.
//
// @Summary      Add a client to the roster
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      clientRequest  true  "Client details"
// @Success      201   {object}  clientResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/clients [post]
func (h *RosterHandler) Create(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.service.CreateClient(c.Request().Context(), uid, toClientInput(req))
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("create", "service_error").Inc()
		return err
	}

	metrics.MutationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, toClientResponse(*client))
}

// Update handles PUT /v1/clients/:id.
//
// @Summary      Replace a client's editable fields
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Client id"
// @Param        body  body      clientRequest  true  "Client details"
// @Success      200   {object}  clientResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/clients/{id} [put]
func (h *RosterHandler) Update(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.service.UpdateClient(c.Request().Context(), uid, c.Param("id"), toClientInput(req))
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("update", "service_error").Inc()
		return err
	}

	metrics.MutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, toClientResponse(*client))
}

// Delete handles DELETE /v1/clients/:id.
//
// @Summary      Remove a client from the roster
// @Tags         clients
// @Security     BearerAuth
// @Param        id  path  string  true  "Client id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/clients/{id} [delete]
func (h *RosterHandler) Delete(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteClient(c.Request().Context(), uid, c.Param("id")); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("delete", "service_error").Inc()
		return err
	}

	metrics.MutationsTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Renew handles POST /v1/clients/:id/renew.
//
// @Summary      Extend a client's subscription
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true   "Client id"
// @Param        body  body      renewRequest  false  "Renewal period in days (default 30)"
// @Success      200   {object}  clientResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/clients/{id}/renew [post]
func (h *RosterHandler) Renew(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	req := renewRequest{}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.service.RenewClient(c.Request().Context(), uid, c.Param("id"), req.Days)
	if err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("renew", "service_error").Inc()
		return err
	}

	metrics.MutationsTotal.WithLabelValues("renew").Inc()
	return c.JSON(http.StatusOK, toClientResponse(*client))
}

// Reorder handles PUT /v1/clients/order.
//
// @Summary      Reassign the custom display order
// @Tags         clients
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  reorderRequest  true  "Client ids in the desired order"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/clients/order [put]
func (h *RosterHandler) Reorder(c echo.Context) error {
	uid, err := ctxUID(c)
	if err != nil {
		return err
	}

	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ReorderClients(c.Request().Context(), uid, req.IDs); err != nil {
		metrics.MutationErrorsTotal.WithLabelValues("reorder", "service_error").Inc()
		return err
	}

	metrics.MutationsTotal.WithLabelValues("reorder").Inc()
	return c.NoContent(http.StatusNoContent)
}
