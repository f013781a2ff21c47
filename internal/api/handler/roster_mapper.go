package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/gerenciadorpro/roster-api/internal/core/domain"
	"github.com/gerenciadorpro/roster-api/internal/core/ports"
)

// --- Request mapping ---

func toClientInput(req clientRequest) ports.ClientInput {
	return ports.ClientInput{
		Name:     req.Name,
		Login:    req.Login,
		Password: req.Password,
		Server:   req.Server,
		DueDate:  req.DueDate,
		Phone:    req.Phone,
		Notes:    req.Notes,
	}
}

// toListQuery reads the view parameters from the query string. Unknown
// filter or sort values fall back to the defaults (all, custom order).
func toListQuery(c echo.Context) domain.ListQuery {
	q := domain.ListQuery{
		Filter: domain.FilterAll,
		Search: c.QueryParam("search"),
		Sort:   domain.SortCustom,
	}

	switch f := domain.FilterOption(c.QueryParam("filter")); f {
	case domain.FilterActive, domain.FilterExpired, domain.FilterExpiringSoon:
		q.Filter = f
	}
	switch s := domain.SortOption(c.QueryParam("sort")); s {
	case domain.SortName, domain.SortDueDate, domain.SortStatus:
		q.Sort = s
	}
	return q
}

// --- Response mapping ---

func toClientResponse(c domain.Client) clientResponse {
	return clientResponse{
		ID:       c.ID,
		Name:     c.Name,
		Login:    c.Login,
		Password: c.Password,
		Server:   c.Server,
		DueDate:  c.DueDate,
		Phone:    c.Phone,
		Notes:    c.Notes,
		Position: c.Position,
	}
}

func toViewResponse(v *ports.RosterView) rosterViewResponse {
	clients := make([]clientWithStatusResponse, len(v.Clients))
	for i, c := range v.Clients {
		clients[i] = clientWithStatusResponse{
			clientResponse: toClientResponse(c.Client),
			Status:         string(c.Status),
			DaysRemaining:  c.DaysRemaining,
		}
	}

	history := make([]historyEntryResponse, len(v.History))
	for i, h := range v.History {
		history[i] = historyEntryResponse{
			ID:         h.ID,
			Timestamp:  h.Timestamp,
			ClientName: h.ClientName,
			Action:     string(h.Action),
			Details:    h.Details,
		}
	}

	return rosterViewResponse{Clients: clients, History: history}
}

func toStatsResponse(s *ports.Stats) statsResponse {
	return statsResponse{
		Total:        s.Total,
		Active:       s.Active,
		Expired:      s.Expired,
		ExpiringSoon: s.ExpiringSoon,
	}
}
