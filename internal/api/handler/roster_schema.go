package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type clientRequest struct {
	Name     string `json:"name"     validate:"required"`
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password"`
	Server   string `json:"server"   validate:"required"`
	DueDate  string `json:"due_date" validate:"required,dateonly"`
	Phone    string `json:"phone"`
	Notes    string `json:"notes"`
}

type renewRequest struct {
	// Days defaults to 30 when omitted.
	Days int `json:"days" validate:"omitempty,gt=0,max=3650"`
}

type reorderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// --- Response types ---
// Response-only types owned by the transport layer, intentionally separate
// from domain types so the JSON contract is not coupled to internal changes.

type clientResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Login    string `json:"login"`
	Password string `json:"password,omitempty"`
	Server   string `json:"server"`
	DueDate  string `json:"due_date"`
	Phone    string `json:"phone,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Position int64  `json:"position"`
}

type clientWithStatusResponse struct {
	clientResponse
	Status        string `json:"status"`
	DaysRemaining *int   `json:"days_remaining"`
}

type historyEntryResponse struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	ClientName string    `json:"client_name"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
}

type rosterViewResponse struct {
	Clients []clientWithStatusResponse `json:"clients"`
	History []historyEntryResponse     `json:"history"`
}

type statsResponse struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiring_soon"`
}
