package handler

type reminderRequest struct {
	ClientID string `json:"client_id" validate:"required"`
}

type parseClientRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type bulkRemindersRequest struct {
	ClientIDs []string `json:"client_ids" validate:"required,min=1,max=100,dive,required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type passwordResponse struct {
	Password string `json:"password"`
}

type parsedClientResponse struct {
	Name     string `json:"name,omitempty"`
	Login    string `json:"login,omitempty"`
	Password string `json:"password,omitempty"`
	Server   string `json:"server,omitempty"`
	Phone    string `json:"phone,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
}

type bulkRemindersResponse struct {
	JobID string `json:"job_id"`
	Total int    `json:"total"`
}

type bulkStatusResponse struct {
	Messages map[string]string `json:"messages"`
	Total    int               `json:"total"`
	Done     bool              `json:"done"`
}
