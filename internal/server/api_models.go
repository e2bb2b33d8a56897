package server

// StartAuditRequest represents the payload required to start an audit job.
// Type selects between a single-page audit and a same-origin site crawl;
// empty means page.
type StartAuditRequest struct {
	URL  string `json:"url" example:"http://localhost:9999/"`
	Type string `json:"type" example:"page" enums:"page,site"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"job not found"`
}
