package models

// ResearchRequest is the JSON body for POST /api/research on the report service.
type ResearchRequest struct {
	Query string `json:"query"`
	Email string `json:"email"`
}

// ResearchResponse is the JSON body returned by the report service on success.
// ReportContent is an HTML fragment rendered as-is by the client.
type ResearchResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	ReportContent string `json:"reportContent"`
	Email         string `json:"email"`
}
