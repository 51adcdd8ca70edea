package chi

import "time"

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest            ErrorCode = "bad_request"
	ErrorCodeDataSourceUnavailable ErrorCode = "data_source_unavailable"
	ErrorCodeInternalError         ErrorCode = "internal_error"
	ErrorCodeNotFound              ErrorCode = "not_found"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// NovelItem is one row of a browse page.
type NovelItem struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Genre      string     `json:"genre"`
	Score      int64      `json:"score"`
	Length     int64      `json:"length"`
	LastUpdate *time.Time `json:"last_update,omitempty"`
	Keywords   string     `json:"keywords"`
	Synopsis   *string    `json:"synopsis"` // null when the detail fetch failed
}

// BrowseResponse is the JSON body of GET /novels.
type BrowseResponse struct {
	Items      []NovelItem `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"total_pages"`
	PageSize   int         `json:"page_size"`
	Empty      bool        `json:"empty"`
	Message    string      `json:"message,omitempty"`
	Warning    string      `json:"warning,omitempty"`
}

// GenresResponse is the JSON body of GET /genres.
type GenresResponse struct {
	Genres []string `json:"genres"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// browseParams are the optional query parameters of GET /novels.
type browseParams struct {
	Genre    *string
	Keyword  *string
	MinScore *int64
	Page     *int
}
