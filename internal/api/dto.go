package api

import "github.com/kedbin/ai-devops-journal/internal/index"

// CaptureRequest is the request body for submitting a journal page image.
// Image carries base64 data, with or without a data-URI prefix.
type CaptureRequest struct {
	Image string `json:"image"`
}

// EntryListItem is a lightweight item in a list response (aliased from the
// index layer).
type EntryListItem = index.EntryRow

// EntryListResponse wraps paginated entry listings.
type EntryListResponse struct {
	Entries []EntryListItem `json:"entries"`
	Total   int             `json:"total"`
}

// SearchResult is a single search hit in the API response.
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}
