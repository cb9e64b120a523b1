package domain

import "time"

// OpenAPIAnalysis is the aggregate result of ingesting one API document.
// It is built once per ingestion and immutable thereafter; re-ingesting a
// document produces a fresh instance rather than mutating the old one.
type OpenAPIAnalysis struct {
	Title       string   `json:"title"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	BaseURL     string   `json:"base_url,omitempty"`
	Servers     []string `json:"servers,omitempty"`

	Resources []*ParsedResource `json:"resources"`

	TotalPaths      int       `json:"total_paths"`
	TotalOperations int       `json:"total_operations"`
	RestfulAPIs     int       `json:"restful_apis"`
	Tags            []string  `json:"tags,omitempty"`
	LastParsed      time.Time `json:"last_parsed"`
}

// PaginationInfo describes the page window of a transformed list response.
// It is derived fresh per transformer call and is never part of the graph.
type PaginationInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
