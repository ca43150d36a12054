package dto

import "social-content/search"

type SearchResponse struct {
	Data   []search.Hit `json:"data"`
	Total  int          `json:"total"`
	Cursor string       `json:"cursor,omitempty"`
}

type CommunityCountResponse struct {
	Data []search.CommunityCount `json:"data"`
}
