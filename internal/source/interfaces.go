package source

import (
	"context"
	"encoding/json"
	"fmt"
)

// Query carries the per-request identifiers a source may need. The token
// address is an opaque join key; sources read only the fields they use.
type Query struct {
	TokenAddress string `json:"token_address,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
	Chain        string `json:"chain,omitempty"`
	SearchQuery  string `json:"query,omitempty"`
	SearchType   string `json:"search_type,omitempty"`
	MaxItems     int    `json:"max_items,omitempty"`
}

// Source 定义单个外部数据源的抓取契约
type Source interface {
	Name() string

	// Fetch issues exactly one outbound call and maps the response into a
	// fixed JSON shape. No retries; failures propagate to the caller.
	Fetch(ctx context.Context, q Query) (json.RawMessage, error)
}

// FetchError wraps a failed provider call: network error, non-2xx status, or
// malformed payload.
type FetchError struct {
	Source string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status code: %d", e.Source, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
