package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"

	"tokenlens/internal/models"
	"tokenlens/internal/source"
	"tokenlens/internal/utils/request"
)

const defaultBaseURL = "https://api.pushshift.io"

// RedditSource fetches submissions mentioning a symbol from the Pushshift
// search API.
type RedditSource struct {
	baseURL    string
	httpClient *resty.Client
}

func NewRedditSource() *RedditSource {
	return &RedditSource{
		baseURL:    defaultBaseURL,
		httpClient: request.Request,
	}
}

func (r *RedditSource) Name() string {
	return "reddit"
}

func (r *RedditSource) Fetch(ctx context.Context, q source.Query) (json.RawMessage, error) {
	term := q.Symbol
	if term == "" {
		term = q.SearchQuery
	}
	if term == "" {
		return nil, fmt.Errorf("reddit: symbol is required")
	}

	searchURL := fmt.Sprintf("%s/reddit/search/submission/?q=%s", r.baseURL, url.QueryEscape(term))

	resp, err := r.httpClient.R().
		SetContext(ctx).
		Get(searchURL)
	if err != nil {
		return nil, &source.FetchError{Source: r.Name(), Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &source.FetchError{Source: r.Name(), Status: resp.StatusCode()}
	}

	var raw struct {
		Data []models.SocialSubmission `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, &source.FetchError{Source: r.Name(), Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	out, err := json.Marshal(models.SocialFeed{
		TotalSubmissions: len(raw.Data),
		Submissions:      raw.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}

	return out, nil
}

