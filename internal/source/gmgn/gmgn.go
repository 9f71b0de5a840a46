package gmgn

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tokenlens/internal/models"
	"tokenlens/internal/scrape"
	"tokenlens/internal/source"
)

const defaultBaseURL = "https://gmgn.ai"

// GMGNSource fetches the rendered token detail page from GMGN.ai through a
// headless browser session.
type GMGNSource struct {
	baseURL string
	chain   string
	crawler *scrape.PageCrawler
}

func NewGMGNSource(provider scrape.SessionProvider, chain string, waitTimeout time.Duration) *GMGNSource {
	if chain == "" {
		chain = "base"
	}
	return &GMGNSource{
		baseURL: defaultBaseURL,
		chain:   chain,
		crawler: scrape.NewPageCrawler(provider, "main", waitTimeout),
	}
}

func (g *GMGNSource) Name() string {
	return "gmgn"
}

func (g *GMGNSource) Fetch(ctx context.Context, q source.Query) (json.RawMessage, error) {
	if q.TokenAddress == "" {
		return nil, fmt.Errorf("gmgn: token address is required")
	}

	url := fmt.Sprintf("%s/%s/token/%s", g.baseURL, g.chain, q.TokenAddress)

	content, err := g.crawler.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(models.TokenPage{
		TokenAddress: q.TokenAddress,
		URL:          url,
		Content:      content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode token page: %w", err)
	}

	return out, nil
}
