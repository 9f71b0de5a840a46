package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"tokenlens/internal/models"
	"tokenlens/internal/source"
	"tokenlens/internal/utils/request"
)

const defaultBaseURL = "https://api.coingecko.com"

// CoinGeckoSource validates a coin symbol against the CoinGecko listing.
type CoinGeckoSource struct {
	baseURL    string
	httpClient *resty.Client
}

func NewCoinGeckoSource() *CoinGeckoSource {
	return &CoinGeckoSource{
		baseURL:    defaultBaseURL,
		httpClient: request.Request,
	}
}

func (c *CoinGeckoSource) Name() string {
	return "coingecko"
}

func (c *CoinGeckoSource) Fetch(ctx context.Context, q source.Query) (json.RawMessage, error) {
	if q.Symbol == "" {
		return nil, fmt.Errorf("coingecko: symbol is required")
	}

	url := fmt.Sprintf("%s/api/v3/coins/%s", c.baseURL, q.Symbol)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, &source.FetchError{Source: c.Name(), Err: err}
	}

	info := models.CoinInfo{
		Symbol:  q.Symbol,
		IsValid: resp.StatusCode() == http.StatusOK,
	}

	if info.IsValid {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return nil, &source.FetchError{Source: c.Name(), Err: fmt.Errorf("failed to decode response: %w", err)}
		}
		info.Name = body.Name
	}

	out, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to encode coin info: %w", err)
	}

	return out, nil
}

