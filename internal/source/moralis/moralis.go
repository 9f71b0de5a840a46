package moralis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"tokenlens/internal/configs"
	"tokenlens/internal/models"
	"tokenlens/internal/source"
	"tokenlens/internal/utils/request"
)

const defaultBaseURL = "https://deep-index.moralis.io/api/v2.2"

// MoralisSource fetches pair price/liquidity statistics from the Moralis
// deep-index API.
type MoralisSource struct {
	baseURL    string
	apiKey     string
	chain      string
	httpClient *resty.Client
}

func NewMoralisSource(apiKey, chain string) *MoralisSource {
	if chain == "" {
		chain = "base"
	}
	return &MoralisSource{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		chain:      chain,
		httpClient: request.Request,
	}
}

func (m *MoralisSource) Name() string {
	return "moralis"
}

func (m *MoralisSource) Fetch(ctx context.Context, q source.Query) (json.RawMessage, error) {
	if m.apiKey == "" {
		return nil, &configs.MissingKeyError{Key: "MORALIS_API_KEY"}
	}
	if q.TokenAddress == "" {
		return nil, fmt.Errorf("moralis: token address is required")
	}

	chain := q.Chain
	if chain == "" {
		chain = m.chain
	}

	url := fmt.Sprintf("%s/pairs/%s/stats?chain=%s", m.baseURL, q.TokenAddress, chain)

	resp, err := m.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("X-API-Key", m.apiKey).
		Get(url)
	if err != nil {
		return nil, &source.FetchError{Source: m.Name(), Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &source.FetchError{Source: m.Name(), Status: resp.StatusCode()}
	}

	var stats models.PairStats
	if err := json.Unmarshal(resp.Body(), &stats); err != nil {
		return nil, &source.FetchError{Source: m.Name(), Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return resp.Body(), nil
}

