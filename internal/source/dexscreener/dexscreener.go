package dexscreener

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

const defaultBaseURL = "https://api.dexscreener.com"

// DexScreenerSource fetches DEX pair data from the public DexScreener API.
type DexScreenerSource struct {
	baseURL      string
	defaultChain string
	httpClient   *resty.Client
}

func NewDexScreenerSource(chain string) *DexScreenerSource {
	if chain == "" {
		chain = "base"
	}
	return &DexScreenerSource{
		baseURL:      defaultBaseURL,
		defaultChain: chain,
		httpClient:   request.Request,
	}
}

func (d *DexScreenerSource) Name() string {
	return "dexscreener"
}

type pairsResponse struct {
	Pairs []struct {
		PairAddress string `json:"pairAddress"`
		BaseToken   struct {
			Symbol string `json:"symbol"`
		} `json:"baseToken"`
		QuoteToken struct {
			Symbol string `json:"symbol"`
		} `json:"quoteToken"`
		PriceUsd  string `json:"priceUsd"`
		Liquidity struct {
			Usd float64 `json:"usd"`
		} `json:"liquidity"`
		Volume struct {
			H24 float64 `json:"h24"`
		} `json:"volume"`
	} `json:"pairs"`
}

func (d *DexScreenerSource) Fetch(ctx context.Context, q source.Query) (json.RawMessage, error) {
	if q.TokenAddress == "" {
		return nil, fmt.Errorf("dexscreener: pair address is required")
	}

	chain := q.Chain
	if chain == "" {
		chain = d.defaultChain
	}

	url := fmt.Sprintf("%s/latest/dex/pairs/%s/%s", d.baseURL, chain, q.TokenAddress)

	resp, err := d.httpClient.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		Get(url)
	if err != nil {
		return nil, &source.FetchError{Source: d.Name(), Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &source.FetchError{Source: d.Name(), Status: resp.StatusCode()}
	}

	var raw pairsResponse
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, &source.FetchError{Source: d.Name(), Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(raw.Pairs) == 0 {
		return nil, &source.FetchError{Source: d.Name(), Err: fmt.Errorf("pair not found")}
	}

	pairs := make([]models.DexPair, 0, len(raw.Pairs))
	for _, p := range raw.Pairs {
		pairs = append(pairs, models.DexPair{
			PairAddress:  p.PairAddress,
			BaseToken:    p.BaseToken.Symbol,
			QuoteToken:   p.QuoteToken.Symbol,
			PriceUsd:     p.PriceUsd,
			LiquidityUsd: p.Liquidity.Usd,
			Volume24h:    p.Volume.H24,
		})
	}

	out, err := json.Marshal(struct {
		Data []models.DexPair `json:"data"`
	}{Data: pairs})
	if err != nil {
		return nil, fmt.Errorf("failed to encode pairs: %w", err)
	}

	return out, nil
}

