package dexscreener

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenlens/internal/models"
	"tokenlens/internal/source"
)

func setupTestServer(t *testing.T, status int, body string) *DexScreenerSource {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	src := NewDexScreenerSource("base")
	src.baseURL = server.URL
	src.httpClient = resty.NewWithClient(server.Client())
	return src
}

func TestDexScreenerSource_Fetch(t *testing.T) {
	src := setupTestServer(t, http.StatusOK, `{
		"pairs": [{
			"pairAddress": "0xPAIR",
			"baseToken": {"symbol": "TST"},
			"quoteToken": {"symbol": "WETH"},
			"priceUsd": "0.042",
			"liquidity": {"usd": 15000.5},
			"volume": {"h24": 98765.4}
		}]
	}`)

	payload, err := src.Fetch(context.Background(), source.Query{TokenAddress: "0xPAIR"})
	require.NoError(t, err)

	var result struct {
		Data []models.DexPair `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &result))
	require.Len(t, result.Data, 1)
	assert.Equal(t, "TST", result.Data[0].BaseToken)
	assert.Equal(t, "0.042", result.Data[0].PriceUsd)
	assert.Equal(t, 15000.5, result.Data[0].LiquidityUsd)
}

func TestDexScreenerSource_FetchPairNotFound(t *testing.T) {
	src := setupTestServer(t, http.StatusOK, `{"pairs": []}`)

	_, err := src.Fetch(context.Background(), source.Query{TokenAddress: "0xPAIR"})
	require.Error(t, err)

	var fetchErr *source.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestDexScreenerSource_FetchNon2xx(t *testing.T) {
	src := setupTestServer(t, http.StatusBadGateway, `{}`)

	_, err := src.Fetch(context.Background(), source.Query{TokenAddress: "0xPAIR"})
	require.Error(t, err)

	var fetchErr *source.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusBadGateway, fetchErr.Status)
}
