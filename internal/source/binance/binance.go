package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"

	"tokenlens/internal/models"
	"tokenlens/internal/source"
)

// statsFetcher 抽象行情接口, 便于测试替换
type statsFetcher interface {
	PriceChangeStats(ctx context.Context, symbol string) ([]*binance.PriceChangeStats, error)
}

type binanceFetcher struct {
	client *binance.Client
}

func (f *binanceFetcher) PriceChangeStats(ctx context.Context, symbol string) ([]*binance.PriceChangeStats, error) {
	return f.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
}

// BinanceSource fetches 24h ticker statistics for CEX-listed symbols. Tokens
// without a centralized listing come through the DEX sources instead.
type BinanceSource struct {
	fetcher statsFetcher
}

func NewBinanceSource() *BinanceSource {
	return &BinanceSource{
		fetcher: &binanceFetcher{client: binance.NewClient("", "")},
	}
}

func (b *BinanceSource) Name() string {
	return "binance"
}

func (b *BinanceSource) Fetch(ctx context.Context, q source.Query) (json.RawMessage, error) {
	if q.Symbol == "" {
		return nil, fmt.Errorf("binance: symbol is required")
	}

	stats, err := b.fetcher.PriceChangeStats(ctx, q.Symbol)
	if err != nil {
		return nil, &source.FetchError{Source: b.Name(), Err: err}
	}
	if len(stats) == 0 {
		return nil, &source.FetchError{Source: b.Name(), Err: fmt.Errorf("symbol not found")}
	}

	ticker := stats[0]

	price, err := strconv.ParseFloat(ticker.LastPrice, 64)
	if err != nil {
		return nil, &source.FetchError{Source: b.Name(), Err: fmt.Errorf("failed to parse price: %w", err)}
	}

	volume, err := strconv.ParseFloat(ticker.Volume, 64)
	if err != nil {
		return nil, &source.FetchError{Source: b.Name(), Err: fmt.Errorf("failed to parse volume: %w", err)}
	}

	priceChange, err := strconv.ParseFloat(ticker.PriceChangePercent, 64)
	if err != nil {
		return nil, &source.FetchError{Source: b.Name(), Err: fmt.Errorf("failed to parse price change: %w", err)}
	}

	out, err := json.Marshal(models.MarketData{
		Symbol:         q.Symbol,
		Price:          price,
		Volume24h:      volume,
		PriceChange24h: priceChange,
		Timestamp:      time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode market data: %w", err)
	}

	return out, nil
}
