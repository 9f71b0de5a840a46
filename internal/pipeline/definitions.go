package pipeline

import (
	"fmt"

	"tokenlens/internal/ai"
	"tokenlens/internal/source"
)

// Sources collects the adapters the built-in pipelines draw from.
type Sources struct {
	Moralis     source.Source
	DexScreener source.Source
	GMGN        source.Source
	Reddit      source.Source
	Binance     source.Source
}

// BuiltinDefinitions wires the standard pipelines. One data-driven graph per
// analysis flavor instead of per-route stage chains.
func BuiltinDefinitions(src Sources, completer ai.Completer, opts ai.CompletionOptions) ([]*Definition, error) {
	stage := func(name string, template *ai.Template) *ai.Stage {
		return ai.NewStage(name, template, completer, opts)
	}

	price, err := NewDefinition("price",
		[]SourceNode{{Name: "price_data", Source: src.Moralis}},
		[]StageNode{
			{
				Name:   "price_analysis",
				Stage:  stage("price_analysis", ai.PriceAnalysisTemplate),
				Inputs: map[string]string{"data": "price_data"},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("pipeline price: %w", err)
	}

	token, err := NewDefinition("token",
		[]SourceNode{{Name: "token_page", Source: src.GMGN}},
		[]StageNode{
			{
				Name:   "token_analysis",
				Stage:  stage("token_analysis", ai.TokenAnalysisTemplate),
				Inputs: map[string]string{"data": "token_page"},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("pipeline token: %w", err)
	}

	market, err := NewDefinition("market",
		[]SourceNode{{Name: "market_data", Source: src.Binance}},
		[]StageNode{
			{
				Name:   "market_analysis",
				Stage:  stage("market_analysis", ai.MarketAnalysisTemplate),
				Inputs: map[string]string{"data": "market_data"},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("pipeline market: %w", err)
	}

	sentiment, err := NewDefinition("sentiment",
		[]SourceNode{{Name: "social_data", Source: src.Reddit}},
		[]StageNode{
			{
				Name:   "sentiment_analysis",
				Stage:  stage("sentiment_analysis", ai.SentimentAnalysisTemplate),
				Inputs: map[string]string{"data": "social_data"},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("pipeline sentiment: %w", err)
	}

	// forecast fans out to three sources, analyzes each branch, then feeds
	// all three analyses into one terminal predict stage.
	forecast, err := NewDefinition("forecast",
		[]SourceNode{
			{Name: "price_data", Source: src.Moralis},
			{Name: "token_page", Source: src.GMGN},
			{Name: "dex_data", Source: src.DexScreener},
		},
		[]StageNode{
			{
				Name:   "price_analysis",
				Stage:  stage("price_analysis", ai.PriceAnalysisTemplate),
				Inputs: map[string]string{"data": "price_data"},
			},
			{
				Name:   "token_analysis",
				Stage:  stage("token_analysis", ai.TokenAnalysisTemplate),
				Inputs: map[string]string{"data": "token_page"},
			},
			{
				Name:   "dex_analysis",
				Stage:  stage("dex_analysis", ai.DexAnalysisTemplate),
				Inputs: map[string]string{"data": "dex_data"},
			},
			{
				Name:  "predict",
				Stage: stage("predict", ai.PredictTemplate),
				Inputs: map[string]string{
					"price_analysis": "price_analysis",
					"token_analysis": "token_analysis",
					"dex_analysis":   "dex_analysis",
				},
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("pipeline forecast: %w", err)
	}

	return []*Definition{price, token, market, sentiment, forecast}, nil
}
