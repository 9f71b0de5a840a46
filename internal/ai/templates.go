package ai

// Built-in analyst prompt templates. Output is treated as opaque text by the
// orchestration layer; the JSON-format instructions are a hint to the model,
// not a parsed contract.

var PriceAnalysisTemplate = &Template{
	ID:     "price_analysis",
	System: "You are an expert in blockchain and crypto data analysis, providing insights on price trends, liquidity, market activity, and other key metrics.",
	Slots:  []string{"data"},
	Body: `Analyze the following cryptocurrency token data and provide insights on price trends, liquidity, and market activity.

Raw Data:
{data}

Provide a detailed analysis covering price momentum across time windows, liquidity depth and its recent changes, and buy/sell pressure.`,
}

var TokenAnalysisTemplate = &Template{
	ID:     "token_analysis",
	System: "You are an expert in analyzing on-chain token detail data.",
	Slots:  []string{"data"},
	Body: `Analyze this token data and provide detailed insights in the following areas:

1. Top Holders Analysis:
   - Top 10 holder percentages
   - Dev wallet status and transactions
   - Sniper activity and counts
   - Blue chip holder percentage

2. Security Analysis:
   - Contract verification status
   - Honeypot check results
   - Buy/Sell taxes
   - Risk assessment score
   - Renounced status

Format the response as a clean JSON object without any markdown formatting or additional headers. Include all available metrics and insights from the provided data.

Raw Data:
{data}`,
}

var DexAnalysisTemplate = &Template{
	ID:     "dex_analysis",
	System: "You are an expert in decentralized exchange market structure.",
	Slots:  []string{"data"},
	Body: `Analyze the following DEX pair data and summarize trading venue quality: liquidity distribution, volume concentration, and anything unusual about the pairs.

Raw Data:
{data}`,
}

var MarketAnalysisTemplate = &Template{
	ID:     "market_analysis",
	System: "You are an expert in cryptocurrency market data analysis.",
	Slots:  []string{"data"},
	Body: `Analyze the following 24h market statistics and give a brief read on momentum and volume.

Raw Data:
{data}`,
}

var SentimentAnalysisTemplate = &Template{
	ID:     "sentiment_analysis",
	System: "You are an expert in social sentiment analysis for crypto assets.",
	Slots:  []string{"data"},
	Body: `Analyze the following social media submissions about a token. Score the overall sentiment from -1 (extremely negative) to 1 (extremely positive) and call out recurring themes.

Raw Data:
{data}

Output format as JSON:
{
    "sentiment_score": float,
    "keywords": ["keyword1", "keyword2", ...],
    "analysis": "detailed reasoning"
}`,
}

var PredictTemplate = &Template{
	ID:     "predict",
	System: "You are an expert in blockchain and crypto data analysis, providing insights on whether a token is a good investment or not.",
	Slots:  []string{"price_analysis", "token_analysis", "dex_analysis"},
	Body: `You are given three prior analyses of the same token. Synthesize them into one forecast on whether it is a good investment or not. Do not suggest any recommendations.

Price analysis:
{price_analysis}

Token detail analysis:
{token_analysis}

DEX analysis:
{dex_analysis}

Output format as JSON:
{
    "prediction": "pump" | "dump" | "neutral",
    "confidence": float,
    "reasoning": "detailed reasoning"
}`,
}
