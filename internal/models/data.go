package models

import "time"

// PairStats 交易对统计数据 (Moralis pair stats)
type PairStats struct {
	TokenAddress       string       `json:"tokenAddress"`
	TokenName          string       `json:"tokenName"`
	TokenSymbol        string       `json:"tokenSymbol"`
	PairAddress        string       `json:"pairAddress"`
	PairLabel          string       `json:"pairLabel"`
	Exchange           string       `json:"exchange"`
	CurrentUsdPrice    string       `json:"currentUsdPrice"`
	TotalLiquidityUsd  string       `json:"totalLiquidityUsd"`
	PricePercentChange WindowedStat `json:"pricePercentChange"`
	TotalVolume        WindowedStat `json:"totalVolume"`
	Buyers             WindowedStat `json:"buyers"`
	Sellers            WindowedStat `json:"sellers"`
}

// WindowedStat 分时统计窗口
type WindowedStat struct {
	FiveMin        float64 `json:"5min"`
	OneHour        float64 `json:"1h"`
	FourHour       float64 `json:"4h"`
	TwentyFourHour float64 `json:"24h"`
}

// DexPair DEX交易对数据
type DexPair struct {
	PairAddress  string  `json:"pair_address"`
	BaseToken    string  `json:"base_token"`
	QuoteToken   string  `json:"quote_token"`
	PriceUsd     string  `json:"price_usd"`
	LiquidityUsd float64 `json:"liquidity_usd"`
	Volume24h    float64 `json:"volume_24h"`
}

// CoinInfo 代币校验结果
type CoinInfo struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	IsValid bool   `json:"is_valid"`
}

// SocialSubmission 社交平台帖子
type SocialSubmission struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
	Permalink   string `json:"permalink"`
}

// SocialFeed 社交数据聚合结果
type SocialFeed struct {
	TotalSubmissions int                `json:"total_submissions"`
	Submissions      []SocialSubmission `json:"submissions"`
}

// MarketData 市场数据
type MarketData struct {
	Symbol         string    `json:"symbol"`
	Price          float64   `json:"price"`
	Volume24h      float64   `json:"volume_24h"`
	PriceChange24h float64   `json:"price_change_24h"`
	Timestamp      time.Time `json:"timestamp"`
}

// TweetUser 推文作者
type TweetUser struct {
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
}

// Tweet 单条推文
type Tweet struct {
	Text          string    `json:"text"`
	CreatedAt     string    `json:"created_at"`
	ReplyCount    string    `json:"reply_count"`
	RetweetCount  string    `json:"retweet_count"`
	FavoriteCount string    `json:"favorite_count"`
	User          TweetUser `json:"user"`
	ScrapedAt     time.Time `json:"scraped_at"`
}

// TweetSearchResult 推文搜索结果
type TweetSearchResult struct {
	Tweets []Tweet `json:"tweets"`
}

// TokenPage 抓取的代币详情页
type TokenPage struct {
	TokenAddress string `json:"token_address"`
	URL          string `json:"url"`
	Content      string `json:"content"`
}
