package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"tokenlens/internal/ai"
	"tokenlens/internal/ai/openai"
	"tokenlens/internal/configs"
	"tokenlens/internal/pipeline"
	"tokenlens/internal/scrape"
	"tokenlens/internal/server"
	"tokenlens/internal/source/binance"
	"tokenlens/internal/source/coingecko"
	"tokenlens/internal/source/dexscreener"
	"tokenlens/internal/source/gmgn"
	"tokenlens/internal/source/moralis"
	"tokenlens/internal/source/reddit"
	"tokenlens/internal/source/twitter"
)

var flagconf string

func init() {
	flag.StringVar(&flagconf, "conf", "", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	config, err := configs.Load(flagconf)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if config.Proxy != "" {
		_ = os.Setenv("HTTP_PROXY", config.Proxy)
		_ = os.Setenv("HTTPS_PROXY", config.Proxy)
		logger.Debug().Str("proxy", config.Proxy).Msg("set proxy ok")
	}

	// 初始化浏览器与各数据源
	browser := scrape.NewBrowser(config.Scrape.Headless)
	defer browser.Close()

	moralisSource := moralis.NewMoralisSource(config.Moralis.APIKey, config.Moralis.Chain)
	dexSource := dexscreener.NewDexScreenerSource(config.Moralis.Chain)
	gmgnSource := gmgn.NewGMGNSource(browser, config.Moralis.Chain, config.Scrape.WaitTimeout)
	redditSource := reddit.NewRedditSource()
	coinSource := coingecko.NewCoinGeckoSource()
	binanceSource := binance.NewBinanceSource()
	twitterSource := twitter.NewTwitterSource(browser, config.Twitter, config.Scrape)

	completer := openai.NewOpenAICompleter(config.AIConfig.APIKey, config.AIConfig.BaseURL, config.AIConfig.ModelType)
	opts := ai.CompletionOptions{
		Temperature: config.AIConfig.Temperature,
		MaxTokens:   config.AIConfig.MaxTokens,
	}

	defs, err := pipeline.BuiltinDefinitions(pipeline.Sources{
		Moralis:     moralisSource,
		DexScreener: dexSource,
		GMGN:        gmgnSource,
		Reddit:      redditSource,
		Binance:     binanceSource,
	}, completer, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipelines")
	}

	runner, err := pipeline.NewRunner(defs, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build runner")
	}

	handlers := &server.Handlers{
		Price:     moralisSource,
		Details:   gmgnSource,
		Validator: coinSource,
		Social:    redditSource,
		Tweets:    twitterSource,
		Runner:    runner,
		Completer: completer,
		AIOpts:    opts,
		Logger:    logger,
	}

	srv := server.NewServer(config.Server, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
