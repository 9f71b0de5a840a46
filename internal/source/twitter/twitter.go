package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"tokenlens/internal/configs"
	"tokenlens/internal/models"
	"tokenlens/internal/scrape"
	"tokenlens/internal/source"
)

const searchBaseURL = "https://twitter.com"

// SearchType 搜索结果类别
var searchTypes = map[string]string{
	"latest": "live",
	"top":    "top",
	"people": "people",
	"photos": "image",
	"videos": "video",
}

// extractScript pulls the visible tweets out of the rendered timeline. Each
// entry is wrapped in a try/catch so one malformed tweet is skipped, not
// fatal.
const extractScript = `
(() => {
  const items = [];
  for (const el of document.querySelectorAll('[data-testid="tweet"]')) {
    try {
      const text = el.querySelector('[data-testid="tweetText"]')?.innerText || '';
      const userLines = (el.querySelector('[data-testid="User-Name"]')?.innerText || '').split('\n');
      const counts = [...el.querySelectorAll('[role="group"] [data-testid$="-count"]')].map(c => c.innerText || '0');
      items.push({
        text: text,
        author: (userLines[1] || '').replace('@', ''),
        fields: {
          name: userLines[0] || '',
          created_at: el.querySelector('time')?.getAttribute('datetime') || '',
          reply_count: counts[0] || '0',
          retweet_count: counts[1] || '0',
          favorite_count: counts[2] || '0',
        },
      });
    } catch (e) {
      items.push({text: '', author: '', fields: {}});
    }
  }
  return items;
})()
`

// TwitterSource scrapes tweet search results behind an authenticated browser
// session.
type TwitterSource struct {
	provider scrape.SessionProvider
	creds    configs.TwitterConfig
	scrape   configs.ScrapeConfig
}

func NewTwitterSource(provider scrape.SessionProvider, creds configs.TwitterConfig, scrapeConfig configs.ScrapeConfig) *TwitterSource {
	return &TwitterSource{
		provider: provider,
		creds:    creds,
		scrape:   scrapeConfig,
	}
}

func (t *TwitterSource) Name() string {
	return "twitter"
}

func (t *TwitterSource) Fetch(ctx context.Context, q source.Query) (json.RawMessage, error) {
	if t.creds.Username == "" || t.creds.Password == "" {
		return nil, &configs.MissingKeyError{Key: "TWITTER_USERNAME/TWITTER_PASSWORD"}
	}

	query := q.SearchQuery
	if query == "" {
		query = q.Symbol
	}
	if query == "" {
		return nil, fmt.Errorf("twitter: search query is required")
	}

	filter, ok := searchTypes[q.SearchType]
	if !ok {
		filter = "top"
	}

	crawler := scrape.NewFeedCrawler(t.provider, scrape.FeedConfig{
		URL:            fmt.Sprintf("%s/search?q=%s&f=%s", searchBaseURL, url.QueryEscape(query), filter),
		MarkerSelector: `[data-testid="tweet"]`,
		ExtractScript:  extractScript,
		MaxItems:       q.MaxItems,
		StallBudget:    t.scrape.StallBudget,
		WaitTimeout:    t.scrape.WaitTimeout,
		Login: &scrape.LoginFlow{
			URL:            searchBaseURL + "/login",
			UserSelector:   `input[autocomplete="username"]`,
			NextSelector:   `button[type="button"]`,
			PassSelector:   `input[name="password"]`,
			SubmitSelector: `button[data-testid="LoginForm_Login_Button"]`,
			Username:       t.creds.Username,
			Password:       t.creds.Password,
			FailureHint:    "login",
		},
	})

	items, err := crawler.Crawl(ctx)
	if err != nil {
		return nil, err
	}

	result := models.TweetSearchResult{Tweets: make([]models.Tweet, 0, len(items))}
	for _, item := range items {
		result.Tweets = append(result.Tweets, models.Tweet{
			Text:          item.Text,
			CreatedAt:     item.Fields["created_at"],
			ReplyCount:    item.Fields["reply_count"],
			RetweetCount:  item.Fields["retweet_count"],
			FavoriteCount: item.Fields["favorite_count"],
			User: models.TweetUser{
				Name:       item.Fields["name"],
				ScreenName: item.Author,
			},
			ScrapedAt: time.Now(),
		})
	}

	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tweets: %w", err)
	}

	return out, nil
}
