package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type crawlState int

const (
	stateInit crawlState = iota
	statePageLoaded
	stateLoggedIn
	stateElementsReady
	stateExtracting
	stateDone
	stateFailed
)

// LoginFlow describes an optional authenticated-session step entered before
// the feed loads.
type LoginFlow struct {
	URL            string
	UserSelector   string
	NextSelector   string
	PassSelector   string
	SubmitSelector string
	Username       string
	Password       string

	// FailureHint marks a URL still showing the login form after submit.
	FailureHint string
}

// FeedConfig drives one paginated feed extraction.
type FeedConfig struct {
	URL            string
	MarkerSelector string
	ExtractScript  string
	MaxItems       int
	StallBudget    int
	WaitTimeout    time.Duration
	PollInterval   time.Duration
	Login          *LoginFlow
}

// FeedCrawler walks an infinite-scroll feed: extract visible items, dedupe,
// scroll, re-poll. Terminates on the requested item count, a stall budget of
// scrolls with no height change, or context cancellation.
type FeedCrawler struct {
	provider SessionProvider
	config   FeedConfig
}

func NewFeedCrawler(provider SessionProvider, config FeedConfig) *FeedCrawler {
	if config.MaxItems <= 0 {
		config.MaxItems = 20
	}
	if config.StallBudget <= 0 {
		config.StallBudget = 5
	}
	if config.WaitTimeout <= 0 {
		config.WaitTimeout = 20 * time.Second
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}
	return &FeedCrawler{provider: provider, config: config}
}

// Crawl runs the state machine: Init → PageLoaded → (Login → LoggedIn) →
// ElementsReady → Extracting → Done, dropping into Failed on timeout or an
// unexpected page layout.
func (f *FeedCrawler) Crawl(ctx context.Context) ([]Item, error) {
	session, release, err := f.provider.Acquire(ctx)
	if err != nil {
		return nil, &Error{Kind: LoadTimeout, Op: "acquire", Err: err}
	}
	defer release()

	var (
		state     = stateInit
		collected []Item
		seen      = map[string]bool{}
		failure   *Error
	)

	for state != stateDone && state != stateFailed {
		switch state {
		case stateInit:
			if f.config.Login != nil {
				if err := f.login(ctx, session); err != nil {
					failure = err
					state = stateFailed
					continue
				}
				state = stateLoggedIn
				continue
			}
			state = statePageLoaded

		case statePageLoaded, stateLoggedIn:
			loadCtx, cancel := context.WithTimeout(ctx, f.config.WaitTimeout)
			err := session.Navigate(loadCtx, f.config.URL)
			cancel()
			if err != nil {
				failure = &Error{Kind: LoadTimeout, Op: "navigate", Err: err}
				state = stateFailed
				continue
			}

			if f.config.Login != nil {
				location, err := session.Location(ctx)
				if err == nil && strings.Contains(strings.ToLower(location), f.config.Login.FailureHint) {
					failure = &Error{Kind: AuthFailure, Op: "feed", Err: fmt.Errorf("redirected to login page")}
					state = stateFailed
					continue
				}
			}

			waitCtx, cancel := context.WithTimeout(ctx, f.config.WaitTimeout)
			err = session.WaitVisible(waitCtx, f.config.MarkerSelector)
			cancel()
			if err != nil {
				failure = &Error{Kind: ElementNotFound, Op: "wait " + f.config.MarkerSelector, Err: err}
				state = stateFailed
				continue
			}
			state = stateElementsReady

		case stateElementsReady:
			state = stateExtracting

		case stateExtracting:
			items, err := f.extractLoop(ctx, session, seen)
			if err != nil {
				failure = err
				state = stateFailed
				continue
			}
			collected = items
			state = stateDone
		}
	}

	if state == stateFailed {
		return nil, failure
	}
	return collected, nil
}

// extractLoop is the Extracting → Extracting self-transition.
func (f *FeedCrawler) extractLoop(ctx context.Context, session Session, seen map[string]bool) ([]Item, *Error) {
	var items []Item
	lastHeight := int64(0)
	stalls := 0

	for len(items) < f.config.MaxItems {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Kind: LoadTimeout, Op: "extract", Err: err}
		}

		visible, err := session.Extract(ctx, f.config.ExtractScript)
		if err != nil {
			return nil, &Error{Kind: ElementNotFound, Op: "extract", Err: err}
		}

		for _, item := range visible {
			if len(items) >= f.config.MaxItems {
				break
			}
			// 单条解析失败只跳过该条
			if item.Text == "" && item.Author == "" {
				continue
			}
			key := item.Text + "\x00" + item.Author
			if seen[key] {
				continue
			}
			seen[key] = true
			items = append(items, item)
		}

		if len(items) >= f.config.MaxItems {
			break
		}

		if err := session.ScrollToBottom(ctx); err != nil {
			return nil, &Error{Kind: ElementNotFound, Op: "scroll", Err: err}
		}

		select {
		case <-ctx.Done():
			return nil, &Error{Kind: LoadTimeout, Op: "extract", Err: ctx.Err()}
		case <-time.After(f.config.PollInterval):
		}

		height, err := session.ScrollHeight(ctx)
		if err != nil {
			return nil, &Error{Kind: ElementNotFound, Op: "scroll", Err: err}
		}

		if height == lastHeight {
			stalls++
			if stalls >= f.config.StallBudget {
				if len(items) == 0 {
					return nil, &Error{Kind: StallExhausted, Op: "extract", Err: fmt.Errorf("no new content after %d scrolls", stalls)}
				}
				// 已有部分结果就直接返回
				return items, nil
			}
		} else {
			stalls = 0
		}
		lastHeight = height
	}

	return items, nil
}

func (f *FeedCrawler) login(ctx context.Context, session Session) *Error {
	login := f.config.Login

	loadCtx, cancel := context.WithTimeout(ctx, f.config.WaitTimeout)
	err := session.Navigate(loadCtx, login.URL)
	cancel()
	if err != nil {
		return &Error{Kind: LoadTimeout, Op: "login navigate", Err: err}
	}

	steps := []struct {
		wait  string
		keys  string
		click string
	}{
		{wait: login.UserSelector, keys: login.Username, click: login.NextSelector},
		{wait: login.PassSelector, keys: login.Password, click: login.SubmitSelector},
	}

	for _, step := range steps {
		waitCtx, cancel := context.WithTimeout(ctx, f.config.WaitTimeout)
		err := session.WaitVisible(waitCtx, step.wait)
		cancel()
		if err != nil {
			return &Error{Kind: ElementNotFound, Op: "login wait " + step.wait, Err: err}
		}
		if err := session.SendKeys(ctx, step.wait, step.keys); err != nil {
			return &Error{Kind: AuthFailure, Op: "login input", Err: err}
		}
		if err := session.Click(ctx, step.click); err != nil {
			return &Error{Kind: AuthFailure, Op: "login submit", Err: err}
		}
	}

	// 轮询地址变化确认登录成功, 不用固定sleep
	deadline := time.Now().Add(f.config.WaitTimeout)
	for {
		location, err := session.Location(ctx)
		if err != nil {
			return &Error{Kind: AuthFailure, Op: "login verify", Err: err}
		}
		if !strings.Contains(strings.ToLower(location), login.FailureHint) {
			return nil
		}
		if time.Now().After(deadline) {
			return &Error{Kind: AuthFailure, Op: "login verify", Err: fmt.Errorf("still on login page")}
		}
		select {
		case <-ctx.Done():
			return &Error{Kind: AuthFailure, Op: "login verify", Err: ctx.Err()}
		case <-time.After(f.config.PollInterval):
		}
	}
}
