package scrape

import (
	"context"
	"sync"

	"github.com/chromedp/chromedp"
)

// Browser owns one headless Chrome process and hands out exclusive tabs. A
// mutex serializes fetches; no pooling.
type Browser struct {
	mu        sync.Mutex
	allocCtx  context.Context
	allocStop context.CancelFunc
}

func NewBrowser(headless bool) *Browser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.NoSandbox,
	)

	allocCtx, allocStop := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Browser{allocCtx: allocCtx, allocStop: allocStop}
}

// Acquire locks the browser and opens a fresh tab. The release func closes
// the tab and unlocks, and must run even when the fetch fails.
func (b *Browser) Acquire(ctx context.Context) (Session, ReleaseFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	b.mu.Lock()

	tabCtx, tabStop := chromedp.NewContext(b.allocCtx)
	release := func() {
		tabStop()
		b.mu.Unlock()
	}

	return &chromeSession{ctx: tabCtx}, release, nil
}

func (b *Browser) Close() {
	b.allocStop()
}

// chromeSession runs chromedp actions on one tab, bounding each action by the
// caller's context.
type chromeSession struct {
	ctx context.Context
}

func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	actionCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var dcancel context.CancelFunc
		actionCtx, dcancel = context.WithDeadline(actionCtx, deadline)
		defer dcancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(actionCtx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) WaitVisible(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

func (s *chromeSession) Text(ctx context.Context, selector string) (string, error) {
	var text string
	err := s.run(ctx, chromedp.Text(selector, &text, chromedp.ByQuery))
	return text, err
}

func (s *chromeSession) SendKeys(ctx context.Context, selector, value string) error {
	return s.run(ctx, chromedp.SendKeys(selector, value, chromedp.ByQuery))
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (s *chromeSession) Extract(ctx context.Context, script string) ([]Item, error) {
	var items []Item
	if err := s.run(ctx, chromedp.Evaluate(script, &items)); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *chromeSession) ScrollToBottom(ctx context.Context) error {
	return s.run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.documentElement.scrollHeight); true`, nil))
}

func (s *chromeSession) ScrollHeight(ctx context.Context) (int64, error) {
	var height int64
	err := s.run(ctx, chromedp.Evaluate(`document.documentElement.scrollHeight`, &height))
	return height, err
}
