package scrape

import (
	"context"
	"strings"
	"time"
)

// PageCrawler loads one page, waits for a required marker, and extracts the
// rendered text. Load → wait-for-element → extract.
type PageCrawler struct {
	provider SessionProvider

	// MarkerSelector must become visible before extraction starts.
	MarkerSelector string
	// ContentSelector is the element whose text is returned; defaults to body.
	ContentSelector string
	WaitTimeout     time.Duration
}

func NewPageCrawler(provider SessionProvider, marker string, waitTimeout time.Duration) *PageCrawler {
	if waitTimeout <= 0 {
		waitTimeout = 20 * time.Second
	}
	return &PageCrawler{
		provider:        provider,
		MarkerSelector:  marker,
		ContentSelector: "body",
		WaitTimeout:     waitTimeout,
	}
}

func (p *PageCrawler) Fetch(ctx context.Context, url string) (string, error) {
	session, release, err := p.provider.Acquire(ctx)
	if err != nil {
		return "", &Error{Kind: LoadTimeout, Op: "acquire", Err: err}
	}
	defer release()

	loadCtx, cancel := context.WithTimeout(ctx, p.WaitTimeout)
	defer cancel()
	if err := session.Navigate(loadCtx, url); err != nil {
		return "", &Error{Kind: LoadTimeout, Op: "navigate", Err: err}
	}

	waitCtx, cancel := context.WithTimeout(ctx, p.WaitTimeout)
	defer cancel()
	if err := session.WaitVisible(waitCtx, p.MarkerSelector); err != nil {
		return "", &Error{Kind: ElementNotFound, Op: "wait " + p.MarkerSelector, Err: err}
	}

	text, err := session.Text(ctx, p.ContentSelector)
	if err != nil {
		return "", &Error{Kind: ElementNotFound, Op: "extract", Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &Error{Kind: ElementNotFound, Op: "extract", Err: nil}
	}

	return text, nil
}
