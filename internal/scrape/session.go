package scrape

import "context"

// Item is one extracted feed entry. Author plus text form the dedupe key;
// anything else the page offers lands in Fields.
type Item struct {
	Text   string            `json:"text"`
	Author string            `json:"author"`
	Fields map[string]string `json:"fields"`
}

// Session is one exclusive browser tab. Every method issues a single browser
// action bounded by the caller's context; waits are condition-keyed, never
// fixed sleeps.
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	Location(ctx context.Context) (string, error)
	Text(ctx context.Context, selector string) (string, error)
	SendKeys(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error

	// Extract evaluates script in the page and decodes the result into
	// items. Malformed entries come back empty and are skipped by callers.
	Extract(ctx context.Context, script string) ([]Item, error)

	ScrollToBottom(ctx context.Context) error
	ScrollHeight(ctx context.Context) (int64, error)
}

// ReleaseFunc returns the session to its provider. Must be called even on
// failure; leaking sessions across failed calls is a defect.
type ReleaseFunc func()

// SessionProvider hands out exclusive sessions, one in-flight fetch at a time.
type SessionProvider interface {
	Acquire(ctx context.Context) (Session, ReleaseFunc, error)
}
