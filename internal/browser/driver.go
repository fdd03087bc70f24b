package browser

import (
	"context"

	"pagesense/internal/semantic"
	"pagesense/internal/store"
)

// PageDriver is the out-of-core capability the session manager dispatches
// to: load a URL, evaluate script, fetch DOM as HTML, get/set cookies, and
// capture a screenshot. Every method may suspend and every call carries the
// context's deadline.
type PageDriver interface {
	LoadURL(ctx context.Context, url string) error
	EvaluateScript(ctx context.Context, script string) (string, error)
	FetchDOMHTML(ctx context.Context) (string, error)
	Click(ctx context.Context, loc semantic.DomLocator) error
	TypeText(ctx context.Context, loc semantic.DomLocator, text string) error
	SelectOption(ctx context.Context, loc semantic.DomLocator, value string) error
	ScrollBy(ctx context.Context, dx, dy int) error
	ScrollToLocator(ctx context.Context, loc semantic.DomLocator) error
	GetCookies(ctx context.Context) ([]store.Cookie, error)
	SetCookies(ctx context.Context, cookies []store.Cookie) error
	Screenshot(ctx context.Context, fullPage bool, annotate map[uint32]semantic.DomLocator) ([]byte, error)
	CurrentURL() string
	Title(ctx context.Context) (string, error)
	Close(ctx context.Context) error
}
