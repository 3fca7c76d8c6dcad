// Package fragments assembles pages from shared header, footer and
// converter template fragments.
package fragments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/html"
)

var ErrFragmentUnavailable = errors.New("fragment unavailable")

// Placeholder element ids and the fragment each one receives.
const (
	HeaderPlaceholder    = "header-placeholder"
	FooterPlaceholder    = "footer-placeholder"
	ConverterPlaceholder = "converter-placeholder"

	HeaderFragment    = "components/header.html"
	FooterFragment    = "components/footer.html"
	ConverterFragment = "components/converter-template.html"
)

// Fetcher returns a fragment by its site relative path.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context, name string) (string, error) {
	base, err := url.Parse(f.BaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFragmentUnavailable, name, err)
	}
	ref, err := url.Parse(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFragmentUnavailable, name, err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.ResolveReference(ref).String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFragmentUnavailable, name, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFragmentUnavailable, name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s: status %d", ErrFragmentUnavailable, name, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFragmentUnavailable, name, err)
	}
	return string(body), nil
}

// FSFetcher reads fragments from a file system, e.g. an embed.FS or
// os.DirFS of the site root.
type FSFetcher struct {
	FS fs.FS
}

func (f *FSFetcher) Fetch(_ context.Context, name string) (string, error) {
	data, err := fs.ReadFile(f.FS, path.Clean(strings.TrimPrefix(name, "/")))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFragmentUnavailable, name, err)
	}
	return string(data), nil
}

type Loader struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewLoader(fetcher Fetcher, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fetcher: fetcher, logger: logger}
}

// Render injects the shared fragments into page, served at pagePath.
// A fragment that cannot be fetched leaves its placeholder empty; Render
// itself never fails.
func (l *Loader) Render(ctx context.Context, pagePath, page string) string {
	doc, err := parseDocument(page)
	if err != nil {
		l.logger.Error("error parsing page", "page", pagePath, "error", err)
		return page
	}
	changed := false

	if header, ok := l.load(ctx, HeaderFragment); ok {
		if n := doc.byID(HeaderPlaceholder); n != nil && l.inject(n, HeaderFragment, header) {
			fixLinks(n, RootPath(pagePath))
			markActive(n, ActiveSection(pagePath))
			changed = true
		}
	}
	if footer, ok := l.load(ctx, FooterFragment); ok {
		if n := doc.byID(FooterPlaceholder); n != nil && l.inject(n, FooterFragment, footer) {
			changed = true
		}
	}
	if n := doc.byID(ConverterPlaceholder); n != nil {
		if tmpl, ok := l.load(ctx, ConverterFragment); ok && l.inject(n, ConverterFragment, tmpl) {
			changed = true
		}
	}
	if !changed {
		return page
	}
	out, err := doc.render()
	if err != nil {
		l.logger.Error("error rendering page", "page", pagePath, "error", err)
		return page
	}
	return out
}

func (l *Loader) load(ctx context.Context, name string) (string, bool) {
	body, err := l.fetcher.Fetch(ctx, name)
	if err != nil {
		l.logger.Error("error loading component", "fragment", name, "error", err)
		return "", false
	}
	return body, true
}

func (l *Loader) inject(n *html.Node, name, fragment string) bool {
	if err := replaceChildren(n, fragment); err != nil {
		l.logger.Error("error loading component", "fragment", name, "error", err)
		return false
	}
	return true
}

// HasPlaceholder reports whether page has an element whose id is id.
func HasPlaceholder(page, id string) bool {
	doc, err := parseDocument(page)
	return err == nil && doc.byID(id) != nil
}

// Inject replaces the children of the first element whose id is id with
// the parsed fragment. Pages without the element are returned unchanged.
func Inject(page, id, fragment string) string {
	doc, err := parseDocument(page)
	if err != nil {
		return page
	}
	n := doc.byID(id)
	if n == nil || replaceChildren(n, fragment) != nil {
		return page
	}
	out, err := doc.render()
	if err != nil {
		return page
	}
	return out
}
