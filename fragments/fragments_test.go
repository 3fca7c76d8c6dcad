package fragments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = `<nav><a class="nav-link" href="index.html">홈</a>` +
	`<a class="nav-link" href="converters/length.html">단위 변환기</a>` +
	`<a class="nav-link" href="calculators/bmi.html">계산기</a>` +
	`<a class="nav-link" href="#">블로그</a>` +
	`<a href="https://example.com">ext</a></nav>`

const page = `<html><body><div id="header-placeholder"></div>` +
	`<main><section id="converter-placeholder"></section></main>` +
	`<footer id="footer-placeholder">old</footer></body></html>`

func siteFS() fstest.MapFS {
	return fstest.MapFS{
		"components/header.html":             {Data: []byte(header)},
		"components/footer.html":             {Data: []byte(`<p>footer</p>`)},
		"components/converter-template.html": {Data: []byte(`<form>conv</form>`)},
	}
}

func TestRenderNestedPage(t *testing.T) {
	l := NewLoader(&FSFetcher{FS: siteFS()}, nil)
	out := l.Render(context.Background(), "/converters/length.html", page)

	assert.Contains(t, out, `<a class="nav-link active" href="../converters/length.html">단위 변환기</a>`)
	assert.Contains(t, out, `href="../index.html"`)
	assert.Contains(t, out, `href="#"`)
	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `<section id="converter-placeholder"><form>conv</form></section>`)
	assert.Contains(t, out, `<footer id="footer-placeholder"><p>footer</p></footer>`)
}

func TestRenderMissingFragmentsLeavesPlaceholders(t *testing.T) {
	l := NewLoader(&FSFetcher{FS: fstest.MapFS{}}, nil)
	out := l.Render(context.Background(), "/index.html", page)
	assert.Equal(t, page, out)
}

func TestRenderSkipsConverterWithoutPlaceholder(t *testing.T) {
	fetched := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched[r.URL.Path]++
		switch r.URL.Path {
		case "/components/header.html":
			_, _ = w.Write([]byte(header))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(&HTTPFetcher{BaseURL: srv.URL + "/", Client: srv.Client()}, nil)
	plain := `<div id="header-placeholder"></div><div id="footer-placeholder"></div>`
	out := l.Render(context.Background(), "/index.html", plain)

	assert.Contains(t, out, `<a class="nav-link active" href="index.html">홈</a>`)
	assert.Contains(t, out, `<div id="footer-placeholder"></div>`)
	assert.Equal(t, 1, fetched["/components/footer.html"])
	assert.Zero(t, fetched["/components/converter-template.html"])
}

func TestHTTPFetcherErrors(t *testing.T) {
	_, err := (&HTTPFetcher{BaseURL: "http://127.0.0.1:1/"}).Fetch(context.Background(), HeaderFragment)
	assert.ErrorIs(t, err, ErrFragmentUnavailable)

	_, err = (&FSFetcher{FS: fstest.MapFS{}}).Fetch(context.Background(), HeaderFragment)
	assert.ErrorIs(t, err, ErrFragmentUnavailable)
}

func TestInject(t *testing.T) {
	assert.Equal(t, `<div id="x">new</div>`, Inject(`<div id="x">old</div>`, "x", "new"))
	assert.Equal(t, `<span class="a" id="x" role="b">new</span>`, Inject(`<span class="a" id="x" role="b"></span>`, "x", "new"))
	assert.Equal(t, `<div id="y"></div>`, Inject(`<div id="y"></div>`, "x", "new"))
	assert.Equal(t, `<div id="x">new</div>`, Inject(`<div id="x">`, "x", "new"), "unterminated element")
}

func TestInjectMatchesIDAttributeOnly(t *testing.T) {
	in := `<div data-id="x"></div><div id="x"></div>`
	assert.Equal(t, `<div data-id="x"></div><div id="x">new</div>`, Inject(in, "x", "new"))
	assert.False(t, HasPlaceholder(`<div data-id="x"></div>`, "x"))
	assert.True(t, HasPlaceholder(in, "x"))
}

func TestInjectReplacesNestedContent(t *testing.T) {
	in := `<div id="x"><div>a</div><div>b</div></div><p>after</p>`
	assert.Equal(t, `<div id="x"><nav>new</nav></div><p>after</p>`, Inject(in, "x", "<nav>new</nav>"))
}

func TestInjectFullDocument(t *testing.T) {
	out := Inject(`<!DOCTYPE html><html><body><main id="x"></main></body></html>`, "x", "<p>hi</p>")
	assert.Equal(t, `<!DOCTYPE html><html><head></head><body><main id="x"><p>hi</p></main></body></html>`, out)
}

func TestMarkActive(t *testing.T) {
	nav := `<a class="nav-link dropdown-toggle" href="converters/">단위 변환기 <span>▼</span></a>` +
		`<a class="nav-link" href="calculators/"> 계산기 </a>`

	out := MarkActive(nav, "/converters/length.html")
	assert.Contains(t, out, `<a class="nav-link dropdown-toggle active" href="converters/">단위 변환기 <span>▼</span></a>`)
	assert.Contains(t, out, `<a class="nav-link" href="calculators/"> 계산기 </a>`)

	out = MarkActive(nav, "/calculators/tip.html")
	assert.Contains(t, out, `<a class="nav-link active" href="calculators/"> 계산기 </a>`)

	assert.Equal(t, `<a class="nav-link active" href="index.html">홈</a>`,
		MarkActive(`<a class="nav-link active" href="index.html">홈</a>`, "/index.html"), "already active")
	assert.Equal(t, `<a class="nav-linkish" href="index.html">홈</a>`,
		MarkActive(`<a class="nav-linkish" href="index.html">홈</a>`, "/index.html"))
	assert.Equal(t, nav, MarkActive(nav, "/privacy.html"))
}

func TestRootPath(t *testing.T) {
	tests := map[string]string{
		"/":                       "./",
		"/index.html":             "./",
		"/about.html":             "./",
		"/converters/length.html": "../",
		"/converters/":            "./",
		"/blog/2024/post.html":    "../../",
		"/calculators/index.html": "./",
	}
	for in, want := range tests {
		assert.Equal(t, want, RootPath(in), in)
	}
}

func TestActiveSection(t *testing.T) {
	tests := map[string]Section{
		"/":                       SectionHome,
		"/index.html":             SectionHome,
		"/blog/post.html":         SectionBlog,
		"/blog-units.html":        SectionBlog,
		"/converters/length.html": SectionConverters,
		"/length.html":            SectionConverters,
		"/calculators/bmi.html":   SectionCalculators,
		"/tip.html":               SectionCalculators,
		"/converters/index.html":  SectionConverters,
		"/privacy.html":           SectionNone,
	}
	for in, want := range tests {
		assert.Equal(t, want, ActiveSection(in), in)
	}
}

func TestLegacyRedirect(t *testing.T) {
	to, ok := LegacyRedirect("/length.html")
	require.True(t, ok)
	assert.Equal(t, "/converters/length.html", to)

	_, ok = LegacyRedirect("/converters/length.html")
	assert.False(t, ok)
	_, ok = LegacyRedirect("/bmi.html")
	assert.False(t, ok)
}

func TestFixLinksAtRoot(t *testing.T) {
	assert.Equal(t, header, FixLinks(header, "./"))
	assert.Equal(t, `<a href="../../x.html"></a>`, FixLinks(`<a href="x.html"></a>`, "../../"))
	assert.Equal(t, `<a href="../x.html"></a>`, FixLinks(`<a href="../x.html"></a>`, "../../"))
}
