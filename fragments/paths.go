package fragments

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Section string

const (
	SectionNone        Section = ""
	SectionHome        Section = "home"
	SectionBlog        Section = "blog"
	SectionConverters  Section = "converters"
	SectionCalculators Section = "calculators"
)

// Nav link labels per section, as written in the header fragment.
var sectionLabels = map[Section]string{
	SectionBlog:        "블로그",
	SectionConverters:  "단위 변환기",
	SectionCalculators: "계산기",
}

var converterPages = []string{
	"length", "weight", "temperature", "acceleration", "angle",
	"data", "volume", "speed", "time", "pressure", "energy",
	"power", "area", "torque", "currency", "force",
}

var calculatorPages = []string{
	"exchange-rate", "discount", "tip", "salary", "bmi", "calorie", "water",
}

func currentPage(pagePath string) string {
	i := strings.LastIndex(pagePath, "/")
	page := pagePath[i+1:]
	if page == "" {
		return "index.html"
	}
	return page
}

// RootPath is the relative prefix from pagePath back to the site root.
func RootPath(pagePath string) string {
	depth := -1
	for _, p := range strings.Split(pagePath, "/") {
		if p != "" && p != "index.html" {
			depth++
		}
	}
	if depth > 0 {
		return strings.Repeat("../", depth)
	}
	return "./"
}

// ActiveSection tells which navigation entry pagePath belongs to.
func ActiveSection(pagePath string) Section {
	page := currentPage(pagePath)
	name := strings.TrimSuffix(page, ".html")
	switch {
	case strings.HasPrefix(page, "blog-") || strings.Contains(pagePath, "/blog/"):
		return SectionBlog
	case strings.Contains(pagePath, "/converters/") || slices.Contains(converterPages, name):
		return SectionConverters
	case strings.Contains(pagePath, "/calculators/") || slices.Contains(calculatorPages, name):
		return SectionCalculators
	case page == "index.html":
		return SectionHome
	}
	return SectionNone
}

// LegacyRedirect maps an old root level converter page to its new
// location under /converters/.
func LegacyRedirect(pagePath string) (string, bool) {
	if strings.Contains(pagePath, "/converters/") {
		return "", false
	}
	page := currentPage(pagePath)
	if !slices.Contains(converterPages, strings.TrimSuffix(page, ".html")) {
		return "", false
	}
	return "/converters/" + page, true
}

// FixLinks prefixes relative links in a fragment with root so they resolve
// from nested pages. Anchors, absolute http(s) links and links already
// climbing with ../ are kept.
func FixLinks(fragment, root string) string {
	if root == "./" {
		return fragment
	}
	return rewrite(fragment, func(n *html.Node) { fixLinks(n, root) })
}

func fixLinks(n *html.Node, root string) {
	if root == "./" {
		return
	}
	walk(n, func(a *html.Node) bool {
		if a.DataAtom != atom.A {
			return true
		}
		href, ok := attr(a, "href")
		if !ok || href == "#" || strings.HasPrefix(href, "http") || strings.HasPrefix(href, "../") {
			return true
		}
		setAttr(a, "href", root+href)
		return true
	})
}

// MarkActive adds the active class to the nav link of pagePath's section.
// Nav links are elements carrying the nav-link class; the home link is
// matched by its href and the others by their label.
func MarkActive(fragment, pagePath string) string {
	section := ActiveSection(pagePath)
	if section == SectionNone {
		return fragment
	}
	return rewrite(fragment, func(n *html.Node) { markActive(n, section) })
}

func markActive(n *html.Node, section Section) {
	if section == SectionNone {
		return
	}
	label := sectionLabels[section]
	walk(n, func(link *html.Node) bool {
		if !hasClass(link, "nav-link") {
			return true
		}
		var match bool
		if section == SectionHome {
			href, _ := attr(link, "href")
			match = strings.HasSuffix(href, "index.html")
		} else {
			match = ownText(link) == label || textContent(link) == label
		}
		if match {
			addClass(link, "active")
		}
		return true
	})
}

// rewrite parses fragment, applies edit and renders it back. Fragments that
// fail to parse or render are returned unchanged.
func rewrite(fragment string, edit func(*html.Node)) string {
	body, err := parseBody(fragment)
	if err != nil {
		return fragment
	}
	edit(body)
	out, err := renderChildren(body)
	if err != nil {
		return fragment
	}
	return out
}
