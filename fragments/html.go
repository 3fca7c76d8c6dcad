package fragments

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// document is a parsed page. Input without a doctype or <html> prelude is
// kept as a body fragment so rendering does not add a document shell.
type document struct {
	root     *html.Node
	fragment bool
}

func parseDocument(page string) (*document, error) {
	lead := strings.ToLower(strings.TrimSpace(page))
	if strings.HasPrefix(lead, "<!doctype") || strings.HasPrefix(lead, "<html") {
		root, err := html.Parse(strings.NewReader(page))
		if err != nil {
			return nil, err
		}
		return &document{root: root}, nil
	}
	root, err := parseBody(page)
	if err != nil {
		return nil, err
	}
	return &document{root: root, fragment: true}, nil
}

// parseBody parses fragment as the content of a detached <body>.
func parseBody(fragment string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	if err := replaceChildren(body, fragment); err != nil {
		return nil, err
	}
	return body, nil
}

func (d *document) render() (string, error) {
	if d.fragment {
		return renderChildren(d.root)
	}
	var b strings.Builder
	if err := html.Render(&b, d.root); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderChildren(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func (d *document) byID(id string) *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if v, ok := attr(n, "id"); ok && v == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// replaceChildren swaps the children of n for the nodes parsed from
// fragment in the context of n. On error n is left untouched.
func replaceChildren(n *html.Node, fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), n)
	if err != nil {
		return err
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// walk visits element nodes under n depth first until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && !visit(c) {
			return false
		}
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	if hasClass(n, class) {
		return
	}
	v, _ := attr(n, "class")
	setAttr(n, "class", strings.TrimSpace(v+" "+class))
}

// ownText is the trimmed text of n's direct text children, leaving out
// decorations such as a dropdown arrow in a child <span>.
func ownText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(b.String())
}
