// Package document parses static HTML pages into the pieces promptlens needs:
// image candidates from the primary content region, and readable text for
// summaries.
package document

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/entrhq/promptlens/pkg/types"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML page.
type Document struct {
	root        *html.Node
	base        *url.URL
	Title       string
	Description string
}

// Parse reads an HTML page. pageURL is used to resolve relative image
// sources; a <base href> in the page takes precedence over it.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var base *url.URL
	if pageURL != "" {
		base, err = url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
		}
	}

	doc := &Document{
		root:        root,
		base:        base,
		Title:       extractTitle(root),
		Description: extractMetaDescription(root),
	}

	if href := doc.baseHref(); href != "" {
		doc.base = doc.resolveURL(href)
	}

	return doc, nil
}

// ParseString is Parse over a string.
func ParseString(rawHTML, pageURL string) (*Document, error) {
	return Parse(strings.NewReader(rawHTML), pageURL)
}

// ContentRoot returns the first <main> element, or <body> when the page has none.
func (d *Document) ContentRoot() *html.Node {
	if main := findFirst(d.root, atom.Main); main != nil {
		return main
	}
	if body := findFirst(d.root, atom.Body); body != nil {
		return body
	}
	return d.root
}

// ImageCandidates returns every <img> with a non-empty src under ContentRoot,
// in document order. Sources are resolved to absolute URLs where possible;
// data: URIs are returned unchanged. Width and height come from the element's
// attributes and are 0 when absent or not numeric.
func (d *Document) ImageCandidates() []types.Candidate {
	var candidates []types.Candidate

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			if src := strings.TrimSpace(attr(n, "src")); src != "" {
				candidates = append(candidates, types.Candidate{
					Src:    d.resolveSrc(src),
					Width:  dimension(attr(n, "width")),
					Height: dimension(attr(n, "height")),
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.ContentRoot())

	return candidates
}

// Text returns the readable text of the page body with whitespace collapsed,
// skipping scripts, styles and other non-content elements. At most maxLength
// runes are returned; truncated reports whether the text was cut. A
// maxLength <= 0 means no limit.
func (d *Document) Text(maxLength int) (text string, truncated bool) {
	root := findFirst(d.root, atom.Body)
	if root == nil {
		root = d.root
	}

	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && isSkippedElement(n.DataAtom) {
			return
		}
		if n.Type == html.TextNode {
			for _, word := range strings.Fields(n.Data) {
				if builder.Len() > 0 {
					builder.WriteByte(' ')
				}
				builder.WriteString(word)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	text = builder.String()
	if maxLength > 0 {
		runes := []rune(text)
		if len(runes) > maxLength {
			return string(runes[:maxLength]), true
		}
	}
	return text, false
}

func (d *Document) baseHref() string {
	head := findFirst(d.root, atom.Head)
	if head == nil {
		return ""
	}
	if base := findFirst(head, atom.Base); base != nil {
		return strings.TrimSpace(attr(base, "href"))
	}
	return ""
}

func (d *Document) resolveSrc(src string) string {
	if strings.HasPrefix(strings.ToLower(src), "data:") {
		return src
	}
	if u := d.resolveURL(src); u != nil {
		return u.String()
	}
	return src
}

func (d *Document) resolveURL(ref string) *url.URL {
	u, err := url.Parse(ref)
	if err != nil {
		return nil
	}
	if d.base == nil {
		return u
	}
	return d.base.ResolveReference(u)
}

// isSkippedElement returns true for elements whose text is not page content
func isSkippedElement(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Noscript, atom.Iframe, atom.Embed,
		atom.Object, atom.Svg, atom.Template, atom.Head:
		return true
	}
	return false
}

// dimension parses a width/height attribute such as "120" or "120px".
func dimension(value string) int {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "px"))
	if value == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
		return int(f)
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// extractTitle extracts the page title from the document
func extractTitle(doc *html.Node) string {
	title := findFirst(doc, atom.Title)
	if title == nil || title.FirstChild == nil || title.FirstChild.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(title.FirstChild.Data)
}

// extractMetaDescription extracts the meta description from the document
func extractMetaDescription(doc *html.Node) string {
	var description string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta && strings.EqualFold(attr(n, "name"), "description") {
			description = strings.TrimSpace(attr(n, "content"))
			if description != "" {
				return
			}
		}
		for c := n.FirstChild; c != nil && description == ""; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return description
}
