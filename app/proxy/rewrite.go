package proxy

import (
	"net/url"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rewriter routes page navigation back through the proxy
type rewriter struct {
	base   *url.URL
	prefix string
	source string
}

func (r rewriter) rewrite(doc *html.Node) {
	for _, n := range htmlquery.Find(doc, "//a[@href]") {
		abs, ok := r.resolve(htmlquery.SelectAttr(n, "href"))
		if !ok {
			removeAttr(n, "href")
			continue
		}
		setAttr(n, "href", r.link(abs))
		setAttr(n, "target", "_self")
	}
	for _, n := range htmlquery.Find(doc, "//form") {
		abs, ok := r.resolve(htmlquery.SelectAttr(n, "action"))
		if !ok {
			removeAttr(n, "action")
			continue
		}
		removeAttr(n, "target")
		method := strings.ToLower(htmlquery.SelectAttr(n, "method"))
		if method != "" && method != "get" {
			setAttr(n, "action", r.link(abs))
			continue
		}
		// GET forms replace action query with their fields
		setAttr(n, "action", r.prefix)
		n.InsertBefore(hiddenInput("word", abs), n.FirstChild)
		n.InsertBefore(hiddenInput("source", r.source), n.FirstChild)
	}
	for _, q := range []struct{ expr, attr string }{
		{"//img[@src]", "src"},
		{"//link[@href]", "href"},
	} {
		for _, n := range htmlquery.Find(doc, q.expr) {
			if abs, ok := r.resolve(htmlquery.SelectAttr(n, q.attr)); ok {
				setAttr(n, q.attr, abs)
			}
		}
	}
}

// resolve returns absolute http(s) URL of ref
func (r rewriter) resolve(ref string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}
	abs := r.base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return abs.String(), true
}

func (r rewriter) link(abs string) string {
	q := url.Values{}
	q.Set("source", r.source)
	q.Set("word", abs)
	return r.prefix + "?" + q.Encode()
}

func hiddenInput(name, value string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "input",
		DataAtom: atom.Input,
		Attr: []html.Attribute{
			{Key: "type", Val: "hidden"},
			{Key: "name", Val: name},
			{Key: "value", Val: value},
		},
	}
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}

// MergeQuery adds fields submitted by a rewritten GET form to the query of word URL.
// Plain words are returned unchanged.
func MergeQuery(word string, fields url.Values) string {
	if len(fields) == 0 || !(strings.HasPrefix(word, "http://") || strings.HasPrefix(word, "https://")) {
		return word
	}
	u, err := url.Parse(word)
	if err != nil {
		return word
	}
	query := u.Query()
	for k, v := range fields {
		query[k] = v
	}
	u.RawQuery = query.Encode()
	return u.String()
}
