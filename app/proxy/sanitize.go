package proxy

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

const strippedElements = "//script|//iframe|//noscript"

// sanitize removes scripts, frames, ads and inline event handlers from document
func sanitize(doc *html.Node) {
	for _, n := range htmlquery.Find(doc, strippedElements) {
		detach(n)
	}
	for _, n := range htmlquery.Find(doc, "//*[@class]") {
		if isAd(htmlquery.SelectAttr(n, "class")) {
			detach(n)
		}
	}
	for _, n := range htmlquery.Find(doc, "//*") {
		attrs := n.Attr[:0]
		for _, a := range n.Attr {
			if !strings.HasPrefix(strings.ToLower(a.Key), "on") {
				attrs = append(attrs, a)
			}
		}
		n.Attr = attrs
	}
}

// isAd reports whether class attribute marks an advertisement
func isAd(class string) bool {
	class = strings.ToLower(class)
	if strings.Contains(class, "promo") || strings.Contains(class, "banner") {
		return true
	}
	for _, token := range strings.Fields(class) {
		switch {
		case token == "ad", token == "ads":
			return true
		case strings.HasPrefix(token, "ad-"), strings.HasPrefix(token, "ad_"):
			return true
		}
	}
	return false
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}
