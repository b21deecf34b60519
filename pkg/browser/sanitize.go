package browser

import (
	"strings"

	"golang.org/x/net/html"
)

// Elements never worth keeping in captured icon markup.
var skippedMarkupElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
}

// SanitizeMarkup cleans a serialized DOM fragment (typically an inline SVG
// icon captured off a page) so it can be stored safely: script-bearing
// elements are dropped and event-handler attributes stripped. Unparseable
// input yields an empty string rather than an error; captured markup is a
// best-effort field.
func SanitizeMarkup(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	body := findNode(doc, "body")
	if body == nil {
		return ""
	}

	var builder strings.Builder
	for child := body.FirstChild; child != nil; child = child.NextSibling {
		cleanMarkupNode(child)
		if err := html.Render(&builder, child); err != nil {
			return ""
		}
	}
	return builder.String()
}

// cleanMarkupNode strips unsafe attributes and removes unsafe descendant
// elements in place.
func cleanMarkupNode(n *html.Node) {
	if n.Type == html.ElementNode {
		kept := n.Attr[:0]
		for _, attr := range n.Attr {
			if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
				continue
			}
			if strings.Contains(strings.ToLower(attr.Val), "javascript:") {
				continue
			}
			kept = append(kept, attr)
		}
		n.Attr = kept
	}

	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.ElementNode && skippedMarkupElements[strings.ToLower(child.Data)] {
			n.RemoveChild(child)
		} else {
			cleanMarkupNode(child)
		}
		child = next
	}
}

// findNode locates the first element with the given tag name.
func findNode(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findNode(child, tag); found != nil {
			return found
		}
	}
	return nil
}
