// Package web holds helpers for picking image links out of html pages.
package web

import (
	"io"
	"net/url"

	"golang.org/x/net/html"
)

// Parse reads an html document from r.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// Attr returns the value of the named attribute of n, or "" if n lacks it.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// ForEachNode applies a function to the given node and each of its
// descendants, stopping at the first error.
func ForEachNode(node *html.Node, fn func(n *html.Node) error) error {
	err := fn(node)
	if err != nil {
		return err
	}

	for c := node.FirstChild; c != nil; c = c.NextSibling {
		err := ForEachNode(c, fn)
		if err != nil {
			return err
		}
	}

	return nil
}

// Elements returns all descendants of node that are elements with the given
// tag name.
func Elements(node *html.Node, tag string) []*html.Node {
	var nodes []*html.Node

	ForEachNode(node, func(n *html.Node) error {
		if n.Type == html.ElementNode && n.Data == tag {
			nodes = append(nodes, n)
		}
		return nil
	})

	return nodes
}

// Links returns all `a` elements carrying a non-empty href.
func Links(node *html.Node) []*html.Node {
	var links []*html.Node
	for _, n := range Elements(node, "a") {
		if Attr(n, "href") != "" {
			links = append(links, n)
		}
	}
	return links
}

// ImageSources returns the src of every `img` element in doc, resolved
// against base. Sources that do not resolve to an http(s) url are skipped. A
// nil base keeps only sources that are already absolute.
func ImageSources(doc *html.Node, base *url.URL) []string {
	var urls []string

	for _, n := range Elements(doc, "img") {
		src := Attr(n, "src")
		if src == "" {
			continue
		}

		u, err := url.Parse(src)
		if err != nil {
			continue
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}

		urls = append(urls, u.String())
	}

	return urls
}
