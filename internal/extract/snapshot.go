// Package extract reads the solution title, code and language out of a
// judge page snapshot using ordered chains of DOM locators.
package extract

import (
	"fmt"
	nurl "net/url"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// Snapshot is a parsed copy of the page at trigger time.
type Snapshot struct {
	RawURL string
	URL    *nurl.URL
	HTML   string
	Doc    *html.Node
}

// Parse builds a Snapshot from the serialized document and the page URL.
func Parse(rawURL, rawHTML string) (*Snapshot, error) {
	u, err := nurl.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Snapshot{RawURL: rawURL, URL: u, HTML: rawHTML, Doc: doc}, nil
}

// ProblemID returns the path segment following "/problems/", or "".
func (s *Snapshot) ProblemID() string {
	if s.URL == nil {
		return ""
	}
	segs := strings.Split(strings.Trim(s.URL.Path, "/"), "/")
	for i := 0; i < len(segs)-1; i++ {
		if segs[i] == "problems" {
			return segs[i+1]
		}
	}
	return ""
}

// first returns the first node matching sel, or nil.
func (s *Snapshot) first(sel cascadia.Selector) *html.Node {
	return sel.MatchFirst(s.Doc)
}

// all returns every node matching sel in document order.
func (s *Snapshot) all(sel cascadia.Selector) []*html.Node {
	return sel.MatchAll(s.Doc)
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	return dom.TextContent(n)
}
