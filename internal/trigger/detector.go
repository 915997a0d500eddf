// Package trigger decides when an accepted submission should be captured,
// from the DOM insertions and URL changes the browser bridge reports.
package trigger

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Reason values returned by Detector.Accepted.
const (
	ReasonNotification = "notification"
	ReasonSuccessMark  = "success_marker"
)

// DefaultKeyword is the text that marks an accepted notification.
const DefaultKeyword = "Accepted"

// Detector tests inserted subtrees against the acceptance heuristics.
type Detector struct {
	notifications cascadia.Selector
	success       cascadia.Selector
	keyword       string
}

// NewDetector creates a Detector with the default selectors.
func NewDetector() *Detector {
	return &Detector{
		notifications: cascadia.MustCompile(".notification-content"),
		success:       cascadia.MustCompile(`.success-icon, .text-success, [data-status="success"]`),
		keyword:       DefaultKeyword,
	}
}

// Accepted reports whether a batch of inserted nodes signals an accepted
// submission. A batch yields at most one trigger; the notification heuristic
// is checked first for each node.
func (d *Detector) Accepted(batch []*html.Node) (string, bool) {
	for _, n := range batch {
		if n == nil || n.Type != html.ElementNode {
			continue
		}
		for _, el := range d.notifications.MatchAll(n) {
			if strings.Contains(dom.TextContent(el), d.keyword) {
				return ReasonNotification, true
			}
		}
		if d.success.MatchFirst(n) != nil {
			return ReasonSuccessMark, true
		}
	}
	return "", false
}

// ParseFragments parses serialized inserted nodes into a batch of element
// and text nodes, in the order given.
func ParseFragments(fragments []string) ([]*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	var batch []*html.Node
	for i, f := range fragments {
		nodes, err := html.ParseFragment(strings.NewReader(f), body)
		if err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}
		batch = append(batch, nodes...)
	}
	return batch, nil
}
