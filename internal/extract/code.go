package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// CodeChain is the default ordered list of code locators. Line-based editor
// widgets come first, then plain preformatted blocks, then the largest
// code-like element on the page.
func CodeChain() []Locator[string] {
	return []Locator[string]{
		lineEditor("code:ace", ".ace_content", ".ace_line"),
		lineEditor("code:monaco", ".view-lines", ".view-line"),
		lineEditor("code:codemirror5", ".CodeMirror-code", ".CodeMirror-line"),
		lineEditor("code:codemirror6", ".cm-content", ".cm-line"),
		resultBlock("code:submission-result", ".result-container, .submission-result, .accepted", "pre, code"),
		largestOf("code:largest-block", "pre, code, .CodeMirror"),
	}
}

// lineEditor joins the text of every line node inside the first container
// with "\n". A single textContent read on the container is not used: line
// nodes of virtualized editors are not guaranteed to be in visual order.
func lineEditor(id, container, line string) Locator[string] {
	containerSel := cascadia.MustCompile(container)
	lineSel := cascadia.MustCompile(line)
	return Locator[string]{
		ID: id,
		Locate: func(s *Snapshot) (string, bool) {
			root := s.first(containerSel)
			if root == nil {
				return "", false
			}
			lines := orderLines(lineSel.MatchAll(root))
			if len(lines) == 0 {
				return "", false
			}
			text := make([]string, len(lines))
			for i, n := range lines {
				text[i] = dom.TextContent(n)
			}
			code := strings.Join(text, "\n")
			return code, strings.TrimSpace(code) != ""
		},
	}
}

var topOffset = regexp.MustCompile(`(?:^|;)\s*top\s*:\s*(-?[0-9]+(?:\.[0-9]+)?)px`)

// orderLines sorts line nodes by their declared "top:" style offset when every
// node has one, keeping document order otherwise.
func orderLines(nodes []*html.Node) []*html.Node {
	tops := make([]float64, len(nodes))
	for i, n := range nodes {
		m := topOffset.FindStringSubmatch(dom.GetAttribute(n, "style"))
		if m == nil {
			return nodes
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nodes
		}
		tops[i] = v
	}
	idx := make([]int, len(nodes))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return tops[idx[a]] < tops[idx[b]] })
	out := make([]*html.Node, len(nodes))
	for i, j := range idx {
		out[i] = nodes[j]
	}
	return out
}

// resultBlock picks the largest inner block among submission result containers.
func resultBlock(id, containers, inner string) Locator[string] {
	containerSel := cascadia.MustCompile(containers)
	innerSel := cascadia.MustCompile(inner)
	return Locator[string]{
		ID: id,
		Locate: func(s *Snapshot) (string, bool) {
			var candidates []*html.Node
			for _, c := range s.all(containerSel) {
				candidates = append(candidates, innerSel.MatchAll(c)...)
			}
			return largestText(candidates)
		},
	}
}

func largestOf(id, selector string) Locator[string] {
	sel := cascadia.MustCompile(selector)
	return Locator[string]{
		ID: id,
		Locate: func(s *Snapshot) (string, bool) {
			return largestText(s.all(sel))
		},
	}
}

// largestText returns the text of the node with the most characters.
func largestText(nodes []*html.Node) (string, bool) {
	best, bestLen := "", 0
	for _, n := range nodes {
		t := dom.TextContent(n)
		if l := utf8.RuneCountInString(t); l > bestLen {
			best, bestLen = t, l
		}
	}
	return best, strings.TrimSpace(best) != ""
}
