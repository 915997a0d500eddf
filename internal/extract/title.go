package extract

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/go-readability"
)

// UnknownTitle is used when no title locator matches.
const UnknownTitle = "Unknown Problem"

// siteSuffixes are stripped from document-level titles.
var siteSuffixes = []string{" - LeetCode", " | LeetCode", " - 力扣（LeetCode）"}

// TitleChain is the default ordered list of title locators.
func TitleChain() []Locator[string] {
	return []Locator[string]{
		selectorTitle("title:data-cy", `[data-cy="question-title"]`),
		selectorTitle("title:css-v3d350", `.css-v3d350`),
		selectorTitle("title:text-title-large", `div.text-title-large a`),
		{ID: "title:readability", Locate: readabilityTitle},
		{ID: "title:document", Locate: documentTitle},
		{ID: "title:url-slug", Locate: slugTitle},
	}
}

func selectorTitle(id, selector string) Locator[string] {
	sel := cascadia.MustCompile(selector)
	return Locator[string]{
		ID: id,
		Locate: func(s *Snapshot) (string, bool) {
			t := collapseSpaces(textOf(s.first(sel)))
			return t, t != ""
		},
	}
}

// readabilityTitle uses go-readability's metadata-aware title detection
// (og:title, dc:title, <title> with separators).
func readabilityTitle(s *Snapshot) (string, bool) {
	article, err := readability.FromReader(strings.NewReader(s.HTML), s.URL)
	if err != nil {
		return "", false
	}
	t := trimSiteSuffix(collapseSpaces(article.Title))
	return t, t != ""
}

var titleTag = cascadia.MustCompile("title")

func documentTitle(s *Snapshot) (string, bool) {
	t := trimSiteSuffix(collapseSpaces(textOf(s.first(titleTag))))
	return t, t != ""
}

// slugTitle rebuilds a title from the /problems/{slug}/ URL segment,
// capitalizing each hyphen-separated token.
func slugTitle(s *Snapshot) (string, bool) {
	slug := s.ProblemID()
	if slug == "" {
		return "", false
	}
	t := TitleFromSlug(slug)
	return t, t != ""
}

// TitleFromSlug turns "two-sum" into "Two Sum".
func TitleFromSlug(slug string) string {
	parts := strings.Split(slug, "-")
	words := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		words = append(words, strings.ToUpper(p[:1])+p[1:])
	}
	return strings.Join(words, " ")
}

func trimSiteSuffix(t string) string {
	for _, suffix := range siteSuffixes {
		t = strings.TrimSuffix(t, suffix)
	}
	return strings.TrimSpace(t)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
