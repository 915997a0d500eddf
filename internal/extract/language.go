package extract

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
)

// LanguageChain is the default ordered list of language locators. Values are
// lower-cased; no match means "" so the caller can fall back to a default.
func LanguageChain() []Locator[string] {
	return []Locator[string]{
		selectorLanguage("language:ant-select", ".ant-select-selection-selected-value"),
		selectorLanguage("language:data-cy", `[data-cy="select-lang"]`),
		selectorLanguage("language:select-lang", ".select-lang"),
		{ID: "language:monaco-mode", Locate: monacoMode},
		{ID: "language:url-hint", Locate: urlLanguage},
	}
}

func selectorLanguage(id, selector string) Locator[string] {
	sel := cascadia.MustCompile(selector)
	return Locator[string]{
		ID: id,
		Locate: func(s *Snapshot) (string, bool) {
			lang := strings.ToLower(collapseSpaces(textOf(s.first(sel))))
			return lang, lang != ""
		},
	}
}

var modeAttr = cascadia.MustCompile("[data-mode-id]")

func monacoMode(s *Snapshot) (string, bool) {
	n := s.first(modeAttr)
	if n == nil {
		return "", false
	}
	lang := strings.ToLower(strings.TrimSpace(dom.GetAttribute(n, "data-mode-id")))
	return lang, lang != ""
}

// urlHints are checked in order; "/javascript/" precedes "/java/" so the
// longer name wins.
var urlHints = []struct{ fragment, language string }{
	{"/python/", "python"},
	{"/javascript/", "javascript"},
	{"/java/", "java"},
	{"/cpp/", "cpp"},
}

func urlLanguage(s *Snapshot) (string, bool) {
	for _, h := range urlHints {
		if strings.Contains(s.RawURL, h.fragment) {
			return h.language, true
		}
	}
	return "", false
}
