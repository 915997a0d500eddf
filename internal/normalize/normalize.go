// Package normalize turns an extracted submission into the file that is
// committed to the repository. Everything here is pure; no I/O.
package normalize

import (
	"regexp"
	"strings"

	"github.com/yangwenmai/solvesync/internal/model"
)

// Normalize derives the repository file for an artifact.
func Normalize(a model.SubmissionArtifact) model.NormalizedFile {
	return model.NormalizedFile{
		Path:          Slugify(a.Title) + "." + ExtensionOf(a.Language),
		Content:       CleanCode(a.Code),
		CommitMessage: CommitMessage(a.ProblemID, a.Title),
	}
}

// CleanCode normalizes line endings and then replaces Unicode space variants
// with a plain space. The result is a fixed point of CleanCode.
func CleanCode(code string) string {
	return CleanWhitespace(NormalizeLineEndings(code))
}

// NormalizeLineEndings collapses \r\n and bare \r to \n.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// spaceVariants are the code points rendered as indentation by some editors
// that must become U+0020 to keep indentation-sensitive code valid.
var spaceVariants = []rune{
	'\u00a0', // no-break space
	'\u1680', // ogham space mark
	'\u180e', // mongolian vowel separator
	'\u2000', '\u2001', '\u2002', '\u2003', '\u2004', '\u2005',
	'\u2006', '\u2007', '\u2008', '\u2009', '\u200a', // en quad .. hair space
	'\u200b', // zero width space
	'\u202f', // narrow no-break space
	'\u205f', // medium mathematical space
	'\u3000', // ideographic space
	'\ufeff', // zero width no-break space (BOM)
}

var spaceReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(spaceVariants))
	for _, r := range spaceVariants {
		pairs = append(pairs, string(r), " ")
	}
	return strings.NewReplacer(pairs...)
}()

// SpaceVariants returns a copy of the code points CleanWhitespace rewrites.
func SpaceVariants() []rune {
	return append([]rune(nil), spaceVariants...)
}

// CleanWhitespace replaces every Unicode space variant with U+0020.
func CleanWhitespace(s string) string {
	return spaceReplacer.Replace(s)
}

var extensions = map[string]string{
	"javascript":    "js",
	"js":            "js",
	"typescript":    "ts",
	"ts":            "ts",
	"python":        "py",
	"python3":       "py",
	"py":            "py",
	"java":          "java",
	"c++":           "cpp",
	"cpp":           "cpp",
	"c":             "c",
	"c#":            "cs",
	"cs":            "cs",
	"csharp":        "cs",
	"go":            "go",
	"golang":        "go",
	"ruby":          "rb",
	"rb":            "rb",
	"kotlin":        "kt",
	"kt":            "kt",
	"swift":         "swift",
	"rust":          "rs",
	"rs":            "rs",
	"scala":         "scala",
	"php":           "php",
	"mysql":         "sql",
	"sql":           "sql",
	"ms sql server": "sql",
	"oracle":        "sql",
	"postgresql":    "sql",
	"bash":          "sh",
	"shell":         "sh",
	"dart":          "dart",
	"elixir":        "ex",
	"erlang":        "erl",
	"racket":        "rkt",
}

// ExtensionOf maps a language label to a file extension. Matching is
// case-insensitive; unknown or empty labels map to "txt".
func ExtensionOf(language string) string {
	if ext, ok := extensions[strings.ToLower(strings.TrimSpace(language))]; ok {
		return ext
	}
	return "txt"
}

var (
	slugStrip = regexp.MustCompile(`[^a-z0-9\s-]+`)
	slugSep   = regexp.MustCompile(`[\s-]+`)
)

// Slugify lower-cases title, drops characters outside [a-z0-9], and joins the
// remaining words with single hyphens. An empty result becomes "untitled".
func Slugify(title string) string {
	s := strings.ToLower(CleanWhitespace(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSep.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	return s
}

// CommitMessage builds the commit message; problemID is omitted when empty.
func CommitMessage(problemID, title string) string {
	if problemID == "" {
		return "Add solution: " + title
	}
	return "Add solution for " + problemID + ": " + title
}
