package extract

import (
	"github.com/yangwenmai/solvesync/internal/model"
)

// Reason values for ExtractionError.
const (
	NoCodeFound = "NoCodeFound"
)

// ExtractionError reports why no artifact could be produced.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "extraction failed: " + e.Reason
}

// ErrorKind lets callers read the reason through a small interface.
func (e *ExtractionError) ErrorKind() string {
	return e.Reason
}

// Extractor resolves title, code and language from a Snapshot.
type Extractor struct {
	titles    []Locator[string]
	codes     []Locator[string]
	languages []Locator[string]
}

// New creates an Extractor with the default locator chains.
func New() *Extractor {
	return &Extractor{
		titles:    TitleChain(),
		codes:     CodeChain(),
		languages: LanguageChain(),
	}
}

// NewWithChains creates an Extractor with custom locator chains.
func NewWithChains(titles, codes, languages []Locator[string]) *Extractor {
	return &Extractor{titles: titles, codes: codes, languages: languages}
}

// Extract produces the submission artifact. Only a missing solution is an
// error; title and language degrade to UnknownTitle and "".
func (e *Extractor) Extract(s *Snapshot) (model.SubmissionArtifact, error) {
	code, codeSrc, ok := First(s, e.codes)
	if !ok {
		return model.SubmissionArtifact{}, &ExtractionError{Reason: NoCodeFound}
	}

	title, titleSrc, ok := First(s, e.titles)
	if !ok {
		title = UnknownTitle
	}
	lang, langSrc, _ := First(s, e.languages)

	return model.SubmissionArtifact{
		ProblemID:      s.ProblemID(),
		Title:          title,
		Code:           code,
		Language:       lang,
		TitleSource:    titleSrc,
		CodeSource:     codeSrc,
		LanguageSource: langSrc,
	}, nil
}
