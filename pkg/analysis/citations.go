package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/signalhouse/brandgraph/internal/util"
	"github.com/signalhouse/brandgraph/pkg/ai"
	"github.com/signalhouse/brandgraph/pkg/common"
	"github.com/signalhouse/brandgraph/pkg/logger"
)

// supplementedConfidenceCap bounds the reported confidence whenever URL
// citations had to be filled in that the model missed.
const supplementedConfidenceCap = 0.85

const contextSnippetLimit = 200

// rawCitation carries the wire form of a citation before the type string is
// validated against the enumeration.
type rawCitation struct {
	Source       string `json:"source"`
	Text         string `json:"text"`
	CitationType string `json:"citation_type"`
	URL          string `json:"url"`
	Date         string `json:"date"`
}

type rawCitationExtraction struct {
	Citations  []rawCitation `json:"citations"`
	Confidence float64       `json:"confidence"`
}

// ExtractCitations extracts source references from text. URLs present in the
// text but absent from the model output are supplemented as bare citations,
// and on total model failure the stage degrades to URL-only citations rather
// than losing the references entirely, with the error wrapping
// common.ErrExtractionFailed. brandNames come from the brand extraction
// stage; a URL whose domain matches a known brand is attributed to that
// brand.
func (e *Extractor) ExtractCitations(ctx context.Context, text string, brandNames []string) (CitationExtraction, error) {
	logger.Info("[Extract] Extracting citations")

	urls := util.ExtractURLs(text)
	urlContexts := urlSentenceContexts(text, urls)
	brands := brandsByDomainLabel(brandNames)

	urlList := "No URLs found"
	if len(urls) > 0 {
		var b strings.Builder
		for _, u := range urls {
			fmt.Fprintf(&b, "- %s\n", u)
		}
		urlList = strings.TrimRight(b.String(), "\n")
	}

	prompt := fmt.Sprintf(ai.CitationPrompt, urlList, util.CleanText(text))

	var out rawCitationExtraction
	err := e.generate(
		ctx,
		"citation_extraction",
		"Citations, sources, and references found in a text",
		prompt,
		&out,
	)
	if err != nil {
		logger.Error("[Extract] Citation extraction failed, falling back to URL citations", "err", err)
		citations := urlOnlyCitations(urls, urlContexts, brands)
		confidence := 0.0
		if len(citations) > 0 {
			confidence = 0.5
		}
		return CitationExtraction{Citations: citations, Confidence: confidence},
			fmt.Errorf("%w: citations: %w", common.ErrExtractionFailed, err)
	}

	citations := make([]common.Citation, 0, len(out.Citations))
	seen := make(map[string]bool)
	for _, raw := range out.Citations {
		citations = append(citations, common.Citation{
			Source: raw.Source,
			Text:   raw.Text,
			Type:   common.ParseCitationType(raw.CitationType),
			URL:    raw.URL,
			Date:   raw.Date,
		})
		if raw.URL != "" {
			seen[raw.URL] = true
		}
	}

	for _, u := range urls {
		if seen[u] {
			continue
		}
		citations = append(citations, urlCitation(u, urlContexts, brands))
		logger.Debug("[Extract] Added citation for URL the model missed", "url", u)
	}

	confidence := out.Confidence
	if confidence == 0 {
		confidence = defaultStageConfidence
	}
	if len(citations) > len(out.Citations) {
		confidence = min(confidence, supplementedConfidenceCap)
	}

	logger.Info("[Extract] Extracted citations", "count", len(citations), "confidence", confidence)
	return CitationExtraction{Citations: citations, Confidence: confidence}, nil
}

// urlSentenceContexts maps each URL to the sentence of the original text it
// appears in, when one can be found.
func urlSentenceContexts(text string, urls []string) map[string]string {
	contexts := make(map[string]string, len(urls))
	for _, u := range urls {
		pattern, err := regexp.Compile(`(?i)[^.!?]*` + regexp.QuoteMeta(u) + `[^.!?]*[.!?]`)
		if err != nil {
			continue
		}
		if match := pattern.FindString(text); match != "" {
			contexts[u] = strings.TrimSpace(match)
		}
	}
	return contexts
}

// brandsByDomainLabel indexes brand names by their likely domain label, so a
// URL like apple.com/... attributes to the extracted "Apple" brand.
func brandsByDomainLabel(names []string) map[string]string {
	byLabel := make(map[string]string, len(names))
	for _, name := range names {
		label := strings.ReplaceAll(strings.ToLower(name), " ", "")
		if label != "" {
			byLabel[label] = name
		}
	}
	return byLabel
}

func urlOnlyCitations(urls []string, contexts map[string]string, brands map[string]string) []common.Citation {
	citations := make([]common.Citation, 0, len(urls))
	for _, u := range urls {
		citations = append(citations, urlCitation(u, contexts, brands))
	}
	return citations
}

// urlCitation builds a minimal citation for a URL, preferring an extracted
// brand whose name matches the domain and falling back to the first label of
// the domain itself.
func urlCitation(u string, contexts map[string]string, brands map[string]string) common.Citation {
	source := "Unknown"
	if domain := util.DomainFromURL(u); domain != "" {
		label := strings.Split(domain, ".")[0]
		if name, ok := brands[strings.ToLower(label)]; ok {
			source = name
		} else {
			source = titleCase(label)
		}
	}
	text := contexts[u]
	if text == "" {
		text = "URL reference"
	}
	return common.Citation{
		Source: source,
		Text:   truncate(text, contextSnippetLimit),
		Type:   common.CitationOther,
		URL:    u,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// truncate caps s at n characters without splitting a multi-byte rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
