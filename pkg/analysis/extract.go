// Package analysis implements the text analysis pipeline: generative
// extraction of brands, category, and citations, relationship resolution
// through the store / web search / inference chain, and the orchestration
// that ties the stages together into one AnalysisResult.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/signalhouse/brandgraph/internal/util"
	"github.com/signalhouse/brandgraph/pkg/ai"
	"github.com/signalhouse/brandgraph/pkg/brand"
	"github.com/signalhouse/brandgraph/pkg/common"
	"github.com/signalhouse/brandgraph/pkg/logger"
)

// DefaultCategory is used when no category can be determined.
const DefaultCategory = "general/business"

// defaultStageConfidence fills in when a model reports no score at all.
const defaultStageConfidence = 0.8

// Extraction model calls are retried and bounded per attempt.
const (
	extractTries       = 3
	extractCallTimeout = 2 * time.Minute
)

// Extractor runs the generative extraction stages against an inference
// client. Every stage degrades instead of failing: a model error yields an
// empty result with zero confidence, which the pipeline later flags.
type Extractor struct {
	client ai.InferenceClient
}

func NewExtractor(client ai.InferenceClient) *Extractor {
	return &Extractor{client: client}
}

// generate runs one structured model call with per-attempt timeout and
// retries.
func (e *Extractor) generate(ctx context.Context, name, description, prompt string, out any) error {
	return util.RetryErrWithContext(ctx, extractTries, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, extractCallTimeout)
		defer cancel()
		return e.client.GenerateCompletionWithFormat(callCtx, name, description, prompt, out)
	})
}

// BrandExtraction is the output of the brand extraction stage.
type BrandExtraction struct {
	Brands     []common.Brand `json:"brands"`
	Confidence float64        `json:"confidence"`
}

// CategoryResult is the output of the category identification stage.
type CategoryResult struct {
	Primary    string   `json:"primary_category"`
	Secondary  []string `json:"secondary_categories"`
	Confidence float64  `json:"confidence"`
}

// CitationExtraction is the output of the citation extraction stage.
type CitationExtraction struct {
	Citations  []common.Citation `json:"citations"`
	Confidence float64           `json:"confidence"`
}

// ExtractBrands extracts every brand mentioned in text. Names are
// normalized and deduplicated, and the subject brand is guaranteed to be
// present in the output even when the model missed it. On failure the
// returned extraction is empty with zero confidence and the error wraps
// common.ErrExtractionFailed.
func (e *Extractor) ExtractBrands(ctx context.Context, subject, text string) (BrandExtraction, error) {
	logger.Info("[Extract] Extracting brands", "subject", subject)

	prompt := fmt.Sprintf(ai.ExtractBrandsPrompt, subject, util.CleanText(text))

	var out BrandExtraction
	err := e.generate(
		ctx,
		"brand_extraction",
		"Brands and companies mentioned in a text, with mention counts, snippets, and aliases",
		prompt,
		&out,
	)
	if err != nil {
		logger.Error("[Extract] Brand extraction failed", "err", err)
		return BrandExtraction{Brands: []common.Brand{}},
			fmt.Errorf("%w: brands: %w", common.ErrExtractionFailed, err)
	}

	out.Brands = brand.Deduplicate(out.Brands)
	out.Brands = ensureSubject(out.Brands, subject)
	if out.Confidence == 0 {
		out.Confidence = defaultStageConfidence
	}

	logger.Info("[Extract] Extracted brands", "count", len(out.Brands), "confidence", out.Confidence)
	return out, nil
}

// ensureSubject prepends the subject brand when extraction did not surface
// it, so downstream stages always have an anchor to resolve against.
func ensureSubject(brands []common.Brand, subject string) []common.Brand {
	normalized := brand.Normalize(subject)
	for _, b := range brands {
		if strings.EqualFold(b.Name, normalized) || strings.EqualFold(b.Name, subject) {
			return brands
		}
	}
	logger.Warn("[Extract] Subject brand missing from extraction, adding it", "subject", subject)
	return append([]common.Brand{{Name: normalized, Mentions: 1}}, brands...)
}

// IdentifyCategory determines the primary industry category of the text
// from the subject brand's perspective. Falls back to DefaultCategory at
// zero confidence when the model errors, with the error wrapping
// common.ErrExtractionFailed.
func (e *Extractor) IdentifyCategory(ctx context.Context, subject, text string) (CategoryResult, error) {
	logger.Info("[Extract] Identifying category", "subject", subject)

	prompt := fmt.Sprintf(ai.CategoryPrompt, subject, util.CleanText(text))

	var out CategoryResult
	err := e.generate(
		ctx,
		"category_identification",
		"Primary and secondary industry categories of a text",
		prompt,
		&out,
	)
	if err != nil {
		logger.Error("[Extract] Category identification failed", "err", err)
		return CategoryResult{Primary: DefaultCategory, Secondary: []string{}},
			fmt.Errorf("%w: category: %w", common.ErrExtractionFailed, err)
	}

	if strings.TrimSpace(out.Primary) == "" {
		out.Primary = DefaultCategory
	}
	if out.Secondary == nil {
		out.Secondary = []string{}
	}
	if out.Confidence == 0 {
		out.Confidence = defaultStageConfidence
	}

	logger.Info("[Extract] Identified category", "category", out.Primary, "confidence", out.Confidence)
	return out, nil
}
