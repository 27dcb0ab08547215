package analysis

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/signalhouse/brandgraph/internal/util"
	"github.com/signalhouse/brandgraph/pkg/ai"
	"github.com/signalhouse/brandgraph/pkg/common"
	"github.com/signalhouse/brandgraph/pkg/logger"
	"github.com/signalhouse/brandgraph/pkg/store"
)

// DefaultLowConfidenceThreshold is the confidence below which an extraction
// stage as a whole is flagged for review.
const DefaultLowConfidenceThreshold = 0.5

// Pipeline orchestrates one analysis run: brand and category extraction in
// parallel, citation extraction, relationship resolution, and a final flag
// scan over everything the run produced.
type Pipeline struct {
	subject      string
	extractor    *Extractor
	resolver     *Resolver
	threshold    float64
	lowThreshold float64
}

type NewPipelineParams struct {
	SubjectBrand           string
	Inference              ai.InferenceClient
	Store                  store.RelationStore
	Search                 RelationshipSearcher
	ConfidenceThreshold    float64 // Defaults to DefaultConfidenceThreshold
	LowConfidenceThreshold float64 // Defaults to DefaultLowConfidenceThreshold
	ResolveConcurrency     int     // Defaults to DefaultResolveConcurrency
}

func NewPipeline(params NewPipelineParams) *Pipeline {
	threshold := params.ConfidenceThreshold
	if threshold == 0 {
		threshold = DefaultConfidenceThreshold
	}
	lowThreshold := params.LowConfidenceThreshold
	if lowThreshold == 0 {
		lowThreshold = DefaultLowConfidenceThreshold
	}
	return &Pipeline{
		subject:   params.SubjectBrand,
		extractor: NewExtractor(params.Inference),
		resolver: NewResolver(NewResolverParams{
			SubjectBrand:        params.SubjectBrand,
			Store:               params.Store,
			Search:              params.Search,
			Inference:           params.Inference,
			ConfidenceThreshold: threshold,
			Concurrency:         params.ResolveConcurrency,
		}),
		threshold:    threshold,
		lowThreshold: lowThreshold,
	}
}

// Analyze runs the full pipeline over text. Stages degrade rather than
// fail, so a result always comes back; failures surface as empty stage
// output with zero confidence, which the flag scan then marks for review.
func (p *Pipeline) Analyze(ctx context.Context, text string) common.AnalysisResult {
	logger.Info("[Pipeline] Starting analysis", "subject", p.subject)

	cleaned := util.CleanText(text)

	var brandsOut BrandExtraction
	var categoryOut CategoryResult
	var g errgroup.Group
	g.SetLimit(2)
	g.Go(func() error {
		var err error
		brandsOut, err = p.extractor.ExtractBrands(ctx, p.subject, cleaned)
		return err
	})
	g.Go(func() error {
		var err error
		categoryOut, err = p.extractor.IdentifyCategory(ctx, p.subject, cleaned)
		return err
	})
	// Stage failures already degraded to fallback output; the flag scan
	// surfaces them.
	_ = g.Wait()

	names := make([]string, 0, len(brandsOut.Brands))
	for _, b := range brandsOut.Brands {
		names = append(names, b.Name)
	}
	citationsOut, _ := p.extractor.ExtractCitations(ctx, text, names)

	relationships := p.resolver.ResolveAll(ctx, brandsOut.Brands, categoryOut.Primary, cleaned)

	flagged := p.flagScan(brandsOut, citationsOut, categoryOut, relationships)

	result := common.AnalysisResult{
		SubjectBrand:  p.subject,
		Category:      categoryOut.Primary,
		Brands:        brandsOut.Brands,
		Relationships: relationships,
		Citations:     citationsOut.Citations,
		FlaggedItems:  flagged,
		Metadata: map[string]any{
			"brand_extraction_confidence":    brandsOut.Confidence,
			"citation_extraction_confidence": citationsOut.Confidence,
			"category_confidence":            categoryOut.Confidence,
			"secondary_categories":           categoryOut.Secondary,
			"total_brands":                   len(brandsOut.Brands),
			"total_relationships":            len(relationships),
			"total_citations":                len(citationsOut.Citations),
			"flagged_count":                  len(flagged),
		},
	}

	logger.Info("[Pipeline] Analysis complete",
		"brands", len(result.Brands),
		"relationships", len(result.Relationships),
		"citations", len(result.Citations),
		"flagged", len(result.FlaggedItems),
	)

	return result
}

// flagScan collects everything from the run that needs human review: stages
// whose overall confidence came in below the low threshold, and every
// relationship the resolver flagged.
func (p *Pipeline) flagScan(
	brandsOut BrandExtraction,
	citationsOut CitationExtraction,
	categoryOut CategoryResult,
	relationships []common.Relationship,
) []common.FlaggedItem {
	var flagged []common.FlaggedItem

	if brandsOut.Confidence < p.lowThreshold {
		confidence := brandsOut.Confidence
		flagged = append(flagged, common.FlaggedItem{
			Kind:           common.FlagBrand,
			Item:           "brand_extraction",
			Reason:         fmt.Sprintf("Low brand extraction confidence (%.2f)", confidence),
			Confidence:     &confidence,
			RequiresReview: true,
		})
	}

	if citationsOut.Confidence < p.lowThreshold {
		confidence := citationsOut.Confidence
		flagged = append(flagged, common.FlaggedItem{
			Kind:           common.FlagCitation,
			Item:           "citation_extraction",
			Reason:         fmt.Sprintf("Low citation extraction confidence (%.2f)", confidence),
			Confidence:     &confidence,
			RequiresReview: true,
		})
	}

	if categoryOut.Confidence < p.lowThreshold {
		confidence := categoryOut.Confidence
		flagged = append(flagged, common.FlaggedItem{
			Kind:           common.FlagBrand,
			Item:           "category_identification",
			Reason:         fmt.Sprintf("Low category confidence (%.2f)", confidence),
			Confidence:     &confidence,
			RequiresReview: true,
		})
	}

	for _, rel := range relationships {
		if !rel.Flagged {
			continue
		}
		confidence := rel.Confidence
		flagged = append(flagged, common.FlaggedItem{
			Kind:           common.FlagRelationship,
			Item:           fmt.Sprintf("%s-%s", rel.Source, rel.Target),
			Reason:         fmt.Sprintf("Confidence below threshold (%.2f < %.2f)", confidence, p.threshold),
			Confidence:     &confidence,
			RequiresReview: true,
		})
	}

	return flagged
}
