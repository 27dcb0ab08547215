package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/signalhouse/brandgraph/pkg/ai"
	"github.com/signalhouse/brandgraph/pkg/common"
	"github.com/signalhouse/brandgraph/pkg/logger"
	"github.com/signalhouse/brandgraph/pkg/search"
	"github.com/signalhouse/brandgraph/pkg/store"
)

// DefaultConfidenceThreshold is the confidence below which a resolved
// relationship is flagged for review.
const DefaultConfidenceThreshold = 0.7

// DefaultResolveConcurrency bounds how many brands are resolved in parallel.
const DefaultResolveConcurrency = 4

// Per-call timeouts on the resolver's outbound tiers. A timed-out call takes
// that tier's failure path instead of stalling the run.
const (
	storeCallTimeout  = 15 * time.Second
	searchCallTimeout = 30 * time.Second
	inferCallTimeout  = 2 * time.Minute
)

// RelationshipSearcher is the web search capability the resolver falls back
// to when the store has no record. *search.Client satisfies it.
type RelationshipSearcher interface {
	SearchRelationship(ctx context.Context, brandA, brandB, category string) ([]common.SearchResult, error)
}

// Resolver classifies the relationship between the subject brand and each
// extracted brand through a three-tier chain: the relation store first, then
// web search for evidence, then generative inference over whatever evidence
// exists. Every tier degrades to the next; resolution never fails a run.
type Resolver struct {
	subject     string
	store       store.RelationStore
	search      RelationshipSearcher
	client      ai.InferenceClient
	threshold   float64
	concurrency int
}

type NewResolverParams struct {
	SubjectBrand        string
	Store               store.RelationStore
	Search              RelationshipSearcher
	Inference           ai.InferenceClient
	ConfidenceThreshold float64 // Defaults to DefaultConfidenceThreshold
	Concurrency         int     // Defaults to DefaultResolveConcurrency
}

func NewResolver(params NewResolverParams) *Resolver {
	threshold := params.ConfidenceThreshold
	if threshold == 0 {
		threshold = DefaultConfidenceThreshold
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultResolveConcurrency
	}
	return &Resolver{
		subject:     params.SubjectBrand,
		store:       params.Store,
		search:      params.Search,
		client:      params.Inference,
		threshold:   threshold,
		concurrency: concurrency,
	}
}

// inferenceVerdict mirrors the JSON shape the inference prompt requests.
type inferenceVerdict struct {
	RelationshipType    string   `json:"relationship_type"`
	RelationshipContext string   `json:"relationship_context"`
	Confidence          float64  `json:"confidence"`
	Evidence            []string `json:"evidence"`
	Reasoning           string   `json:"reasoning"`
	Sentiment           string   `json:"sentiment"`
}

// ResolveAll resolves the relationship between the subject brand and every
// other brand in the list, in parallel. The subject itself is skipped.
// Output order follows input order regardless of completion order.
func (r *Resolver) ResolveAll(
	ctx context.Context,
	brands []common.Brand,
	category string,
	text string,
) []common.Relationship {
	targets := make([]common.Brand, 0, len(brands))
	for _, b := range brands {
		if strings.EqualFold(b.Name, r.subject) {
			continue
		}
		targets = append(targets, b)
	}

	logger.Info("[Resolve] Resolving relationships", "subject", r.subject, "targets", len(targets))

	results := make([]common.Relationship, len(targets))
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, b := range targets {
		g.Go(func() error {
			results[i] = r.Resolve(ctx, b, category, text)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Resolve classifies the relationship between the subject brand and one
// target brand within the given category.
func (r *Resolver) Resolve(
	ctx context.Context,
	b common.Brand,
	category string,
	text string,
) common.Relationship {
	logger.Info("[Resolve] Classifying", "source", r.subject, "target", b.Name, "category", category)

	lookupCtx, cancelLookup := context.WithTimeout(ctx, storeCallTimeout)
	stored, err := r.store.Lookup(lookupCtx, r.subject, b.Name, category, "")
	cancelLookup()
	if err != nil {
		logger.Warn("[Resolve] Store lookup failed, falling through to search", "err", err)
	} else if len(stored) > 0 {
		logger.Info("[Resolve] Found stored relationship", "type", stored[0].Type, "context", stored[0].Context)
		return r.fromStore(b, category, stored[0])
	}

	searchCtx, cancelSearch := context.WithTimeout(ctx, searchCallTimeout)
	searchResults, err := r.search.SearchRelationship(searchCtx, r.subject, b.Name, category)
	cancelSearch()
	if err != nil {
		logger.Warn("[Resolve] Web search failed, inferring from text alone", "err", err)
		searchResults = nil
	}

	return r.infer(ctx, b, category, text, searchResults)
}

// fromStore builds a relationship record from a stored edge, re-anchoring
// the evidence in the current text's snippets for this brand. The stored
// confidence replays verbatim, including a genuine 0.0; backends supply a
// default only when the stored edge carries no confidence at all.
func (r *Resolver) fromStore(b common.Brand, category string, rec common.Relationship) common.Relationship {
	confidence := rec.Confidence
	sentiment := rec.Sentiment
	if sentiment == "" {
		sentiment = "neutral"
	}
	relContext := rec.Context
	if relContext == "" {
		relContext = "general"
	}
	evidence := b.Snippets
	if len(evidence) == 0 {
		evidence = []string{"From knowledge graph"}
	}

	return common.Relationship{
		Source:     r.subject,
		Target:     b.Name,
		Type:       rec.Type,
		Category:   category,
		Context:    relContext,
		Confidence: confidence,
		Evidence:   evidence,
		Origin:     common.OriginStore,
		Sentiment:  sentiment,
		Reasoning: fmt.Sprintf(
			"Retrieved from knowledge graph. Stored relationship type: %s in context: %s",
			rec.Type, relContext,
		),
		Flagged:   confidence < r.threshold,
		UpdatedAt: time.Now(),
	}
}

// infer classifies the relationship with the generative client over the text
// snippets and any web search evidence, then persists the verdict. A failed
// inference yields an unknown, flagged record instead of an error.
func (r *Resolver) infer(
	ctx context.Context,
	b common.Brand,
	category string,
	text string,
	searchResults []common.SearchResult,
) common.Relationship {
	textEvidence := strings.Join(b.Snippets, "\n")
	if textEvidence == "" {
		textEvidence = text
	}
	if textEvidence == "" {
		textEvidence = "No specific context"
	}

	prompt := fmt.Sprintf(
		ai.InferRelationshipPrompt,
		r.subject, b.Name, category,
		textEvidence,
		search.Synthesize(searchResults),
	)

	inferCtx, cancelInfer := context.WithTimeout(ctx, inferCallTimeout)
	defer cancelInfer()

	var verdict inferenceVerdict
	err := r.client.GenerateCompletionWithFormat(
		inferCtx,
		"relationship_inference",
		"Business relationship between two brands within a category",
		prompt,
		&verdict,
	)
	if err != nil {
		logger.Error("[Resolve] Inference failed", "source", r.subject, "target", b.Name, "err", err)
		return common.Relationship{
			Source:     r.subject,
			Target:     b.Name,
			Type:       common.RelUnknown,
			Category:   category,
			Context:    "unknown",
			Confidence: 0.0,
			Evidence:   []string{"Classification failed"},
			Origin:     common.OriginInference,
			Reasoning:  fmt.Sprintf("Error during classification: %s", err),
			Flagged:    true,
			UpdatedAt:  time.Now(),
		}
	}

	origin := common.OriginInference
	if len(searchResults) > 0 {
		origin = common.OriginWebSearch
	}
	relContext := strings.TrimSpace(verdict.RelationshipContext)
	if relContext == "" {
		relContext = "general"
	}
	sentiment := verdict.Sentiment
	if sentiment == "" {
		sentiment = "neutral"
	}
	evidence := verdict.Evidence
	if len(evidence) == 0 {
		evidence = []string{"No evidence provided"}
	}

	rel := common.Relationship{
		Source:     r.subject,
		Target:     b.Name,
		Type:       common.ParseRelationshipType(verdict.RelationshipType),
		Category:   category,
		Context:    relContext,
		Confidence: verdict.Confidence,
		Evidence:   evidence,
		Origin:     origin,
		Sentiment:  sentiment,
		Reasoning:  verdict.Reasoning,
		Flagged:    verdict.Confidence < r.threshold,
		UpdatedAt:  time.Now(),
	}

	upsertCtx, cancelUpsert := context.WithTimeout(ctx, storeCallTimeout)
	defer cancelUpsert()
	if err := r.store.UpsertRelationship(upsertCtx, rel); err != nil {
		logger.Warn("[Resolve] Failed to persist relationship", "source", rel.Source, "target", rel.Target, "err", err)
	}

	return rel
}
