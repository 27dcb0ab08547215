package common

import (
	"strings"

	"github.com/signalhouse/brandgraph/pkg/logger"
)

// RelationshipType classifies how one brand relates to another.
type RelationshipType string

const (
	RelCompetitor RelationshipType = "competitor"
	RelPartner    RelationshipType = "partner"
	RelCustomer   RelationshipType = "customer"
	RelSupplier   RelationshipType = "supplier"
	RelSubsidiary RelationshipType = "subsidiary"
	RelParent     RelationshipType = "parent"
	RelInvestor   RelationshipType = "investor"
	RelNeutral    RelationshipType = "neutral"
	RelUnknown    RelationshipType = "unknown"
)

var relationshipTypes = map[string]RelationshipType{
	string(RelCompetitor): RelCompetitor,
	string(RelPartner):    RelPartner,
	string(RelCustomer):   RelCustomer,
	string(RelSupplier):   RelSupplier,
	string(RelSubsidiary): RelSubsidiary,
	string(RelParent):     RelParent,
	string(RelInvestor):   RelInvestor,
	string(RelNeutral):    RelNeutral,
	string(RelUnknown):    RelUnknown,
}

// ParseRelationshipType maps a raw string onto the fixed enumeration.
// Unrecognized input falls back to RelUnknown; the fallback is logged,
// never raised as an error.
func ParseRelationshipType(raw string) RelationshipType {
	if t, ok := relationshipTypes[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t
	}
	logger.Warn("Unknown relationship type, falling back", "value", raw, "fallback", RelUnknown)
	return RelUnknown
}

// RecordOrigin tags where a relationship record came from.
type RecordOrigin string

const (
	OriginStore     RecordOrigin = "graph_db"
	OriginWebSearch RecordOrigin = "web_search"
	OriginInference RecordOrigin = "llm_inference"
)

// CitationType classifies a citation.
type CitationType string

const (
	CitationReport       CitationType = "report"
	CitationArticle      CitationType = "article"
	CitationStatement    CitationType = "statement"
	CitationStudy        CitationType = "study"
	CitationCaseStudy    CitationType = "case_study"
	CitationWhitepaper   CitationType = "whitepaper"
	CitationAnnouncement CitationType = "announcement"
	CitationBlogPost     CitationType = "blog_post"
	CitationSocialMedia  CitationType = "social_media"
	CitationOther        CitationType = "other"
)

var citationTypes = map[string]CitationType{
	string(CitationReport):       CitationReport,
	string(CitationArticle):      CitationArticle,
	string(CitationStatement):    CitationStatement,
	string(CitationStudy):        CitationStudy,
	string(CitationCaseStudy):    CitationCaseStudy,
	string(CitationWhitepaper):   CitationWhitepaper,
	string(CitationAnnouncement): CitationAnnouncement,
	string(CitationBlogPost):     CitationBlogPost,
	string(CitationSocialMedia):  CitationSocialMedia,
	string(CitationOther):        CitationOther,
}

// ParseCitationType maps a raw string onto the citation enumeration,
// falling back to CitationOther for anything unrecognized.
func ParseCitationType(raw string) CitationType {
	if t, ok := citationTypes[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t
	}
	logger.Warn("Unknown citation type, falling back", "value", raw, "fallback", CitationOther)
	return CitationOther
}
