package ai

const ExtractBrandsPrompt = `
# Task Context
You are tasked with extracting **brand and company mentions** from the provided text. The process must capture every brand explicitly present in the text, without omission.

# Background Data
- **Subject_brand:** [%s]

The subject brand is the company the text is primarily about. It must always appear in the output, even if the text refers to it only by an alias.

# Detailed Task Description & Rules
- Extract only brands and companies that are explicitly mentioned in the text. Do not add brands from outside knowledge.
- Count every mention of each brand, including mentions through aliases (e.g., "AWS" counts as a mention of "Amazon Web Services").
- For each brand, collect the sentences in which it appears as snippets. Keep snippets verbatim from the text.
- Record aliases: alternative names, abbreviations, or former names used for the brand in the text (e.g., "Meta" for "Meta Platforms", "X" for "Twitter").
- Product names alone are not brands unless the text treats them as a company (e.g., "iPhone" is not a brand, "Apple" is).
- Do not include generic terms such as "the company", "the firm", or industry categories.

# Examples
**Text:**
Apple and Samsung continue to battle for smartphone market share. Samsung supplies OLED panels to Apple despite the rivalry.

**Output:**
{
  "brands": [
    {
      "name": "Apple",
      "mentions": 2,
      "snippets": ["Apple and Samsung continue to battle for smartphone market share.", "Samsung supplies OLED panels to Apple despite the rivalry."],
      "aliases": []
    },
    {
      "name": "Samsung",
      "mentions": 2,
      "snippets": ["Apple and Samsung continue to battle for smartphone market share.", "Samsung supplies OLED panels to Apple despite the rivalry."],
      "aliases": []
    }
  ]
}

# Immediate Task Description or Request
Text to analyze:
%s

# Output Formatting
The output must be a single valid JSON object in this structure:
{
  "brands": [
    {
      "name": "string",
      "mentions": "integer",
      "snippets": ["string"],
      "aliases": ["string"]
    }
  ],
  "confidence": "float"
}
confidence is your overall confidence (0.0-1.0) that the extraction is complete and accurate.
Do not include any commentary, explanations, or text outside of the JSON.
Always return valid JSON, even if no brands are found (use an empty array in that case).
`

const CategoryPrompt = `
# Task Context
You are an expert at analyzing business and industry content. You are tasked with identifying the primary business category/industry being discussed, from the perspective of the subject brand.

# Background Data
- **Subject_brand:** [%s]

# Detailed Task Description & Rules
- primary_category is the main category in hierarchical format: lowercase with underscores, "industry/subcategory" (e.g., "technology/cloud_computing", "automotive/electric_vehicles", "finance/banking", "healthcare/pharmaceuticals", "retail/e_commerce").
- Be specific but not overly granular.
- The category scopes how relationships are interpreted: the same two companies can be competitors in one category and partners in another.
- If the text spans multiple industries, choose as primary the one most relevant to the subject brand and list the others in secondary_categories.
- If no category can be determined from the text, use "general/business".
- confidence is a numeric score (0.0-1.0) in the categorization.

# Immediate Task Description or Request
Text to analyze:
%s

# Output Formatting
Return a JSON object with this structure:
{
  "primary_category": "industry/subcategory",
  "secondary_categories": ["string"],
  "confidence": "float"
}
Do not include any commentary, explanations, or text outside of the JSON.
`

const CitationPrompt = `
# Task Context
You are an expert at identifying citations, sources, and references in text: named publications, reports, studies, articles, statements, announcements, and URLs. Extract both explicit citations (e.g., "according to Reuters") and implicit references.

# Background Data
The text contains the following URLs. Use them to enrich the citations:
%s

# Detailed Task Description & Rules
- Extract every citation present in the text, including indirect references.
- For each citation, provide:
  * source: name of the source (publication, organization, person, website)
  * text: the actual claim or information being cited, concise but informative
  * citation_type: exactly one of report, article, statement, study, case_study, whitepaper, announcement, blog_post, social_media, other
  * url: the associated URL if available, matched from the URLs above; empty string if none
  * date: publication date if mentioned, empty string otherwise
- Match URLs to their corresponding claims. Include the URL even when the source is also named.
- Do not invent citations, sources, or URLs that are not in the text.
- confidence is a single numeric score (0.0-1.0) for the extraction as a whole.

# Immediate Task Description or Request
Text to analyze:
%s

# Output Formatting
The output must be a single valid JSON object in this structure:
{
  "citations": [
    {
      "source": "string",
      "text": "string",
      "citation_type": "string",
      "url": "string",
      "date": "string"
    }
  ],
  "confidence": "float"
}
Do not include any commentary, explanations, or text outside of the JSON.
Always return valid JSON, even if no citations are found (use an empty array in that case).
`

const InferRelationshipPrompt = `
# Task Context
You are tasked with determining the **business relationship** between two brands within a specific industry category, based on the evidence provided below.

# Background Data
- **Source_brand:** [%s]
- **Target_brand:** [%s]
- **Category:** [%s]

## Evidence from the analyzed text:
%s

## Evidence from web search:
%s

# Detailed Task Description & Rules
- Determine the relationship between the source brand and the target brand from the source brand's perspective, scoped to the given category.
- relationship_type must be exactly one of: competitor, partner, customer, supplier, subsidiary, parent, investor, neutral, unknown.
- Relationships are context-dependent: two companies can be competitors in one category and partners in another. Judge only within the given category.
- If the evidence shows no meaningful business relationship, use "neutral". If the evidence is insufficient to judge, use "unknown".
- relationship_context is a short subcategory token that scopes the relationship: lowercase with underscores, no spaces or sentences (e.g., "consumer_smartphones", "cloud_computing", "display_panels", "mobile_payments"). Use "general" if nothing more specific applies. The same pair of brands can hold different relationships under different context tokens, so keep the token stable and reusable, not a free-form description.
- evidence lists the specific statements from the provided evidence that support your conclusion. Quote or closely paraphrase; do not invent evidence.
- reasoning explains in one or two sentences how the evidence leads to the conclusion.
- sentiment characterizes the tone of the relationship: "positive", "negative", or "neutral".
- confidence is a numeric score (0.0-1.0):
  * 0.9-1.0: explicit, direct statements of the relationship (e.g., "X acquired Y", "X sued Y over patents")
  * 0.7-0.8: strong indirect evidence (e.g., consistent head-to-head product comparisons)
  * 0.4-0.6: suggestive but ambiguous evidence
  * 0.0-0.3: little or contradictory evidence
- Base your answer only on the provided evidence. Do not use outside knowledge of the companies.

# Output Formatting
Return a JSON object with this structure:
{
  "relationship_type": "string",
  "relationship_context": "string",
  "confidence": "float",
  "evidence": ["string"],
  "reasoning": "string",
  "sentiment": "string"
}
Do not include any commentary, explanations, or text outside of the JSON.
`
