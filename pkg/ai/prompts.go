package ai

const EnhancePrompt = `
# Task Context
You are an expert knowledge graph extractor. Your task is to identify and extract meaningful entities from the provided text.

# Background Data
- **Entity_types:** [%s]

# Detailed Task Description & Rules
- PERSON: Real people (e.g., "Jennifer Doudna", "Sam Altman").
- ORGANIZATION: Companies, institutions, groups as entities (e.g., "Google", "Microsoft", "University of California"). NOT their products.
- CONCEPT: Abstract ideas, technologies, fields of study, scientific terms, products, platforms, services (e.g., "CRISPR", "Machine Learning", "AWS", "GPT-4", "Python").
- DATE: Specific dates or years (e.g., "2023", "January 1st", "yesterday").
- PAPER: Research papers, books, or distinct creative works (e.g., "Attention Is All You Need").
- LOCATION: Cities, countries, regions, physical places (e.g., "San Francisco", "Mars", "Silicon Valley").

## Constraints
1. Deduplicate entities within the text (merge variations to the most canonical name).
2. Do not extract generic nouns (e.g., "technology", "researchers") unless they are specific concepts.
3. If a term is ambiguous, use context to decide.
4. "confidence" is your certainty (0.0-1.0) that the span is a real entity of the given type.

# Examples
Input:
"Microsoft released Azure in 2010. Satya Nadella called it the future of cloud computing."

Output:
{
  "entities": [
    {"name": "Microsoft", "type": "ORGANIZATION", "confidence": 0.99},
    {"name": "Azure", "type": "CONCEPT", "confidence": 0.98},
    {"name": "2010", "type": "DATE", "confidence": 0.99},
    {"name": "Satya Nadella", "type": "PERSON", "confidence": 0.99},
    {"name": "cloud computing", "type": "CONCEPT", "confidence": 0.95}
  ]
}

Input:
"The study of epigenetics reveals how environment affects gene expression."

Output:
{
  "entities": [
    {"name": "epigenetics", "type": "CONCEPT", "confidence": 0.95},
    {"name": "gene expression", "type": "CONCEPT", "confidence": 0.92}
  ]
}

# Output Formatting
Return a JSON object with a single key "entities" containing a list of objects. Each object must have:
- "name": The canonical name of the entity (string).
- "type": One of the provided entity types.
- "confidence": A value between 0.0 and 1.0.
Output strictly valid JSON. Do NOT include markdown formatting.
Always return valid JSON, even if no entities are found (use an empty array in that case).

# Immediate Task Description or Request
Extract entities from the text provided by the user.
`

const ClassifyPrompt = `
# Task Context
You are an assistant that classifies the relationship between two entities in a knowledge graph based on text snippets where both appear.

# Background Data
- Entity 1: %s (TYPE: %s)
- Entity 2: %s (TYPE: %s)

Context Snippets:
%s

# Detailed Task Description & Rules
Classify the relationship into ONE of these types (use EXACT lowercase format):
- founded (person founded organization, or founded in year/location)
- works_at (person works at organization)
- ceo_of (person is CEO of organization)
- located_in (entity located in place)
- headquartered_in (organization HQ in location)
- uses (entity uses technology/concept)
- part_of (entity is part of another)
- authored (person wrote paper/book)
- created (entity created another)
- developed (entity developed concept/technology)
- studied_at (person studied at institution)
- colleague_of (person works with person)
- collaborated_with (entities worked together)
- acquired_by (organization acquired by another)
- born_in (person born in location)
- lives_in (person lives in location)
- related_to (ONLY if no specific type fits)

## Rules
1. Look at the TEXT CAREFULLY - if it says "founded", use "founded".
2. Consider entity types - PERSON+ORGANIZATION often means founded/works_at/ceo_of.
3. ORGANIZATION+LOCATION means located_in or headquartered_in.
4. PREFER SPECIFIC TYPES - only use "related_to" if truly unclear.
5. Return the relationship type in LOWERCASE.

# Output Formatting
Return JSON only (no markdown, no extra text):
{
  "type": "relationship_type",
  "confidence": 0.8
}
`
