package common

import "github.com/google/uuid"

// EntityType classifies a graph node. The set is closed: every entity
// carries exactly one of these six values, fixed at creation. Entities of
// different types are never merge candidates.
type EntityType string

const (
	EntityPerson       EntityType = "PERSON"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityConcept      EntityType = "CONCEPT"
	EntityDate         EntityType = "DATE"
	EntityPaper        EntityType = "PAPER"
	EntityLocation     EntityType = "LOCATION"
)

// EntityTypes lists every valid entity type, in the order used for prompts.
var EntityTypes = []EntityType{
	EntityPerson,
	EntityOrganization,
	EntityConcept,
	EntityDate,
	EntityPaper,
	EntityLocation,
}

// ParseEntityType maps a raw string onto the closed enum.
// The second return value reports whether the input was a known type.
func ParseEntityType(s string) (EntityType, bool) {
	t := EntityType(s)
	for _, known := range EntityTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// TextSegment is one ordered chunk of source text. Index is the 0-based
// position among the chunks produced from a single document. Segments are
// immutable once created and live for one pipeline invocation.
type TextSegment struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// SourceSnippet is the local context an entity mention was found in.
// Snippets are append-only once attached to an entity and accumulate
// across merges.
type SourceSnippet struct {
	DocumentID   string `json:"doc_id"`
	Text         string `json:"text"`
	SegmentIndex int    `json:"segment_index"`
}

// ExtractedEntity is a pre-deduplication entity mention produced by the
// recognizer and enhancer stages. Multiple instances may refer to the same
// real-world entity; the deduplication engine resolves that later.
// Name is the surface form exactly as matched, never normalized in place.
type ExtractedEntity struct {
	Name       string          `json:"name"`
	Type       EntityType      `json:"type"`
	Confidence float64         `json:"confidence"`
	Sources    []SourceSnippet `json:"sources"`
	Aliases    []string        `json:"aliases"`
}

// CanonicalEntity is the final graph node: one merged representation of all
// mentions judged to refer to the same real-world thing. Label is the
// surface form of the highest-confidence pre-merge member of its cluster.
// A canonical entity is immutable after creation except for
// ImportanceScore, which depends on the final edge degree and is computed
// only after all relationships exist.
type CanonicalEntity struct {
	ID              uuid.UUID       `json:"id"`
	Label           string          `json:"label"`
	Type            EntityType      `json:"type"`
	Aliases         []string        `json:"aliases"`
	Confidence      float64         `json:"confidence"`
	Sources         []SourceSnippet `json:"sources"`
	ImportanceScore float64         `json:"importance_score"`
}

// RelationshipKind describes how an edge was derived.
type RelationshipKind string

const (
	KindCooccurrence RelationshipKind = "cooccurrence"
	KindSemantic     RelationshipKind = "semantic"
	KindExplicit     RelationshipKind = "explicit"
)

// RelationLabelGeneric is the default label for an edge that has not been
// upgraded to a specific relation type by the classifier stage.
const RelationLabelGeneric = "related_to"

// Relationship is an edge between two canonical entities. Co-occurrence
// edges are undirected in meaning but stored with a fixed source/target
// order (first-encountered ordering). Each qualifying entity pair produces
// exactly one edge; pairs are deduplicated at construction, never merged
// afterwards.
type Relationship struct {
	ID             uuid.UUID        `json:"id"`
	SourceEntityID uuid.UUID        `json:"source_entity_id"`
	TargetEntityID uuid.UUID        `json:"target_entity_id"`
	Kind           RelationshipKind `json:"kind"`
	RelationLabel  string           `json:"relation_label"`
	Weight         float64          `json:"weight"`
	Confidence     float64          `json:"confidence"`
	Examples       []string         `json:"examples"`
}

// ExtractResult is the combined output of one pipeline invocation.
type ExtractResult struct {
	Entities      []CanonicalEntity `json:"entities"`
	Relationships []Relationship    `json:"relationships"`
}
