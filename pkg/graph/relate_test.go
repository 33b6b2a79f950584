package graph

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/inkwell-labs/cartograph/pkg/common"

	"github.com/google/uuid"
)

func canonicalWithSegments(label string, typ common.EntityType, segments ...int) common.CanonicalEntity {
	sources := make([]common.SourceSnippet, 0, len(segments))
	for _, s := range segments {
		sources = append(sources, common.SourceSnippet{
			DocumentID:   "doc-1",
			Text:         label + " snippet",
			SegmentIndex: s,
		})
	}
	return common.CanonicalEntity{
		ID:         uuid.New(),
		Label:      label,
		Type:       typ,
		Confidence: 0.8,
		Sources:    sources,
	}
}

func textSegments(texts ...string) []common.TextSegment {
	segments := make([]common.TextSegment, 0, len(texts))
	for i, t := range texts {
		segments = append(segments, common.TextSegment{Index: i, Text: t})
	}
	return segments
}

func TestInferCooccurrencesWeight(t *testing.T) {
	// A appears in segments {0,1,2}, B in {1,2,3,4}. Shared = {1,2}, so the
	// weight is 2/min(3,4) = 2/3.
	a := canonicalWithSegments("Ada Lovelace", common.EntityPerson, 0, 1, 2)
	b := canonicalWithSegments("Analytical Engine", common.EntityConcept, 1, 2, 3, 4)
	segments := textSegments("s0", "s1", "s2", "s3", "s4")

	relationships := InferCooccurrences([]common.CanonicalEntity{a, b}, segments, 0.3)
	if len(relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(relationships))
	}

	rel := relationships[0]
	if math.Abs(rel.Weight-2.0/3.0) > 1e-12 {
		t.Errorf("expected weight 2/3, got %f", rel.Weight)
	}
	if rel.SourceEntityID != a.ID || rel.TargetEntityID != b.ID {
		t.Error("relationship endpoints do not match the input entities")
	}
	if rel.Kind != common.KindCooccurrence {
		t.Errorf("expected cooccurrence kind, got %s", rel.Kind)
	}
	if rel.RelationLabel != common.RelationLabelGeneric {
		t.Errorf("expected generic label, got %q", rel.RelationLabel)
	}
	if rel.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %f", rel.Confidence)
	}
}

func TestInferCooccurrencesThreshold(t *testing.T) {
	// Shared = {0}, weight = 1/min(4,4) = 0.25, below the 0.3 threshold.
	a := canonicalWithSegments("Alpha", common.EntityConcept, 0, 1, 2, 3)
	b := canonicalWithSegments("Beta", common.EntityConcept, 0, 4, 5, 6)
	segments := textSegments("s0", "s1", "s2", "s3", "s4", "s5", "s6")

	relationships := InferCooccurrences([]common.CanonicalEntity{a, b}, segments, 0.3)
	if len(relationships) != 0 {
		t.Fatalf("expected no relationships below threshold, got %d", len(relationships))
	}
}

func TestInferCooccurrencesNoSharedSegments(t *testing.T) {
	a := canonicalWithSegments("Alpha", common.EntityConcept, 0)
	b := canonicalWithSegments("Beta", common.EntityConcept, 1)
	segments := textSegments("s0", "s1")

	relationships := InferCooccurrences([]common.CanonicalEntity{a, b}, segments, 0.3)
	if len(relationships) != 0 {
		t.Fatalf("expected no relationships, got %d", len(relationships))
	}
}

func TestInferCooccurrencesExamples(t *testing.T) {
	long := strings.Repeat("x", 250)
	a := canonicalWithSegments("Alpha", common.EntityConcept, 0, 1, 2, 3, 4)
	b := canonicalWithSegments("Beta", common.EntityConcept, 0, 1, 2, 3, 4)
	segments := textSegments(long, "s1", "s2", "s3", "s4")

	relationships := InferCooccurrences([]common.CanonicalEntity{a, b}, segments, 0.3)
	if len(relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(relationships))
	}

	examples := relationships[0].Examples
	if len(examples) != 3 {
		t.Fatalf("expected at most 3 examples, got %d", len(examples))
	}
	if len(examples[0]) != 200 || !strings.HasSuffix(examples[0], "...") {
		t.Errorf("expected first example truncated to 200 chars with ellipsis, got len %d", len(examples[0]))
	}
	if examples[1] != "s1" || examples[2] != "s2" {
		t.Errorf("expected examples in ascending segment order, got %v", examples[1:])
	}
}

func TestInferCooccurrencesExamplesKeepRuneBoundary(t *testing.T) {
	// 150 two-byte runes (300 bytes); a naive byte cut at 197 would land
	// mid-rune and emit invalid UTF-8.
	long := strings.Repeat("é", 150)
	a := canonicalWithSegments("Alpha", common.EntityConcept, 0)
	b := canonicalWithSegments("Beta", common.EntityConcept, 0)
	segments := textSegments(long)

	relationships := InferCooccurrences([]common.CanonicalEntity{a, b}, segments, 0.3)
	if len(relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(relationships))
	}

	example := relationships[0].Examples[0]
	if !utf8.ValidString(example) {
		t.Errorf("expected valid UTF-8 after truncation, got %q", example)
	}
	if !strings.HasSuffix(example, "...") {
		t.Errorf("expected ellipsis suffix, got %q", example)
	}
	if len(example) > exampleMaxLength {
		t.Errorf("expected at most %d bytes, got %d", exampleMaxLength, len(example))
	}
}

func TestInferCooccurrencesEmptyInput(t *testing.T) {
	relationships := InferCooccurrences(nil, nil, 0.3)
	if len(relationships) != 0 {
		t.Fatalf("expected no relationships for empty input, got %d", len(relationships))
	}
}
