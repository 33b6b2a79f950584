package graph

import (
	"unicode/utf8"

	"github.com/inkwell-labs/cartograph/internal/util"
	"github.com/inkwell-labs/cartograph/pkg/common"
	"github.com/inkwell-labs/cartograph/pkg/logger"

	"github.com/google/uuid"
)

const (
	maxRelationshipExamples = 3
	exampleMaxLength        = 200
	cooccurrenceConfidence  = 0.7
)

// InferCooccurrences builds relationships between entities that appear in the
// same segments. The weight is the number of shared segments over the size of
// the smaller occurrence set, so an entity mentioned once alongside a
// frequent one still scores high. Pairs below minWeight are dropped.
//
// Each relationship carries the generic "related_to" label; classification
// upgrades labels in a later pass.
func InferCooccurrences(
	entities []common.CanonicalEntity,
	segments []common.TextSegment,
	minWeight float64,
) []common.Relationship {
	occurrences := make([]map[int]bool, len(entities))
	for i, e := range entities {
		occurrences[i] = make(map[int]bool)
		for _, s := range e.Sources {
			occurrences[i][s.SegmentIndex] = true
		}
	}

	relationships := make([]common.Relationship, 0)
	for i := 0; i < len(entities); i++ {
		if len(occurrences[i]) == 0 {
			continue
		}
		for j := i + 1; j < len(entities); j++ {
			if len(occurrences[j]) == 0 {
				continue
			}

			shared := sharedSegments(occurrences[i], occurrences[j], len(segments))
			if len(shared) == 0 {
				continue
			}

			weight := float64(len(shared)) / float64(util.Min(len(occurrences[i]), len(occurrences[j])))
			if weight < minWeight {
				continue
			}

			relationships = append(relationships, common.Relationship{
				ID:             uuid.New(),
				SourceEntityID: entities[i].ID,
				TargetEntityID: entities[j].ID,
				Kind:           common.KindCooccurrence,
				RelationLabel:  common.RelationLabelGeneric,
				Weight:         weight,
				Confidence:     cooccurrenceConfidence,
				Examples:       exampleSnippets(shared, segments),
			})
		}
	}

	logger.Debug("[Relate] inferred co-occurrence relationships", "entities", len(entities), "relationships", len(relationships))

	return relationships
}

// sharedSegments returns the intersection of two occurrence sets in ascending
// segment order.
func sharedSegments(a, b map[int]bool, segmentCount int) []int {
	shared := make([]int, 0)
	for idx := 0; idx < segmentCount; idx++ {
		if a[idx] && b[idx] {
			shared = append(shared, idx)
		}
	}
	return shared
}

func exampleSnippets(shared []int, segments []common.TextSegment) []string {
	examples := make([]string, 0, maxRelationshipExamples)
	for _, idx := range shared {
		if len(examples) == maxRelationshipExamples {
			break
		}
		if idx < 0 || idx >= len(segments) {
			continue
		}
		text := segments[idx].Text
		if len(text) > exampleMaxLength {
			text = cutAtRuneBoundary(text, exampleMaxLength-3) + "..."
		}
		examples = append(examples, text)
	}
	return examples
}

// cutAtRuneBoundary returns a prefix of s at most max bytes long, backed off
// so it never splits a multi-byte rune.
func cutAtRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
