package graph

import (
	"errors"

	"github.com/inkwell-labs/cartograph/pkg/common"
	"github.com/inkwell-labs/cartograph/pkg/logger"

	"github.com/google/uuid"
)

// disjointSet is a path-compressed union-find over entity indices. Merge
// clusters are the transitive closure of the pairwise merge decision, so a
// chain of abbreviation/alias evidence collapses into one cluster even when
// the endpoints alone would not clear any threshold.
type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &disjointSet{parent: parent}
}

func (d *disjointSet) find(i int) int {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]]
		i = d.parent[i]
	}
	return i
}

func (d *disjointSet) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra != rb {
		d.parent[rb] = ra
	}
}

// shouldMerge decides pairwise mergeability. Entities of different types
// never merge. Within a type, any one of three signals suffices: string
// similarity, embedding cosine similarity (only when both vectors are
// present), or the abbreviation rule in either direction. A malformed
// embedding skips the cosine signal for this comparison only.
func shouldMerge(
	e1, e2 common.ExtractedEntity,
	emb1, emb2 []float32,
	stringThreshold, cosineThreshold float64,
) bool {
	if e1.Type != e2.Type {
		return false
	}

	if StringSimilarity(e1.Name, e2.Name) >= stringThreshold {
		return true
	}

	if emb1 != nil && emb2 != nil {
		sim, err := CosineSimilarity(emb1, emb2)
		if err != nil {
			var dimErr *ErrDimensionMismatch
			if !errors.As(err, &dimErr) {
				logger.Warn("[Dedupe] cosine similarity failed", "err", err)
			}
		} else if sim >= cosineThreshold {
			return true
		}
	}

	return IsAbbreviation(e1.Name, e2.Name) || IsAbbreviation(e2.Name, e1.Name)
}

// DeduplicateEntities collapses duplicate mentions into canonical entities.
// Entities are partitioned by type, pairwise merge decisions are run within
// each partition, and union-find builds the transitive merge clusters. Each
// cluster becomes one CanonicalEntity: the label comes from the
// highest-confidence member (first encountered wins ties), every other
// distinct surface form becomes an alias, sources are unioned with exact
// duplicate snippets removed, and confidence is the cluster mean.
//
// The embeddings slice must be parallel to entities; nil entries mark
// entities whose embedding generation failed.
func DeduplicateEntities(
	entities []common.ExtractedEntity,
	embeddings [][]float32,
	stringThreshold, cosineThreshold float64,
) ([]common.CanonicalEntity, error) {
	if len(entities) != len(embeddings) {
		return nil, errors.New("entities and embeddings must have the same length")
	}
	if len(entities) == 0 {
		return []common.CanonicalEntity{}, nil
	}

	typeGroups := make(map[common.EntityType][]int)
	typeOrder := make([]common.EntityType, 0)
	for i, e := range entities {
		if _, ok := typeGroups[e.Type]; !ok {
			typeOrder = append(typeOrder, e.Type)
		}
		typeGroups[e.Type] = append(typeGroups[e.Type], i)
	}

	ds := newDisjointSet(len(entities))
	for _, typ := range typeOrder {
		indices := typeGroups[typ]
		for i := 0; i < len(indices); i++ {
			for j := i + 1; j < len(indices); j++ {
				a, b := indices[i], indices[j]
				if ds.find(a) == ds.find(b) {
					continue
				}
				if shouldMerge(entities[a], entities[b], embeddings[a], embeddings[b], stringThreshold, cosineThreshold) {
					ds.union(a, b)
				}
			}
		}
	}

	clusters := make(map[int][]int)
	clusterOrder := make([]int, 0)
	for i := range entities {
		root := ds.find(i)
		if _, ok := clusters[root]; !ok {
			clusterOrder = append(clusterOrder, root)
		}
		clusters[root] = append(clusters[root], i)
	}

	canonical := make([]common.CanonicalEntity, 0, len(clusterOrder))
	for _, root := range clusterOrder {
		canonical = append(canonical, collapseCluster(entities, clusters[root]))
	}

	merged := len(entities) - len(canonical)
	logger.Debug("[Dedupe] collapsed entities", "before", len(entities), "after", len(canonical), "merged", merged)

	return canonical, nil
}

func collapseCluster(entities []common.ExtractedEntity, members []int) common.CanonicalEntity {
	lead := members[0]
	for _, idx := range members[1:] {
		if entities[idx].Confidence > entities[lead].Confidence {
			lead = idx
		}
	}

	out := common.CanonicalEntity{
		ID:      uuid.New(),
		Label:   entities[lead].Name,
		Type:    entities[lead].Type,
		Aliases: make([]string, 0),
		Sources: make([]common.SourceSnippet, 0),
	}

	seenAlias := map[string]bool{out.Label: true}
	seenSnippet := make(map[string]bool)
	sum := 0.0

	for _, idx := range members {
		member := entities[idx]
		sum += member.Confidence

		if !seenAlias[member.Name] {
			out.Aliases = append(out.Aliases, member.Name)
			seenAlias[member.Name] = true
		}
		for _, alias := range member.Aliases {
			if !seenAlias[alias] {
				out.Aliases = append(out.Aliases, alias)
				seenAlias[alias] = true
			}
		}

		for _, s := range member.Sources {
			if !seenSnippet[s.Text] {
				out.Sources = append(out.Sources, s)
				seenSnippet[s.Text] = true
			}
		}
	}

	out.Confidence = sum / float64(len(members))
	return out
}
