package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/inkwell-labs/cartograph/pkg/ai"
	"github.com/inkwell-labs/cartograph/pkg/common"

	"github.com/google/uuid"
)

// fakeAIClient implements ai.GraphAIClient for tests. Configure the
// structured response (or error) per call; the zero value fails everything.
type fakeAIClient struct {
	completion     string
	completionErr  error
	structured     any
	structuredErr  error
	embeddings     [][]float32
	embeddingsErr  error
	structuredCall int
	embedCalls     int
	embedSizes     []int
}

func (f *fakeAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	if f.completionErr != nil {
		return "", f.completionErr
	}
	return f.completion, nil
}

func (f *fakeAIClient) GenerateCompletionWithFormat(ctx context.Context, name string, description string, prompt string, out any, opts ...ai.GenerateOption) error {
	f.structuredCall++
	if f.structuredErr != nil {
		return f.structuredErr
	}
	raw, err := json.Marshal(f.structured)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeAIClient) GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	f.embedCalls++
	f.embedSizes = append(f.embedSizes, len(inputs))
	if f.embeddingsErr != nil {
		return nil, f.embeddingsErr
	}
	if f.embeddings != nil {
		return f.embeddings, nil
	}
	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (f *fakeAIClient) ResetMetrics()               {}
func (f *fakeAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func canonical(label string, typ common.EntityType) common.CanonicalEntity {
	return common.CanonicalEntity{ID: uuid.New(), Label: label, Type: typ, Confidence: 0.8}
}

func TestClassifyWithPatterns(t *testing.T) {
	tests := []struct {
		name       string
		sourceType common.EntityType
		targetType common.EntityType
		examples   []string
		want       string
	}{
		{
			name:       "founded matches regardless of types",
			sourceType: common.EntityPerson,
			targetType: common.EntityOrganization,
			examples:   []string{"Sam Altman founded OpenAI in 2015."},
			want:       "founded",
		},
		{
			name:       "works at gated on person and organization",
			sourceType: common.EntityPerson,
			targetType: common.EntityOrganization,
			examples:   []string{"She works at Google."},
			want:       "works_at",
		},
		{
			name:       "works at rejected for wrong types",
			sourceType: common.EntityConcept,
			targetType: common.EntityConcept,
			examples:   []string{"The tool works at scale."},
			want:       "",
		},
		{
			name:       "headquartered matches reversed endpoint order",
			sourceType: common.EntityLocation,
			targetType: common.EntityOrganization,
			examples:   []string{"The company is headquartered in Berlin."},
			want:       "headquartered_in",
		},
		{
			name:       "born in requires person and location",
			sourceType: common.EntityPerson,
			targetType: common.EntityLocation,
			examples:   []string{"Marie Curie was born in Warsaw."},
			want:       "born_in",
		},
		{
			name:       "no keyword yields no label",
			sourceType: common.EntityPerson,
			targetType: common.EntityPerson,
			examples:   []string{"They met once."},
			want:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyWithPatterns(tt.sourceType, tt.targetType, tt.examples)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClassifyRelationshipsPatternPath(t *testing.T) {
	person := canonical("Grace Hopper", common.EntityPerson)
	org := canonical("Remington Rand", common.EntityOrganization)

	relationships := []common.Relationship{{
		SourceEntityID: person.ID,
		TargetEntityID: org.ID,
		Kind:           common.KindCooccurrence,
		RelationLabel:  common.RelationLabelGeneric,
		Weight:         0.8,
		Confidence:     0.7,
		Examples:       []string{"Grace Hopper joined Remington Rand in 1949."},
	}}

	// nil client: the pattern tier must resolve this without a model call.
	ClassifyRelationships(context.Background(), nil, relationships, []common.CanonicalEntity{person, org}, DefaultConfig())

	if relationships[0].RelationLabel != "works_at" {
		t.Errorf("expected works_at, got %q", relationships[0].RelationLabel)
	}
	if relationships[0].Confidence != 0.85 {
		t.Errorf("expected confidence 0.85, got %f", relationships[0].Confidence)
	}
}

func TestClassifyRelationshipsWeightGate(t *testing.T) {
	person := canonical("Grace Hopper", common.EntityPerson)
	org := canonical("Remington Rand", common.EntityOrganization)

	relationships := []common.Relationship{{
		SourceEntityID: person.ID,
		TargetEntityID: org.ID,
		Kind:           common.KindCooccurrence,
		RelationLabel:  common.RelationLabelGeneric,
		Weight:         0.4,
		Confidence:     0.7,
		Examples:       []string{"Grace Hopper joined Remington Rand in 1949."},
	}}

	ClassifyRelationships(context.Background(), nil, relationships, []common.CanonicalEntity{person, org}, DefaultConfig())

	if relationships[0].RelationLabel != common.RelationLabelGeneric {
		t.Errorf("expected weight-gated relationship to stay generic, got %q", relationships[0].RelationLabel)
	}
}

func TestClassifyRelationshipsModelFallback(t *testing.T) {
	a := canonical("Alan Turing", common.EntityPerson)
	b := canonical("Bletchley Park", common.EntityOrganization)

	relationships := []common.Relationship{{
		SourceEntityID: a.ID,
		TargetEntityID: b.ID,
		Kind:           common.KindCooccurrence,
		RelationLabel:  common.RelationLabelGeneric,
		Weight:         0.9,
		Confidence:     0.7,
		Examples:       []string{"Alan Turing spent the war years at Bletchley Park."},
	}}

	client := &fakeAIClient{structured: relationClassification{Type: "works_at", Confidence: 0.8}}
	ClassifyRelationships(context.Background(), client, relationships, []common.CanonicalEntity{a, b}, DefaultConfig())

	if client.structuredCall != 1 {
		t.Fatalf("expected 1 model call, got %d", client.structuredCall)
	}
	if relationships[0].RelationLabel != "works_at" {
		t.Errorf("expected works_at, got %q", relationships[0].RelationLabel)
	}
	if relationships[0].Confidence != 0.8 {
		t.Errorf("expected confidence 0.8, got %f", relationships[0].Confidence)
	}
}

func TestClassifyRelationshipsModelFailureLeavesGeneric(t *testing.T) {
	a := canonical("Alan Turing", common.EntityPerson)
	b := canonical("Bletchley Park", common.EntityOrganization)

	relationships := []common.Relationship{{
		SourceEntityID: a.ID,
		TargetEntityID: b.ID,
		Kind:           common.KindCooccurrence,
		RelationLabel:  common.RelationLabelGeneric,
		Weight:         0.9,
		Confidence:     0.7,
		Examples:       []string{"Alan Turing spent the war years at Bletchley Park."},
	}}

	cfg := DefaultConfig()
	cfg.MaxRetries = 1
	client := &fakeAIClient{structuredErr: errors.New("model unavailable")}
	ClassifyRelationships(context.Background(), client, relationships, []common.CanonicalEntity{a, b}, cfg)

	if relationships[0].RelationLabel != common.RelationLabelGeneric {
		t.Errorf("expected generic label after model failure, got %q", relationships[0].RelationLabel)
	}
	if relationships[0].Confidence != 0.7 {
		t.Errorf("expected untouched confidence 0.7, got %f", relationships[0].Confidence)
	}
}

func TestClassifyRelationshipsRejectsUnknownLabel(t *testing.T) {
	a := canonical("Alpha", common.EntityConcept)
	b := canonical("Beta", common.EntityConcept)

	relationships := []common.Relationship{{
		SourceEntityID: a.ID,
		TargetEntityID: b.ID,
		Kind:           common.KindCooccurrence,
		RelationLabel:  common.RelationLabelGeneric,
		Weight:         0.9,
		Confidence:     0.7,
		Examples:       []string{"Alpha and Beta interleave."},
	}}

	client := &fakeAIClient{structured: relationClassification{Type: "best_friends_with", Confidence: 0.9}}
	ClassifyRelationships(context.Background(), client, relationships, []common.CanonicalEntity{a, b}, DefaultConfig())

	if relationships[0].RelationLabel != common.RelationLabelGeneric {
		t.Errorf("expected unknown label to be rejected, got %q", relationships[0].RelationLabel)
	}
}
