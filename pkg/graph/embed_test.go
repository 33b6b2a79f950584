package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func entityNames(n int) []string {
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		names = append(names, fmt.Sprintf("entity-%d", i))
	}
	return names
}

func TestGenerateEntityEmbeddingsBatching(t *testing.T) {
	client := &fakeAIClient{}
	names := entityNames(23)

	results := GenerateEntityEmbeddings(context.Background(), client, names, 1)
	if len(results) != 23 {
		t.Fatalf("expected 23 result slots, got %d", len(results))
	}
	for i, v := range results {
		if v == nil {
			t.Fatalf("expected embedding for %q, got nil", names[i])
		}
	}
	if client.embedCalls != 3 {
		t.Errorf("expected 3 batches for 23 names, got %d", client.embedCalls)
	}
	wantSizes := []int{10, 10, 3}
	for i, size := range client.embedSizes {
		if size != wantSizes[i] {
			t.Errorf("batch %d: expected size %d, got %d", i, wantSizes[i], size)
		}
	}
}

func TestGenerateEntityEmbeddingsFailureLeavesNil(t *testing.T) {
	client := &fakeAIClient{embeddingsErr: errors.New("embeddings down")}
	names := entityNames(5)

	results := GenerateEntityEmbeddings(context.Background(), client, names, 1)
	if len(results) != 5 {
		t.Fatalf("expected 5 result slots, got %d", len(results))
	}
	for i, v := range results {
		if v != nil {
			t.Errorf("slot %d: expected nil marker after failure, got %v", i, v)
		}
	}
}

func TestGenerateEntityEmbeddingsEmptyInput(t *testing.T) {
	client := &fakeAIClient{}
	results := GenerateEntityEmbeddings(context.Background(), client, nil, 1)
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %d", len(results))
	}
	if client.embedCalls != 0 {
		t.Errorf("expected no calls for empty input, got %d", client.embedCalls)
	}
}
