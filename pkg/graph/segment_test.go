package graph

import (
	"strings"
	"testing"
)

func TestSplitLineIntoSentences(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "single sentence",
			line: "The quick brown fox jumps.",
			want: []string{"The quick brown fox jumps."},
		},
		{
			name: "multiple sentences",
			line: "First one. Second one! Third one?",
			want: []string{"First one.", "Second one!", "Third one?"},
		},
		{
			name: "numeric listing is not a boundary",
			line: "1. First item continues here.",
			want: []string{"1. First item continues here."},
		},
		{
			name: "trailing quote absorbed",
			line: `She said "stop." Then left.`,
			want: []string{`She said "stop."`, "Then left."},
		},
		{
			name: "ellipsis stays together",
			line: "Well... maybe.",
			want: []string{"Well...", "maybe."},
		},
		{
			name: "no terminal punctuation",
			line: "a heading without punctuation",
			want: []string{"a heading without punctuation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitLineIntoSentences(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d sentences, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestSplitIntoSentences(t *testing.T) {
	text := "First paragraph sentence one. Sentence two.\n\nSecond paragraph\nspans two lines."
	got := splitIntoSentences(text)

	want := []string{
		"First paragraph sentence one.",
		"Sentence two.",
		"Second paragraph spans two lines.",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %v", len(want), len(got), got)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("sentence %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplitIntoSentencesBlankLineFlushesFragment(t *testing.T) {
	got := splitIntoSentences("A heading\n\nBody text follows.")
	want := []string{"A heading", "Body text follows."}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %v", len(want), len(got), got)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("sentence %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSegmentTextUnknownEncoder(t *testing.T) {
	if _, err := SegmentText("Some text.", "no-such-encoding", 100); err == nil {
		t.Fatal("expected error for unknown encoder")
	}
}

func TestSegmentText(t *testing.T) {
	text := strings.Repeat("This sentence has a handful of tokens. ", 20)

	segments, err := SegmentText(text, "o200k_base", 30)
	if err != nil {
		t.Skipf("encoder unavailable: %v", err)
	}

	if len(segments) < 2 {
		t.Fatalf("expected the budget to force multiple segments, got %d", len(segments))
	}
	for i, seg := range segments {
		if seg.Index != i {
			t.Errorf("segment %d carries index %d", i, seg.Index)
		}
		if strings.TrimSpace(seg.Text) == "" {
			t.Errorf("segment %d is blank", i)
		}
		if !strings.HasSuffix(seg.Text, "tokens.") {
			t.Errorf("segment %d does not end on a sentence boundary: %q", i, seg.Text)
		}
	}

	var rejoined []string
	for _, seg := range segments {
		rejoined = append(rejoined, seg.Text)
	}
	if strings.Join(rejoined, " ") != strings.TrimSpace(strings.Join(strings.Fields(text), " ")) {
		t.Error("segments do not reassemble into the original text")
	}
}

func TestSegmentTextEmpty(t *testing.T) {
	segments, err := SegmentText("   \n\n  ", "o200k_base", 100)
	if err != nil {
		t.Skipf("encoder unavailable: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("expected no segments for blank input, got %d", len(segments))
	}
}
