package graph

import (
	"strings"
	"unicode"

	"github.com/inkwell-labs/cartograph/pkg/common"

	"github.com/pkoukk/tiktoken-go"
)

// SegmentText splits raw text into token-budgeted segments along sentence
// boundaries. Sentences are accumulated greedily until adding the next one
// would exceed maxTokens; a single sentence longer than the budget becomes
// its own segment. Segment indices are assigned in order starting at 0.
func SegmentText(text string, encoder string, maxTokens int) ([]common.TextSegment, error) {
	enc, err := tiktoken.GetEncoding(encoder)
	if err != nil {
		return nil, err
	}

	sentences := splitIntoSentences(text)
	if len(sentences) == 0 {
		return nil, nil
	}

	var segments []common.TextSegment
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		segments = append(segments, common.TextSegment{
			Index: len(segments),
			Text:  strings.Join(current, " "),
		})
		current = nil
		currentTokens = 0
	}

	for _, sentence := range sentences {
		tokens := len(enc.Encode(sentence, nil, nil))
		if currentTokens+tokens > maxTokens && len(current) > 0 {
			flush()
		}
		current = append(current, sentence)
		currentTokens += tokens
	}
	flush()

	return segments, nil
}

func splitIntoSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if current.Len() > 0 {
				sentences = append(sentences, strings.TrimSpace(current.String()))
				current.Reset()
			}
			continue
		}

		for _, sentence := range splitLineIntoSentences(trimmed) {
			if current.Len() > 0 {
				current.WriteString(" ")
			}
			current.WriteString(sentence)

			s := strings.TrimSpace(sentence)
			if strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
				sentences = append(sentences, strings.TrimSpace(current.String()))
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	var result []string
	for _, sentence := range sentences {
		if strings.TrimSpace(sentence) != "" {
			result = append(result, sentence)
		}
	}
	return result
}

func splitLineIntoSentences(line string) []string {
	var sentences []string
	var current strings.Builder

	for i := 0; i < len(line); i++ {
		current.WriteByte(line[i])

		if line[i] == '.' || line[i] == '!' || line[i] == '?' {
			// "1. item" style numeric listings are not sentence ends
			if i > 0 && unicode.IsDigit(rune(line[i-1])) && i+1 < len(line) && line[i+1] == ' ' {
				continue
			}

			j := i + 1
			for j < len(line) && (line[j] == '.' || line[j] == '!' || line[j] == '?') {
				current.WriteByte(line[j])
				j++
			}
			for j < len(line) && (line[j] == '"' || line[j] == '\'' || line[j] == ')' ||
				line[j] == ']' || line[j] == '}') {
				current.WriteByte(line[j])
				j++
			}

			sentence := strings.TrimSpace(current.String())
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			current.Reset()
			i = j - 1
		}
	}

	remaining := strings.TrimSpace(current.String())
	if remaining != "" {
		sentences = append(sentences, remaining)
	}

	return sentences
}
