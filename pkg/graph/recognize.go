package graph

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/inkwell-labs/cartograph/internal/util"
	"github.com/inkwell-labs/cartograph/pkg/common"
	"github.com/inkwell-labs/cartograph/pkg/logger"

	"github.com/araddon/dateparse"
	"github.com/jdkato/prose/v2"
)

// nerLabelMap translates tagger-native labels onto the entity type enum.
var nerLabelMap = map[string]common.EntityType{
	"PERSON": common.EntityPerson,
	"GPE":    common.EntityLocation,
	"LOC":    common.EntityLocation,
	"ORG":    common.EntityOrganization,
}

// typeBaseConfidence is the per-type starting confidence for baseline
// mentions before length and repetition boosts.
var typeBaseConfidence = map[common.EntityType]float64{
	common.EntityPerson:       0.65,
	common.EntityOrganization: 0.60,
	common.EntityLocation:     0.60,
	common.EntityDate:         0.70,
	common.EntityPaper:        0.55,
	common.EntityConcept:      0.50,
}

const snippetContextRadius = 50

var (
	yearRe        = regexp.MustCompile(`\b(?:1[89]\d{2}|20\d{2})\b`)
	isoDateRe     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	monthDateRe   = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?\b`)
	orgSuffixRe   = regexp.MustCompile(`\b(?:[A-Z][\w&'.-]*\s+)*[A-Z][\w&'.-]*\s+(?:Inc\.?|Corp\.?|Corporation|LLC|Ltd\.?|GmbH|AG|University|Institute|Laboratories|Labs|Foundation|Group|Committee)\b`)
	universityRe  = regexp.MustCompile(`\bUniversity of [A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)
	quotedWorkRe  = regexp.MustCompile(`"([A-Z][^"]{2,79})"`)
	acronymRe     = regexp.MustCompile(`\b[A-Z]{2,5}\b`)
	acronymSkip   = map[string]bool{"THE": true, "AND": true, "FOR": true, "NOT": true, "BUT": true, "ALL": true, "NEW": true, "OF": true, "IN": true, "ON": true, "AT": true, "TO": true, "IT": true, "IS": true, "BE": true, "AS": true, "BY": true, "OR": true, "AN": true}
)

type mention struct {
	name string
	typ  common.EntityType
	pos  int
}

// RecognizeEntities runs the deterministic baseline pass over the segments:
// a statistical NER tagger plus rule passes for dates, organization suffixes,
// quoted works and acronyms. Identical surface forms of the same type are
// merged immediately with a small repeated-mention boost. Unparseable
// segments contribute nothing rather than failing.
func RecognizeEntities(segments []common.TextSegment, docID string) []common.ExtractedEntity {
	entities := make([]common.ExtractedEntity, 0)
	index := make(map[string]int)

	for _, seg := range segments {
		text := seg.Text
		if strings.TrimSpace(text) == "" {
			continue
		}

		// Distinct passes can claim the same surface form at the same
		// offset; only mentions at new offsets count as repeats.
		seen := make(map[string]bool)
		for _, m := range segmentMentions(text) {
			key := m.name + "\x00" + string(m.typ)
			at := key + "\x00" + strconv.Itoa(m.pos)
			if seen[at] {
				continue
			}
			seen[at] = true

			snippet := contextSnippet(text, m.pos, m.pos+len(m.name))
			source := common.SourceSnippet{
				DocumentID:   docID,
				Text:         snippet,
				SegmentIndex: seg.Index,
			}

			if i, ok := index[key]; ok {
				entities[i].Sources = append(entities[i].Sources, source)
				entities[i].Confidence = util.Min(0.99, entities[i].Confidence+0.05)
				continue
			}

			words := len(strings.Fields(m.name))
			confidence := util.Min(0.95, typeBaseConfidence[m.typ]+util.Min(0.15, 0.05*float64(words)))

			index[key] = len(entities)
			entities = append(entities, common.ExtractedEntity{
				Name:       m.name,
				Type:       m.typ,
				Confidence: confidence,
				Sources:    []common.SourceSnippet{source},
				Aliases:    []string{},
			})
		}
	}

	return entities
}

// segmentMentions gathers candidate mentions from all passes in a fixed
// order so that earlier, more reliable passes claim a surface form first.
func segmentMentions(text string) []mention {
	var mentions []mention

	mentions = append(mentions, nerMentions(text)...)
	mentions = append(mentions, dateMentions(text)...)
	mentions = append(mentions, regexMentions(text, orgSuffixRe, common.EntityOrganization)...)
	mentions = append(mentions, regexMentions(text, universityRe, common.EntityOrganization)...)
	mentions = append(mentions, quotedWorkMentions(text)...)
	mentions = append(mentions, acronymMentions(text)...)

	out := mentions[:0]
	for _, m := range mentions {
		if len(m.name) < 2 {
			continue
		}
		out = append(out, m)
	}
	return out
}

func nerMentions(text string) []mention {
	doc, err := prose.NewDocument(text)
	if err != nil {
		logger.Warn("[Recognize] tagger failed on segment", "err", err)
		return nil
	}

	var mentions []mention
	cursor := make(map[string]int)
	for _, ent := range doc.Entities() {
		typ, ok := nerLabelMap[ent.Label]
		if !ok {
			continue
		}
		name := strings.TrimSpace(ent.Text)
		if name == "" {
			continue
		}
		pos := strings.Index(text[cursor[name]:], name)
		if pos < 0 {
			pos = 0
		} else {
			pos += cursor[name]
			cursor[name] = pos + len(name)
		}
		mentions = append(mentions, mention{name: name, typ: typ, pos: pos})
	}
	return mentions
}

func dateMentions(text string) []mention {
	var mentions []mention
	for _, re := range []*regexp.Regexp{monthDateRe, isoDateRe, yearRe} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			candidate := text[loc[0]:loc[1]]
			if _, err := dateparse.ParseAny(candidate); err != nil {
				continue
			}
			mentions = append(mentions, mention{name: candidate, typ: common.EntityDate, pos: loc[0]})
		}
	}
	return mentions
}

func regexMentions(text string, re *regexp.Regexp, typ common.EntityType) []mention {
	var mentions []mention
	for _, loc := range re.FindAllStringIndex(text, -1) {
		mentions = append(mentions, mention{name: text[loc[0]:loc[1]], typ: typ, pos: loc[0]})
	}
	return mentions
}

func quotedWorkMentions(text string) []mention {
	var mentions []mention
	for _, loc := range quotedWorkRe.FindAllStringSubmatchIndex(text, -1) {
		title := text[loc[2]:loc[3]]
		if len(strings.Fields(title)) < 2 {
			continue
		}
		mentions = append(mentions, mention{name: title, typ: common.EntityPaper, pos: loc[2]})
	}
	return mentions
}

func acronymMentions(text string) []mention {
	var mentions []mention
	for _, loc := range acronymRe.FindAllStringIndex(text, -1) {
		candidate := text[loc[0]:loc[1]]
		if acronymSkip[candidate] {
			continue
		}
		mentions = append(mentions, mention{name: candidate, typ: common.EntityConcept, pos: loc[0]})
	}
	return mentions
}

func contextSnippet(text string, start, end int) string {
	s := util.Max(0, start-snippetContextRadius)
	e := util.Min(len(text), end+snippetContextRadius)
	return strings.TrimSpace(strings.ReplaceAll(text[s:e], "\n", " "))
}
