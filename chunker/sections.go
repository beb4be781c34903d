package chunker

import (
	"regexp"
	"strings"

	"github.com/poiesic/precedent/core"
)

// section is a contiguous run of normalized text with a best-effort tag.
type section struct {
	tag  core.SectionTag
	text string
}

// sectionKeywords maps heading words onto section tags. Evaluated in
// order; the first match wins so detection stays deterministic.
var sectionKeywords = []struct {
	word string
	tag  core.SectionTag
}{
	{"proposal", core.SectionProposal},
	{"proposals", core.SectionProposal},
	{"assessment", core.SectionAssessment},
	{"considerations", core.SectionAssessment},
	{"conclusion", core.SectionConclusion},
	{"conclusions", core.SectionConclusion},
	{"recommendation", core.SectionRecommendation},
	{"recommendations", core.SectionRecommendation},
	{"conditions", core.SectionConditions},
}

var (
	numberedHeadingRe = regexp.MustCompile(`^\d+\.\s+[A-Z]`)
	allCapsHeadingRe  = regexp.MustCompile(`^[A-Z][A-Z\s]{2,}$`)
)

// splitSections cuts normalized text into sections at heading-like lines.
// A line opens a new section when it starts with a known section keyword,
// looks like a numbered heading, or is written entirely in capitals.
// Every line is retained: the heading line belongs to the section it
// opens, so no text is lost to segmentation. Text with no detectable
// headings is returned as a single unclassified section.
func splitSections(text string) []section {
	lines := strings.Split(text, "\n")

	var sections []section
	var current []string
	currentTag := core.SectionUnclassified

	flush := func() {
		if len(current) == 0 {
			return
		}
		sections = append(sections, section{
			tag:  currentTag,
			text: strings.Join(current, "\n"),
		})
		current = nil
	}

	for _, line := range lines {
		if tag, ok := detectHeading(line); ok {
			flush()
			currentTag = tag
		}
		current = append(current, line)
	}
	flush()

	if len(sections) == 0 {
		return []section{{tag: core.SectionUnclassified, text: text}}
	}
	return sections
}

// detectHeading reports whether a line opens a new section and which tag
// applies. Rules are applied in a fixed order: keyword prefix, numbered
// heading, all-caps heading. Headings without a recognized keyword still
// open a section but leave it unclassified.
func detectHeading(line string) (core.SectionTag, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return core.SectionUnclassified, false
	}

	first, _, _ := strings.Cut(trimmed, " ")
	first = strings.TrimRight(first, ":.")

	// Capitalized keyword at line start, e.g. "Proposal:" or "Conditions".
	if first != "" && first[0] >= 'A' && first[0] <= 'Z' {
		if tag, ok := keywordTag(first); ok {
			return tag, true
		}
	}

	// Numbered heading, e.g. "7. Assessment Of Proposal".
	if numberedHeadingRe.MatchString(trimmed) {
		_, rest, _ := strings.Cut(trimmed, " ")
		word, _, _ := strings.Cut(strings.TrimSpace(rest), " ")
		if tag, ok := keywordTag(strings.TrimRight(word, ":.")); ok {
			return tag, true
		}
		return core.SectionUnclassified, true
	}

	// All-caps heading, e.g. "OFFICER RECOMMENDATION".
	if allCapsHeadingRe.MatchString(trimmed) {
		for _, word := range strings.Fields(trimmed) {
			if tag, ok := keywordTag(word); ok {
				return tag, true
			}
		}
		return core.SectionUnclassified, true
	}

	return core.SectionUnclassified, false
}

func keywordTag(word string) (core.SectionTag, bool) {
	lower := strings.ToLower(word)
	for _, kw := range sectionKeywords {
		if kw.word == lower {
			return kw.tag, true
		}
	}
	return core.SectionUnclassified, false
}
