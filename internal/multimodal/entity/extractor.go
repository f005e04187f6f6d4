// Package entity extracts travel entities from free text. It is pure
// string processing: identical input always produces identical output, so
// it is testable without network access.
package entity

import (
	"regexp"
	"strconv"
	"strings"
)

// TravelEntities are the candidate entities found in one utterance
type TravelEntities struct {
	Destinations   []string `json:"destinations"`
	Dates          []string `json:"dates"`
	Budgets        []string `json:"budgets"`
	Activities     []string `json:"activities"`
	Accommodation  []string `json:"accommodation"`
	Transportation []string `json:"transportation"`
	TravelerCount  int      `json:"traveler_count"` // 0 means unspecified
}

// Intent classification for an utterance
type Intent string

const (
	IntentPlanTrip Intent = "plan_trip"
	IntentExplore  Intent = "explore"
	IntentUnknown  Intent = "unknown"
)

// Extractor holds the compiled patterns and fixed vocabularies
type Extractor struct {
	destinationPatterns []*regexp.Regexp
	datePatterns        []*regexp.Regexp
	budgetPatterns      []*regexp.Regexp
	travelerPatterns    []*regexp.Regexp
	planPatterns        []*regexp.Regexp

	activityVocab       []string
	accommodationVocab  []string
	transportationVocab []string
	travelerKeywords    []travelerKeyword
}

type travelerKeyword struct {
	word  string
	count int
}

// NewExtractor creates an extractor with the fixed keyword/regex tables
func NewExtractor() *Extractor {
	return &Extractor{
		destinationPatterns: []*regexp.Regexp{
			// capitalized word sequences following travel verbs
			regexp.MustCompile(`(?:go|going|travel|traveling|travelling|trip|fly|flying|visit|visiting|vacation|holiday|head|heading)\s+(?:to|in)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
			regexp.MustCompile(`(?:explore|exploring|see|seeing)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
		},
		datePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:next|this|coming)\s+(?:summer|winter|spring|fall|autumn|week|weekend|month|year)\b`),
			regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\b(?:\s+\d{1,2}(?:st|nd|rd|th)?)?`),
			regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
			regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b`),
			regexp.MustCompile(`(?i)\bin\s+\d+\s+(?:days|weeks|months)\b`),
		},
		budgetPatterns: []*regexp.Regexp{
			regexp.MustCompile(`[$€£¥]\s?\d[\d,]*(?:\.\d+)?k?`),
			regexp.MustCompile(`(?i)\b\d[\d,]*\s?(?:dollars|usd|euros?|eur|pounds|gbp|yen|jpy)\b`),
		},
		travelerPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(\d+)\s*(?:people|persons?|adults?|travell?ers|of us)\b`),
		},
		planPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:plan|planning|book|booking|organize|organizing|want to go|trip|vacation|holiday)\b`),
		},
		activityVocab: []string{
			"hiking", "museum", "beach", "surfing", "skiing", "snowboarding",
			"shopping", "nightlife", "food", "culture", "temple", "snorkeling",
			"diving", "camping", "sightseeing", "festival", "wildlife", "safari",
			"kayaking", "cycling", "spa", "wine",
		},
		accommodationVocab: []string{
			"hotel", "hostel", "airbnb", "resort", "apartment", "villa",
			"guesthouse", "bed and breakfast", "campsite",
		},
		transportationVocab: []string{
			"flight", "fly", "plane", "train", "bus", "car", "rental",
			"cruise", "ferry", "bike", "motorbike",
		},
		travelerKeywords: []travelerKeyword{
			{"solo", 1},
			{"alone", 1},
			{"couple", 2},
			{"honeymoon", 2},
			{"family", 4},
		},
	}
}

// Extract returns the entities found in text. Output is deterministic:
// matches are reported in order of first appearance, deduplicated.
func (e *Extractor) Extract(text string) *TravelEntities {
	entities := &TravelEntities{
		Destinations:   e.matchAll(e.destinationPatterns, text, 1),
		Dates:          e.matchAll(e.datePatterns, text, 0),
		Budgets:        e.matchAll(e.budgetPatterns, text, 0),
		Activities:     matchVocab(text, e.activityVocab),
		Accommodation:  matchVocab(text, e.accommodationVocab),
		Transportation: matchVocab(text, e.transportationVocab),
		TravelerCount:  e.extractTravelerCount(text),
	}
	return entities
}

// RecognizeIntent classifies the utterance with the fixed pattern table
func (e *Extractor) RecognizeIntent(text string) (Intent, float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return IntentUnknown, 1.0
	}

	for _, p := range e.planPatterns {
		if p.MatchString(text) {
			return IntentPlanTrip, 0.9
		}
	}

	if len(e.matchAll(e.destinationPatterns, text, 1)) > 0 {
		return IntentExplore, 0.7
	}

	return IntentUnknown, 0.5
}

// matchAll runs the pattern list over text and collects unique matches in
// order of first appearance. group 0 takes the whole match, otherwise the
// given capture group.
func (e *Extractor) matchAll(patterns []*regexp.Regexp, text string, group int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range patterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if group >= len(m) {
				continue
			}
			val := strings.TrimSpace(m[group])
			key := strings.ToLower(val)
			if val == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, val)
		}
	}
	return out
}

// matchVocab does fixed-vocabulary substring matching
func matchVocab(text string, vocab []string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, word := range vocab {
		if strings.Contains(lower, word) {
			out = append(out, word)
		}
	}
	return out
}

// extractTravelerCount finds a numeric traveler count or a keyword match.
// Numeric patterns win over keywords.
func (e *Extractor) extractTravelerCount(text string) int {
	for _, p := range e.travelerPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}

	lower := strings.ToLower(text)
	for _, kw := range e.travelerKeywords {
		if strings.Contains(lower, kw.word) {
			return kw.count
		}
	}

	return 0
}
