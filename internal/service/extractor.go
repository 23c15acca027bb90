package service

import (
	"regexp"
	"strconv"
	"strings"

	"propertychat/internal/model"
	"propertychat/internal/utils"
)

var (
	buyPattern  = utils.KeywordPattern("buy", "buying", "purchase", "for sale", "to buy")
	rentPattern = utils.KeywordPattern("rent", "renting", "rental", "to rent", "for rent", "lease", "letting")

	bedroomDigitsPattern = regexp.MustCompile(`(?i)\b(\d+)\s*-?\s*bed(?:room)?s?\b`)
	bedroomWordsPattern  = regexp.MustCompile(`(?i)\b(one|two|three|four|five)\s*-?\s*bed(?:room)?s?\b`)
	studioPattern        = regexp.MustCompile(`(?i)\bstudios?\b`)

	// An amount immediately followed by a bedroom mention is a bedroom count, not a budget
	bedroomSuffix = regexp.MustCompile(`(?i)^\s*-?\s*(?:bed|studio)`)

	saleBudgetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)£\s?(\d+(?:,\d{3})*(?:\.\d+)?)\s?(k|m)?\b`),
		regexp.MustCompile(`(?i)\b(?:under|below|up\s+to|upto|max(?:imum)?|budget(?:\s+of)?)\s*£?\s?(\d+(?:,\d{3})*(?:\.\d+)?)\s?(k|m)?\b`),
		regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)(k|m)\b`),
	}

	rentBudgetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)£\s?(\d+(?:,\d{3})*(?:\.\d+)?)\s?(k)?\b`),
		regexp.MustCompile(`(?i)\b(?:under|below|up\s+to|upto|max(?:imum)?|budget(?:\s+of)?)\s*£?\s?(\d+(?:,\d{3})*(?:\.\d+)?)\s?(k)?\b`),
		regexp.MustCompile(`(?i)\b(\d+(?:,\d{3})*(?:\.\d+)?)\s?(k)?\s*(?:pcm|p/m|per\s+month|/month|a\s+month|monthly|budget)\b`),
	}

	numberWords = map[string]int{"one": 1, "two": 2, "three": 3, "four": 4, "five": 5}
)

// saleShorthandLimit is the amount below which a sale budget is read as thousands
const saleShorthandLimit = 10000

// PreferenceExtractor pulls structured search preferences out of free text
type PreferenceExtractor struct {
	locations []string
}

// NewPreferenceExtractor builds the location vocabulary from the listings:
// the distinct area names before the first comma, in catalog order
func NewPreferenceExtractor(listings []model.Listing) *PreferenceExtractor {
	seen := make(map[string]bool)
	var locations []string
	for _, l := range listings {
		area := l.Area()
		key := utils.Normalize(area)
		if area == "" || seen[key] {
			continue
		}
		seen[key] = true
		locations = append(locations, area)
	}
	return &PreferenceExtractor{locations: locations}
}

// Locations returns the recognised area names
func (e *PreferenceExtractor) Locations() []string {
	return append([]string(nil), e.locations...)
}

// Extract returns the preference patch for one utterance. It never fails;
// an utterance with nothing recognisable yields an empty patch.
func (e *PreferenceExtractor) Extract(utterance string, current model.Preferences) model.PreferencePatch {
	var patch model.PreferencePatch
	text := utils.Normalize(utterance)
	if strings.TrimSpace(text) == "" {
		return patch
	}

	resolved := current.Type
	if t, ok := detectTransactionType(text); ok {
		patch.Type = &t
		if current.Type == nil || *current.Type != t {
			patch.ClearBudget = true
		}
		resolved = &t
	}

	if n, ok := extractBedrooms(text); ok {
		patch.Bedrooms = &n
	}

	if resolved != nil {
		if budget, ok := extractBudget(text, *resolved); ok {
			patch.Budget = &budget
		}
	}

	if loc, ok := e.extractLocation(text); ok {
		patch.Location = &loc
	}
	return patch
}

func detectTransactionType(text string) (model.TransactionType, bool) {
	if buyPattern.MatchString(text) {
		return model.TypeSale, true
	}
	if rentPattern.MatchString(text) {
		return model.TypeRent, true
	}
	return "", false
}

func extractBedrooms(text string) (int, bool) {
	if m := bedroomDigitsPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	if m := bedroomWordsPattern.FindStringSubmatch(text); m != nil {
		return numberWords[strings.ToLower(m[1])], true
	}
	if studioPattern.MatchString(text) {
		return 1, true
	}
	return 0, false
}

// extractBudget reads the budget on the scale of the resolved transaction type
func extractBudget(text string, t model.TransactionType) (float64, bool) {
	if t == model.TypeSale {
		amount, suffix, ok := earliestAmount(text, saleBudgetPatterns)
		if !ok {
			return 0, false
		}
		switch {
		case suffix == "m":
			amount *= 1_000_000
		case suffix == "k" || amount < saleShorthandLimit:
			amount *= 1000
		}
		return amount, true
	}
	amount, suffix, ok := earliestAmount(text, rentBudgetPatterns)
	if ok && suffix == "k" {
		amount *= 1000
	}
	return amount, ok
}

// earliestAmount returns the amount of the leftmost match over all patterns,
// skipping numbers that are really bedroom counts
func earliestAmount(text string, patterns []*regexp.Regexp) (float64, string, bool) {
	bestStart := -1
	var bestAmount float64
	var bestSuffix string
	for _, re := range patterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if bestStart >= 0 && loc[0] >= bestStart {
				break
			}
			if bedroomSuffix.MatchString(text[loc[1]:]) {
				continue
			}
			amount, ok := utils.ParseAmount(text[loc[2]:loc[3]])
			if !ok || amount <= 0 {
				continue
			}
			suffix := ""
			if len(loc) > 5 && loc[4] >= 0 {
				suffix = strings.ToLower(text[loc[4]:loc[5]])
			}
			bestStart, bestAmount, bestSuffix = loc[0], amount, suffix
			break
		}
	}
	return bestAmount, bestSuffix, bestStart >= 0
}

func (e *PreferenceExtractor) extractLocation(text string) (string, bool) {
	for _, loc := range e.locations {
		if strings.Contains(text, utils.Normalize(loc)) {
			return loc, true
		}
	}
	return "", false
}
