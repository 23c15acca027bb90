package service

import (
	"sort"

	"propertychat/internal/model"
	"propertychat/internal/utils"
)

// Match reason constants
const (
	ReasonPriceMatch       = "Price within budget"
	ReasonPriceNearBudget  = "Slightly over budget"
	ReasonBedroomsMatch    = "Bedrooms match"
	ReasonBedroomsNear     = "One bedroom off"
	ReasonLocationMatch    = "Location match"
	ReasonCloseAlternative = "Close alternative"
)

// Scoring weights; a perfect listing scores MaxScore
const (
	scoreExact   = 2
	scorePartial = 1
	MaxScore     = 3 * scoreExact

	// budgetTolerance allows listings up to 20% over budget a partial score
	budgetTolerance = 1.2
)

// Ranker scores catalog listings against accumulated preferences
type Ranker struct {
	listings []model.Listing
}

// NewRanker creates a ranker over the catalog listings
func NewRanker(listings []model.Listing) *Ranker {
	return &Ranker{listings: append([]model.Listing(nil), listings...)}
}

// Score rates a single listing. Only criteria whose preference is set
// contribute; the transaction type is a filter, not a criterion.
func (r *Ranker) Score(listing model.Listing, prefs model.Preferences) (int, []string) {
	score := 0
	reasons := []string{}

	if prefs.Budget != nil {
		budget := *prefs.Budget
		switch {
		case listing.Price.Amount <= budget:
			score += scoreExact
			reasons = append(reasons, ReasonPriceMatch)
		case listing.Price.Amount <= budget*budgetTolerance:
			score += scorePartial
			reasons = append(reasons, ReasonPriceNearBudget)
		}
	}

	if prefs.Bedrooms != nil {
		switch diff := listing.Bedrooms - *prefs.Bedrooms; {
		case diff == 0:
			score += scoreExact
			reasons = append(reasons, ReasonBedroomsMatch)
		case diff == 1 || diff == -1:
			score += scorePartial
			reasons = append(reasons, ReasonBedroomsNear)
		}
	}

	if prefs.Location != nil && utils.ContainsFold(listing.Location, *prefs.Location) {
		score += scoreExact
		reasons = append(reasons, ReasonLocationMatch)
	}

	return score, reasons
}

// Match returns every listing of the preferred type with a positive score,
// best first. Ties keep catalog order.
func (r *Ranker) Match(prefs model.Preferences) []model.ScoredListing {
	results := make([]model.ScoredListing, 0, len(r.listings))
	for _, listing := range r.listings {
		if !sameType(listing, prefs) {
			continue
		}
		score, reasons := r.Score(listing, prefs)
		if score <= 0 {
			continue
		}
		results = append(results, model.ScoredListing{
			Listing:        listing,
			Score:          score,
			MatchedReasons: reasons,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Top returns at most k best matches
func (r *Ranker) Top(prefs model.Preferences, k int) []model.ScoredListing {
	results := r.Match(prefs)
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// Fallback returns the first k catalog listings of the preferred type,
// scored and ordered the same way as Match
func (r *Ranker) Fallback(prefs model.Preferences, k int) []model.ScoredListing {
	results := make([]model.ScoredListing, 0, k)
	for _, listing := range r.listings {
		if len(results) == k {
			break
		}
		if !sameType(listing, prefs) {
			continue
		}
		score, reasons := r.Score(listing, prefs)
		results = append(results, model.ScoredListing{
			Listing:        listing,
			Score:          score,
			MatchedReasons: append(reasons, ReasonCloseAlternative),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func sameType(listing model.Listing, prefs model.Preferences) bool {
	return prefs.Type == nil || listing.Type == *prefs.Type
}
