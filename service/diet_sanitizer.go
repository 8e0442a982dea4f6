package service

import (
	"strings"

	"cravesmart-backend/models"
)

const (
	// IndianSafeDish replaces a non-compliant option for users in India
	IndianSafeDish = "Paneer bhurji with 2 multigrain rotis, dal and a cucumber-tomato salad"
	// GenericSafeDish replaces a non-compliant option everywhere else
	GenericSafeDish = "Grilled tofu bowl with quinoa, chickpeas and roasted vegetables"
	// ReplacedMarker is appended to every replaced option
	ReplacedMarker = " (replaced to match your diet)"
)

var meatKeywords = []string{
	"chicken", "mutton", "beef", "pork", "lamb", "veal", "venison", "turkey", "duck",
	"bacon", "sausage", "salami", "pepperoni", "prosciutto", "jerky", "steak", "keema",
	"meat", "fish", "salmon", "tuna", "sardine", "mackerel", "tilapia", "anchovy",
	"prawn", "shrimp", "crab", "lobster", "squid", "octopus", "oyster", "mussel",
	"clam", "scallop", "seafood",
}

var eggKeywords = []string{
	"egg", "omelette", "omelet", "frittata",
}

// forbiddenKeywords returns the keywords that disqualify an option for d.
// Non-vegetarian and unknown diets have none.
func forbiddenKeywords(d models.DietType) []string {
	switch d {
	case models.DietVegetarian:
		words := make([]string, 0, len(meatKeywords)+len(eggKeywords))
		words = append(words, meatKeywords...)
		return append(words, eggKeywords...)
	case models.DietVegPlusEggs:
		return meatKeywords
	default:
		return nil
	}
}

// SanitizeForDiet replaces every plan option whose food items mention a
// forbidden keyword with a fixed safe dish. Matching is a plain lowercase
// substring test. Macro numbers of a replaced option are kept as returned
// by the model. The input is never modified.
func SanitizeForDiet(result *models.AnalysisResult, profile models.Profile) *models.AnalysisResult {
	forbidden := forbiddenKeywords(profile.DietType)
	if result == nil || len(forbidden) == 0 {
		return result
	}

	safe := GenericSafeDish
	if profile.IsIndian() {
		safe = IndianSafeDish
	}

	out := result.Clone()
	for i := range out.DailyPlan {
		options := out.DailyPlan[i].Options
		for j := range options {
			if containsAny(strings.ToLower(options[j].FoodItems.String()), forbidden) {
				options[j].FoodItems = models.Text(safe + ReplacedMarker)
				options[j].Replaced = true
			}
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
