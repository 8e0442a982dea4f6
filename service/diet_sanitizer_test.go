package service

import (
	"testing"

	"cravesmart-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planWith(items ...string) *models.AnalysisResult {
	options := make([]models.MealOption, 0, len(items))
	for _, item := range items {
		options = append(options, models.MealOption{
			OptionName: "Option",
			FoodItems:  models.Text(item),
			Calories:   models.N(500),
			Protein:    models.N(35),
		})
	}
	return &models.AnalysisResult{
		DetectedMealName: "Lunch plate",
		DailyPlan:        []models.MealSlot{{MealTime: "Lunch", Options: options}},
	}
}

func profileFor(diet models.DietType, country string) models.Profile {
	p := models.DefaultProfile()
	p.DietType = diet
	p.Country = country
	return p
}

func TestSanitizeForDiet_VegetarianReplacesMeat(t *testing.T) {
	input := planWith("Grilled Chicken breast with rice", "Rajma chawal")

	out := SanitizeForDiet(input, profileFor(models.DietVegetarian, "India"))

	replaced := out.DailyPlan[0].Options[0]
	assert.Equal(t, IndianSafeDish+ReplacedMarker, replaced.FoodItems.String())
	assert.NotContains(t, replaced.FoodItems.String(), "hicken")
	assert.True(t, replaced.Replaced)
	// macro numbers are kept as the model returned them
	assert.Equal(t, 500.0, replaced.Calories.Value)

	kept := out.DailyPlan[0].Options[1]
	assert.Equal(t, "Rajma chawal", kept.FoodItems.String())
	assert.False(t, kept.Replaced)

	// input is untouched
	assert.Equal(t, "Grilled Chicken breast with rice", input.DailyPlan[0].Options[0].FoodItems.String())
}

func TestSanitizeForDiet_NonVegIsIdentity(t *testing.T) {
	input := planWith("Chicken curry", "Fish fry")

	out := SanitizeForDiet(input, profileFor(models.DietNonVeg, "India"))

	assert.Same(t, input, out)
	assert.Equal(t, "Chicken curry", out.DailyPlan[0].Options[0].FoodItems.String())
}

func TestSanitizeForDiet_UnknownDietIsIdentity(t *testing.T) {
	input := planWith("Beef stew")
	out := SanitizeForDiet(input, profileFor("Pescatarian", "USA"))
	assert.Same(t, input, out)
}

func TestSanitizeForDiet_CountryBranch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		country  string
		expected string
	}{
		{country: "India", expected: IndianSafeDish},
		{country: "USA", expected: GenericSafeDish},
		{country: "", expected: GenericSafeDish},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			t.Parallel()

			out := SanitizeForDiet(planWith("Mutton biryani"), profileFor(models.DietVegetarian, tt.country))
			assert.Equal(t, tt.expected+ReplacedMarker, out.DailyPlan[0].Options[0].FoodItems.String())
		})
	}
}

func TestSanitizeForDiet_EggRules(t *testing.T) {
	items := []string{"Masala omelette with toast", "Boiled egg salad", "Paneer tikka"}

	vegOut := SanitizeForDiet(planWith(items...), profileFor(models.DietVegetarian, "USA"))
	require.Len(t, vegOut.DailyPlan[0].Options, 3)
	assert.True(t, vegOut.DailyPlan[0].Options[0].Replaced)
	assert.True(t, vegOut.DailyPlan[0].Options[1].Replaced)
	assert.False(t, vegOut.DailyPlan[0].Options[2].Replaced)

	eggOut := SanitizeForDiet(planWith(items...), profileFor(models.DietVegPlusEggs, "USA"))
	for _, option := range eggOut.DailyPlan[0].Options {
		assert.False(t, option.Replaced, option.FoodItems.String())
	}

	meatOut := SanitizeForDiet(planWith("Egg and bacon roll"), profileFor(models.DietVegPlusEggs, "USA"))
	assert.Equal(t, GenericSafeDish+ReplacedMarker, meatOut.DailyPlan[0].Options[0].FoodItems.String())
}

func TestSanitizeForDiet_NilResult(t *testing.T) {
	assert.Nil(t, SanitizeForDiet(nil, profileFor(models.DietVegetarian, "India")))
}
