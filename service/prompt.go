package service

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"cravesmart-backend/models"
)

const (
	defaultMealsPerDay = 3
	minMealsPerDay     = 2
	maxMealsPerDay     = 5
)

var (
	ErrInvalidPlanType    = errors.New("plan type must be \"analyze\" or \"full_day\"")
	ErrInvalidMealsPerDay = fmt.Errorf("meals per day must be between %d and %d", minMealsPerDay, maxMealsPerDay)
)

// analysisSchema is the JSON shape the model is told to answer with
const analysisSchema = `{
  "detectedMealName": string,
  "estimatedCalories": number,
  "macros": { "protein": number, "carbs": number, "fats": number },
  "healthAnalysis": string,
  "dailyPlan": [
    {
      "mealTime": string,
      "options": [
        { "optionName": string, "foodItems": string, "calories": number, "protein": number, "carbs": number, "fats": number }
      ]
    }
  ],
  "coachSummary": string,
  "disclaimer": string
}`

// PromptRequest carries everything the prompt depends on
type PromptRequest struct {
	Profile     models.Profile
	HasImage    bool
	Description string
	PlanType    models.PlanType
	MealsPerDay int
}

// Prompt is the instruction text sent to the model
type Prompt struct {
	Text   string
	Schema string
}

// EnergyEstimate is a Mifflin-St Jeor reference for the profile
type EnergyEstimate struct {
	BMR  int
	TDEE int
}

// EstimateEnergy computes BMR and TDEE from the profile.
// ok is false when height, weight or age are missing.
func EstimateEnergy(p models.Profile) (EnergyEstimate, bool) {
	if p.Age <= 0 || p.Height <= 0 || p.Weight <= 0 {
		return EnergyEstimate{}, false
	}

	bmr := 10*p.Weight + 6.25*p.Height - 5*float64(p.Age)
	switch p.Gender {
	case models.GenderMale:
		bmr += 5
	case models.GenderFemale:
		bmr -= 161
	default:
		// midpoint of the two sex constants
		bmr -= 78
	}

	tdee := bmr * p.ActivityLevel.Multiplier()
	return EnergyEstimate{
		BMR:  int(math.Round(bmr)),
		TDEE: int(math.Round(tdee)),
	}, true
}

// normalizeMealsPerDay applies the default and the 2-5 range
func normalizeMealsPerDay(n int) (int, error) {
	if n == 0 {
		return defaultMealsPerDay, nil
	}
	if n < minMealsPerDay || n > maxMealsPerDay {
		return 0, ErrInvalidMealsPerDay
	}
	return n, nil
}

// BuildPrompt turns a profile and request parameters into model instructions
func BuildPrompt(req PromptRequest) (Prompt, error) {
	if !req.PlanType.IsValid() {
		return Prompt{}, ErrInvalidPlanType
	}
	meals, err := normalizeMealsPerDay(req.MealsPerDay)
	if err != nil {
		return Prompt{}, err
	}

	p := req.Profile
	var b strings.Builder

	b.WriteString("You are CraveSmart, an expert nutrition coach and dietitian.\n\n")

	b.WriteString("USER PROFILE:\n")
	fmt.Fprintf(&b, "- Age: %d\n", p.Age)
	fmt.Fprintf(&b, "- Gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "- Height: %g cm\n", p.Height)
	fmt.Fprintf(&b, "- Weight: %g kg\n", p.Weight)
	fmt.Fprintf(&b, "- Activity level: %s\n", p.ActivityLevel)
	fmt.Fprintf(&b, "- Fitness goal: %s\n", p.Goal)
	fmt.Fprintf(&b, "- Diet type: %s\n", p.DietType)
	if p.Country != "" {
		fmt.Fprintf(&b, "- Country: %s\n", p.Country)
	}
	if p.MacroPreference != "" {
		fmt.Fprintf(&b, "- Macro / goal preference: %s\n", p.MacroPreference)
	}
	if p.ProteinPreference != "" {
		fmt.Fprintf(&b, "- Protein preference: %s\n", p.ProteinPreference)
	}
	if p.IsOnDiet && strings.TrimSpace(p.DietDescription) != "" {
		fmt.Fprintf(&b, "- Currently following a diet: %s\n", strings.TrimSpace(p.DietDescription))
	}
	if items := strings.TrimSpace(p.AvailableItems); items != "" {
		fmt.Fprintf(&b, "- Foods available at home (prefer these): %s\n", items)
	}
	b.WriteString("\n")

	b.WriteString(dietRules(p.DietType))
	b.WriteString(calorieRules(p))

	if p.PreferLocalFood && p.Country != "" {
		fmt.Fprintf(&b, "CUISINE: Prefer dishes and ingredients that are common and affordable in %s.\n\n", p.Country)
	}

	b.WriteString("TASK:\n")
	if req.HasImage {
		b.WriteString("A photo of a meal is attached. Identify the meal, estimate its total calories and macros (protein, carbs, fats in grams), and analyze how well it fits the user's goal.\n")
		if d := strings.TrimSpace(req.Description); d != "" {
			fmt.Fprintf(&b, "The user describes the meal as: %q. Use this to refine portion sizes and ingredients.\n", d)
		}
	} else {
		b.WriteString("No meal photo was provided. Skip meal identification: set \"detectedMealName\" to \"N/A\", \"estimatedCalories\" to 0 and every macro to 0.\n")
		if d := strings.TrimSpace(req.Description); d != "" {
			fmt.Fprintf(&b, "Additional notes from the user: %q.\n", d)
		}
	}

	if req.PlanType == models.PlanFullDay {
		fmt.Fprintf(&b, "Create a full-day meal plan with exactly %d meal slots in \"dailyPlan\". ", meals)
		b.WriteString("Give every slot 2 or 3 interchangeable options, each with its own food items, portion sizes, calories and macros. ")
		b.WriteString("Any combination of one option per slot must respect the calorie rules above.\n")
	} else {
		b.WriteString("Do not include \"dailyPlan\"; focus on the analyzed meal.\n")
	}
	b.WriteString("Finish with a short, encouraging \"coachSummary\".\n\n")

	b.WriteString("OUTPUT FORMAT:\n")
	b.WriteString("Respond with a single JSON object and nothing else. All numeric fields must be plain numbers without units. Use this schema:\n")
	b.WriteString(analysisSchema)
	b.WriteString("\n")

	return Prompt{Text: b.String(), Schema: analysisSchema}, nil
}

func dietRules(d models.DietType) string {
	switch d {
	case models.DietVegetarian:
		return "STRICT DIET RULES: The user is VEGETARIAN. Never include meat, poultry, fish, seafood or eggs in any form. Dairy (paneer, milk, curd, cheese) is allowed.\n\n"
	case models.DietVegPlusEggs:
		return "STRICT DIET RULES: The user is VEGETARIAN BUT EATS EGGS. Never include meat, poultry, fish or seafood. Eggs and dairy are allowed.\n\n"
	default:
		return "DIET RULES: No dietary restrictions. Meat, fish, eggs and dairy are all allowed.\n\n"
	}
}

func calorieRules(p models.Profile) string {
	if p.HasCalorieLimit() {
		return fmt.Sprintf("CALORIE RULES: HARD LIMIT. Total daily calories must NOT exceed %g kcal. Do not estimate TDEE; plan at or below this ceiling.\n\n", *p.ManualCalorieLimit)
	}

	var b strings.Builder
	b.WriteString("CALORIE RULES: Estimate the user's TDEE with the Mifflin-St Jeor equation and the activity multiplier, then adjust for the fitness goal (surplus for bulking, deficit for cutting, none for maintenance).")
	if est, ok := EstimateEnergy(p); ok {
		fmt.Fprintf(&b, " Reference values: BMR about %d kcal, TDEE about %d kcal.", est.BMR, est.TDEE)
	}
	b.WriteString("\n\n")
	return b.String()
}
