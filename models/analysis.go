package models

// PlanType selects between analyzing one meal and planning a whole day
type PlanType string

const (
	PlanAnalyze PlanType = "analyze"
	PlanFullDay PlanType = "full_day"
)

// IsValid reports whether p is a known plan type
func (p PlanType) IsValid() bool {
	return p == PlanAnalyze || p == PlanFullDay
}

// Macros holds macronutrients in grams
type Macros struct {
	Protein Number `json:"protein"`
	Carbs   Number `json:"carbs"`
	Fats    Number `json:"fats"`
}

// MealOption is one concrete suggestion for a meal slot
type MealOption struct {
	OptionName Text   `json:"optionName"`
	FoodItems  Text   `json:"foodItems"`
	Calories   Number `json:"calories"`
	Protein    Number `json:"protein"`
	Carbs      Number `json:"carbs"`
	Fats       Number `json:"fats"`

	// Replaced is set when the diet check swapped out FoodItems.
	// The macro numbers still describe the original suggestion.
	Replaced bool `json:"replaced,omitempty"`
}

// MealSlot is a time-of-day bucket with interchangeable options
type MealSlot struct {
	MealTime Text         `json:"mealTime"`
	Options  []MealOption `json:"options"`
}

// AnalysisResult is the model's answer to an analysis or planning request
type AnalysisResult struct {
	DetectedMealName  Text       `json:"detectedMealName"`
	EstimatedCalories Number     `json:"estimatedCalories"`
	Macros            Macros     `json:"macros"`
	HealthAnalysis    Text       `json:"healthAnalysis"`
	DailyPlan         []MealSlot `json:"dailyPlan,omitempty"`
	CoachSummary      Text       `json:"coachSummary"`
	Disclaimer        Text       `json:"disclaimer,omitempty"`

	// ImagePath is where the submitted photo was archived, if it was
	ImagePath string `json:"imagePath,omitempty"`
}

// Clone returns a deep copy of r
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.DailyPlan != nil {
		out.DailyPlan = make([]MealSlot, len(r.DailyPlan))
		for i, slot := range r.DailyPlan {
			out.DailyPlan[i] = MealSlot{MealTime: slot.MealTime}
			if slot.Options != nil {
				out.DailyPlan[i].Options = append([]MealOption(nil), slot.Options...)
			}
		}
	}
	return &out
}
