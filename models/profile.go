package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Gender represents the user's gender
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// IsValid reports whether g is a known gender
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// ActivityLevel represents how often the user exercises
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "Sedentary (little to no exercise)"
	ActivityLight     ActivityLevel = "Light (exercise 1-3 times/week)"
	ActivityModerate  ActivityLevel = "Moderate (exercise 4-5 times/week)"
	ActivityHigh      ActivityLevel = "High (intense exercise 6-7 times/week)"
)

// IsValid reports whether a is a known activity level
func (a ActivityLevel) IsValid() bool {
	switch a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityHigh:
		return true
	}
	return false
}

// Multiplier returns the TDEE activity multiplier for a
func (a ActivityLevel) Multiplier() float64 {
	switch a {
	case ActivitySedentary:
		return 1.2
	case ActivityLight:
		return 1.375
	case ActivityHigh:
		return 1.725
	default:
		return 1.55
	}
}

// FitnessGoal represents what the user is training for
type FitnessGoal string

const (
	GoalBulking     FitnessGoal = "Bulking (Gain Muscle)"
	GoalCutting     FitnessGoal = "Cutting (Lose Fat)"
	GoalMaintenance FitnessGoal = "Maintenance (Stay same)"
)

// IsValid reports whether g is a known goal
func (g FitnessGoal) IsValid() bool {
	switch g {
	case GoalBulking, GoalCutting, GoalMaintenance:
		return true
	}
	return false
}

// DietType represents the user's declared dietary restriction
type DietType string

const (
	DietVegetarian  DietType = "Vegetarian"
	DietVegPlusEggs DietType = "Vegetarian + Eggs"
	DietNonVeg      DietType = "Non-Vegetarian"
)

// IsValid reports whether d is a known diet type
func (d DietType) IsValid() bool {
	switch d {
	case DietVegetarian, DietVegPlusEggs, DietNonVeg:
		return true
	}
	return false
}

// Profile describes a user's body stats, goal and food preferences
type Profile struct {
	Age           int           `json:"age" validate:"gte=0"`
	Gender        Gender        `json:"gender" validate:"enum"`
	Height        float64       `json:"height" validate:"gte=0"` // cm
	Weight        float64       `json:"weight" validate:"gte=0"` // kg
	ActivityLevel ActivityLevel `json:"activityLevel" validate:"enum"`
	Goal          FitnessGoal   `json:"goal" validate:"enum"`
	DietType      DietType      `json:"dietType" validate:"enum"`
	Country       string        `json:"country"`

	PreferLocalFood bool `json:"preferLocalFood"`

	// Advanced preferences
	IsOnDiet                  bool     `json:"isOnDiet"`
	DietDescription           string   `json:"dietDescription"`
	MacroPreference           string   `json:"macroPreference"`
	ProteinPreference         string   `json:"proteinPreference"`
	ManualCalorieLimitEnabled bool     `json:"manualCalorieLimitEnabled"`
	ManualCalorieLimit        *float64 `json:"manualCalorieLimit,omitempty" validate:"omitempty,gte=0"`
	AvailableItems            string   `json:"availableItems"`
}

// PreferenceOption is a selectable label/value pair
type PreferenceOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// MacroPreferences lists the macro / goal preferences offered to users
var MacroPreferences = []PreferenceOption{
	{Label: "Balanced calories and protein (Default)", Value: "Balanced calories and protein (default)"},
	{Label: "Higher protein, lower calories (Cutting)", Value: "Higher protein, lower calories (lean / cutting focus)"},
	{Label: "Higher calories and higher protein (Bulking)", Value: "Higher calories and higher protein (bulking focus)"},
	{Label: "Lower carbs, moderate fats", Value: "Lower carbs, moderate fats (low-carb style)"},
	{Label: "Flexible, just make it realistic", Value: "Flexible, just make it realistic"},
}

// ProteinPreferences lists the protein intake preferences offered to users
var ProteinPreferences = []PreferenceOption{
	{Label: "No specific preference (default)", Value: "No specific preference (default)"},
	{Label: "Higher protein than normal", Value: "Higher protein than normal"},
	{Label: "Very high protein target (aggressive)", Value: "Very high protein target (aggressive)"},
	{Label: "Moderate protein", Value: "Moderate protein"},
	{Label: "Lower protein", Value: "Lower protein"},
}

// DefaultProfile returns the profile a new session starts with
func DefaultProfile() Profile {
	return Profile{
		Age:               25,
		Gender:            GenderMale,
		Height:            175,
		Weight:            70,
		ActivityLevel:     ActivityModerate,
		Goal:              GoalMaintenance,
		DietType:          DietNonVeg,
		Country:           "India",
		PreferLocalFood:   true,
		MacroPreference:   MacroPreferences[0].Value,
		ProteinPreference: ProteinPreferences[0].Value,
	}
}

// HasCalorieLimit reports whether a positive manual calorie ceiling is active
func (p Profile) HasCalorieLimit() bool {
	return p.ManualCalorieLimitEnabled && p.ManualCalorieLimit != nil && *p.ManualCalorieLimit > 0
}

// IsIndian reports whether the profile's country mentions India
func (p Profile) IsIndian() bool {
	return strings.Contains(strings.ToLower(p.Country), "india")
}

type enumValue interface {
	IsValid() bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("enum", validateEnum); err != nil {
		panic(fmt.Sprintf("models: register enum validation: %v", err))
	}
	return v
}

func validateEnum(fl validator.FieldLevel) bool {
	e, ok := fl.Field().Interface().(enumValue)
	return ok && e.IsValid()
}

// Validate checks the profile invariants
func (p Profile) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	if fe.Tag() == "enum" {
		return fmt.Errorf("invalid %s: %q", fe.Field(), fe.Value())
	}
	return fmt.Errorf("%s must not be negative", fe.Field())
}

// SavedProfile is a named profile stored on an account
type SavedProfile struct {
	Profile
	ID          uuid.UUID `json:"id"`
	ProfileName string    `json:"profileName"`
}

// SavedProfiles is the list of profiles owned by an account
type SavedProfiles []SavedProfile

// Value implements driver.Valuer for JSONB
func (s SavedProfiles) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *SavedProfiles) Scan(value interface{}) error {
	if value == nil {
		*s = make(SavedProfiles, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*s = make(SavedProfiles, 0)
		return nil
	}

	if len(bytes) == 0 {
		*s = make(SavedProfiles, 0)
		return nil
	}

	return json.Unmarshal(bytes, s)
}
