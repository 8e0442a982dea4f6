package service

import (
	"errors"

	"cravesmart-backend/models"
)

var (
	ErrNoPlan           = errors.New("no meal plan to select from")
	ErrSlotOutOfRange   = errors.New("meal slot out of range")
	ErrInvalidDirection = errors.New("direction must be \"next\" or \"prev\"")
)

// Direction is the way an option is cycled
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

const (
	calorieSuffix = " kcal"
	gramSuffix    = "g"
)

// PlanSelection tracks the chosen option for every slot of a daily plan
type PlanSelection struct {
	indices []int
}

// NewPlanSelection selects the first option of every slot
func NewPlanSelection(plan []models.MealSlot) *PlanSelection {
	return &PlanSelection{indices: make([]int, len(plan))}
}

// Indices returns a copy of the selected option index per slot
func (s *PlanSelection) Indices() []int {
	return append([]int{}, s.indices...)
}

// Cycle moves the selection of one slot, wrapping around in either direction.
// Slots with fewer than two options stay where they are.
func (s *PlanSelection) Cycle(plan []models.MealSlot, slot int, dir Direction) (int, error) {
	if dir != DirectionNext && dir != DirectionPrev {
		return 0, ErrInvalidDirection
	}
	if len(plan) == 0 {
		return 0, ErrNoPlan
	}
	if slot < 0 || slot >= len(plan) || slot >= len(s.indices) {
		return 0, ErrSlotOutOfRange
	}

	count := len(plan[slot].Options)
	if count <= 1 {
		return s.indices[slot], nil
	}

	next := s.indices[slot]
	if dir == DirectionNext {
		next++
	} else {
		next--
	}
	next = ((next % count) + count) % count

	s.indices[slot] = next
	return next, nil
}

// Selected returns the chosen option of a slot, if the slot has one
func (s *PlanSelection) Selected(plan []models.MealSlot, slot int) (models.MealOption, bool) {
	if slot < 0 || slot >= len(plan) {
		return models.MealOption{}, false
	}
	idx := 0
	if slot < len(s.indices) {
		idx = s.indices[slot]
	}
	options := plan[slot].Options
	if idx < 0 || idx >= len(options) {
		return models.MealOption{}, false
	}
	return options[idx], true
}

// DailyTotals is the sum of the selected options' macros
type DailyTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// TotalsDisplay holds rendered totals
type TotalsDisplay struct {
	Calories string `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
	Fats     string `json:"fats"`
}

// Totals sums the selected option of every slot.
// It returns nil when there is no plan.
func (s *PlanSelection) Totals(plan []models.MealSlot) *DailyTotals {
	if len(plan) == 0 {
		return nil
	}

	totals := &DailyTotals{}
	for i := range plan {
		option, ok := s.Selected(plan, i)
		if !ok {
			continue
		}
		totals.Calories += option.Calories.Value
		totals.Protein += option.Protein.Value
		totals.Carbs += option.Carbs.Value
		totals.Fats += option.Fats.Value
	}
	return totals
}

// Display renders totals, using the placeholder for zero sums
func (t DailyTotals) Display() TotalsDisplay {
	return TotalsDisplay{
		Calories: models.FormatTotal(t.Calories, calorieSuffix),
		Protein:  models.FormatTotal(t.Protein, gramSuffix),
		Carbs:    models.FormatTotal(t.Carbs, gramSuffix),
		Fats:     models.FormatTotal(t.Fats, gramSuffix),
	}
}

// OptionDisplay holds one option's rendered macros
type OptionDisplay struct {
	Calories string `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
	Fats     string `json:"fats"`
}

// DisplayOption renders an option's macros for display
func DisplayOption(o models.MealOption) OptionDisplay {
	return OptionDisplay{
		Calories: models.FormatValue(o.Calories, calorieSuffix),
		Protein:  models.FormatValue(o.Protein, gramSuffix),
		Carbs:    models.FormatValue(o.Carbs, gramSuffix),
		Fats:     models.FormatValue(o.Fats, gramSuffix),
	}
}
