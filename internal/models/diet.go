// ABOUTME: Diet entry and diet goal record bodies.
// ABOUTME: Macro values are kept as the text the user typed.
package models

import (
	"fmt"
	"time"
)

// Macros holds calories and macronutrients as entered. Values are numeric text.
type Macros struct {
	Calories      string `json:"calories"`
	Protein       string `json:"protein"`
	Carbohydrates string `json:"carbohydrates"`
	Fat           string `json:"fat"`
}

// DietEntry is a logged meal.
type DietEntry struct {
	MealName string `json:"meal_name"`
	Macros
	OccurredAt time.Time `json:"occurred_at"`
}

// NewDietEntry creates a DietEntry. OccurredAt is resolved by the store on insert.
func NewDietEntry(mealName string, macros Macros) *DietEntry {
	return &DietEntry{MealName: mealName, Macros: macros}
}

func (*DietEntry) Kind() Kind { return KindDietEntry }
func (*DietEntry) sealed()    {}

// DietGoal is the owner's single daily macro/calorie target.
type DietGoal struct {
	Macros
}

// NewDietGoal creates a DietGoal.
func NewDietGoal(macros Macros) *DietGoal {
	return &DietGoal{Macros: macros}
}

func (*DietGoal) Kind() Kind { return KindDietGoal }
func (*DietGoal) sealed()    {}

// Summary projects the goal into its display form.
func (g *DietGoal) Summary() DietGoalSummary {
	return DietGoalSummary{Macros: g.Macros}
}

// DietGoalSummary is the formatted "current diet goal" shown on the home view.
type DietGoalSummary struct {
	Macros
}

func (s DietGoalSummary) String() string {
	return fmt.Sprintf("Calories: %s, Protein: %s, Carbs: %s, Fat: %s",
		s.Calories, s.Protein, s.Carbohydrates, s.Fat)
}
