package services

import (
	"fmt"

	"finans/internal/core"
)

// Observation kinds.
const (
	KindBudgetOver      = "budget_over"
	KindBudgetNearLimit = "budget_near_limit"
	KindBudgetOnTrack   = "budget_on_track"
	KindBudgetUntouched = "budget_untouched"
	KindBudgetInvalid   = "budget_invalid"
	KindGoalReached     = "goal_reached"
	KindGoalProgress    = "goal_progress"
	KindGoalNotStarted  = "goal_not_started"
	KindGoalDueSoon     = "goal_due_soon"
	KindGoalOverdue     = "goal_overdue"
)

// Observation severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Observation is one deterministic finding about a user's budgets or
// goals. Subject is the budget category or goal name; Message is the
// Danish wording shown to the user.
type Observation struct {
	Kind     string  `json:"kind"`
	Severity string  `json:"severity"`
	Subject  string  `json:"subject"`
	Message  string  `json:"message"`
	Amount   float64 `json:"amount,omitempty"`
	Percent  float64 `json:"percent,omitempty"`
	DaysLeft int     `json:"days_left,omitempty"`
}

// EvaluateBudgets classifies each budget's current-month status. A
// positive limit is either exceeded, nearly exhausted (less than 10%
// left), on track, or untouched; a zero or negative limit gets flagged
// instead of analyzed.
func EvaluateBudgets(statuses []core.BudgetStatus) []Observation {
	obs := make([]Observation, 0, len(statuses))
	for _, s := range statuses {
		switch {
		case s.MonthlyLimit <= 0:
			obs = append(obs, Observation{
				Kind:     KindBudgetInvalid,
				Severity: SeverityInfo,
				Subject:  s.Category,
				Message:  fmt.Sprintf("Budget for %s er nul eller negativt. Overvej at sætte et realistisk budget her.", s.Category),
			})
		case s.Remaining < 0:
			obs = append(obs, Observation{
				Kind:     KindBudgetOver,
				Severity: SeverityWarning,
				Subject:  s.Category,
				Message:  fmt.Sprintf("I %s-kategorien har brugeren overskredet budgettet med %.2f DKK denne måned.", s.Category, -s.Remaining),
				Amount:   -s.Remaining,
			})
		case s.Remaining < s.MonthlyLimit*0.1:
			obs = append(obs, Observation{
				Kind:     KindBudgetNearLimit,
				Severity: SeverityWarning,
				Subject:  s.Category,
				Message:  fmt.Sprintf("Brugeren er tæt på at opbruge budgettet for %s denne måned (kun %.2f DKK tilbage).", s.Category, s.Remaining),
				Amount:   s.Remaining,
			})
		case s.Spent > 0:
			obs = append(obs, Observation{
				Kind:     KindBudgetOnTrack,
				Severity: SeverityInfo,
				Subject:  s.Category,
				Message:  fmt.Sprintf("Brugeren holder sig godt inden for budgettet for %s med %.2f DKK tilbage denne måned.", s.Category, s.Remaining),
				Amount:   s.Remaining,
			})
		default:
			obs = append(obs, Observation{
				Kind:     KindBudgetUntouched,
				Severity: SeverityInfo,
				Subject:  s.Category,
				Message:  fmt.Sprintf("Brugeren har endnu ikke brugt noget af sit budget for %s denne måned.", s.Category),
			})
		}
	}
	return obs
}

// EvaluateGoals classifies each goal's progress as of today, and
// additionally flags unmet goals whose due date is within 60 days or
// already passed.
func EvaluateGoals(goals []core.Goal, today core.Date) []Observation {
	obs := make([]Observation, 0, len(goals))
	for _, g := range goals {
		percent := 0.0
		if g.TargetAmount > 0 {
			percent = g.CurrentAmount / g.TargetAmount * 100
		}

		switch {
		case g.CurrentAmount >= g.TargetAmount:
			obs = append(obs, Observation{
				Kind:     KindGoalReached,
				Severity: SeverityInfo,
				Subject:  g.Name,
				Message:  fmt.Sprintf("Brugeren har succesfuldt nået målet '%s'.", g.Name),
				Percent:  percent,
			})
		case g.CurrentAmount > 0:
			obs = append(obs, Observation{
				Kind:     KindGoalProgress,
				Severity: SeverityInfo,
				Subject:  g.Name,
				Message:  fmt.Sprintf("Brugeren har gjort fremskridt med målet '%s' (%.1f%% opnået).", g.Name, percent),
				Percent:  percent,
			})
		default:
			obs = append(obs, Observation{
				Kind:     KindGoalNotStarted,
				Severity: SeverityInfo,
				Subject:  g.Name,
				Message:  fmt.Sprintf("Brugeren har endnu ikke startede med målet '%s'.", g.Name),
			})
		}

		if !g.DueDate.IsEmpty() && g.CurrentAmount < g.TargetAmount {
			daysLeft := today.DaysUntil(g.DueDate)
			if daysLeft > 0 && daysLeft < 60 {
				obs = append(obs, Observation{
					Kind:     KindGoalDueSoon,
					Severity: SeverityWarning,
					Subject:  g.Name,
					Message:  fmt.Sprintf("Målet '%s' har en deadline om %d dage, og det er endnu ikke nået.", g.Name, daysLeft),
					DaysLeft: daysLeft,
				})
			} else if daysLeft <= 0 {
				obs = append(obs, Observation{
					Kind:     KindGoalOverdue,
					Severity: SeverityWarning,
					Subject:  g.Name,
					Message:  fmt.Sprintf("Målet '%s' havde en deadline, der er overskredet, og det er endnu ikke nået.", g.Name),
				})
			}
		}
	}
	return obs
}
