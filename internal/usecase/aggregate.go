package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/jumo/backend/internal/domain"
)

// NutrientTotal is a summed nutrient amount in an aggregate view.
type NutrientTotal struct {
	NutrientID string  `json:"nutrientId"`
	Amount     float64 `json:"amount"`
}

// DayAggregate is one calendar day's meals and nutrient totals, in the
// timezone the aggregation was requested for.
type DayAggregate struct {
	Date      string          `json:"date"`
	Meals     []domain.Meal   `json:"meals"`
	Nutrients []NutrientTotal `json:"nutrients"`
}

// AggregateOptions modifies which rows participate in an aggregate.
type AggregateOptions struct {
	// IncludeDeleted keeps soft-deleted meals and items in the totals.
	IncludeDeleted bool
}

// AggregateMeal sums the persisted nutrient snapshots of a meal's items
// per nutrient id. Items with an empty snapshot contribute zero. Totals
// are returned sorted by nutrient id for deterministic output.
func AggregateMeal(items []domain.MealItem, opts AggregateOptions) []NutrientTotal {
	totals := make(map[string]float64)

	for _, item := range items {
		if item.DeletedAt != nil && !opts.IncludeDeleted {
			continue
		}
		for _, nutrient := range item.Nutrients {
			totals[nutrient.NutrientID] += nutrient.Amount
		}
	}

	return sortedTotals(totals)
}

// AggregateByDay buckets meals by the calendar date of consumedAt as
// rendered in the given IANA timezone and sums each day's snapshots.
// Meals inside a bucket are ordered by consumedAt ascending.
func AggregateByDay(meals []domain.Meal, timezone string, opts AggregateOptions) (map[string]DayAggregate, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	days := make(map[string]DayAggregate)

	for _, meal := range meals {
		if meal.DeletedAt != nil && !opts.IncludeDeleted {
			continue
		}

		date := meal.ConsumedAt.In(loc).Format("2006-01-02")
		day := days[date]
		day.Date = date
		day.Meals = append(day.Meals, meal)
		days[date] = day
	}

	for date, day := range days {
		sort.Slice(day.Meals, func(i, j int) bool {
			return day.Meals[i].ConsumedAt.Before(day.Meals[j].ConsumedAt)
		})

		totals := make(map[string]float64)
		for _, meal := range day.Meals {
			for _, total := range AggregateMeal(meal.Items, opts) {
				totals[total.NutrientID] += total.Amount
			}
		}
		day.Nutrients = sortedTotals(totals)
		days[date] = day
	}

	return days, nil
}

func sortedTotals(totals map[string]float64) []NutrientTotal {
	result := make([]NutrientTotal, 0, len(totals))
	for id, amount := range totals {
		result = append(result, NutrientTotal{NutrientID: id, Amount: amount})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NutrientID < result[j].NutrientID
	})
	return result
}
