// internal/models/food.go
package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateKeyLayout is the calendar-date format used for log keys ("12/26/2024").
// Changing it orphans every entry persisted under the previous layout.
const DateKeyLayout = "1/2/2006"

// FoodEntry is one logged item.
type FoodEntry struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
}

// FoodRecord is a food item as returned by the nutrition service.
type FoodRecord struct {
	FoodName           string  `json:"food_name"`
	Calories           float64 `json:"nf_calories"`
	ServingQty         float64 `json:"serving_qty,omitempty"`
	ServingUnit        string  `json:"serving_unit,omitempty"`
	ServingWeightGrams float64 `json:"serving_weight_grams,omitempty"`
	Protein            float64 `json:"nf_protein,omitempty"`
	Carbs              float64 `json:"nf_total_carbohydrate,omitempty"`
	Fat                float64 `json:"nf_total_fat,omitempty"`
}

// Entry converts the record into the shape stored in the log.
func (r FoodRecord) Entry() FoodEntry {
	return FoodEntry{Name: r.FoodName, Calories: r.Calories}
}

// LogStore maps a date key to the entries logged on that date, in insertion order.
// A key is present only while its entry list is non-empty.
type LogStore map[string][]FoodEntry

// DateKey formats t as a log key.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// TotalCalories sums the calories of entries.
func TotalCalories(entries []FoodEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Calories
	}
	return total
}

// Clone returns a deep copy of the store.
func (s LogStore) Clone() LogStore {
	out := make(LogStore, len(s))
	for date, entries := range s {
		cp := make([]FoodEntry, len(entries))
		copy(cp, entries)
		out[date] = cp
	}
	return out
}

// Dates returns the store's keys, newest calendar date first. Keys that do not
// parse as dates come last in lexical order.
func (s LogStore) Dates() []string {
	dates := make([]string, 0, len(s))
	for date := range s {
		dates = append(dates, date)
	}

	sort.Slice(dates, func(i, j int) bool {
		ti, errI := time.Parse(DateKeyLayout, dates[i])
		tj, errJ := time.Parse(DateKeyLayout, dates[j])
		switch {
		case errI == nil && errJ == nil:
			if ti.Equal(tj) {
				return dates[i] < dates[j]
			}
			return ti.After(tj)
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return dates[i] < dates[j]
		}
	})
	return dates
}

// DaySummary is one date section as shown by the widget surfaces.
type DaySummary struct {
	Date          string      `json:"date"`
	Entries       []FoodEntry `json:"entries"`
	TotalCalories float64     `json:"total_calories"`
}

// Summaries returns one DaySummary per date in Dates order.
func (s LogStore) Summaries() []DaySummary {
	dates := s.Dates()
	out := make([]DaySummary, 0, len(dates))
	for _, date := range dates {
		entries := s[date]
		out = append(out, DaySummary{
			Date:          date,
			Entries:       entries,
			TotalCalories: TotalCalories(entries),
		})
	}
	return out
}

// FormatCalories prints whole numbers without a fraction and anything else
// with at most two decimals.
func FormatCalories(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
