package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"calorie-counter/internal/models"
)

// FormatTotal renders "Total Calories: N kcal".
func FormatTotal(total float64) string {
	return StyleBlue.Render(fmt.Sprintf("Total Calories: %s kcal", models.FormatCalories(total)))
}

// FormatDay renders one date section with its entries indexed from zero, the
// index the remove command expects.
func FormatDay(day models.DaySummary) string {
	var b strings.Builder
	b.WriteString(Header(day.Date))
	b.WriteString("\n")

	rows := make([][]string, 0, len(day.Entries))
	for i, e := range day.Entries {
		rows = append(rows, []string{
			Dim(strconv.Itoa(i)),
			e.Name,
			models.FormatCalories(e.Calories) + " kcal",
		})
	}
	b.WriteString(RenderTable([]string{"#", "Food", "Calories"}, rows))
	b.WriteString(FormatTotal(day.TotalCalories))
	b.WriteString("\n")
	return b.String()
}

// FormatLog renders every date section, newest first.
func FormatLog(days []models.DaySummary) string {
	if len(days) == 0 {
		return Dim("No food logged yet.") + "\n"
	}
	sections := make([]string, 0, len(days))
	for _, d := range days {
		sections = append(sections, FormatDay(d))
	}
	return strings.Join(sections, "\n")
}

// FormatLogged renders the result of one lookup appended under date.
func FormatLogged(date string, logged []models.FoodEntry, dayTotal float64) string {
	var b strings.Builder
	if len(logged) == 0 {
		b.WriteString(Dim("No foods matched that query.") + "\n")
	}
	for _, e := range logged {
		fmt.Fprintf(&b, "%s Logged %s %s\n",
			StyleGreen.Render("✔"),
			Bold(e.Name),
			Dim(fmt.Sprintf("(%s kcal)", models.FormatCalories(e.Calories))))
	}
	fmt.Fprintf(&b, "%s  %s\n", date, FormatTotal(dayTotal))
	return b.String()
}
