package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"calorie-counter/internal/cli/formatter"
	"calorie-counter/internal/dailylog"
	"calorie-counter/internal/models"
)

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <query...>",
		Short: "Look up foods and log them under today's date",
		Example: `  calorie-counter add 1 apple
  calorie-counter add "2 eggs and a slice of toast"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.open(ctx); err != nil {
				return err
			}

			if err := app.widget.Submit(ctx, strings.Join(args, " ")); err != nil {
				return err
			}

			st := app.widget.State()
			logged := make([]models.FoodEntry, 0, len(st.Results))
			for _, r := range st.Results {
				logged = append(logged, r.Entry())
			}
			total := dailylog.TotalCalories(app.store.Entries(st.Today))
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatLogged(st.Today, logged, total))
			return nil
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list [date]",
		Short: "Show logged foods grouped by date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			days := app.store.Snapshot().Summaries()
			if len(args) == 1 {
				days = filterDay(days, args[0])
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(days)
			}

			if len(args) == 1 && len(days) == 0 {
				fmt.Fprintln(out, formatter.Dim("No food logged on "+args[0]+"."))
				return nil
			}
			fmt.Fprint(out, formatter.FormatLog(days))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the log as JSON")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <date> <index>",
		Short: "Remove one logged food by date and position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := args[0]
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}

			ctx := cmd.Context()
			if err := app.open(ctx); err != nil {
				return err
			}

			entries := app.store.Entries(date)
			if err := app.widget.Remove(ctx, date, index); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", formatter.Bold(entries[index].Name), date)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTotal(dailylog.TotalCalories(app.store.Entries(date))))
			return nil
		},
	}
}

func newTotalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "total [date]",
		Short: "Show the calorie total for a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			date := app.store.Today()
			if len(args) == 1 {
				date = args[0]
			}
			total := dailylog.TotalCalories(app.store.Entries(date))
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", date, formatter.FormatTotal(total))
			return nil
		},
	}
}

func filterDay(days []models.DaySummary, date string) []models.DaySummary {
	for _, d := range days {
		if d.Date == date {
			return []models.DaySummary{d}
		}
	}
	return nil
}
