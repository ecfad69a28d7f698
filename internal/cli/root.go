package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"calorie-counter/internal/config"
	"calorie-counter/internal/dailylog"
	"calorie-counter/internal/nutrition"
	"calorie-counter/internal/storage"
	"calorie-counter/internal/widget"
)

// App holds the configuration and collaborators shared by every command.
// Storage is opened lazily on the first command that needs it.
type App struct {
	Config   config.Config
	Resolver nutrition.Resolver

	// OpenStorage opens the key-value backend; nil means SQLite at Config.DBPath.
	OpenStorage func(path string) (storage.KV, error)

	// Clock overrides the time used to pick today's date.
	Clock func() time.Time

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool

	// RunProgram runs the terminal widget; tests replace it.
	RunProgram func(m tea.Model, in io.Reader, out io.Writer) error

	kv     storage.KV
	store  *dailylog.Store
	widget *widget.Controller
}

func (a *App) open(ctx context.Context) error {
	if a.widget != nil {
		return nil
	}

	openFn := a.OpenStorage
	if openFn == nil {
		openFn = func(path string) (storage.KV, error) {
			s, err := storage.NewSQLiteStorage(path)
			if err != nil {
				return nil, err
			}
			return s, nil
		}
	}

	kv, err := openFn(a.Config.DBPath)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	opts := []dailylog.Option{dailylog.WithKey(a.Config.StorageKey)}
	if a.Clock != nil {
		opts = append(opts, dailylog.WithClock(a.Clock))
	}
	store, err := dailylog.Load(ctx, kv, opts...)
	if err != nil {
		_ = kv.Close()
		return fmt.Errorf("loading daily log: %w", err)
	}

	a.kv = kv
	a.store = store
	a.widget = widget.NewController(a.Resolver, store)
	return nil
}

// Close releases the storage backend if it was opened.
func (a *App) Close() error {
	if a.kv == nil {
		return nil
	}
	err := a.kv.Close()
	a.kv, a.store, a.widget = nil, nil, nil
	return err
}

// NewRootCmd creates the top-level "calorie-counter" command and registers
// all subcommands against the provided App. Run bare on a terminal it opens
// the interactive widget.
func NewRootCmd(app *App) *cobra.Command {
	var dbPath string

	root := &cobra.Command{
		Use:           "calorie-counter",
		Short:         "Look up foods and track daily calories",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dbPath != "" {
				app.Config.DBPath = dbPath
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && app.IsInteractive() {
				return runWidget(cmd, app)
			}
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db-path", "", "Database path (overrides CALORIE_DB_PATH)")

	root.AddCommand(
		newServeCmd(app),
		newWidgetCmd(app),
		newAddCmd(app),
		newListCmd(app),
		newRemoveCmd(app),
		newTotalCmd(app),
	)

	return root
}
