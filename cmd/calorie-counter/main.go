// cmd/calorie-counter/main.go
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"calorie-counter/internal/cli"
	"calorie-counter/internal/config"
	"calorie-counter/internal/nutrition"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()

	var observer nutrition.Observer = nutrition.NoopObserver{}
	if cfg.LogCalls {
		observer = nutrition.NewLogObserver(os.Stderr)
	}

	app := &cli.App{
		Config:   cfg,
		Resolver: nutrition.NewClient(cfg.Nutrition, observer),
	}
	defer app.Close()

	// Bare invocation on a terminal opens the widget.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
