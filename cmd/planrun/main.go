package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/planrun/planrun/internal/config"
	"github.com/planrun/planrun/internal/engine"
	"github.com/planrun/planrun/internal/events"
	"github.com/planrun/planrun/internal/plan"
	"github.com/planrun/planrun/internal/registry"
	"github.com/planrun/planrun/internal/services"
	"github.com/planrun/planrun/internal/tui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("planrun", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a config file (merged over ~/.planrun/config.json)")
	useTUI := fs.Bool("tui", false, "show live progress in a terminal UI")
	logLevel := fs.String("log-level", "", "override configured log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: planrun [flags] <plan.json>")
		fs.PrintDefaults()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	logger := newLogger(cfg.Logging)

	p, err := plan.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading plan: %v\n", err)
		return 1
	}

	// Graceful shutdown on Ctrl+C / SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := registry.New()
	services.Register(reg, cfg, logger)
	auth := services.NewShellAuthenticator(cfg.Auth, logger)

	bus := events.NewBus()
	defer bus.Close()

	eng := engine.New(reg, authOrNil(auth), engine.Options{
		MaxConcurrent: cfg.MaxConcurrent,
		Bus:           bus,
		Logger:        logger,
	})

	if *useTUI {
		return runWithTUI(ctx, eng, p, bus)
	}

	result, err := eng.ExecutePlan(ctx, p)
	return report(result, err)
}

// authOrNil avoids storing a typed nil in the Authenticator interface when no
// login command is configured.
func authOrNil(a *services.ShellAuthenticator) registry.Authenticator {
	if a == nil {
		return nil
	}
	return a
}

func loadConfig(path string) (*config.EngineConfig, error) {
	if path == "" {
		return config.LoadDefault()
	}
	return config.Load("", path)
}

func newLogger(cfg config.LoggingConfig) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	logger.SetLevel(parseLevel(cfg.Level))
	if cfg.JSON {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// runWithTUI starts the Bubble Tea program, executes the plan while the TUI
// consumes engine events, and keeps the final screen up until the user quits.
func runWithTUI(ctx context.Context, eng *engine.Engine, p *plan.Plan, bus *events.Bus) int {
	program := tea.NewProgram(tui.New(bus), tea.WithAltScreen())

	tuiDone := make(chan error, 1)
	go func() {
		_, err := program.Run()
		tuiDone <- err
	}()

	resultCh := make(chan int, 1)
	go func() {
		result, err := eng.ExecutePlan(ctx, p)
		if err != nil || (result != nil && !result.Success) {
			resultCh <- 1
		} else {
			resultCh <- 0
		}
	}()

	exitCode := <-resultCh

	select {
	case <-tuiDone:
	case <-ctx.Done():
		program.Quit()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		select {
		case <-tuiDone:
		case <-shutdownCtx.Done():
		}
	}
	return exitCode
}

// report prints the per-task summary and returns the process exit code.
func report(result *plan.Result, err error) int {
	var invalid *engine.InvalidPlanError
	if errors.As(err, &invalid) {
		fmt.Fprintln(os.Stderr, "Plan rejected:")
		for _, v := range invalid.Violations {
			fmt.Fprintf(os.Stderr, "  - %s\n", v)
		}
		return 1
	}
	if result != nil {
		fmt.Print(summarize(result))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if !result.Success {
		return 1
	}
	return 0
}

// summarize renders the plan result as a plain-text table.
func summarize(result *plan.Result) string {
	ids := make([]string, 0, len(result.Results))
	for id := range result.Results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := fmt.Sprintf("run %s: ", result.RunID)
	if result.Success {
		out += "success"
	} else {
		out += "failed"
	}
	out += fmt.Sprintf(" (%v)\n", result.Duration.Round(time.Millisecond))

	for _, id := range ids {
		r := result.Results[id]
		switch {
		case r.Success:
			out += fmt.Sprintf("  ok    %-16s %v\n", id, r.Duration.Round(time.Millisecond))
		case r.RequiresAuth:
			out += fmt.Sprintf("  auth  %-16s %s\n", id, r.Error)
		default:
			out += fmt.Sprintf("  fail  %-16s %s\n", id, r.Error)
		}
	}
	for id, msg := range result.Errors {
		if _, settled := result.Results[id]; !settled {
			out += fmt.Sprintf("  stuck %-16s %s\n", id, msg)
		}
	}
	return out
}
