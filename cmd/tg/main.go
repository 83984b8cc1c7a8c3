// Command tg browses hierarchical data (YAML, JSON or SQLite) in a
// keyboard-driven terminal tree-grid.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/treegrid/internal/datasource"
	"github.com/vanderheijden86/treegrid/pkg/config"
	"github.com/vanderheijden86/treegrid/pkg/debug"
	"github.com/vanderheijden86/treegrid/pkg/metrics"
	"github.com/vanderheijden86/treegrid/pkg/treegrid"
	"github.com/vanderheijden86/treegrid/pkg/ui"
	"github.com/vanderheijden86/treegrid/pkg/version"
	"github.com/vanderheijden86/treegrid/pkg/watcher"
)

// cliOptions are the parsed command-line flags.
type cliOptions struct {
	configPath  string
	stateDir    string
	noHeader    bool
	expandDepth int
	watch       bool
	debugLog    string
	version     bool
	help        bool
	paths       []string
}

func parseFlags(args []string) (cliOptions, error) {
	var o cliOptions
	fs := flag.NewFlagSet("tg", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/tg/config.yaml)")
	fs.StringVar(&o.stateDir, "state-dir", "", "Directory for saved expansion state")
	fs.BoolVar(&o.noHeader, "no-header", false, "Hide the column header row")
	fs.IntVar(&o.expandDepth, "expand-depth", -1, "Levels expanded on first open (overrides config)")
	fs.BoolVar(&o.watch, "watch", true, "Reload when a data file changes")
	fs.StringVar(&o.debugLog, "debug-log", "", "Write debug logging and timing metrics to file")
	fs.BoolVar(&o.version, "version", false, "Show version")
	fs.BoolVar(&o.help, "help", false, "Show help")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.paths = fs.Args()
	if o.help {
		fmt.Println("Usage: tg [options] FILE...")
		fmt.Println("\nA terminal tree-grid viewer for YAML, JSON and SQLite data.")
		fs.PrintDefaults()
	}
	return o, nil
}

// loadConfig reads the config file and applies flag overrides. A broken
// config file is reported and replaced by defaults.
func loadConfig(o cliOptions) config.Config {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFrom(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Printf("warning: %v; using defaults", err)
		cfg = config.DefaultConfig()
	}

	if o.noHeader {
		cfg.UI.IncludeHeader = false
	}
	if o.expandDepth >= 0 {
		cfg.UI.ExpandDepth = o.expandDepth
	}
	if o.stateDir != "" {
		cfg.State.Persist = true
		cfg.State.Dir = o.stateDir
	}
	return cfg
}

func loadData(ctx context.Context, paths []string) ([]treegrid.TreeNode, error) {
	if len(paths) == 0 {
		return nil, errors.New("no data files given")
	}
	forest, err := datasource.LoadForest(ctx, paths...)
	if err != nil {
		return nil, err
	}
	if err := datasource.Validate(forest); err != nil {
		// Duplicate ids still render; focus and expansion follow the first.
		log.Printf("warning: %v", err)
	}
	return forest, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes tg and returns the process exit code. Deferred cleanup runs
// before main exits.
func run(args []string) int {
	o, err := parseFlags(args)
	if err != nil {
		return 2
	}
	if o.help {
		return 0
	}
	if o.version {
		fmt.Printf("tg %s\n", version.Version)
		return 0
	}

	if o.debugLog != "" {
		f, err := os.OpenFile(o.debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not open debug log: %v\n", err)
			return 1
		}
		defer f.Close()
		debug.SetOutput(f)
		debug.SetEnabled(true)
		defer logMetrics()
	}

	cfg := loadConfig(o)

	start := time.Now()
	forest, err := loadData(context.Background(), o.paths)
	debug.LogTiming("load data", time.Since(start))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: tg [options] FILE...")
		return 1
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: tg needs an interactive terminal")
		return 1
	}

	var w *watcher.Watcher
	if o.watch {
		w, err = watcher.New(o.paths, watcher.WithOnError(func(path string, err error) {
			log.Printf("warning: watching %s: %v", path, err)
		}))
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			log.Printf("warning: live reload disabled: %v", err)
			w = nil
		} else {
			defer w.Stop()
		}
	}

	m := ui.NewModel(ui.Options{
		Forest:  forest,
		Paths:   o.paths,
		Config:  cfg,
		Watcher: w,
	})

	if err := runTUIProgram(m); err != nil {
		fmt.Printf("Error running tg: %v\n", err)
		return 1
	}
	return 0
}

// logMetrics writes the timing summary to the debug log.
func logMetrics() {
	snap := metrics.TakeSnapshot()
	if !snap.Enabled {
		return
	}
	for _, st := range snap.Timing {
		debug.Log("metrics: %s count=%d avg=%.2fms max=%.2fms", st.Name, st.Count, st.AvgMs, st.MaxMs)
	}
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set TG_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("TG_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
