package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gtp/internal/config"
	"gtp/internal/discovery"
	"gtp/internal/domain"
	"gtp/internal/execution"
	"gtp/internal/reporter"
	"gtp/internal/storage"
	"gtp/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	filter    *discovery.Filter
	parser    *discovery.Parser
	stores    *StoreFactory
	formatter *ui.Formatter
	stdout    io.Writer
	stderr    io.Writer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	filter *discovery.Filter,
	parser *discovery.Parser,
	stores *StoreFactory,
	formatter *ui.Formatter,
	stdout, stderr io.Writer,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		filter:    filter,
		parser:    parser,
		stores:    stores,
		formatter: formatter,
		stdout:    stdout,
		stderr:    stderr,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	flags := rc.config.Flags

	// Discover tests
	roots, err := discoverTests(rc.config, rc.parser)
	if err != nil {
		return err
	}

	st, closeStore, err := rc.stores.Open()
	if err != nil {
		return err
	}
	defer closeStore()

	selected, narrowed, err := rc.selectTests(roots, st)
	if err != nil {
		return err
	}
	if narrowed && len(selected) == 0 {
		color.New(color.FgYellow).Fprintln(rc.stdout, "No tests to execute")
		return nil
	}

	if flags.DryRun {
		opts := execution.NewRunner(rc.config, nil).Options(selected)
		fmt.Fprintln(rc.stdout, discovery.ShellCommand(opts.Executable, opts.Args))
		return nil
	}

	sigs, err := failureSignatures(rc.config)
	if err != nil {
		return err
	}
	unlock, err := lockRun(rc.config)
	if err != nil {
		return err
	}
	defer unlock()

	logPath := rc.config.GetLogPath()
	var echo io.Writer
	if flags.Verbose {
		echo = rc.stdout
	}
	// the bar, warnings and signature diagnostics share stderr across goroutines
	stderr := ui.NewSyncWriter(rc.stderr)
	output, err := ui.OpenOutputChannel(logPath, echo, stderr)
	if err != nil {
		return err
	}
	defer output.Close()

	var bar *ui.ProgressBar
	if !flags.Verbose && !flags.NoProgress {
		bar = ui.NewProgressBar(stderr, discovery.CountTests(roots, selected))
	}
	console := ui.NewConsoleSink(rc.stdout, bar)
	collector := storage.NewCollector()
	notifier := ui.NewErrorNotifier(stderr, "Build output: "+logPath)

	controller := execution.NewController(reporter.Tee(console, collector), output, notifier,
		execution.WithSignatures(sigs...))
	runner := execution.NewRunner(rc.config, controller)
	opts := runner.Options(selected)

	// Execute tests
	outcome, runErr := runner.Run(cmd.Context(), roots, selected)
	console.Close()
	if outcome == nil {
		return runErr
	}

	meta := domain.RunMeta{
		Command:           discovery.ShellCommand(opts.Executable, opts.Args),
		ExitCode:          outcome.ExitCode,
		Cancelled:         outcome.Cancelled,
		SignatureDetected: outcome.SignatureDetected,
	}
	meta.SetDuration(outcome.Duration)
	record := collector.Record(meta)

	slog.Debug("run finished", "run_id", record.Meta.RunID, "reported", outcome.Reported,
		"dropped", outcome.Stats.Dropped, "materialized", outcome.Stats.Materialized)

	// Save results
	if err := st.Save(record); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}

	// Print stats
	rc.formatter.PrintMetaStats(record)
	return runErr
}

// selectTests applies --failed, positional ids and --filter in that order.
// narrowed reports whether any of them was used; an empty, non-narrowed
// selection runs the whole test task.
func (rc *RunCommand) selectTests(roots []*domain.TestItem, st storage.Storage) ([]*domain.TestItem, bool, error) {
	flags := rc.config.Flags
	items := discovery.Flatten(roots)
	narrowed := false

	if flags.OnlyFailed {
		record, err := st.Load()
		if err != nil {
			if errors.Is(err, storage.ErrNoResults) {
				return nil, true, nil
			}
			return nil, false, fmt.Errorf("load last run: %w", err)
		}
		items = rc.filter.SelectFailed(items, record.Failures())
		narrowed = true
	}
	if len(flags.Tests) > 0 {
		items = rc.filter.SelectByID(items, flags.Tests)
		narrowed = true
	}
	if flags.NameFilter != "" {
		items = rc.filter.FilterByName(items, flags.NameFilter)
		narrowed = true
	}

	if !narrowed {
		return nil, false, nil
	}
	return items, true, nil
}
