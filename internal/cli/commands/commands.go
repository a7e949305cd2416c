package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gtp/internal/cli"
	"gtp/internal/config"
	"gtp/internal/discovery"
	"gtp/internal/domain"
	"gtp/internal/signature"
	"gtp/internal/storage"
	"gtp/internal/ui"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

// ErrRunInProgress is returned when another run holds the project's run lock
var ErrRunInProgress = errors.New("another gtp run is already in progress for this project")

const runLockFile = "run.lock"

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Failures *FailuresCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	return newCommands(cfg, os.Stdout, os.Stderr)
}

func newCommands(cfg *config.Config, stdout, stderr io.Writer) *Commands {
	// Initialize dependencies
	filter := discovery.NewFilter()
	testParser := discovery.NewParser()
	formatter := ui.NewFormatter(cfg, stdout)
	stores := NewStoreFactory(cfg)

	return &Commands{
		Run:      NewRunCommand(cfg, filter, testParser, stores, formatter, stdout, stderr),
		List:     NewListCommand(cfg, filter, testParser, stores, formatter),
		Failures: NewFailuresCommand(stores, formatter),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		// Update config with flags after parsing
		return cfg.Apply(flags.ToConfigFlags(args))
	}

	rootCmd.PersistentFlags().StringVarP(&flags.ProjectPath, "project", "C", "", "Project directory (defaults to the current directory)")

	// Run command
	runCmd := &cobra.Command{
		Use:     "run [test-id...]",
		Short:   "Run Gradle tests and stream their results",
		Long:    "Discover tests, run the selection with a single Gradle invocation and report every outcome as the build emits it",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	runCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*UserSpec' or '*payment*')")
	runCmd.Flags().StringVar(&flags.BuildTool, "build-tool", "", "Build tool executable (defaults to ./gradlew, then gradle)")
	runCmd.Flags().StringVar(&flags.TestTask, "task", "", "Gradle test task to run")
	runCmd.Flags().StringVar(&flags.InitScript, "init-script", "", "Gradle init script that applies the test event listener")
	runCmd.Flags().StringVar(&flags.ResultsDSN, "results-dsn", "", "MySQL DSN to store run results in, in addition to the JSON file")
	runCmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Stream build output to the terminal")
	runCmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Print a line per test instead of a progress bar")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first test failure")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only tests that failed in the last run")
	runCmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Print the build command without running it")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered tests",
		Long:    "Scan and list all Spock and JUnit tests without executing them",
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*UserSpec' or '*payment*')")
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test cases instead of test suites")
	listCmd.Flags().StringVar(&flags.ResultsDSN, "results-dsn", "", "MySQL DSN to read the last run from")
	rootCmd.AddCommand(listCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:     "failures",
		Short:   "Show test failures from the last run",
		Long:    "Print every failed or errored test of the last stored run with its message",
		RunE:    c.Failures.Execute,
		PreRunE: applyFlags,
	}
	failuresCmd.Flags().StringVar(&flags.ResultsDSN, "results-dsn", "", "MySQL DSN to read the last run from")
	rootCmd.AddCommand(failuresCmd)
}

// StoreFactory opens result storage once the config has been loaded
type StoreFactory struct {
	config *config.Config
}

// NewStoreFactory creates a StoreFactory for cfg
func NewStoreFactory(cfg *config.Config) *StoreFactory {
	return &StoreFactory{config: cfg}
}

// Open returns the JSON store plus the MySQL store when a DSN is configured.
// The returned func releases database connections.
func (f *StoreFactory) Open() (storage.Storage, func(), error) {
	stores := storage.Multi{storage.NewJSONStorage(f.config)}
	if f.config.ResultsDSN == "" {
		return stores, func() {}, nil
	}

	db, err := storage.NewMySQLStorage(f.config.ResultsDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open results database: %w", err)
	}
	return append(stores, db), func() { db.Close() }, nil
}

// discoverTests scans the configured test path. The scanner is built per call
// because ignored paths are only known once the project file has been read.
func discoverTests(cfg *config.Config, parser *discovery.Parser) ([]*domain.TestItem, error) {
	return discovery.Discover(discovery.NewScanner(cfg.PathsToIgnore), parser, cfg.GetTestPath())
}

// failureSignatures returns the built-in signatures followed by the project's own
func failureSignatures(cfg *config.Config) ([]signature.Signature, error) {
	sigs := append([]signature.Signature{}, signature.Defaults...)
	for _, sc := range cfg.Signatures {
		sig, err := signature.Compile(sc.Name, sc.Literal, sc.Pattern, sc.Message)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.DefaultConfigFile, err)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// lockRun takes the project's run lock so two runs never share the build
// output log and results file. The returned func releases it.
func lockRun(cfg *config.Config) (func(), error) {
	dir := filepath.Join(cfg.ProjectPath, cfg.OutputDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, runLockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, ErrRunInProgress
	}
	return func() { _ = lock.Unlock() }, nil
}
