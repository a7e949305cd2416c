package commands

import (
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gtp/internal/config"
	"gtp/internal/discovery"
	"gtp/internal/domain"
	"gtp/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	filter    *discovery.Filter
	parser    *discovery.Parser
	stores    *StoreFactory
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	filter *discovery.Filter,
	parser *discovery.Parser,
	stores *StoreFactory,
	formatter *ui.Formatter,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		filter:    filter,
		parser:    parser,
		stores:    stores,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	roots, err := discoverTests(lc.config, lc.parser)
	if err != nil {
		return err
	}

	// Filter suites: a suite is listed when it or one of its tests matches
	if pattern := lc.config.Flags.NameFilter; pattern != "" {
		var kept []*domain.TestItem
		for _, suite := range roots {
			if len(lc.filter.FilterByName(discovery.Flatten([]*domain.TestItem{suite}), pattern)) > 0 {
				kept = append(kept, suite)
			}
		}
		roots = kept
	}

	if len(roots) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	lc.formatter.PrintTestList(roots, lc.config.Flags.TestCases, lc.failedIDs())
	return nil
}

// failedIDs marks tests from the last run; a missing or unreadable store only disables the markers
func (lc *ListCommand) failedIDs() map[string]struct{} {
	st, closeStore, err := lc.stores.Open()
	if err != nil {
		slog.Warn("results storage unavailable", "error", err)
		return nil
	}
	defer closeStore()

	record, err := st.Load()
	if err != nil {
		slog.Debug("no previous run to mark failures from", "error", err)
		return nil
	}
	return ui.FailedIDs(record)
}
