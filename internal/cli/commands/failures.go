package commands

import (
	"errors"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gtp/internal/storage"
	"gtp/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	stores    *StoreFactory
	formatter *ui.Formatter
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(stores *StoreFactory, formatter *ui.Formatter) *FailuresCommand {
	return &FailuresCommand{
		stores:    stores,
		formatter: formatter,
	}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	st, closeStore, err := fc.stores.Open()
	if err != nil {
		return err
	}
	defer closeStore()

	record, err := st.Load()
	if errors.Is(err, storage.ErrNoResults) {
		color.Yellow("No stored test run, use 'gtp run' first")
		return nil
	}
	if err != nil {
		return err
	}

	fc.formatter.PrintFailures(record)
	return nil
}
