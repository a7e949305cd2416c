package execution

import (
	"context"

	"gtp/internal/config"
	"gtp/internal/discovery"
	"gtp/internal/domain"
	"gtp/internal/registry"
)

// Runner runs a selection of discovered tests through an Executor
type Runner struct {
	config   *config.Config
	executor Executor
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, executor Executor) *Runner {
	return &Runner{config: cfg, executor: executor}
}

// Options builds the build tool invocation for the selected items. An empty
// selection runs the whole test task.
func (r *Runner) Options(selected []*domain.TestItem) RunOptions {
	args := []string{}
	if r.config.InitScript != "" {
		args = append(args, "--init-script", r.config.InitScript)
	}
	args = append(args, discovery.BuildTestArgs(r.config.TestTask, selected)...)
	if r.config.Flags.FailFast {
		args = append(args, "--fail-fast")
	}

	return RunOptions{
		Executable: r.config.GetBuildTool(),
		Dir:        r.config.ProjectPath,
		Args:       args,
		Env:        r.config.Environ(),
	}
}

// Run registers the discovered tree in a fresh registry, runs the selection
// and clears the registry afterwards.
func (r *Runner) Run(ctx context.Context, roots, selected []*domain.TestItem) (*ExitOutcome, error) {
	reg := registry.New()
	defer reg.Clear()
	reg.RegisterTree(roots...)

	return r.executor.Run(ctx, r.Options(selected), reg)
}
