package execution

import (
	"context"
	"time"

	"gtp/internal/registry"
)

// Executor runs the build tool once against a populated registry
type Executor interface {
	Run(ctx context.Context, opts RunOptions, reg *registry.Registry) (*ExitOutcome, error)
}

// RunOptions describes one build tool invocation
type RunOptions struct {
	Executable string
	Dir        string
	Args       []string
	Env        []string // nil inherits the current environment
}

// ExitOutcome is the process-level result of a run
type ExitOutcome struct {
	ExitCode          int
	Cancelled         bool
	SignatureDetected bool
	Signature         string
	Outstanding       int // started tests errored because the process ended first
	Reported          int
	Stats             Stats
	Duration          time.Duration
}
