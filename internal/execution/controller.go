package execution

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"gtp/internal/domain"
	"gtp/internal/registry"
	"gtp/internal/reporter"
	"gtp/internal/signature"
)

// DefaultGracePeriod is how long a cancelled build tool gets to exit before it is killed
const DefaultGracePeriod = 10 * time.Second

const lineBufferSize = 256

type streamLine struct {
	stream string
	text   string
}

// Controller spawns the build tool and drives a Pipeline from its output
type Controller struct {
	sink        reporter.Sink
	logger      reporter.Logger
	notifier    signature.Notifier
	factory     domain.ItemFactory
	signatures  []signature.Signature
	gracePeriod time.Duration
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithItemFactory sets the factory used for dynamic subtests
func WithItemFactory(f domain.ItemFactory) ControllerOption {
	return func(c *Controller) { c.factory = f }
}

// WithSignatures replaces the default failure signatures
func WithSignatures(sigs ...signature.Signature) ControllerOption {
	return func(c *Controller) { c.signatures = sigs }
}

// WithGracePeriod sets how long a cancelled process may take to exit
func WithGracePeriod(d time.Duration) ControllerOption {
	return func(c *Controller) { c.gracePeriod = d }
}

// NewController creates a Controller reporting to sink
func NewController(sink reporter.Sink, logger reporter.Logger, notifier signature.Notifier, opts ...ControllerOption) *Controller {
	c := &Controller{
		sink:        sink,
		logger:      logger,
		notifier:    notifier,
		factory:     domain.DefaultFactory{},
		gracePeriod: DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the build tool once. Test outcomes are reported while the
// process runs; the returned error only describes the process itself.
func (c *Controller) Run(ctx context.Context, opts RunOptions, reg *registry.Registry) (*ExitOutcome, error) {
	start := time.Now()
	pipeline := NewPipeline(reg, c.sink, c.logger, c.factory)
	scanner := signature.NewScanner(c.notifier, c.signatures...)

	cmd := exec.CommandContext(ctx, opts.Executable, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env
	setPlatformSpecificAttrs(cmd)
	cmd.Cancel = func() error { return terminate(cmd.Process) }
	cmd.WaitDelay = c.gracePeriod

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	slog.Debug("starting build tool", "executable", opts.Executable, "args", opts.Args, "dir", opts.Dir)
	if err := cmd.Start(); err != nil {
		stdoutW.Close()
		stderrW.Close()
		return nil, fmt.Errorf("start %s: %w", opts.Executable, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		// Wait returns once exec has copied all output; closing the writers ends the readers
		stdoutW.Close()
		stderrW.Close()
		waitErr <- err
	}()

	lines := make(chan streamLine, lineBufferSize)
	var readers conc.WaitGroup
	for stream, r := range map[string]io.Reader{"stdout": stdoutR, "stderr": stderrR} {
		stream, r := stream, r
		readers.Go(func() {
			if err := readLines(r, stream, lines, scanner); err != nil {
				slog.Warn("reading build output failed", "stream", stream, "error", err)
			}
		})
	}
	go func() {
		readers.Wait()
		close(lines)
	}()

	for line := range lines {
		pipeline.HandleLine(line.text)
	}

	err := <-waitErr
	outcome := &ExitOutcome{
		ExitCode:          exitCode(cmd, err),
		Cancelled:         ctx.Err() != nil,
		SignatureDetected: scanner.Detected(),
		Stats:             pipeline.Stats(),
	}
	if sig, ok := scanner.Matched(); ok {
		outcome.Signature = sig.Name
	}

	reason := fmt.Sprintf("build tool exited with code %d before the test finished", outcome.ExitCode)
	if outcome.Cancelled {
		reason = "test run was cancelled before the test finished"
	}
	outcome.Outstanding = pipeline.Finish(reason)
	outcome.Reported = pipeline.Reported()
	outcome.Duration = time.Since(start)

	slog.Debug("build tool finished", "exit_code", outcome.ExitCode, "cancelled", outcome.Cancelled,
		"events", outcome.Stats.Events, "outstanding", outcome.Outstanding)

	switch {
	case outcome.Cancelled:
		return outcome, &RunError{Outcome: outcome, Err: ctx.Err()}
	case outcome.SignatureDetected:
		return outcome, &RunError{Outcome: outcome, Err: ErrFailureSignature}
	case outcome.ExitCode != 0:
		return outcome, &RunError{Outcome: outcome, Err: ErrProcessFailed}
	}
	return outcome, nil
}

// readLines splits r into lines without a length limit, scans each for
// failure signatures and forwards it to the single consumer.
func readLines(r io.Reader, stream string, out chan<- streamLine, scanner *signature.Scanner) error {
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimRight(line, "\r\n")
			scanner.Scan(line)
			out <- streamLine{stream: stream, text: line}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			return code
		}
	}
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		return 0
	}
	return -1
}
