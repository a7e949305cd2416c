package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/acarl005/stripansi"
	"github.com/fatih/color"

	"gtp/internal/execution"
)

// OutputChannel receives build tool output that is not a test event. Every
// line goes to the log without terminal escapes; with an echo writer it is
// also shown live. Engine warnings are always shown on warn.
type OutputChannel struct {
	mu     sync.Mutex
	log    io.Writer
	closer io.Closer
	echo   io.Writer
	warn   io.Writer
	lines  int
}

// NewOutputChannel creates a channel over the given writers. echo and warn may be nil.
func NewOutputChannel(log, echo, warn io.Writer) *OutputChannel {
	return &OutputChannel{log: log, echo: echo, warn: warn}
}

// OpenOutputChannel creates the log file at path, truncating an earlier run's log.
func OpenOutputChannel(path string, echo, warn io.Writer) (*OutputChannel, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create build log: %w", err)
	}
	ch := NewOutputChannel(f, echo, warn)
	ch.closer = f
	return ch, nil
}

// AppendLine implements reporter.Logger
func (o *OutputChannel) AppendLine(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lines++
	if strings.IndexByte(text, 0x1b) >= 0 {
		fmt.Fprintln(o.log, stripansi.Strip(text))
	} else {
		fmt.Fprintln(o.log, text)
	}
	if o.echo != nil {
		fmt.Fprintln(o.echo, text)
		return
	}
	if o.warn != nil && strings.HasPrefix(text, execution.WarningPrefix) {
		fmt.Fprintln(o.warn, color.YellowString("%s", text))
	}
}

// Lines returns how many lines were appended
func (o *OutputChannel) Lines() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lines
}

// Close closes the log file, if the channel owns one
func (o *OutputChannel) Close() error {
	if o.closer == nil {
		return nil
	}
	return o.closer.Close()
}
