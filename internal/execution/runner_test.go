package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gtp/internal/config"
	"gtp/internal/domain"
	"gtp/internal/registry"
)

type fakeExecutor struct {
	opts     RunOptions
	seen     []string
	outcome  *ExitOutcome
	err      error
	registry *registry.Registry
}

func (f *fakeExecutor) Run(_ context.Context, opts RunOptions, reg *registry.Registry) (*ExitOutcome, error) {
	f.opts = opts
	f.registry = reg
	for _, item := range reg.All() {
		f.seen = append(f.seen, item.ID)
	}
	return f.outcome, f.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	cfg.BuildTool = "gradle"
	return cfg
}

func TestRunner_Options(t *testing.T) {
	cfg := testConfig(t)
	suite := spec("com.x.Spec", "does work", "other")
	feature, _ := suite.Child("com.x.Spec.does work")

	opts := NewRunner(cfg, &fakeExecutor{}).Options(append(suite.Children(), feature))

	assert.Equal(t, "gradle", opts.Executable)
	assert.Equal(t, cfg.ProjectPath, opts.Dir)
	assert.Equal(t, []string{
		"test",
		"--tests", "com.x.Spec.does work",
		"--tests", "com.x.Spec.other",
	}, opts.Args)
	assert.NotEmpty(t, opts.Env)
}

func TestRunner_OptionsWithInitScript(t *testing.T) {
	cfg := testConfig(t)
	cfg.InitScript = "/tmp/events.gradle"
	cfg.TestTask = "integrationTest"

	opts := NewRunner(cfg, &fakeExecutor{}).Options(nil)

	assert.Equal(t, []string{"--init-script", "/tmp/events.gradle", "integrationTest"}, opts.Args)
}

func TestRunner_OptionsFailFast(t *testing.T) {
	cfg := testConfig(t)
	cfg.Flags.FailFast = true
	suite := spec("com.x.Spec", "a")

	opts := NewRunner(cfg, &fakeExecutor{}).Options([]*domain.TestItem{suite})

	assert.Equal(t, []string{"test", "--tests", "com.x.Spec", "--fail-fast"}, opts.Args)
}

func TestRunner_OptionsPassesDotEnv(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = map[string]string{"GRADLE_OPTS": "-Xmx1g"}

	opts := NewRunner(cfg, &fakeExecutor{}).Options(nil)

	assert.Contains(t, opts.Env, "GRADLE_OPTS=-Xmx1g")
}

func TestRunner_Run(t *testing.T) {
	exec := &fakeExecutor{outcome: &ExitOutcome{Reported: 2}}
	suite := spec("com.x.Spec", "a", "b")

	outcome, err := NewRunner(testConfig(t), exec).Run(context.Background(), []*domain.TestItem{suite}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Reported)

	assert.Equal(t, []string{"com.x.Spec", "com.x.Spec.a", "com.x.Spec.b"}, exec.seen)
	// the registry is cleared once the run is over
	assert.Equal(t, 0, exec.registry.Len())
}

func TestRunner_RunPropagatesError(t *testing.T) {
	want := &RunError{Outcome: &ExitOutcome{ExitCode: 1}, Err: ErrProcessFailed}
	exec := &fakeExecutor{outcome: want.Outcome, err: want}

	outcome, err := NewRunner(testConfig(t), exec).Run(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, ErrProcessFailed))
	assert.Equal(t, 1, outcome.ExitCode)
}
