package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestPath    string

	// Build tool settings
	BuildTool  string
	TestTask   string
	InitScript string

	// Output settings
	OutputJSONFile string
	OutputLogFile  string
	OutputDir      string
	ResultsDSN     string

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Extra failure signatures from the project file
	Signatures []SignatureConfig

	// Variables from the project's .env file, passed on to the build tool
	Env map[string]string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	ProjectPath string
	TestPath    string
	NameFilter  string
	BuildTool   string
	TestTask    string
	InitScript  string
	ResultsDSN  string
	Verbose     bool
	NoProgress  bool
	TestCases   bool
	FailFast    bool
	OnlyFailed  bool
	DryRun      bool
	Tests       []string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		TestPath:       DefaultTestPath,
		TestTask:       DefaultTestTask,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputLogFile:  DefaultOutputLogFile,
		OutputDir:      DefaultOutputDir,
		Env:            map[string]string{},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config, reads the project's .env and .gtp.toml files and
// applies flags. Flags win over environment variables, which win over the
// project file, which wins over defaults.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if err := cfg.Apply(flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply sets flags on the config and reloads the project's .env and .gtp.toml files.
// Applying again with other flags starts over from the defaults.
func (c *Config) Apply(flags Flags) error {
	c.Flags = flags
	if flags.ProjectPath != "" {
		c.ProjectPath = flags.ProjectPath
	}
	if err := c.LoadEnv(); err != nil {
		return err
	}
	file, err := c.LoadFile()
	if err != nil {
		return err
	}

	c.BuildTool = firstNonEmpty(flags.BuildTool, c.lookup(EnvBuildTool), file.BuildTool)
	c.TestTask = firstNonEmpty(flags.TestTask, c.lookup(EnvTestTask), file.TestTask, DefaultTestTask)
	c.InitScript = firstNonEmpty(flags.InitScript, c.lookup(EnvInitScript), file.InitScript)
	c.ResultsDSN = firstNonEmpty(flags.ResultsDSN, c.lookup(EnvResultsDSN), file.ResultsDSN)
	c.TestPath = firstNonEmpty(file.TestPath, DefaultTestPath)
	c.PathsToIgnore = append(append([]string{}, DefaultPathsToIgnore...), file.IgnorePaths...)
	c.Signatures = file.Signatures
	return nil
}

// LoadEnv reads the .env file in the project directory. A missing file is not an error.
func (c *Config) LoadEnv() error {
	envPath := filepath.Join(c.ProjectPath, DefaultEnvFile)
	env, err := godotenv.Read(envPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Env = map[string]string{}
			return nil
		}
		return fmt.Errorf("read %s: %w", envPath, err)
	}
	c.Env = env
	return nil
}

// Environ returns the build tool's environment: the process environment plus the .env variables
func (c *Config) Environ() []string {
	environ := os.Environ()
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		environ = append(environ, k+"="+c.Env[k])
	}
	return environ
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		// If TestPath is provided, make it relative to the project if it's not absolute
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}

	// Default: combine project path and test path
	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetOutputPath returns the absolute path to the output JSON file
func (c *Config) GetOutputPath() string {
	return c.outputFile(c.OutputJSONFile)
}

// GetLogPath returns the absolute path to the build output log
func (c *Config) GetLogPath() string {
	return c.outputFile(c.OutputLogFile)
}

func (c *Config) outputFile(name string) string {
	p := filepath.Join(c.ProjectPath, c.OutputDir, name)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetBuildTool returns the build tool executable: the configured one, the
// project's Gradle wrapper if present, or gradle from PATH.
func (c *Config) GetBuildTool() string {
	if c.BuildTool != "" {
		return c.BuildTool
	}
	wrapper := DefaultWrapper
	if runtime.GOOS == "windows" {
		wrapper += ".bat"
	}
	wrapperPath := filepath.Join(c.ProjectPath, wrapper)
	if info, err := os.Stat(wrapperPath); err == nil && !info.IsDir() {
		if abs, err := filepath.Abs(wrapperPath); err == nil {
			return abs
		}
		return wrapperPath
	}
	return DefaultBuildTool
}

func (c *Config) lookup(key string) string {
	if v, ok := c.Env[key]; ok && v != "" {
		return v
	}
	return os.Getenv(key)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
