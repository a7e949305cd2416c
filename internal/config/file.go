package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileConfig is the optional project file, .gtp.toml in the project root:
//
//	build_tool = "./gradlew"
//	test_task = "integrationTest"
//	ignore_paths = ["generated"]
//
//	[[signature]]
//	name = "oom"
//	pattern = "OutOfMemoryError: (Java heap|Metaspace)"
//	message = "The test JVM ran out of memory."
type FileConfig struct {
	BuildTool   string            `toml:"build_tool"`
	TestTask    string            `toml:"test_task"`
	TestPath    string            `toml:"test_path"`
	InitScript  string            `toml:"init_script"`
	ResultsDSN  string            `toml:"results_dsn"`
	IgnorePaths []string          `toml:"ignore_paths"`
	Signatures  []SignatureConfig `toml:"signature"`
}

// SignatureConfig describes an extra failure signature. Exactly one of
// Literal and Pattern is set.
type SignatureConfig struct {
	Name    string `toml:"name"`
	Literal string `toml:"literal"`
	Pattern string `toml:"pattern"`
	Message string `toml:"message"`
}

// LoadFile reads .gtp.toml from the project directory. A missing file yields
// an empty FileConfig; unknown keys are an error so typos do not go unnoticed.
func (c *Config) LoadFile() (FileConfig, error) {
	var file FileConfig
	path := filepath.Join(c.ProjectPath, DefaultConfigFile)

	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return FileConfig{}, fmt.Errorf("read %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return file, nil
}
