package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_GetTestPath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: ".",
				TestPath:    "src/test",
				Flags:       Flags{},
			},
			expected: "src/test",
		},
		{
			name: "with test path flag",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    "src/test",
				Flags: Flags{
					TestPath: "src/integrationTest",
				},
			},
			expected: "/project/src/integrationTest",
		},
		{
			name: "absolute test path",
			config: &Config{
				ProjectPath: "/project",
				TestPath:    "src/test",
				Flags: Flags{
					TestPath: "/absolute/path",
				},
			},
			expected: "/absolute/path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.GetTestPath()
			if result != filepath.FromSlash(tt.expected) {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.ProjectPath != DefaultProjectPath {
		t.Errorf("expected ProjectPath %s, got %s", DefaultProjectPath, cfg.ProjectPath)
	}

	if cfg.TestTask != DefaultTestTask {
		t.Errorf("expected TestTask %s, got %s", DefaultTestTask, cfg.TestTask)
	}

	if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore) {
		t.Errorf("expected %d paths to ignore, got %d", len(DefaultPathsToIgnore), len(cfg.PathsToIgnore))
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "GTP_TEST_TASK=integrationTest\nGTP_RESULTS_DSN=root@tcp(127.0.0.1:3306)/ci\nGRADLE_OPTS=-Xmx1g\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	t.Run("env file overrides defaults", func(t *testing.T) {
		cfg, err := Load(Flags{ProjectPath: dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TestTask != "integrationTest" {
			t.Errorf("expected task integrationTest, got %s", cfg.TestTask)
		}
		if cfg.ResultsDSN != "root@tcp(127.0.0.1:3306)/ci" {
			t.Errorf("unexpected DSN %s", cfg.ResultsDSN)
		}
	})

	t.Run("flags override env file", func(t *testing.T) {
		cfg, err := Load(Flags{ProjectPath: dir, TestTask: "check"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TestTask != "check" {
			t.Errorf("expected task check, got %s", cfg.TestTask)
		}
	})

	t.Run("env file is passed to the build tool", func(t *testing.T) {
		cfg, err := Load(Flags{ProjectPath: dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		found := false
		for _, kv := range cfg.Environ() {
			if kv == "GRADLE_OPTS=-Xmx1g" {
				found = true
			}
		}
		if !found {
			t.Error("expected GRADLE_OPTS in build tool environment")
		}
	})
}

func TestLoad_MissingEnvFile(t *testing.T) {
	cfg, err := Load(Flags{ProjectPath: t.TempDir()})
	if err != nil {
		t.Fatalf("missing .env should not be an error: %v", err)
	}
	if len(cfg.Env) != 0 {
		t.Errorf("expected empty env, got %v", cfg.Env)
	}
}

func TestConfig_GetBuildTool(t *testing.T) {
	t.Run("explicit build tool", func(t *testing.T) {
		cfg := New()
		cfg.BuildTool = "/opt/gradle/bin/gradle"
		if got := cfg.GetBuildTool(); got != "/opt/gradle/bin/gradle" {
			t.Errorf("expected explicit build tool, got %s", got)
		}
	})

	t.Run("no wrapper falls back to gradle", func(t *testing.T) {
		cfg := New()
		cfg.ProjectPath = t.TempDir()
		if got := cfg.GetBuildTool(); got != DefaultBuildTool {
			t.Errorf("expected %s, got %s", DefaultBuildTool, got)
		}
	})

	t.Run("wrapper is preferred", func(t *testing.T) {
		dir := t.TempDir()
		name := DefaultWrapper
		if filepath.Separator == '\\' {
			name += ".bat"
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0755); err != nil {
			t.Fatalf("failed to write wrapper: %v", err)
		}
		cfg := New()
		cfg.ProjectPath = dir
		if got := cfg.GetBuildTool(); !strings.HasSuffix(got, name) {
			t.Errorf("expected wrapper, got %s", got)
		}
	})
}

func TestConfig_OutputPaths(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = "/project"

	if got := cfg.GetOutputPath(); got != filepath.FromSlash("/project/.gtp/test-results.json") {
		t.Errorf("unexpected output path %s", got)
	}
	if got := cfg.GetLogPath(); got != filepath.FromSlash("/project/.gtp/build-output.log") {
		t.Errorf("unexpected log path %s", got)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoad_ProjectFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gtp.toml", `
build_tool = "/opt/gradle/bin/gradle"
test_task = "integrationTest"
test_path = "src/integrationTest"
ignore_paths = ["generated"]

[[signature]]
name = "oom"
pattern = "OutOfMemoryError"
message = "The test JVM ran out of memory."
`)

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := Load(Flags{ProjectPath: dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BuildTool != "/opt/gradle/bin/gradle" {
			t.Errorf("unexpected build tool %s", cfg.BuildTool)
		}
		if cfg.TestTask != "integrationTest" {
			t.Errorf("expected task integrationTest, got %s", cfg.TestTask)
		}
		if got := cfg.GetTestPath(); got != filepath.Join(dir, "src/integrationTest") {
			t.Errorf("unexpected test path %s", got)
		}
		if last := cfg.PathsToIgnore[len(cfg.PathsToIgnore)-1]; last != "generated" {
			t.Errorf("expected generated to be ignored, got %v", cfg.PathsToIgnore)
		}
		if len(cfg.Signatures) != 1 || cfg.Signatures[0].Name != "oom" {
			t.Errorf("unexpected signatures %+v", cfg.Signatures)
		}
	})

	t.Run("env and flags override file", func(t *testing.T) {
		writeFile(t, dir, ".env", "GTP_TEST_TASK=check\n")
		defer os.Remove(filepath.Join(dir, ".env"))

		cfg, err := Load(Flags{ProjectPath: dir, BuildTool: "gradle"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TestTask != "check" {
			t.Errorf("expected task check, got %s", cfg.TestTask)
		}
		if cfg.BuildTool != "gradle" {
			t.Errorf("expected build tool gradle, got %s", cfg.BuildTool)
		}
	})

	t.Run("apply is repeatable", func(t *testing.T) {
		cfg, err := Load(Flags{ProjectPath: dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.Apply(Flags{ProjectPath: dir}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.PathsToIgnore) != len(DefaultPathsToIgnore)+1 {
			t.Errorf("ignored paths grew on reapply: %v", cfg.PathsToIgnore)
		}
	})
}

func TestLoad_ProjectFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax error", "test_task = ", ".gtp.toml"},
		{"unknown key", "test_tsak = \"check\"\n", "unknown keys test_tsak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, ".gtp.toml", tt.content)
			_, err := Load(Flags{ProjectPath: dir})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
