package cli

import "gtp/internal/config"

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
}

// ToConfigFlags converts CLI flags to config flags. args are exact test ids.
func (f *Flags) ToConfigFlags(args []string) config.Flags {
	return config.Flags{
		ProjectPath: f.ProjectPath,
		TestPath:    f.TestPath,
		NameFilter:  f.NameFilter,
		BuildTool:   f.BuildTool,
		TestTask:    f.TestTask,
		InitScript:  f.InitScript,
		ResultsDSN:  f.ResultsDSN,
		Verbose:     f.Verbose,
		NoProgress:  f.NoProgress,
		TestCases:   f.TestCases,
		FailFast:    f.FailFast,
		OnlyFailed:  f.OnlyFailed,
		DryRun:      f.DryRun,
		Tests:       args,
	}
}
