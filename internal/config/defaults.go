package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is where test sources are scanned, relative to the project
	DefaultTestPath = "src/test"
	// DefaultBuildTool is used when the project has no Gradle wrapper
	DefaultBuildTool = "gradle"
	// DefaultWrapper is the Gradle wrapper script, relative to the project
	DefaultWrapper = "gradlew"
	// DefaultTestTask is the Gradle task that runs the tests
	DefaultTestTask = "test"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputLogFile receives every non-event line of build output
	DefaultOutputLogFile = "build-output.log"
	// DefaultOutputDir is the default output directory
	DefaultOutputDir = ".gtp"
	// DefaultEnvFile is loaded from the project root when present
	DefaultEnvFile = ".env"
	// DefaultConfigFile holds project settings and extra failure signatures
	DefaultConfigFile = ".gtp.toml"
)

// Environment variables read on top of the project's .env file
const (
	EnvBuildTool  = "GTP_BUILD_TOOL"
	EnvTestTask   = "GTP_TEST_TASK"
	EnvInitScript = "GTP_INIT_SCRIPT"
	EnvResultsDSN = "GTP_RESULTS_DSN"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"build",
	"out",
	"bin",
	"node_modules",
	"buildSrc",
}
