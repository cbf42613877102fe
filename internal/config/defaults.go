package config

const (
	// DefaultDir is the per-user configuration directory, relative to home.
	DefaultDir = ".apiresolve"

	// ConfigFile is the configuration file name.
	ConfigFile = "config.yaml"

	// EnvConfigDir overrides the directory holding ConfigFile.
	EnvConfigDir = "APIRESOLVE_CONFIG"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatText, FormatJSON, FormatCSV}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Resolver: ResolverConfig{
			Type: "module",
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}
