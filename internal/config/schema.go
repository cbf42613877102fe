package config

// Config is the apiresolve configuration file, ~/.apiresolve/config.yaml.
type Config struct {
	Resolver ResolverConfig `yaml:"resolver"`
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
}

// ResolverConfig selects the default target and resolver type.
type ResolverConfig struct {
	// PID is the target process; 0 means apiresolve itself.
	PID int `yaml:"pid" env:"APIRESOLVE_PID"`
	// Type is the resolver type tag (module, go, kernel).
	Type string `yaml:"type" env:"APIRESOLVE_TYPE"`
}

// OutputConfig controls how matches are printed.
type OutputConfig struct {
	// Format is one of text, json or csv.
	Format string `yaml:"format" env:"APIRESOLVE_FORMAT"`
	// Demangle prints C++ and Rust symbol names demangled.
	Demangle bool `yaml:"demangle" env:"APIRESOLVE_DEMANGLE"`
	// Limit stops after this many matches per query; 0 is unlimited.
	Limit int `yaml:"limit" env:"APIRESOLVE_LIMIT"`
}

// LogConfig configures the diagnostic logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"APIRESOLVE_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"APIRESOLVE_LOG_PRETTY"`
}
