package config

const (
	defaultConfigPath     = "~/.config/relex/config.toml"
	defaultAggregateUntil = 1024
	defaultEncoding       = "utf-8"
	defaultReadSize       = 4096
	defaultJobs           = 4
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultOutputFormat   = "auto"
)

// Default returns a Config populated with repository defaults. It declares no
// rules.
func Default() Config {
	return Config{
		Lexer: Lexer{
			AggregateUntil: defaultAggregateUntil,
			Encoding:       defaultEncoding,
			ReadSize:       defaultReadSize,
			Jobs:           defaultJobs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Output: Output{
			Format: defaultOutputFormat,
		},
	}
}
