package config

// Environment variable names.
const (
	EnvHome      = "TRUSTY_HOME"
	EnvLogLevel  = "TRUSTY_LOG_LEVEL"
	EnvLogFormat = "TRUSTY_LOG_FORMAT"
	EnvNoColor   = "NO_COLOR"
)

// applyEnv overlays cfg with environment variables. lookup is os.LookupEnv
// outside of tests.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvHome); ok && v != "" {
		cfg.Home = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = v
	}
	if _, ok := lookup(EnvNoColor); ok {
		cfg.NoColor = true
	}
}
