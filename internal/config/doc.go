// Package config loads runtime configuration for the tru CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with --config. Files ending in .toml are
//     read as TOML, anything else as JSON.
//  3. Environment variables (see applyEnv).
//  4. Command-line flags, applied by the cli package on top of Load.
//
// # Environment
//
//	TRUSTY_HOME        base directory holding .trusty/trusty.db
//	TRUSTY_LOG_LEVEL   debug, info, warn or error
//	TRUSTY_LOG_FORMAT  text or json
//	NO_COLOR           any value disables colored output
//
// # File schema
//
//	{
//	  "home": "/home/me",
//	  "log_level": "info",
//	  "log_format": "json",
//	  "no_color": true
//	}
//
// or, in TOML:
//
//	home = "/home/me"
//	log_level = "info"
package config
