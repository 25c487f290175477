// Package config manages user-level settings stored at ~/.copybridge/config.yaml.
// Values can be overridden with COPYBRIDGE_* environment variables (dots in
// keys become underscores, so log.level is COPYBRIDGE_LOG_LEVEL). Current
// returns the typed, validated view the rest of the program consumes.
package config
