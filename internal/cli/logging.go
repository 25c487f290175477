package cli

import (
	"fmt"
	"os"

	"github.com/agentx-labs/copybridge/internal/config"
	"github.com/sirupsen/logrus"
)

// configureLogger points l at stderr; stdout is reserved for command output
// and the serve protocol.
func configureLogger(l *logrus.Logger, s config.Settings) error {
	level, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	switch s.LogFormat {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("log format: must be text or json, got %q", s.LogFormat)
	}

	l.SetOutput(os.Stderr)
	l.SetLevel(level)
	return nil
}
