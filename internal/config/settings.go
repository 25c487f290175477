package config

import (
	"fmt"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config keys.
const (
	KeyLogLevel       = "log.level"
	KeyLogFormat      = "log.format"
	KeyBufferSize     = "copy.buffer_size"
	KeyWorkers        = "dispatch.workers"
	KeyQueueSize      = "dispatch.queue_size"
	KeyScopeAllow     = "scope.allow"
	KeyMetricsAddr    = "metrics.addr"
	DefaultBufferSize = "64000"
)

// Settings is the typed view of the configuration.
type Settings struct {
	LogLevel    string
	LogFormat   string   // "text" or "json"
	BufferSize  int      // bytes
	Workers     int      // dispatcher goroutines
	QueueSize   int      // pending invocations before the bridge reports busy
	ScopeAllow  []string // absolute roots the bridge may touch; empty allows all
	MetricsAddr string   // listen address for /metrics; empty disables
}

func setDefaults() {
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLogFormat, "text")
	viper.SetDefault(KeyBufferSize, DefaultBufferSize)
	viper.SetDefault(KeyWorkers, 4)
	viper.SetDefault(KeyQueueSize, 64)
	viper.SetDefault(KeyScopeAllow, []string{})
	viper.SetDefault(KeyMetricsAddr, "")
}

// Current reads the loaded configuration into Settings and validates it.
// Settings are returned even when invalid so callers can report every problem.
func Current() (Settings, error) {
	s := Settings{
		LogLevel:    viper.GetString(KeyLogLevel),
		LogFormat:   viper.GetString(KeyLogFormat),
		Workers:     viper.GetInt(KeyWorkers),
		QueueSize:   viper.GetInt(KeyQueueSize),
		ScopeAllow:  viper.GetStringSlice(KeyScopeAllow),
		MetricsAddr: viper.GetString(KeyMetricsAddr),
	}

	var result *multierror.Error
	size, err := ParseSize(viper.GetString(KeyBufferSize))
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: %w", KeyBufferSize, err))
	}
	s.BufferSize = size

	if err := s.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	return s, result.ErrorOrNil()
}

// Validate reports every invalid field at once.
func (s Settings) Validate() error {
	var result *multierror.Error

	if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		result = multierror.Append(result, fmt.Errorf("%s: must be text or json, got %q", KeyLogFormat, s.LogFormat))
	}
	if s.BufferSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("%s: must be positive", KeyBufferSize))
	}
	if s.Workers < 1 {
		result = multierror.Append(result, fmt.Errorf("%s: must be at least 1, got %d", KeyWorkers, s.Workers))
	}
	if s.QueueSize < 1 {
		result = multierror.Append(result, fmt.Errorf("%s: must be at least 1, got %d", KeyQueueSize, s.QueueSize))
	}
	for _, root := range s.ScopeAllow {
		if !filepath.IsAbs(root) {
			result = multierror.Append(result, fmt.Errorf("%s: %q is not an absolute path", KeyScopeAllow, root))
		}
	}

	return result.ErrorOrNil()
}

// ParseSize parses a byte count such as "65536", "64k" or "64KiB".
// Suffixes are binary multiples.
func ParseSize(s string) (int, error) {
	n, err := units.RAMInBytes(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("size %q must be positive", s)
	}
	return int(n), nil
}

// Watch calls onChange with the re-read settings whenever the config file
// is written. It must be called after Load.
func Watch(onChange func(event fsnotify.Event, s Settings, err error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		s, err := Current()
		onChange(e, s, err)
	})
	viper.WatchConfig()
}
