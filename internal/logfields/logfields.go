// Package logfields holds the canonical structured log keys so every package
// names the same thing the same way.
package logfields

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	KeyInvocationID = "invocation_id"
	KeyCommand      = "command"
	KeySource       = "source"
	KeyDestination  = "destination"
	KeyDurationMS   = "duration_ms"
	KeyError        = "error"
	KeyErrorKind    = "error_kind"
	KeyFiles        = "files"
	KeyBytes        = "bytes"
	KeyWorkers      = "workers"
	KeyConfigFile   = "config_file"
)

// Invocation returns the fields identifying one bridge call.
func Invocation(id, command string) logrus.Fields {
	return logrus.Fields{KeyInvocationID: id, KeyCommand: command}
}

// Paths returns the source/destination pair of a copy.
func Paths(source, destination string) logrus.Fields {
	return logrus.Fields{KeySource: source, KeyDestination: destination}
}

func Duration(d time.Duration) logrus.Fields {
	return logrus.Fields{KeyDurationMS: float64(d.Microseconds()) / 1000}
}

// Error returns the error text under KeyError; a nil error yields an empty string.
func Error(err error) logrus.Fields {
	if err == nil {
		return logrus.Fields{KeyError: ""}
	}
	return logrus.Fields{KeyError: err.Error()}
}
