package bridge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/agentx-labs/copybridge/internal/copier"
	"github.com/agentx-labs/copybridge/internal/logfields"
	"github.com/agentx-labs/copybridge/internal/metrics"
)

// CopyDirectoryName is the command name the frontend invokes.
const CopyDirectoryName = "copy_directory"

//go:embed schema/copy_directory.schema.json
var copyDirectorySchema string

// CopyDirectoryConfig wires the copy_directory command.
type CopyDirectoryConfig struct {
	BufferSize int
	Scope      *Scope
	Recorder   metrics.Recorder
}

type copyDirectoryArgs struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// NewCopyDirectoryCommand returns the copy_directory command: merge the
// contents of source into destination, overwriting colliding files.
func NewCopyDirectoryCommand(cfg CopyDirectoryConfig) Command {
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.NoopRecorder{}
	}
	opts := copier.DefaultOptions()
	opts.ContentsOnly = true
	if cfg.BufferSize > 0 {
		opts.BufferSize = cfg.BufferSize
	}
	c := copier.New(opts)

	return Command{
		Name:        CopyDirectoryName,
		Description: "Recursively copy the contents of a directory into another directory",
		Version:     semver.MustParse("1.0.0"),
		Schema:      copyDirectorySchema,
		Handler: func(inv *Invocation) (any, error) {
			var args copyDirectoryArgs
			if err := json.Unmarshal(inv.Args, &args); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
			}
			log := inv.Log.WithFields(logfields.Paths(args.Source, args.Destination))

			if err := cfg.Scope.Check(args.Source, args.Destination); err != nil {
				cfg.Recorder.IncCopyError(copier.KindPermission.String())
				log.WithFields(logfields.Error(err)).Warn("copy refused")
				return nil, err
			}

			start := time.Now()
			stats, err := c.Copy(args.Source, args.Destination)
			cfg.Recorder.AddCopied(stats.Files, stats.Bytes)
			log = log.WithFields(logfields.Duration(time.Since(start))).
				WithField(logfields.KeyFiles, stats.Files).
				WithField(logfields.KeyBytes, stats.Bytes)
			if err != nil {
				kind := copier.KindOf(err)
				cfg.Recorder.IncCopyError(kind.String())
				log.WithFields(logfields.Error(err)).WithField(logfields.KeyErrorKind, kind.String()).Warn("copy failed")
				return nil, err
			}

			log.Info("directory copied")
			return nil, nil
		},
	}
}
