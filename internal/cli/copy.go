package cli

import (
	"fmt"

	"github.com/agentx-labs/copybridge/internal/config"
	"github.com/agentx-labs/copybridge/internal/copier"
	"github.com/agentx-labs/copybridge/internal/logfields"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	copyNest         bool
	copyNoOverwrite  bool
	copySkipExisting bool
	copyDepth        int
	copyBufferSize   string
	copyQuiet        bool
)

func init() {
	copyCmd.Flags().BoolVar(&copyNest, "nest", false, "Create destination/<source-name> instead of merging into destination")
	copyCmd.Flags().BoolVar(&copyNoOverwrite, "no-overwrite", false, "Fail on files that already exist at the destination")
	copyCmd.Flags().BoolVar(&copySkipExisting, "skip-existing", false, "With --no-overwrite, leave existing files alone instead of failing")
	copyCmd.Flags().IntVar(&copyDepth, "depth", 0, "Copy at most this many levels below source (0 = unlimited)")
	copyCmd.Flags().StringVar(&copyBufferSize, "buffer-size", "", "Copy buffer size, e.g. 64k or 1MiB (default from config)")
	copyCmd.Flags().BoolVarP(&copyQuiet, "quiet", "q", false, "Do not print a summary")
	rootCmd.AddCommand(copyCmd)
}

var copyCmd = &cobra.Command{
	Use:   "copy <source> <destination>",
	Short: "Copy a directory tree into a destination directory",
	Long: `Copy the contents of <source> into <destination>, creating it if needed.
Existing files at colliding paths are overwritten; unrelated entries in
<destination> are left alone. A file where the source has a directory (or the
reverse) is an error.`,
	Args: cobra.ExactArgs(2),
	RunE: runCopy,
}

func runCopy(cmd *cobra.Command, args []string) error {
	source, destination := args[0], args[1]

	opts := copier.DefaultOptions()
	opts.ContentsOnly = !copyNest
	opts.Overwrite = !copyNoOverwrite
	opts.SkipExisting = copySkipExisting
	opts.Depth = copyDepth
	opts.BufferSize = settings.BufferSize
	if copyBufferSize != "" {
		size, err := config.ParseSize(copyBufferSize)
		if err != nil {
			return fmt.Errorf("--buffer-size: %w", err)
		}
		opts.BufferSize = size
	}
	if copyDepth < 0 {
		return fmt.Errorf("--depth must not be negative")
	}

	log := logger.WithFields(logfields.Paths(source, destination))
	stats, err := copier.New(opts).Copy(source, destination)
	if err != nil {
		kind := copier.KindOf(err)
		log.WithFields(logfields.Error(err)).WithField(logfields.KeyErrorKind, kind.String()).Debug("copy failed")
		return fmt.Errorf("%s error: %w", kind, err)
	}
	log.WithField(logfields.KeyFiles, stats.Files).WithField(logfields.KeyBytes, stats.Bytes).Debug("copy finished")

	if !copyQuiet {
		printSummary(cmd, stats)
	}
	return nil
}

func printSummary(cmd *cobra.Command, stats copier.Stats) {
	p := message.NewPrinter(language.English)
	p.Fprintf(cmd.OutOrStdout(), "Copied %d files in %d directories (%s)\n",
		stats.Files, stats.Dirs, units.HumanSize(float64(stats.Bytes)))
	if stats.Skipped > 0 {
		p.Fprintf(cmd.OutOrStdout(), "Skipped %d entries\n", stats.Skipped)
	}
}
