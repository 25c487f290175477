package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"

	"github.com/agentx-labs/copybridge/internal/config"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:         "doctor",
	Short:       "Check the configuration and the directories the bridge may touch",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipValidation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if failed := runDoctor(cmd.OutOrStdout()); failed > 0 {
			return fmt.Errorf("%d check(s) failed", failed)
		}
		return nil
	},
}

// runDoctor prints one line per check and returns the number of failures.
func runDoctor(w io.Writer) int {
	failed := 0

	fmt.Fprintln(w, "Config check:")
	file := viper.ConfigFileUsed()
	if file == "" {
		file = config.FilePath()
	}
	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(w, "  [MISS] %s does not exist, using defaults\n", file)
	} else if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", file, err)
		failed++
	} else {
		fmt.Fprintf(w, "  [ OK ] %s\n", file)
	}

	s, err := config.Current()
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		failed++
	} else {
		fmt.Fprintf(w, "  [ OK ] settings valid (buffer %s, %d workers, queue %d)\n",
			units.BytesSize(float64(s.BufferSize)), s.Workers, s.QueueSize)
	}
	if s.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(s.MetricsAddr); err != nil {
			fmt.Fprintf(w, "  [FAIL] %s %q: %v\n", config.KeyMetricsAddr, s.MetricsAddr, err)
			failed++
		}
	}

	fmt.Fprintln(w, "Scope check:")
	if len(s.ScopeAllow) == 0 {
		fmt.Fprintln(w, "  [WARN] no scope roots configured, every path is allowed")
		return failed
	}
	for _, root := range s.ScopeAllow {
		if !checkScopeRoot(w, root) {
			failed++
		}
	}
	return failed
}

// checkScopeRoot reports whether root is an existing directory the current
// user can create entries in.
func checkScopeRoot(w io.Writer, root string) bool {
	info, err := os.Stat(root)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", root, err)
		return false
	}
	if !info.IsDir() {
		fmt.Fprintf(w, "  [FAIL] %s is not a directory\n", root)
		return false
	}

	probe, err := os.CreateTemp(root, ".copybridge-doctor-*")
	if err != nil {
		fmt.Fprintf(w, "  [WARN] %s is read-only: %v\n", root, err)
		return true
	}
	probe.Close()
	os.Remove(probe.Name())

	fmt.Fprintf(w, "  [ OK ] %s (permissions %o)\n", root, info.Mode().Perm())
	return true
}
