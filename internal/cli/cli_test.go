package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentx-labs/copybridge/internal/bridge"
	"github.com/agentx-labs/copybridge/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// run executes the root command at error level and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, append([]string{"--log-level", "error"}, args...)...)
}

// execute runs the root command with a fresh home directory and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)
	viper.Reset()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags clears state left on the package-level flag variables by earlier runs.
func resetFlags(cmd *cobra.Command) {
	configPath, logLevel, logFormat = "", "info", "text"
	copyNest, copyNoOverwrite, copySkipExisting, copyQuiet = false, false, false, false
	copyDepth, copyBufferSize = 0, ""
	invokeArgsJSON, invokeArgPairs, invokeRequires = "", map[string]string{}, ""
	commandsJSON, versionShort, versionJSON = false, false, false

	reset := func(f *pflag.Flag) { f.Changed = false }
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigureLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"text info", "info", "text", false},
		{"json debug", "debug", "json", false},
		{"empty format is text", "warn", "", false},
		{"bad level", "loud", "text", true},
		{"bad format", "info", "xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := logrus.New()
			err := configureLogger(l, config.Settings{LogLevel: tt.level, LogFormat: tt.format})
			if (err != nil) != tt.wantErr {
				t.Fatalf("configureLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			want, _ := logrus.ParseLevel(tt.level)
			if l.GetLevel() != want {
				t.Errorf("level = %s, want %s", l.GetLevel(), want)
			}
			_, isJSON := l.Formatter.(*logrus.JSONFormatter)
			if isJSON != (tt.format == "json") {
				t.Errorf("formatter = %T for format %q", l.Formatter, tt.format)
			}
		})
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := newRegistry(config.Settings{BufferSize: 4096}, nil)
	if err != nil {
		t.Fatalf("newRegistry() error: %v", err)
	}
	if _, ok := reg.Lookup(bridge.CopyDirectoryName); !ok {
		t.Errorf("%s not registered", bridge.CopyDirectoryName)
	}

	if _, err := newRegistry(config.Settings{ScopeAllow: []string{"relative/root"}}, nil); err == nil {
		t.Error("expected error for relative scope root")
	}
}

func TestCopyCommand(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	dst := filepath.Join(tmp, "dst")
	writeFile(t, filepath.Join(src, "a.txt"), "hello")
	writeFile(t, filepath.Join(src, "sub", "b.txt"), "world!")

	out, err := run(t, "copy", src, dst)
	if err != nil {
		t.Fatalf("copy error: %v", err)
	}
	if !strings.Contains(out, "Copied 2 files in 1 directories") {
		t.Errorf("unexpected summary: %q", out)
	}

	data, err := os.ReadFile(filepath.Join(dst, "sub", "b.txt"))
	if err != nil {
		t.Fatalf("reading copied file: %v", err)
	}
	if string(data) != "world!" {
		t.Errorf("b.txt = %q, want %q", data, "world!")
	}
}

func TestCopyCommandNest(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	dst := filepath.Join(tmp, "dst")
	writeFile(t, filepath.Join(src, "a.txt"), "hello")

	if _, err := run(t, "copy", "--nest", "--quiet", src, dst); err != nil {
		t.Fatalf("copy --nest error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "src", "a.txt")); err != nil {
		t.Errorf("expected nested copy: %v", err)
	}
}

func TestCopyCommandReportsKind(t *testing.T) {
	tmp := t.TempDir()

	_, err := run(t, "copy", filepath.Join(tmp, "missing"), filepath.Join(tmp, "dst"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if !strings.HasPrefix(err.Error(), "input error: ") {
		t.Errorf("error = %q, want input error prefix", err)
	}
}

func TestCopyCommandBadBufferSize(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "src", "a.txt"), "x")

	_, err := run(t, "copy", "--buffer-size", "lots", filepath.Join(tmp, "src"), filepath.Join(tmp, "dst"))
	if err == nil || !strings.Contains(err.Error(), "--buffer-size") {
		t.Errorf("expected --buffer-size error, got %v", err)
	}
}

func TestInvokeCopyDirectory(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "src")
	dst := filepath.Join(tmp, "dst")
	writeFile(t, filepath.Join(src, "a.txt"), "hello")

	out, err := run(t, "invoke", bridge.CopyDirectoryName, "--arg", "source="+src, "--arg", "destination="+dst)
	if err != nil {
		t.Fatalf("invoke error: %v (output %s)", err, out)
	}

	var resp bridge.Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, out)
	}
	if !resp.OK || resp.ID == "" || len(resp.Payload) != 0 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if _, err := os.Stat(filepath.Join(dst, "a.txt")); err != nil {
		t.Errorf("expected copied file: %v", err)
	}
}

func TestInvokeFailures(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown command", []string{"invoke", "delete_everything"}, "unknown command"},
		{"missing args", []string{"invoke", bridge.CopyDirectoryName}, "invalid arguments"},
		{"bad json", []string{"invoke", bridge.CopyDirectoryName, "--args", "{"}, "not valid JSON"},
		{"version mismatch", []string{"invoke", bridge.CopyDirectoryName, "--args", `{"source":"a","destination":"b"}`, "--requires", "^2"}, "incompatible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCommandsList(t *testing.T) {
	out, err := run(t, "commands")
	if err != nil {
		t.Fatalf("commands error: %v", err)
	}
	if !strings.Contains(out, "NAME") || !strings.Contains(out, bridge.CopyDirectoryName) || !strings.Contains(out, "1.0.0") {
		t.Errorf("unexpected listing:\n%s", out)
	}
}

func TestCommandsJSON(t *testing.T) {
	out, err := run(t, "commands", "--json")
	if err != nil {
		t.Fatalf("commands --json error: %v", err)
	}

	var infos []commandInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(infos) != 1 || infos[0].Name != bridge.CopyDirectoryName {
		t.Fatalf("unexpected commands: %+v", infos)
	}
	if !strings.Contains(string(infos[0].Schema), `"destination"`) {
		t.Errorf("schema missing destination: %s", infos[0].Schema)
	}
}

func TestVersionShort(t *testing.T) {
	buildVersion = "1.2.3"
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if strings.TrimSpace(out) != "1.2.3" {
		t.Errorf("version --short = %q", out)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, cfg, "log:\n  format: xml\ndispatch:\n  workers: 0\n")

	_, err := run(t, "--config", cfg, "commands")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("expected invalid configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), config.KeyLogFormat) || !strings.Contains(err.Error(), config.KeyWorkers) {
		t.Errorf("expected every problem reported, got %v", err)
	}

	// version stays usable so the config can still be inspected.
	if _, err := run(t, "--config", cfg, "version"); err != nil {
		t.Errorf("version with invalid config: %v", err)
	}
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "commands")
	if err == nil {
		t.Fatal("expected error for missing --config file")
	}
}

func TestLogFlagsOverrideInvalidConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, cfg, "log:\n  level: loud\n  format: xml\n")

	_, err := execute(t, "--config", cfg, "commands")
	if err == nil || !strings.Contains(err.Error(), config.KeyLogLevel) {
		t.Fatalf("expected log.level error without flags, got %v", err)
	}

	out, err := execute(t, "--config", cfg, "--log-level", "warn", "--log-format", "json", "commands")
	if err != nil {
		t.Fatalf("flags should replace the invalid values: %v", err)
	}
	if !strings.Contains(out, bridge.CopyDirectoryName) {
		t.Errorf("unexpected listing:\n%s", out)
	}
	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("logger level = %s, want warning", logger.GetLevel())
	}
}
