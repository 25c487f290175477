package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agentx-labs/copybridge/internal/bridge"
	"github.com/spf13/cobra"
)

var (
	invokeArgsJSON string
	invokeArgPairs map[string]string
	invokeRequires string
)

func init() {
	invokeCmd.Flags().StringVar(&invokeArgsJSON, "args", "", `Arguments as a JSON object, e.g. '{"source":"a","destination":"b"}'`)
	invokeCmd.Flags().StringToStringVar(&invokeArgPairs, "arg", nil, "Argument as key=value (repeatable)")
	invokeCmd.Flags().StringVar(&invokeRequires, "requires", "", "Semver constraint the command version must satisfy, e.g. ^1")
	invokeCmd.MarkFlagsMutuallyExclusive("args", "arg")
	rootCmd.AddCommand(invokeCmd)
}

var invokeCmd = &cobra.Command{
	Use:   "invoke <command>",
	Short: "Invoke one bridge command and print its response",
	Long: `Send a single request through the command bridge, exactly as the frontend
would, wait for it to resolve and print the JSON response. Exits non-zero when
the command fails.`,
	Example: `  copybridge invoke copy_directory --arg source=/tmp/src --arg destination=/tmp/dst`,
	Args:    cobra.ExactArgs(1),
	RunE:    runInvoke,
}

func runInvoke(cmd *cobra.Command, args []string) error {
	rawArgs, err := buildInvokeArgs()
	if err != nil {
		return err
	}

	reg, err := newRegistry(settings, nil)
	if err != nil {
		return err
	}
	d := bridge.NewDispatcher(reg, bridge.DispatcherOptions{Workers: 1, QueueSize: 1, Logger: logger})
	defer d.Close()

	resp := d.Invoke(bridge.Request{Command: args[0], Args: rawArgs, Requires: invokeRequires}).Wait()

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling response: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !resp.OK {
		return errors.New(resp.Error)
	}
	return nil
}

func buildInvokeArgs() (json.RawMessage, error) {
	if len(invokeArgPairs) > 0 {
		data, err := json.Marshal(invokeArgPairs)
		if err != nil {
			return nil, fmt.Errorf("encoding --arg values: %w", err)
		}
		return data, nil
	}
	if invokeArgsJSON == "" {
		return nil, nil
	}
	if !json.Valid([]byte(invokeArgsJSON)) {
		return nil, fmt.Errorf("--args is not valid JSON")
	}
	return json.RawMessage(invokeArgsJSON), nil
}
