package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var commandsJSON bool

func init() {
	commandsCmd.Flags().BoolVar(&commandsJSON, "json", false, "Print commands with their argument schemas as JSON")
	rootCmd.AddCommand(commandsCmd)
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List the commands the bridge accepts",
	Args:  cobra.NoArgs,
	RunE:  runCommands,
}

type commandInfo struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema,omitempty"`
}

func runCommands(cmd *cobra.Command, args []string) error {
	reg, err := newRegistry(settings, nil)
	if err != nil {
		return err
	}
	cmds := reg.Commands()

	if commandsJSON {
		infos := make([]commandInfo, 0, len(cmds))
		for _, c := range cmds {
			info := commandInfo{Name: c.Name, Version: c.Version.String(), Description: c.Description}
			if c.Schema != "" {
				info.Schema = json.RawMessage(c.Schema)
			}
			infos = append(infos, info)
		}
		out, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling commands: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tDESCRIPTION")
	for _, c := range cmds {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Version, c.Description)
	}
	return w.Flush()
}
