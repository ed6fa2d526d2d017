package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var (
	openName    string
	openTimeout int
)

func init() {
	rootCmd.AddCommand(cmdOpen)
	cmdOpen.Flags().StringVar(&openName, "name", "", "Display name for the project (defaults to the directory basename)")
	cmdOpen.Flags().IntVar(&openTimeout, "timeout", 15, "Timeout in seconds for the launch")
}

var cmdOpen = &cobra.Command{
	Use:   "open <project-path>",
	Short: "Open the editor and a terminal on a project",
	Long:  "Launches the configured editor plus a platform terminal in the project directory and registers both with the daemon.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		name := openName
		if name == "" {
			name = filepath.Base(path)
		}

		resp, err := controller().Launch(cmd.Context(), time.Duration(openTimeout)*time.Second, path, name)
		if err != nil {
			return err
		}
		for _, p := range resp.Processes {
			fmt.Fprintf(cmd.OutOrStdout(), "Started %s pid=%d\n", p.Type, p.PID)
		}
		for _, msg := range resp.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "Warning: %s\n", msg)
		}
		if len(resp.Processes) == 0 && len(resp.Errors) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing registered (terminal may still have opened)")
		}
		return nil
	},
}
