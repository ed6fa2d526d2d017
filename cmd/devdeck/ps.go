package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"devdeck/internal/registry"
)

var (
	psProject string
	psJSON    bool
	psTimeout int
)

func init() {
	rootCmd.AddCommand(cmdPS)
	cmdPS.Flags().StringVar(&psProject, "project", "", "Only show processes of this project directory")
	cmdPS.Flags().BoolVar(&psJSON, "json", false, "Emit machine-readable JSON")
	cmdPS.Flags().IntVar(&psTimeout, "timeout", 10, "Timeout in seconds for the daemon query")
}

var cmdPS = &cobra.Command{
	Use:   "ps",
	Short: "List the processes working on your projects",
	Long:  "Fetches the merged view of launched and discovered processes (including containers) from the daemon.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := controller()
		timeout := time.Duration(psTimeout) * time.Second

		procs, err := listProcs(cmd, ctrl, timeout)
		if err != nil {
			return err
		}

		if psJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(procs)
		}

		if len(procs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No processes found")
			return nil
		}
		for _, p := range procs {
			port := "-"
			if p.Port != 0 {
				port = fmt.Sprintf("%d", p.Port)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] pid=%d port=%s project=%s cmd=%s\n",
				p.Type, p.PID, port, p.ProjectName, p.Command)
		}
		return nil
	},
}

func listProcs(cmd *cobra.Command, ctrl controllerAPI, timeout time.Duration) ([]registry.Proc, error) {
	if psProject != "" {
		return ctrl.ProjectProcesses(cmd.Context(), timeout, psProject, "")
	}
	return ctrl.Processes(cmd.Context(), timeout)
}
