package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	killPIDs    []int
	killProject string
	killForce   bool
	killTimeout int
)

func init() {
	rootCmd.AddCommand(cmdKill)
	cmdKill.Flags().IntSliceVar(&killPIDs, "pid", nil, "PID to terminate (repeatable)")
	cmdKill.Flags().StringVar(&killProject, "project", "", "Terminate every process of this project directory")
	cmdKill.Flags().BoolVar(&killForce, "force", false, "Skip the graceful signal and kill immediately")
	cmdKill.Flags().IntVar(&killTimeout, "timeout", 10, "Timeout in seconds for the daemon request")
}

var cmdKill = &cobra.Command{
	Use:   "kill",
	Short: "Terminate processes by pid or by project",
	Long:  "Asks the daemon to stop processes. Without --force, processes get a graceful signal first and are killed only if they linger; container entries are stopped through the container runtime.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(killPIDs) == 0 && killProject == "" {
			return errors.New("select processes with --pid or --project")
		}
		if len(killPIDs) > 0 && killProject != "" {
			return errors.New("--pid and --project are mutually exclusive")
		}

		ctrl := controller()
		timeout := time.Duration(killTimeout) * time.Second

		if killProject != "" {
			results, err := ctrl.KillProject(cmd.Context(), timeout, killProject, killForce)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No processes found for project")
				return nil
			}
			for _, res := range results {
				if res.Success {
					fmt.Fprintf(cmd.OutOrStdout(), "Killed pid=%d\n", res.PID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Failed to kill pid=%d: %s\n", res.PID, res.Error)
				}
			}
			return nil
		}

		for _, pid := range killPIDs {
			res, err := ctrl.Kill(cmd.Context(), timeout, pid, killForce)
			if err != nil {
				return err
			}
			if res.Success {
				fmt.Fprintf(cmd.OutOrStdout(), "Killed pid=%d\n", res.PID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Failed to kill pid=%d: %s\n", res.PID, res.Error)
			}
		}
		return nil
	},
}
