package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var portTimeout int

func init() {
	rootCmd.AddCommand(cmdPort)
	cmdPort.Flags().IntVar(&portTimeout, "timeout", 10, "Timeout in seconds for the daemon query")
}

var cmdPort = &cobra.Command{
	Use:   "port <port>",
	Short: "Find the processes listening on a port",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid port %q", args[0])
		}

		procs, err := controller().ByPort(cmd.Context(), time.Duration(portTimeout)*time.Second, port)
		if err != nil {
			return err
		}
		if len(procs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Nothing is listening on port %d\n", port)
			return nil
		}
		for _, proc := range procs {
			project := proc.ProjectName
			if project == "" {
				project = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pid=%d project=%s cmd=%s\n", proc.PID, project, proc.Command)
		}
		return nil
	},
}
