package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	eventsLimit   int
	eventsProject string
	eventsTimeout int
)

func init() {
	rootCmd.AddCommand(cmdEvents)
	cmdEvents.Flags().IntVar(&eventsLimit, "limit", 20, "Maximum number of events to show")
	cmdEvents.Flags().StringVar(&eventsProject, "project", "", "Only show events of this project directory")
	cmdEvents.Flags().IntVar(&eventsTimeout, "timeout", 10, "Timeout in seconds for the daemon query")
}

var cmdEvents = &cobra.Command{
	Use:   "events",
	Short: "Show recent daemon lifecycle events",
	Long:  "Lists what the daemon launched, killed and pruned, newest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := controller().Events(cmd.Context(), time.Duration(eventsTimeout)*time.Second, eventsProject, eventsLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No events recorded")
			return nil
		}
		for _, ev := range events {
			detail := ev.Detail
			if detail != "" {
				detail = " " + detail
			}
			project := ev.ProjectPath
			if project == "" {
				project = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-11s pid=%d project=%s%s\n",
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"), ev.Kind, ev.PID, project, detail)
		}
		return nil
	},
}
