package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"devdeck/internal/daemon"
)

var (
	daemonForceRestart bool
	daemonStop         bool
)

func init() {
	rootCmd.AddCommand(cmdDaemon)
	cmdDaemon.Flags().BoolVarP(&daemonForceRestart, "force", "f", false, "Restart the daemon if it is already running")
	cmdDaemon.Flags().BoolVar(&daemonStop, "stop", false, "Stop the running daemon instead of starting one")
}

var cmdDaemon = &cobra.Command{
	Use:   "daemon",
	Short: "Start (or stop) the daemon process",
	Long:  `The daemon owns the process registry and serves the socket API. If it is not running, it will be started in the foreground. Otherwise, nothing will happen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := controller()

		if daemonStop {
			if !daemon.IsRunning() {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
				return nil
			}
			if err := ctrl.StopDaemon(daemonForceRestart); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
			return nil
		}

		if daemon.IsRunning() {
			if !daemonForceRestart {
				pid, err := daemon.RunningPID()
				message := "Daemon is already running. Stop it with --stop or re-run with --force."
				if err == nil && pid != 0 {
					message = fmt.Sprintf("Daemon is already running (pid %d). Stop it with --stop or re-run with --force.", pid)
				}
				fmt.Fprintln(cmd.OutOrStdout(), message)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stopping existing daemon process...")
			if err := ctrl.StopDaemon(true); err != nil {
				return err
			}
		}

		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()

		handle, err := ctrl.StartDaemon(logger)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Started daemon process")
		runSpin := spinner.New(spinner.CharSets[21], 120*time.Millisecond, spinner.WithWriter(os.Stdout))
		runSpin.Suffix = " Running..."
		runSpin.Start()

		sigc := make(chan os.Signal, 2)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		<-sigc
		runSpin.Stop()
		return handle.Close()
	},
}
