package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cyncbridge/core/internal/clilog"
	"github.com/cyncbridge/core/internal/control"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running cyncbridged daemon gracefully",
	Run: func(cmd *cobra.Command, args []string) {
		runStopCommand()
	},
}

func runStopCommand() {
	client := control.NewClient(socketPath, timeout)
	if err := client.Stop(context.Background()); err != nil {
		exitWithError("failed to stop daemon", err)
		return
	}
	clilog.Get().Info("stop signal sent")
}
