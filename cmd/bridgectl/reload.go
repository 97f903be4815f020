package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cyncbridge/core/internal/clilog"
	"github.com/cyncbridge/core/internal/control"
)

// reloadCmd sends a reload request to the running daemon.
//
// Only the authorize token and session timers are hot-reloadable;
// userID or host changes still require a restart.
var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the daemon's hot-reloadable configuration",
	Run: func(cmd *cobra.Command, args []string) {
		runReloadCommand()
	},
}

func runReloadCommand() {
	client := control.NewClient(socketPath, timeout)
	if err := client.Reload(context.Background()); err != nil {
		exitWithError("failed to reload daemon config", err)
		return
	}
	clilog.Get().Info("configuration reloaded")
}
