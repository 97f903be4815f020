package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cyncbridge/core/internal/clilog"
	"github.com/cyncbridge/core/internal/control"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon's session state and per-bulb connectivity",
	Run: func(cmd *cobra.Command, args []string) {
		runStatusCommand()
	},
}

func runStatusCommand() {
	client := control.NewClient(socketPath, timeout)
	result, err := client.Status(context.Background())
	if err != nil {
		exitWithError("failed to query daemon status", err)
		return
	}

	clilog.WithField("sessionState", result.SessionState).Info("daemon status")
	for _, b := range result.Bulbs {
		clilog.Get().WithFields(map[string]any{
			"deviceID":   b.DeviceID,
			"switchID":   b.SwitchID,
			"name":       b.DisplayName,
			"connected":  b.Connected,
			"on":         b.On,
			"brightness": b.Brightness,
		}).Info("bulb")
	}
}
