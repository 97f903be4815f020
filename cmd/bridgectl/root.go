// Command bridgectl is the CLI control client for cyncbridged: status,
// reload, and stop, all carried over the JSON-RPC control socket.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyncbridge/core/internal/clilog"
)

var (
	socketPath string
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:     "bridgectl",
	Short:   "bridgectl controls a running cyncbridged daemon",
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&socketPath, "socket", "s", "/var/run/cyncbridge.sock", "daemon control socket path")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "request timeout")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reloadCmd)
	rootCmd.AddCommand(stopCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func exitWithError(msg string, err error) {
	if err != nil {
		clilog.Get().WithError(err).Error(msg)
	} else {
		clilog.Get().Error(msg)
	}
	os.Exit(1)
}
