// Command cyncbridged runs the Cync cloud bridge core as a foreground
// daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cyncbridge/core/internal/config"
	"github.com/cyncbridge/core/internal/daemon"
	"github.com/cyncbridge/core/internal/hostadapter/fileadapter"
)

var (
	configFile string
	pidFile    string
)

var rootCmd = &cobra.Command{
	Use:     "cyncbridged",
	Short:   "cyncbridged bridges Cync cloud-connected bulbs into a home-automation host",
	Version: "0.1.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/cyncbridge/config.yml", "config file path")
	rootCmd.PersistentFlags().StringVarP(&pidFile, "pidfile", "p", "/var/run/cyncbridge.pid", "PID file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runDaemon reads the config once to resolve the local inventory
// fixture path for the file-backed HostAdapter; daemon.New reads it
// again for the values the core itself needs. The double read keeps
// main.go free of bridge/core-internal config shape knowledge.
func runDaemon() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	host := fileadapter.New(cfg.Homes.InventoryPath, nil)

	d, err := daemon.New(configFile, pidFile, host)
	if err != nil {
		return err
	}
	if err := d.Start(); err != nil {
		return err
	}
	return d.Run()
}
