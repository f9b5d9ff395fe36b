// Command archlensd runs the archlens ingestion front and read surface
// processes (spec §2 overview). Both servers share one process so an
// operator running a single binary locally gets the full pipeline; nothing
// prevents running `serve` twice behind separate load balancers for the two
// ports in a real deployment.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "archlensd",
	Short: "archlens reconstructs distributed-application architecture from observability spans",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the archlens config file")
	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
