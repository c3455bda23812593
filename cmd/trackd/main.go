// Command trackd runs the issue-tracking web service.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/uschtwill/trackd/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "trackd",
	Short: "trackd is a self-hosted issue tracker",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		if config.GetBool("log-json") {
			logrus.SetFormatter(&logrus.JSONFormatter{})
		}
		return nil
	},
}

// FatalError prints a formatted error and exits non-zero.
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	rootCmd.AddCommand(initCmd, serveCmd, userCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
