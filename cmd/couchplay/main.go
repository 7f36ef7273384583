package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "couchplay",
		Short: "Party-game server driven by phone controllers",
		Long: `Couchplay hosts local party games on a shared screen.

Players join from their phones over WebSocket: the browser page acts
as a controller, the server runs the lobby and the games. Connections
from outside the local network are TLS-encrypted when an identity is
configured.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
