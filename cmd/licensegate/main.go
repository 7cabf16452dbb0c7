package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/licensegate/internal/interfaces/cli/admintoken"
	"github.com/orris-inc/licensegate/internal/interfaces/cli/credentials"
	"github.com/orris-inc/licensegate/internal/interfaces/cli/migrate"
	"github.com/orris-inc/licensegate/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "licensegate",
		Short: "License Gate - license entitlement enforcement for store plugins",
		Long:  `License Gate tracks how many licenses each connected store has issued against its plan and enforces the plan limit.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		credentials.NewCommand(),
		admintoken.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
