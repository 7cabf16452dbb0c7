package admintoken

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
	"github.com/orris-inc/licensegate/internal/infrastructure/config"
	"github.com/orris-inc/licensegate/internal/shared/constants"
)

var (
	env        string
	configPath string
	subject    string
	scope      string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Issue an admin token for the notification and store routes",
		Long: `Issue a signed admin token. The subscription system uses a token with the
"notifications" scope; operators reading store usage use "stores.read".`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVar(&subject, "subject", "subscription-system", "Token subject")
	cmd.Flags().StringVar(&scope, "scope", auth.ScopeNotifications, "Token scope (notifications, stores.read, *)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if !auth.ValidScope(scope) {
		return fmt.Errorf("invalid scope %q", scope)
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tokens := auth.NewAdminTokenService(cfg.Admin.JWTSecret, cfg.Admin.Issuer, cfg.Admin.TokenTTL())
	token, err := tokens.Generate(subject, scope)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
