package credentials

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
)

var (
	secret     string
	jsonOutput bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Store credential tools",
	}

	cmd.AddCommand(newDeriveCommand())
	return cmd
}

func newDeriveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive a store token and signing material from a license secret",
		Long: `Derive the store token and the signing material that a license secret
maps to. The secret is read from --secret, or from the terminal without echo,
or from stdin when it is not a terminal.`,
		RunE: runDerive,
	}

	cmd.Flags().StringVar(&secret, "secret", "", "License secret (prompted when omitted)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON")
	return cmd
}

func runDerive(cmd *cobra.Command, args []string) error {
	value := secret
	if value == "" {
		read, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		value = read
	}

	creds, err := auth.DeriveCredentials(value)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{
			"store_token":     creds.Token,
			"secret_material": creds.SecretMaterial,
		})
	}

	fmt.Fprintf(out, "store_token:     %s\n", creds.Token)
	fmt.Fprintf(out, "secret_material: %s\n", creds.SecretMaterial)
	return nil
}

func readSecret(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "License secret: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}
