package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivknv/yadisk-go/auth"
	"github.com/ivknv/yadisk-go/client"
)

// NewTokenCommand creates the token command group
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Check and obtain OAuth tokens",
	}

	cmd.AddCommand(
		newTokenCheckCommand(),
		newTokenURLCommand(),
		newTokenExchangeCommand(),
		newTokenRevokeCommand(),
	)
	return cmd
}

var errTokenInvalid = errors.New("token is not valid")

func newTokenCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [token]",
		Short: "Check a token, the configured one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) > 0 {
				token = args[0]
			}
			ok, err := clientFrom(cmd).CheckToken(cmd.Context(), token)
			if err != nil {
				return err
			}
			if !ok {
				return errTokenInvalid
			}
			fmt.Fprintln(cmd.OutOrStdout(), "token is valid")
			return nil
		},
	}
}

func newTokenURLCommand() *cobra.Command {
	var state string
	var pkce bool

	cmd := &cobra.Command{
		Use:   "code-url",
		Short: "Print the page that issues a confirmation code",
		Long: `Prints the authorization page of the configured application. With --pkce
the code verifier is printed on a second line; pass it to "token exchange".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := auth.AuthURLOptions{State: state}
			var verifier string
			if pkce {
				p := auth.NewPKCE()
				opts = p.Apply(opts)
				verifier = p.Verifier
			}
			u, err := clientFrom(cmd).CodeURL(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			if verifier != "" {
				fmt.Fprintln(cmd.OutOrStdout(), verifier)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "Opaque value echoed back to the redirect URI")
	cmd.Flags().BoolVar(&pkce, "pkce", false, "Use a PKCE code challenge")

	return cmd
}

func newTokenExchangeCommand() *cobra.Command {
	opts := client.TokenOptions{}

	cmd := &cobra.Command{
		Use:   "exchange <code>",
		Short: "Exchange a confirmation code for a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := clientFrom(cmd).GetToken(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return printJSON(cmd, tok)
		},
	}

	cmd.Flags().StringVar(&opts.CodeVerifier, "verifier", "", "PKCE code verifier")
	cmd.Flags().StringVar(&opts.DeviceID, "device-id", "", "Device identifier")
	cmd.Flags().StringVar(&opts.DeviceName, "device-name", "", "Device name")

	return cmd
}

func newTokenRevokeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <token>",
		Short: "Revoke a token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := clientFrom(cmd).RevokeToken(cmd.Context(), args[0])
			return err
		},
	}
}
