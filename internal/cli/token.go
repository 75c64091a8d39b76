package cli

import (
	"fmt"
	"io"

	"go-cashbook-ws/internal/model"
	"go-cashbook-ws/internal/service"
	"go-cashbook-ws/pkg/jwt"

	"github.com/spf13/cobra"
)

type tokenOptions struct {
	userID        string
	email         string
	name          string
	avatar        string
	providerToken string
}

// newTokenCommand mints a session token for an identity, standing in for
// the OAuth callback during local development.
func newTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session token for an identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}

			auth := service.NewAuthService(jwt.NewManager(cfg.Auth.JWTSecret, "cashbooks", cfg.Auth.TokenTTL))
			resp, err := auth.IssueToken(model.User{
				ID:     opts.userID,
				Name:   opts.name,
				Email:  opts.email,
				Avatar: opts.avatar,
			}, opts.providerToken)
			if err != nil {
				return err
			}

			return rootOpts.write(cmd.OutOrStdout(), resp, func(w io.Writer) {
				fmt.Fprintln(w, resp.Token)
			})
		},
	}

	cmd.Flags().StringVar(&opts.userID, "user-id", "", "user id (required)")
	cmd.Flags().StringVar(&opts.email, "email", "", "user email (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.avatar, "avatar", "", "avatar url")
	cmd.Flags().StringVar(&opts.providerToken, "provider-token", "", "OAuth access token for the drive store")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
