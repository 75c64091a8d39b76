package cli

import (
	"fmt"
	"io"
	"time"

	"go-cashbook-ws/internal/invite"
	"go-cashbook-ws/internal/model"

	"github.com/spf13/cobra"
)

func newInviteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Issue or inspect invitation links",
	}
	cmd.AddCommand(newInviteIssueCommand(rootOpts))
	cmd.AddCommand(newInviteDecodeCommand(rootOpts))
	return cmd
}

func codec(rootOpts *RootOptions) (*invite.Codec, string, error) {
	cfg, err := rootOpts.LoadConfig()
	if err != nil {
		return nil, "", err
	}
	if cfg.Auth.InviteSecret == "" {
		return nil, "", fmt.Errorf("INVITE_SECRET or JWT_SECRET must be set")
	}
	return invite.NewCodec(cfg.Auth.InviteSecret), cfg.Server.AppURL, nil
}

func newInviteIssueCommand(rootOpts *RootOptions) *cobra.Command {
	var p invite.Payload
	var role string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an invitation link without sending mail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Role = model.Role(role)
			if p.Role != model.RolePartner && p.Role != model.RoleStaff {
				return fmt.Errorf("role must be PARTNER or STAFF")
			}

			c, appURL, err := codec(rootOpts)
			if err != nil {
				return err
			}
			token, expires, err := c.Issue(p)
			if err != nil {
				return err
			}

			link := appURL + "/invite/" + token
			out := map[string]interface{}{"token": token, "link": link, "expiresAt": expires}
			return rootOpts.write(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintln(w, link)
			})
		},
	}

	cmd.Flags().StringVar(&p.Email, "email", "", "invitee email (required)")
	cmd.Flags().StringVar(&role, "role", string(model.RoleStaff), "PARTNER or STAFF")
	cmd.Flags().StringVar(&p.BusinessID, "business-id", "", "business id (required)")
	cmd.Flags().StringVar(&p.BusinessName, "business-name", "", "business name shown to the invitee")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("business-id")

	return cmd
}

func newInviteDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <token>",
		Short: "Verify an invitation token and print its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := codec(rootOpts)
			if err != nil {
				return err
			}
			p, err := c.Decode(args[0])
			if err != nil {
				return err
			}

			return rootOpts.write(cmd.OutOrStdout(), p, func(w io.Writer) {
				fmt.Fprintf(w, "email:    %s\n", p.Email)
				fmt.Fprintf(w, "role:     %s\n", p.Role)
				fmt.Fprintf(w, "business: %s (%s)\n", p.BusinessName, p.BusinessID)
				fmt.Fprintf(w, "expires:  %s\n", time.UnixMilli(p.Expires).UTC().Format(time.RFC3339))
			})
		},
	}
}
