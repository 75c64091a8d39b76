// Package cli implements cashbookctl, the operator tool for the cashbooks
// service.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"go-cashbook-ws/pkg/config"

	"github.com/spf13/cobra"
)

// RootOptions holds global state shared by every command.
type RootOptions struct {
	Format string // "json" | "text"

	// LoadConfig is replaced in tests.
	LoadConfig func() (*config.Config, error)
}

var validFormats = []string{"text", "json"}

// NewRootCommand creates the root command for cashbookctl.
func NewRootCommand() *cobra.Command {
	return newRoot(&RootOptions{LoadConfig: config.Load})
}

func newRoot(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cashbookctl",
		Short: "Operate a cashbooks deployment",
		Long: `cashbookctl mints development session tokens, migrates the document
table and inspects invitation links, using the same environment as the API.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newTokenCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newInviteCommand(opts))

	return cmd
}

// write prints v as indented JSON, or text via the fallback when the format
// is text.
func (o *RootOptions) write(w io.Writer, v interface{}, text func(io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
