package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kc1awv/Plugin-Collections/lib/radioid"
)

func radioidCmd() *cobra.Command {
	var (
		endpoint string
		timeout  time.Duration
	)
	names := make([]string, 0, len(radioid.Queries))
	for _, q := range radioid.Queries {
		names = append(names, q.Command)
	}
	cmd := &cobra.Command{
		Use:       "radioid <" + strings.Join(names, "|") + "> <id or callsign>",
		Short:     "Look up DMR/NXDN IDs on radioid.net",
		Args:      cobra.ExactArgs(2),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := radioid.New(radioid.WithEndpoint(endpoint), radioid.WithTimeout(timeout))
			reply, err := c.Lookup(cmd.Context(), strings.ToLower(args[0]), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", radioid.DefaultEndpoint, "radioid.net base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", radioid.DefaultTimeout, "request timeout")
	return cmd
}
