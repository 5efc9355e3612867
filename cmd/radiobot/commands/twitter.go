package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kc1awv/Plugin-Collections/lib/twitter"
)

const twitterPlugin = "plugin-twitter"

// newBridge is swapped in tests.
var newBridge = func(cmd *cobra.Command) (*twitter.Bridge, error) {
	cfg, err := twitter.LoadConfig(cmd.Context(), dataDir, twitterPlugin, os.Getenv, twitter.DefaultGetterFactory)
	if err != nil {
		return nil, err
	}
	return twitter.New(cfg.Credentials(), twitter.WithAccountLabel(cfg.AccountLabel))
}

// runBridge prints the reply, or the chat sentence for a failure and returns the error.
func runBridge(cmd *cobra.Command, op func(*twitter.Bridge) (string, error)) error {
	b, err := newBridge(cmd)
	if err == nil {
		var reply string
		if reply, err = op(b); err == nil {
			if reply != "" {
				fmt.Fprintln(cmd.OutOrStdout(), reply)
			}
			return nil
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), twitter.Message(err))
	return err
}

func twitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "twit <handle> [n] | <status id> | <status url>",
		Short: "Show a tweet",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridge(cmd, func(b *twitter.Bridge) (string, error) {
				if _, id, ok := twitter.MatchStatusURL(args[0]); ok {
					return b.FetchStatusByID(id)
				}
				return b.FetchStatus(strings.Join(args, " "))
			})
		},
	}
}

func twitinfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "twitinfo <handle>",
		Short: "Show a Twitter profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridge(cmd, func(b *twitter.Bridge) (string, error) {
				return b.UserInfo(args[0])
			})
		},
	}
}

func tweetCmd() *cobra.Command {
	var (
		nick     string
		operator bool
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "tweet --nick <nick> [--operator=false] [--admin=false] <message...>",
		Short: "Post a status from the bot account, signed with nick",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(nick) == "" {
				return errors.New("--nick is required")
			}
			return runBridge(cmd, func(b *twitter.Bridge) (string, error) {
				return b.Post(twitter.Caller{Nick: nick, Operator: operator, Admin: admin}, strings.Join(args, " "))
			})
		},
	}
	cmd.Flags().StringVar(&nick, "nick", "", "nick appended as ^nick")
	cmd.Flags().BoolVar(&operator, "operator", true, "caller holds channel operator privilege")
	cmd.Flags().BoolVar(&admin, "admin", true, "caller is a bot administrator")
	return cmd
}
