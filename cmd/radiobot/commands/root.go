package commands

import (
	"context"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kc1awv/Plugin-Collections/lib/database/config"
	"github.com/kc1awv/Plugin-Collections/lib/logging"
)

var (
	dataDir  string
	logLevel string
)

func Execute() error {
	return newRootCmd(os.Stdout).ExecuteContext(context.Background())
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "radiobot",
		Short:         "Run the radioid and twitter plugin commands from a terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup()
			if logLevel != "" {
				lvl, err := log.ParseLevel(logLevel)
				if err != nil {
					return err
				}
				log.SetLevel(lvl)
			}
			if dataDir == "" {
				dataDir = config.DataDir()
			}
			return nil
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&dataDir, "data", "", "data dir holding config/ (default $DATA_DIR or ./data)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(radioidCmd(), twitCmd(), twitinfoCmd(), tweetCmd())
	return root
}
