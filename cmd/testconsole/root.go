package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/safermobility/testconsole/config"
	"github.com/safermobility/testconsole/invite"
	"github.com/safermobility/testconsole/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

const defaultEnvFile = ".env"

type app struct {
	cfgFile string
	envFile string

	cfg    *config.Config
	logger *slog.Logger
	proc   *invite.Processor
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "testconsole",
		Short: "Parse, preview and store SIP INVITE messages for protocol testers",
		Long: `testconsole converts raw SIP INVITE text into the structured form the
tester orchestration service accepts, renders previews back from that form,
and keeps named snapshots of generated messages.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./.testconsole.yaml or $HOME/.testconsole.yaml)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", defaultEnvFile, "dotenv file loaded before the configuration")

	root.AddCommand(
		a.newParseCmd(),
		a.newGenerateCmd(),
		a.newRenderCmd(),
		a.newValidateCmd(),
		a.newSnapshotCmd(),
		a.newTestersCmd(),
		newVersionCmd(),
	)

	return root
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) || a.envFile != defaultEnvFile {
				return fmt.Errorf("loading %s: %w", a.envFile, err)
			}
		}
	}

	cfg, err := config.Load(viper.New(), a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.proc, err = cfg.NewProcessor(a.logger)
	if err != nil {
		return err
	}

	a.logger.Debug("configuration loaded", slog.String("config", a.cfgFile))
	return nil
}

// readInput reads the file named by the first argument, or stdin when there
// is none or it is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

// loadInvite accepts either a submission payload (JSON) or raw INVITE text.
func (a *app) loadInvite(data []byte) (*invite.Invite, error) {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return invite.UnmarshalPayload(data)
	}
	return a.proc.Parse(string(data))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "testconsole", version)
		},
	}
}
