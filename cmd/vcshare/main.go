package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/vcshare/internal/cliconfig"
	"github.com/bft-labs/vcshare/pkg/log"
)

const longHelp = `Split an image into visual secret shares, move them over TCP and stack
them back.

  gen    binarize an image and write n shares (optionally send them)
  recon  stack shares into a reconstruction
  send   send files as frames to one or more targets
  recv   receive frames on one or more ports

Configuration is read from $HOME/.vcshare/config.toml (or --config), then
VCSHARE_* environment variables, then flags. Later sources win.`

var exampleUsage = strings.TrimSpace(`
  vcshare gen secret.png share 3 --send "10.0.0.2;10.0.0.3"
  vcshare recv 0.0.0.0 "8000;8001;8002" incoming --max 3 --reconstruct-after 3
  vcshare recv 0.0.0.0 - incoming --scramble 3 --stop-port 9000
  vcshare recon out.png share_1.png share_2.png share_3.png
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries the merged configuration and loggers for every subcommand.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	zlog    zerolog.Logger
	logger  log.Logger
}

// load merges file and environment configuration under the flags that were
// set explicitly on cmd, then validates.
func (a *app) load(cmd *cobra.Command) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	}
	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.zlog = cliconfig.Logger(a.cfg.LogLevel)
	a.logger = log.NewZerologAdapterWithLogger(a.zlog)
	a.zlog.Debug().Interface("config", a.cfg).Msg("configuration")
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: cliconfig.DefaultConfig()}

	root := &cobra.Command{
		Use:           "vcshare",
		Short:         "Visual secret sharing for images, with TCP distribution",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.vcshare/config.toml)")
	root.PersistentFlags().StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(
		newGenCmd(a),
		newReconCmd(a),
		newSendCmd(a),
		newRecvCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger := cliconfig.Logger("info")
		logger.Error().Err(err).Msg("vcshare")
		os.Exit(1)
	}
}
