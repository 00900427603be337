package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bft-labs/vcshare/internal/cliconfig"
	"github.com/bft-labs/vcshare/pkg/receiver"
)

// configured marks a positional argument that defers to the configuration.
const configured = "-"

func newRecvCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recv <host> <ports> <dest>",
		Short: "Receive frames on one or more ports into a directory",
		Long: `Listen on every port in <ports> ("8000;8001" or "8000,8001") and store
received files in <dest>. With --scramble k, k OS-assigned ports are bound
instead and printed on stdout. A "-" for <host> or <dest> uses the configured
value, and for <ports> requires --scramble.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := receiverConfig(a.cfg, args)
			if err != nil {
				return err
			}
			return runReceiver(cmd, a, rc)
		},
	}
	f := cmd.Flags()
	f.IntVar(&a.cfg.MaxFiles, "max", a.cfg.MaxFiles, "stop after this many files across all ports (0 = unlimited)")
	f.IntVar(&a.cfg.ReconstructAfter, "reconstruct-after", a.cfg.ReconstructAfter, "reconstruct once this many files arrived (0 = never)")
	f.StringVar(&a.cfg.ReconstructOut, "reconstruct-out", a.cfg.ReconstructOut, "reconstruction file name inside <dest>")
	f.StringVar(&a.cfg.StopFile, "stop-file", a.cfg.StopFile, "stop when this file exists")
	f.IntVar(&a.cfg.StopPort, "stop-port", a.cfg.StopPort, "control port; any connection stops the group (0 = disabled)")
	f.IntVar(&a.cfg.Scramble, "scramble", a.cfg.Scramble, "bind this many OS-assigned ports instead of <ports>")
	f.StringVar(&a.cfg.StatusFile, "status-file", a.cfg.StatusFile, "write a JSON status snapshot here")
	f.DurationVar(&a.cfg.AcceptTimeout, "accept-timeout", a.cfg.AcceptTimeout, "accept poll interval")
	f.DurationVar(&a.cfg.ReadTimeout, "read-timeout", a.cfg.ReadTimeout, "per-read poll interval")
	f.DurationVar(&a.cfg.IdleTimeout, "idle-timeout", a.cfg.IdleTimeout, "drop a connection idle this long (0 = wait forever)")
	f.DurationVar(&a.cfg.PortWait, "port-wait", a.cfg.PortWait, "how long to wait for scrambled ports")
	return cmd
}

// receiverConfig merges the positional arguments into a receiver.Config.
func receiverConfig(cfg cliconfig.Config, args []string) (receiver.Config, error) {
	host, rawPorts, dest := args[0], args[1], args[2]
	if host == configured {
		host = cfg.Host
	}
	if dest == configured {
		dest = cfg.DestDir
	}

	rc := receiver.Config{
		Host:             host,
		Scramble:         cfg.Scramble,
		DestDir:          dest,
		MaxFiles:         uint(cfg.MaxFiles),
		ReconstructAfter: uint(cfg.ReconstructAfter),
		ReconstructOut:   cfg.ReconstructOut,
		StopFile:         cfg.StopFile,
		StatusFile:       cfg.StatusFile,
		AcceptTimeout:    cfg.AcceptTimeout,
		ReadTimeout:      cfg.ReadTimeout,
		IdleTimeout:      cfg.IdleTimeout,
		PortWait:         cfg.PortWait,
	}
	if cfg.Scramble == 0 {
		if rawPorts == configured {
			return receiver.Config{}, fmt.Errorf("ports are required unless --scramble is set")
		}
		ports, err := cliconfig.ParsePorts(rawPorts)
		if err != nil {
			return receiver.Config{}, err
		}
		rc.Ports = ports
	}
	if cfg.StopPort > 0 {
		rc.ControlAddr = net.JoinHostPort(host, strconv.Itoa(cfg.StopPort))
	}
	return rc, rc.Validate()
}

func runReceiver(cmd *cobra.Command, a *app, rc receiver.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, err := receiver.StartReceiver(ctx, rc, receiver.WithLogger(a.logger))
	if err != nil {
		return err
	}

	if rc.Scramble > 0 {
		ports := r.WaitForPorts(ctx)
		strs := make([]string, len(ports))
		for i, p := range ports {
			strs[i] = strconv.Itoa(int(p))
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(strs, ";"))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.zlog.Info().Str("signal", sig.String()).Msg("received signal, stopping...")
		if err := r.Stop(); err != nil && !errors.Is(err, receiver.ErrNotRunning) {
			return fmt.Errorf("stop receiver: %w", err)
		}
	case <-r.Done():
	}

	a.zlog.Info().
		Uint("received", r.Coordinator().Received()).
		Str("state", r.State().String()).
		Msg("receiver finished")
	return r.Wait()
}
