package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bft-labs/vcshare/pkg/sender"
	"github.com/bft-labs/vcshare/pkg/vcs"
)

func newGenCmd(a *app) *cobra.Command {
	var (
		targets string
		seed    uint64
	)
	cmd := &cobra.Command{
		Use:   "gen <input> <prefix> <n>",
		Short: "Write n shares of an image as <prefix>_1.png ... <prefix>_n.png",
		Long: `Binarize the input image and split it into n shares.

If <n> is not a number the command writes exactly two shares to the paths
<prefix> and <n>.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []vcs.GenerateOption{
				vcs.WithThreshold(uint8(a.cfg.Threshold)),
				vcs.WithLogger(a.logger),
			}
			if seed != 0 {
				opts = append(opts, vcs.WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))))
			}

			var (
				paths []string
				err   error
			)
			if n, convErr := strconv.Atoi(args[2]); convErr == nil {
				paths, err = vcs.GenerateShares(args[0], args[1], n, opts...)
			} else {
				paths, err = vcs.GenerateSharePair(args[0], args[1], args[2], opts...)
			}
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}

			if targets == "" {
				return nil
			}
			return sendAll(cmd.Context(), a, paths, targets)
		},
	}
	cmd.Flags().IntVar(&a.cfg.Threshold, "threshold", a.cfg.Threshold, "gray level below which a pixel is ink (0-255)")
	cmd.Flags().StringVar(&targets, "send", "", `send shares to targets, e.g. "10.0.0.2;10.0.0.3:9000"`)
	cmd.Flags().IntVar(&a.cfg.SendPort, "send-port", a.cfg.SendPort, "base port for targets given without one (share i uses base+i)")
	cmd.Flags().DurationVar(&a.cfg.DialTimeout, "dial-timeout", a.cfg.DialTimeout, "dial and write timeout per share")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for deterministic shares (0 draws a random seed)")
	return cmd
}

// sendAll sends paths round-robin to the parsed targets and fails if any
// share could not be delivered.
func sendAll(ctx context.Context, a *app, paths []string, rawTargets string) error {
	s := sender.New(
		sender.WithTimeout(a.cfg.DialTimeout),
		sender.WithLogger(a.logger),
	)
	results, err := s.SendShares(ctx, paths, sender.ParseTargets(rawTargets), a.cfg.SendPort)
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sends failed", failed, len(results))
	}
	return nil
}
