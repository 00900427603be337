package main

import (
	"github.com/spf13/cobra"

	"github.com/bft-labs/vcshare/pkg/log"
	"github.com/bft-labs/vcshare/pkg/vcs"
)

func newReconCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recon <out> <share>...",
		Short: "Stack shares into a reconstruction image",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := vcs.Reconstruct(args[1:], args[0]); err != nil {
				return err
			}
			a.logger.Info("reconstruction written", log.String("output", args[0]), log.Int("shares", len(args)-1))
			return nil
		},
	}
}
