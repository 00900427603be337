package main

import "github.com/spf13/cobra"

func newSendCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <targets> <file>...",
		Short: "Send files as frames, round-robin over targets",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendAll(cmd.Context(), a, args[1:], args[0])
		},
	}
	cmd.Flags().IntVar(&a.cfg.SendPort, "send-port", a.cfg.SendPort, "base port for targets given without one (file i uses base+i)")
	cmd.Flags().DurationVar(&a.cfg.DialTimeout, "dial-timeout", a.cfg.DialTimeout, "dial and write timeout per file")
	return cmd
}
