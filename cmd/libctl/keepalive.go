package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ai-library/ai-library/client/heartbeat"
)

func newKeepaliveCmd(c *cli) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "keepalive",
		Short: "Send activity heartbeats until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := heartbeat.NewService(c.client, c.log)
			fmt.Fprintf(cmd.OutOrStdout(), "sending heartbeats every %s, ctrl-c to stop\n", interval)
			svc.Run(cmd.Context(), interval)
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", heartbeat.DefaultInterval, "time between heartbeats")
	return cmd
}
