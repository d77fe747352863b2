package cli

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"
)

const realtimeProbeTimeout = 5 * time.Second

func newHealthCmd() *cobra.Command {
	var realtime bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult

			if err := client.Get(cmd.Context(), "/api/v1/health", &result); err != nil {
				return err
			}

			if realtime {
				result.Realtime = "ok"
				if err := probeRealtime(cmd.Context(), cfg.ServerURL); err != nil {
					result.Realtime = "unreachable: " + err.Error()
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&realtime, "realtime", false, "Also check the realtime websocket endpoint")

	return cmd
}

// probeRealtime opens and cleanly closes a websocket to the server
func probeRealtime(ctx context.Context, server string) error {
	endpoint, err := wsURL(server)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, realtimeProbeTimeout)
	defer cancel()

	ws, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return err
	}
	return ws.Close(websocket.StatusNormalClosure, "health check")
}
