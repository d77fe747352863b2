package cli

import (
	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomReadyCmd())
	cmd.AddCommand(newRoomHistoryCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var roomID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room hosted by the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			req := map[string]string{"host_user_id": userID}
			if roomID != "" {
				req["room_id"] = roomID
			}

			var result Room
			if err := client.Post(cmd.Context(), "/api/v1/rooms", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&roomID, "id", "", "Room id (default: generated)")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <room>",
		Short: "Get room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room
			if err := client.Get(cmd.Context(), roomPath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	return newRoomActionCmd("join", "Join a room as the current user")
}

func newRoomReadyCmd() *cobra.Command {
	return newRoomActionCmd("ready", "Signal the current user is ready")
}

// newRoomActionCmd builds a command that posts the current user to a room action
func newRoomActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <room>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			req := map[string]string{"user_id": userID}
			var result Room
			if err := client.Post(cmd.Context(), roomPath(args[0], action), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <room>",
		Short: "List the finished matches of a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result MatchHistory
			if err := client.Get(cmd.Context(), roomPath(args[0], "matches"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
