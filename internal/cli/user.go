package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	cmd.AddCommand(newUserRegisterCmd())
	cmd.AddCommand(newUserLoginCmd())
	cmd.AddCommand(newUserWhoamiCmd())

	return cmd
}

func newUserRegisterCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			req := map[string]string{"username": name}
			var result User

			if err := client.Post(cmd.Context(), "/api/v1/users", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveUser(result.UserID); err != nil {
				return fmt.Errorf("failed to save user: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Username (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUserLoginCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			req := map[string]string{"username": name}
			var result User

			if err := client.Post(cmd.Context(), "/api/v1/login", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveUser(result.UserID); err != nil {
				return fmt.Errorf("failed to save user: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Username (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUserWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			var result User
			if err := client.Get(cmd.Context(), userPath(userID), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
