package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "duel",
		Short: "CLI tool for the symbol duel server",
		Long: `duel is a CLI tool for interacting with the symbol duel server.

It supports user registration, room management, match history and an
interactive realtime player.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load user from file if not provided via flag/env
			if err := cfg.LoadUser(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: DUEL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.UserID, "user", cfg.UserID, "Acting user id (env: DUEL_USER)")
	rootCmd.PersistentFlags().StringVar(&cfg.UserFile, "user-file", cfg.UserFile, "File holding the logged in user id (env: DUEL_USER_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
