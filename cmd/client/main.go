package main

import (
	"fmt"
	"os"

	"github.com/achgulp/axon-bbs-sub000/pkg/config"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/achgulp/axon-bbs-sub000/pkg/version"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg, envErr := config.LoadClient()

	cmd := &cobra.Command{
		Use:           "overlord",
		Short:         "Fortress Overlord, a two player RTS over a shared event log",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			level, err := log.ParseLogLevel(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to parse log level: %v", err)
			}
			// stdout belongs to the console
			log.SetDefaultLogger(log.New(os.Stderr, "", log.DefaultLoggerFlag, level))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfg.HostURL, "host", cfg.HostURL, "log host base URL")
	cmd.PersistentFlags().StringVar(&cfg.Topic, "topic", cfg.Topic, "topic to play on")
	cmd.PersistentFlags().StringVar(&cfg.Nickname, "nickname", cfg.Nickname, "display name")
	cmd.PersistentFlags().StringVar(&cfg.PublicKeyID, "pubkey", cfg.PublicKeyID, "public key id, generated if empty")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")

	cmd.AddCommand(newPlayCommand(&cfg))
	cmd.AddCommand(newTailCommand(&cfg))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get())
		},
	}
}

// identity fills in whatever the configuration leaves out.
func identity(cfg *config.Client) types.Identity {
	if cfg.PublicKeyID == "" {
		cfg.PublicKeyID = uuid.NewString()
		log.Info("Generated public key id %s", cfg.PublicKeyID)
	}
	if cfg.Nickname == "" {
		cfg.Nickname = "Overlord-" + cfg.PublicKeyID[:min(4, len(cfg.PublicKeyID))]
	}
	return types.Identity{
		DisplayName: cfg.Nickname,
		PublicKeyID: cfg.PublicKeyID,
	}
}
