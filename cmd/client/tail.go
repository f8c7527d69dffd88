package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/achgulp/axon-bbs-sub000/pkg/config"
	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
	"github.com/achgulp/axon-bbs-sub000/pkg/transport"
	"github.com/spf13/cobra"
)

func newTailCommand(cfg *config.Client) *cobra.Command {
	var since int64

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow the events of a topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			self := identity(cfg)
			return transport.Stream(ctx, transport.StreamOptions{
				BaseURL:     cfg.HostURL,
				Topic:       cfg.Topic,
				SinceID:     since,
				Nickname:    self.DisplayName,
				PublicKeyID: self.PublicKeyID,
			}, func(entry eventlog.Entry) {
				printEntry(cmd.OutOrStdout(), entry)
			})
		},
	}

	cmd.Flags().Int64Var(&since, "since", 0, "start after this entry id")
	return cmd
}

func printEntry(w io.Writer, entry eventlog.Entry) {
	event, err := messages.Decode([]byte(entry.Body))
	if err != nil {
		fmt.Fprintf(w, "#%d %s: malformed event: %v\n", entry.ID, entry.AuthorDisplay, err)
		return
	}
	fmt.Fprintf(w, "#%d %s: %s", entry.ID, event.Sender.DisplayName, event.Type)
	switch p := event.Payload.(type) {
	case messages.BuildUnit:
		fmt.Fprintf(w, " %s for player %d", p.UnitID, p.OwnerID)
	case messages.MoveUnit:
		fmt.Fprintf(w, " %s", p.UnitID)
		if p.TargetID != nil {
			fmt.Fprintf(w, " -> %s", *p.TargetID)
		} else if p.TargetPosition != nil {
			fmt.Fprintf(w, " -> (%.1f, %.1f)", p.TargetPosition.X, p.TargetPosition.Z)
		}
	case messages.UnitAttack:
		fmt.Fprintf(w, " %s hits %s for %d", p.AttackerID, p.TargetID, p.Damage)
	case messages.StartGame:
		if p.Target != nil {
			fmt.Fprintf(w, " with %s", p.Target.DisplayName)
		}
	case messages.GameOver:
		fmt.Fprintf(w, " player %d wins", p.WinnerID)
	}
	fmt.Fprintln(w)
}
