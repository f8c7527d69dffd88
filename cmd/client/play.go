package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/config"
	"github.com/achgulp/axon-bbs-sub000/pkg/eventbus"
	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/tuning"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/achgulp/axon-bbs-sub000/pkg/session"
	"github.com/achgulp/axon-bbs-sub000/pkg/transport"
	"github.com/spf13/cobra"
)

type playOptions struct {
	autopilot bool
	offline   bool
	rounds    int
}

func newPlayCommand(cfg *config.Client) *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Find an opponent and play",
		Long: `Find an opponent on the topic and play until a fortress falls, then
look for the next match.

Commands read from stdin:
  build tank|drone
  move <unit> <x> <z>
  attack <unit> <target>
  status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.autopilot, "autopilot", false, "let the AI play the local seat")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "play against the AI on an in-process log")
	cmd.Flags().IntVar(&opts.rounds, "rounds", 0, "stop after this many matches, 0 plays forever")
	return cmd
}

func runPlay(ctx context.Context, cfg *config.Client, opts *playOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	self := identity(cfg)
	t := tuning.Default()
	if cfg.TuningFile != "" {
		var err error
		if t, err = tuning.Load(cfg.TuningFile); err != nil {
			return err
		}
	}

	var tr transport.Transport
	matchmakingTimeout := time.Duration(0)
	if opts.offline {
		tr = transport.NewLocalTransport(eventlog.NewInMemoryLog(), transport.UserInfo{Nickname: self.DisplayName, PublicKeyID: self.PublicKeyID})
		// nobody else can join an in-process log
		matchmakingTimeout = time.Second
	} else {
		tr = transport.NewHTTPTransport(transport.NewHTTPTransportOptions{
			BaseURL:     cfg.HostURL,
			Nickname:    self.DisplayName,
			PublicKeyID: self.PublicKeyID,
		})
		hostSelf, err := hostIdentity(ctx, tr)
		if err != nil {
			return err
		}
		log.Info("Signed in to %s as %s", cfg.HostURL, hostSelf.DisplayName)
		self = hostSelf
	}

	commands := make(chan session.Command)
	sess := session.New(session.NewSessionOptions{
		EventBus: eventbus.New(eventbus.NewEventBusOptions{
			Transport: tr,
			Topic:     cfg.Topic,
		}),
		Self:               self,
		Tuning:             t,
		Commands:           commands,
		Autopilot:          opts.autopilot,
		MatchmakingTimeout: matchmakingTimeout,
		GamePollInterval:   cfg.PollInterval,
		OnCountdown: func(remaining time.Duration) {
			fmt.Fprintf(os.Stdout, "Waiting for an opponent... %s\n", remaining)
		},
	})

	console := newConsole(os.Stdin, os.Stdout, commands, sess.StateManager())
	go console.Run(ctx)

	for round := 1; opts.rounds == 0 || round <= opts.rounds; round++ {
		outcome, err := sess.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		printOutcome(os.Stdout, outcome)
	}
	return nil
}

// hostIdentity asks the log host who the local player is. The host's answer
// is the identity events are sent and recognized under.
func hostIdentity(ctx context.Context, tr transport.Transport) (types.Identity, error) {
	user, err := tr.GetUserInfo(ctx)
	if err != nil {
		return types.Identity{}, fmt.Errorf("failed to reach log host: %v", err)
	}
	return user.Identity(), nil
}
