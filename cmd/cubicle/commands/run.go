package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cubicool/cubicle/internal/actorutil"
	"github.com/cubicool/cubicle/internal/baselib/actor"
	"github.com/cubicool/cubicle/internal/kv"
	"github.com/cubicool/cubicle/internal/sim"
	"github.com/spf13/cobra"
)

var (
	// autosaveEvery is the wall-clock interval between automatic
	// snapshot saves.
	autosaveEvery time.Duration

	// currentUser is the acting user's email for this session.
	currentUser string

	// randSeed seeds the trigger scheduler. Zero derives one from the
	// wall clock.
	randSeed int64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation",
	Long: `Run restores the autosaved world (or starts a fresh one), starts
the autonomous activity loops and keeps the simulation alive until
interrupted. The world is snapshotted periodically and once more on
shutdown.`,
	RunE: runSimulation,
}

func init() {
	runCmd.Flags().DurationVar(
		&autosaveEvery, "autosave", time.Minute,
		"Interval between automatic snapshot saves (0 to disable)",
	)
	runCmd.Flags().StringVar(
		&currentUser, "user", "",
		"Email of the acting user",
	)
	runCmd.Flags().Int64Var(
		&randSeed, "seed", 0,
		"Scheduler random seed (0 uses the wall clock)",
	)
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	logMgr, err := setupLogging()
	if err != nil {
		return err
	}
	defer logMgr.Close()

	path, err := resolveDBPath()
	if err != nil {
		return err
	}

	snapshots, err := kv.OpenSnapshotStore(path)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	ctx, cancel := signal.NotifyContext(
		cmd.Context(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	store, err := loadWorld(ctx, snapshots)
	if err != nil {
		return err
	}

	gateway, err := openGateway(ctx)
	if err != nil {
		return err
	}

	system := actor.NewActorSystem()
	defer system.Shutdown(context.Background())

	seed := randSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	engine := sim.NewEngine(
		sim.DefaultConfig(), store, gateway, system, seed,
	)
	if currentUser != "" {
		engine.SetCurrentUser(currentUser)
	}

	engine.Start(ctx)
	defer engine.Stop()

	if currentUser != "" {
		if err := streamNotifications(ctx, engine); err != nil {
			return err
		}
	}

	fmt.Printf("cubicle running: %d coworkers, %d threads (db: %s)\n",
		len(store.Coworkers()), store.ThreadCount(), path)

	if autosaveEvery > 0 {
		go autosaveLoop(ctx, snapshots, engine)
	}

	<-ctx.Done()

	// Final snapshot with a fresh context; the signal context is done.
	saveCtx, saveCancel := context.WithTimeout(
		context.Background(), 10*time.Second,
	)
	defer saveCancel()

	if err := snapshots.Save(
		saveCtx, kv.AutosaveSlot, store.Export(),
	); err != nil {
		return fmt.Errorf("final autosave: %w", err)
	}

	fmt.Println("cubicle stopped, world saved")

	return nil
}

// streamNotifications subscribes the acting user to the notification hub
// and prints notifications as they arrive.
func streamNotifications(ctx context.Context, engine *sim.Engine) error {
	ch := make(chan sim.Notification, 64)

	_, err := actorutil.AskAwait[sim.NotifyRequest, sim.NotifyResponse](
		ctx, engine.Notifier(), sim.SubscribeMsg{
			ViewerEmail:  currentUser,
			SubscriberID: "cli",
			DeliveryChan: ch,
		})
	if err != nil {
		return fmt.Errorf("subscribe notifications: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return

			case n := <-ch:
				fmt.Printf("[%s] %s: %s\n",
					n.At.Format("15:04"), n.Kind, n.Text)
			}
		}
	}()

	return nil
}

func autosaveLoop(ctx context.Context, snapshots *kv.SnapshotStore,
	engine *sim.Engine) {

	ticker := time.NewTicker(autosaveEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			err := snapshots.Save(
				ctx, kv.AutosaveSlot,
				engine.Store().Export(),
			)
			if err != nil {
				fmt.Fprintf(os.Stderr,
					"autosave failed: %v\n", err)
			}
		}
	}
}
