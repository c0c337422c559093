package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/cubicool/cubicle/internal/baselib/actor"
	"github.com/cubicool/cubicle/internal/kv"
	"github.com/cubicool/cubicle/internal/sim"
	"github.com/cubicool/cubicle/internal/world"
	"github.com/spf13/cobra"
)

var (
	seedCoworkers  int
	seedProjects   int
	seedEventTheme string
	companyName    string
	userName       string
	userUsername   string
	userEmail      string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a starter world",
	Long: `Seed creates a fresh world: an admin user, a set of generated
coworker personas and optionally a first project, then saves it as the
autosave snapshot that run will restore.`,
	RunE: seedWorld,
}

func init() {
	seedCmd.Flags().IntVar(
		&seedCoworkers, "coworkers", 5,
		"Number of personas to generate",
	)
	seedCmd.Flags().IntVar(
		&seedProjects, "projects", 1,
		"Number of starter projects to generate",
	)
	seedCmd.Flags().StringVar(
		&companyName, "company", "Cubicle Inc",
		"Company name",
	)
	seedCmd.Flags().StringVar(
		&seedEventTheme, "event", "",
		"Generate one starter calendar event around this theme",
	)
	seedCmd.Flags().StringVar(
		&userName, "name", "", "Admin user's display name",
	)
	seedCmd.Flags().StringVar(
		&userUsername, "username", "", "Admin user's login name",
	)
	seedCmd.Flags().StringVar(
		&userEmail, "email", "", "Admin user's email address",
	)
}

func seedWorld(cmd *cobra.Command, _ []string) error {
	logMgr, err := setupLogging()
	if err != nil {
		return err
	}
	defer logMgr.Close()

	if userName == "" || userUsername == "" || userEmail == "" {
		return fmt.Errorf("seed requires --name, --username and " +
			"--email for the admin user")
	}

	path, err := resolveDBPath()
	if err != nil {
		return err
	}

	snapshots, err := kv.OpenSnapshotStore(path)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	ctx := cmd.Context()

	gateway, err := openGateway(ctx)
	if err != nil {
		return err
	}

	store := world.NewStore(world.NewClock(simStartTime))
	store.SetProfile(world.CompanyProfile{
		Name:  companyName,
		Email: "company@cubicle.local",
	})

	user, err := store.AddUser(world.User{
		Name:     userName,
		Username: userUsername,
		Email:    userEmail,
		IsAdmin:  true,
		Company:  companyName,
	})
	if err != nil {
		return err
	}

	system := actor.NewActorSystem()
	defer system.Shutdown(context.Background())

	engine := sim.NewEngine(
		sim.DefaultConfig(), store, gateway, system,
		time.Now().UnixNano(),
	)
	defer engine.Stop()
	engine.SetCurrentUser(user.Email)

	for i := 0; i < seedCoworkers; i++ {
		coworker, err := engine.SeedCoworker(ctx)
		if err != nil {
			return fmt.Errorf("seed coworker %d: %w", i+1, err)
		}
		fmt.Printf("  + %s <%s> (%s)\n", coworker.Name,
			coworker.Email, coworker.Role)
	}

	for i := 0; i < seedProjects; i++ {
		if _, err := engine.SeedProject(ctx, user.Email); err != nil {
			return fmt.Errorf("seed project %d: %w", i+1, err)
		}
	}

	if seedEventTheme != "" {
		if _, err := engine.SeedEvent(ctx, seedEventTheme); err != nil {
			return fmt.Errorf("seed event: %w", err)
		}
	}

	if err := snapshots.Save(
		ctx, kv.AutosaveSlot, store.Export(),
	); err != nil {
		return err
	}

	fmt.Printf("seeded world for %s: %d coworkers, %d projects "+
		"(db: %s)\n", companyName, seedCoworkers, seedProjects, path)

	return nil
}
