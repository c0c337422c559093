package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cubicool/cubicle/internal/kv"
	"github.com/cubicool/cubicle/internal/world"
	"github.com/spf13/cobra"
)

var importSlot string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a world from JSON",
	Long: `Import validates a JSON snapshot document and stores it in the
given slot. The document must carry at least the users, threads and
globalCoworkers collections; partial documents are rejected untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: importSnapshot,
}

func init() {
	importCmd.Flags().StringVar(
		&importSlot, "slot", kv.AutosaveSlot,
		"Snapshot slot to import into",
	)
}

func importSnapshot(cmd *cobra.Command, args []string) error {
	payload, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	var snap world.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	// Run the snapshot through a throwaway store so a structurally
	// invalid document never reaches the database.
	probe := world.NewStore(world.NewClock(time.Time{}))
	if err := probe.Import(snap); err != nil {
		return fmt.Errorf("validate %s: %w", args[0], err)
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

	if err := snapshots.Save(
		cmd.Context(), importSlot, probe.Export(),
	); err != nil {
		return err
	}

	fmt.Printf("imported %s into slot %q: %d users, %d coworkers, "+
		"%d threads\n", args[0], importSlot, len(snap.Users),
		len(snap.Coworkers), len(snap.Threads))

	return nil
}
