package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cubicool/cubicle/internal/kv"
	"github.com/spf13/cobra"
)

var (
	exportSlot string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a saved world as JSON",
	Long: `Export writes a saved snapshot slot as a JSON document, either to
a file or to standard output. The document is self-contained and can be
re-imported on any machine.`,
	RunE: exportSnapshot,
}

func init() {
	exportCmd.Flags().StringVar(
		&exportSlot, "slot", kv.AutosaveSlot,
		"Snapshot slot to export",
	)
	exportCmd.Flags().StringVar(
		&exportOut, "out", "",
		"Output file (default: stdout)",
	)
}

func exportSnapshot(cmd *cobra.Command, _ []string) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}

	snapshots, err := kv.OpenSnapshotStore(path)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	snap, err := snapshots.Load(cmd.Context(), exportSlot)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	payload = append(payload, '\n')

	if exportOut == "" {
		_, err := os.Stdout.Write(payload)
		return err
	}

	if err := os.WriteFile(exportOut, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}

	fmt.Printf("exported slot %q to %s (%d bytes)\n", exportSlot,
		exportOut, len(payload))

	return nil
}
