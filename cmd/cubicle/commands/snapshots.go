package commands

import (
	"fmt"

	"github.com/cubicool/cubicle/internal/kv"
	"github.com/spf13/cobra"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List saved snapshot slots",
	RunE:  listSnapshots,
}

var snapshotsDeleteCmd = &cobra.Command{
	Use:   "delete <slot>",
	Short: "Delete a snapshot slot",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteSnapshot,
}

func init() {
	snapshotsCmd.AddCommand(snapshotsDeleteCmd)
}

func listSnapshots(cmd *cobra.Command, _ []string) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}

	snapshots, err := kv.OpenSnapshotStore(path)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	infos, err := snapshots.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("no snapshots saved")
		return nil
	}

	for _, info := range infos {
		fmt.Printf("%-20s %s  %d bytes\n", info.Name,
			info.SavedAt.Format("2006-01-02 15:04:05"),
			info.Size)
	}

	return nil
}

func deleteSnapshot(cmd *cobra.Command, args []string) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}

	snapshots, err := kv.OpenSnapshotStore(path)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	if err := snapshots.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Printf("deleted slot %q\n", args[0])

	return nil
}
