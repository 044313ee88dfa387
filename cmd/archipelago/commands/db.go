package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archipelago-eco/archipelago/storage"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the snapshot database",
	Long: `Manage stored species pool snapshots.

Examples:
  archipelago db ls              # List stored snapshots
  archipelago db rm <snapshot>   # Delete a snapshot`,
}

var dbLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored snapshots, newest first",
	RunE:  runDbLs,
}

var dbRmCmd = &cobra.Command{
	Use:   "rm <snapshot-id>",
	Short: "Delete a snapshot and its species records",
	Args:  cobra.ExactArgs(1),
	RunE:  runDbRm,
}

func init() {
	DbCmd.AddCommand(dbLsCmd)
	DbCmd.AddCommand(dbRmCmd)
}

func runDbLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	store := storage.NewSnapshotStore(db, nil)
	infos, err := store.ListSnapshots()
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("No snapshots stored.")
		return nil
	}

	fmt.Printf("%-36s  %-10s  %8s  %8s  %s\n", "ID", "SOURCE", "ORIGINAL", "SPECIES", "CREATED")
	for _, info := range infos {
		fmt.Printf("%-36s  %-10s  %8d  %8d  %s\n",
			info.ID,
			info.Source,
			info.OriginalCount,
			info.SpeciesCount,
			info.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		)
	}
	return nil
}

func runDbRm(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	store := storage.NewSnapshotStore(db, nil)
	if err := store.DeleteSnapshot(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted snapshot %s\n", args[0])
	return nil
}
