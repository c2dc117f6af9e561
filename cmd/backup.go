// file: cmd/backup.go
// version: 1.0.0
// guid: 79761269-4e39-4990-a5b8-be2a1425bf38

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jdfalk/medication-identifier/internal/backup"
	"github.com/jdfalk/medication-identifier/internal/config"
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database backups",
	Long:  `Create, list, and restore compressed archives of the medication database.`,
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a backup of the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := backupConfigFromFlags(cmd)

		info, err := backup.Create(config.AppConfig.DatabasePath, config.AppConfig.DatabaseType, cfg)
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		fmt.Printf("Created %s (%d bytes)\n", info.Path, info.Size)
		fmt.Printf("SHA256: %s\n", info.Checksum)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := backupConfigFromFlags(cmd)

		backups, err := backup.List(cfg.BackupDir)
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}
		if len(backups) == 0 {
			fmt.Println("No backups found.")
			return nil
		}
		for _, b := range backups {
			fmt.Printf("%s  %-7s %10d  %s\n",
				b.CreatedAt.Format("2006-01-02 15:04:05"), b.DatabaseType, b.Size, b.Filename)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <archive>",
	Short: "Restore a backup archive",
	Long: `Unpack a backup archive next to the configured database path.
The server must not be running while restoring.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targetDir := filepath.Dir(config.AppConfig.DatabasePath)
		if err := backup.Restore(args[0], targetDir); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("Restored %s into %s\n", args[0], targetDir)
		return nil
	},
}

func backupConfigFromFlags(cmd *cobra.Command) backup.Config {
	cfg := backup.DefaultConfig()
	if dir, err := cmd.Flags().GetString("backup-dir"); err == nil && dir != "" {
		cfg.BackupDir = dir
	}
	if max, err := cmd.Flags().GetInt("max-backups"); err == nil && max > 0 {
		cfg.MaxBackups = max
	}
	return cfg
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)

	backupCmd.PersistentFlags().String("backup-dir", "backups", "directory holding backup archives")
	backupCmd.PersistentFlags().Int("max-backups", 10, "backups to keep before pruning the oldest")
}
