package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"yatube/app/repositories"

	"github.com/spf13/cobra"
)

// errCancelled is returned when the user answers no to a prompt. The
// command still exits non-zero.
var errCancelled = errors.New("operation cancelled")

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initDb(cmd)
		},
	}
}

func newCleanCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete the database and uploaded media",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return clean(cmd, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [file]",
		Short: "Create a backup of the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return backup(cmd, target)
		},
	}
}

func newRestoreCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return restore(cmd, args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "replace an existing database without asking")
	return cmd
}

// initDb creates an empty database.
func initDb(cmd *cobra.Command) error {
	cfg := loadConfig()
	out := cmd.OutOrStdout()
	if exists(cfg.DataDir) {
		fmt.Fprintln(out, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return nil
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	db, err := repositories.Open(cfg.DataDir, nil)
	if err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Database initialized successfully")
	return nil
}

// clean removes the database and the media directory.
func clean(cmd *cobra.Command, yes bool) error {
	cfg := loadConfig()
	out := cmd.OutOrStdout()
	if !exists(cfg.DataDir) && !exists(cfg.MediaDir) {
		fmt.Fprintln(out, "Database is already clean (does not exist)")
		return nil
	}
	if !yes && !confirm(cmd, "Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(out, "Operation cancelled")
		return errCancelled
	}
	for _, dir := range []string{cfg.DataDir, cfg.MediaDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}
	}
	fmt.Fprintln(out, "Database cleaned successfully")
	return nil
}

// backup writes a full Badger backup to target, or to a timestamped
// file in the backup directory when target is empty.
func backup(cmd *cobra.Command, target string) error {
	cfg := loadConfig()
	out := cmd.OutOrStdout()
	if !exists(cfg.DataDir) {
		fmt.Fprintln(out, "No database exists to backup")
		return nil
	}
	if target == "" {
		if err := os.MkdirAll(cfg.BackupDir, 0o755); err != nil {
			return fmt.Errorf("create backup directory: %w", err)
		}
		target = filepath.Join(cfg.BackupDir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	}

	db, err := repositories.Open(cfg.DataDir, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	if _, err := db.Backup(f, 0); err != nil {
		return fmt.Errorf("backup database: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("backup database: %w", err)
	}
	fmt.Fprintf(out, "Database backed up successfully to %s\n", target)
	return nil
}

// restore replaces the database with the contents of a backup file.
func restore(cmd *cobra.Command, backupFile string, yes bool) (err error) {
	cfg := loadConfig()
	out := cmd.OutOrStdout()

	fi, statErr := os.Stat(backupFile)
	if statErr != nil {
		return fmt.Errorf("backup file does not exist: %s", backupFile)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", backupFile)
	}

	if exists(cfg.DataDir) {
		if !yes && !confirm(cmd, "Existing database found. Do you want to replace it?") {
			fmt.Fprintln(out, "Operation cancelled")
			return errCancelled
		}
		if err := os.RemoveAll(cfg.DataDir); err != nil {
			return fmt.Errorf("remove existing database: %w", err)
		}
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	db, err := repositories.Open(cfg.DataDir, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	// Load panics on some malformed input instead of returning an error.
	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return db.Load(f, 16)
	}()
	if err != nil {
		return fmt.Errorf("restore database: %w", err)
	}

	fmt.Fprintln(out, "Database restored successfully")
	return nil
}
