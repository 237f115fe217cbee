package main

import (
	"context"
	"fmt"
	"time"

	"github.com/garyellow/calmmate-go/internal/config"
	"github.com/garyellow/calmmate-go/internal/snapshot"
	"github.com/garyellow/calmmate-go/internal/storage"
	"github.com/spf13/cobra"
)

// snapshotTimeout bounds one backup or restore including the transfer.
const snapshotTimeout = 5 * config.ReferenceDataLoad

func newDBCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Back up or restore the account database through R2",
	}
	cmd.PersistentFlags().StringVar(&key, "key", "", "object key (default from "+config.EnvR2SnapshotKey+")")

	backup := &cobra.Command{
		Use:   "backup",
		Short: "Upload a compressed snapshot of the account database",
		Long: `Copy the database at CALMMATE_DATA_DIR with VACUUM INTO, compress it
with zstd, and upload it to the configured R2 bucket. Safe to run while
the server is serving traffic.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, m, err := snapshotManager(key)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), snapshotTimeout)
			defer cancel()

			db, err := storage.New(ctx, cfg.SQLitePath())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			client, err := newR2Client(ctx, cfg)
			if err != nil {
				return err
			}
			res, err := m.Backup(ctx, db, client)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "backed up %s to %s (%d bytes, %d compressed) in %s etag=%s\n",
				cfg.SQLitePath(), res.Key, res.Size, res.Compressed, res.Duration.Round(time.Millisecond), res.ETag)
			return nil
		},
	}

	var dest string
	restore := &cobra.Command{
		Use:   "restore",
		Short: "Download the latest snapshot to a new database file",
		Long: `Download and decompress the snapshot into --dest. The destination must
not exist; stop the server and move the file over the live database to
finish a restore.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, m, err := snapshotManager(key)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), snapshotTimeout)
			defer cancel()

			client, err := newR2Client(ctx, cfg)
			if err != nil {
				return err
			}
			etag, err := m.Restore(ctx, client, dest)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "restored to %s etag=%s\n", dest, etag)
			return nil
		},
	}
	restore.Flags().StringVar(&dest, "dest", "", "path of the restored database file")
	_ = restore.MarkFlagRequired("dest")

	cmd.AddCommand(backup, restore)
	return cmd
}

func snapshotManager(key string) (*config.Config, *snapshot.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if key == "" {
		key = cfg.R2SnapshotKey
	}
	m, err := snapshot.New(snapshot.Config{Key: key, TempDir: cfg.DataDir})
	if err != nil {
		return nil, nil, err
	}
	return cfg, m, nil
}
