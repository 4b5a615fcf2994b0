package main

import (
	"context"
	"famlink/internal/config"
	"famlink/internal/logger"
	"famlink/internal/models"
	"famlink/internal/store"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	keepRows bool
	timeout  time.Duration
)

func init() {
	checkCmd.Flags().BoolVar(&keepRows, "keep", false, "leave the soft-deleted scratch tenant in place")
	checkCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline for the check")
}

var checkCmd = &cobra.Command{
	Use:           "dbcheck",
	Short:         "verify database connectivity, schema and a tenant CRUD round trip",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          checkF,
}

func main() {
	if err := checkCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dbcheck:", err)
		os.Exit(1)
	}
}

func checkF(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	lg := logger.New(logger.Options{Level: cfg.LogLevel, Production: cfg.IsProduction()})
	defer lg.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	gw, err := store.Open(ctx, cfg.DB.DSN(), store.Config{MaxOpen: 2, StatementTimeout: cfg.DB.StatementTimeout},
		store.WithLogger(lg, cfg.DB.LogLevel))
	if err != nil {
		return fmt.Errorf("connect %s/%s: %w", cfg.DB.Host, cfg.DB.Name, err)
	}
	defer gw.Close()

	steps := []struct {
		name string
		run  func(context.Context, *store.Gateway, *zap.SugaredLogger) error
	}{
		{"connection", checkConnection},
		{"tables", checkTables},
		{"crud", checkCRUD},
	}
	for i, s := range steps {
		if err := s.run(ctx, gw, lg); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, s.name, err)
		}
	}
	lg.Infow("database is ready")
	return nil
}

func checkConnection(ctx context.Context, gw *store.Gateway, lg *zap.SugaredLogger) error {
	var info struct {
		Now     time.Time
		Version string
	}
	if err := gw.QueryRow(ctx, &info, "SELECT NOW() AS now, version() AS version"); err != nil {
		return err
	}
	version := info.Version
	if f := strings.Fields(version); len(f) > 1 {
		version = f[0] + " " + f[1]
	}
	lg.Infow("connected", "server_time", info.Now, "version", version)
	return nil
}

func checkTables(ctx context.Context, gw *store.Gateway, lg *zap.SugaredLogger) error {
	var rows []struct{ Tablename string }
	if err := gw.QueryRows(ctx, &rows, "SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename"); err != nil {
		return err
	}
	have := make(map[string]bool, len(rows))
	for _, r := range rows {
		have[r.Tablename] = true
	}
	for _, want := range []string{"tenants", "users", "devices", "installed_apps"} {
		if !have[want] {
			return fmt.Errorf("table %q is missing", want)
		}
	}
	var live int64
	if err := gw.QueryRow(ctx, &live, "SELECT COUNT(*) FROM tenants WHERE deleted_at IS NULL"); err != nil {
		return err
	}
	lg.Infow("schema present", "tables", len(rows), "live_tenants", live)
	return nil
}

func checkCRUD(ctx context.Context, gw *store.Gateway, lg *zap.SugaredLogger) error {
	name := "dbcheck-" + ksuid.New().String()

	var t models.Tenant
	if err := gw.QueryRow(ctx, &t, "INSERT INTO tenants (name) VALUES (?) RETURNING *", name); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	lg.Infow("created scratch tenant", "id", t.ID, "name", t.Name)

	if err := gw.QueryRow(ctx, &t, "SELECT * FROM tenants WHERE id = ? AND deleted_at IS NULL", t.ID); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if err := gw.QueryRow(ctx, &t, "UPDATE tenants SET name = ?, updated_at = NOW() WHERE id = ? RETURNING *", name+"-renamed", t.ID); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if err := gw.QueryRow(ctx, &t, "UPDATE tenants SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL RETURNING *", t.ID); err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	err := gw.QueryRow(ctx, &t, "SELECT * FROM tenants WHERE id = ? AND deleted_at IS NULL", t.ID)
	if !store.IsKind(err, store.KindNotFound) {
		return fmt.Errorf("soft-deleted tenant still readable: %v", err)
	}
	lg.Infow("crud round trip ok", "id", t.ID)

	if keepRows {
		return nil
	}
	if err := gw.QueryRow(ctx, &t, "DELETE FROM tenants WHERE id = ? RETURNING *", t.ID); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	return nil
}
